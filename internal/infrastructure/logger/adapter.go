package logger

import (
	"fmt"

	"fare-rules-worker/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

type LoggerAdapter struct {
	log *zap.Logger
}

type Config struct {
	Level       string
	Development bool
}

func NewLoggerAdapter(cfg Config) (*LoggerAdapter, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		zcfg.Level = level
	}
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return &LoggerAdapter{log: l}, nil
}

func NewFromZap(l *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{log: l}
}

func NewNop() *LoggerAdapter {
	return &LoggerAdapter{log: zap.NewNop()}
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.log.Debug(msg, fields(args)...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.log.Info(msg, fields(args)...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.log.Warn(msg, fields(args)...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.log.Error(msg, fields(args)...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{log: l.log.With(field(key, value))}
}

func (l *LoggerAdapter) WithFields(fieldMap map[string]any) output.LoggerPort {
	fs := make([]zap.Field, 0, len(fieldMap))
	for k, v := range fieldMap {
		fs = append(fs, field(k, v))
	}
	return &LoggerAdapter{log: l.log.With(fs...)}
}

func (l *LoggerAdapter) Zap() *zap.Logger {
	return l.log
}

// Close flushes buffered entries. Sync on a terminal stdout reports an
// error on some platforms, so it is ignored.
func (l *LoggerAdapter) Close() error {
	_ = l.log.Sync()
	return nil
}

func fields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	result := make([]zap.Field, 0, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("arg%d", i)
		}
		if i+1 >= len(args) {
			result = append(result, zap.Any(key, nil))
			break
		}
		result = append(result, field(key, args[i+1]))
	}
	return result
}

func field(key string, value any) zap.Field {
	if err, ok := value.(error); ok {
		return zap.NamedError(key, err)
	}
	return zap.Any(key, value)
}
