package di

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fare-rules-worker/internal/application/port/output"
	"fare-rules-worker/internal/infrastructure/camunda"
	"fare-rules-worker/internal/usecase/farerules"
	"fare-rules-worker/internal/usecase/poller"

	"github.com/go-playground/validator/v10"
)

const (
	BackendOpenAI    = "openai"
	BackendLangChain = "langchain"
)

// Config is the process wide configuration. It is read once at startup and
// handed to the container by value.
type Config struct {
	OpenAIAPIKey  string        `validate:"required"`
	OpenAIModel   string        `validate:"required"`
	OpenAIBaseURL string        `validate:"omitempty,url"`
	LLMBackend    string        `validate:"oneof=openai langchain"`
	LLMProvider   string        `validate:"required"`
	LLMTimeout    time.Duration `validate:"gt=0"`

	CamundaURL           string        `validate:"required,url"`
	WorkerID             string        `validate:"required"`
	Topic                string        `validate:"required"`
	MaxTasks             int           `validate:"min=1,max=1"` // later tasks of a batch would outlive their lock
	LockDuration         time.Duration `validate:"gt=0"`
	AsyncResponseTimeout time.Duration `validate:"gte=0"`
	PollInterval         time.Duration `validate:"gte=0"`
	BackoffMax           time.Duration `validate:"gte=0"`

	LogLevel       string
	LogDevelopment bool
	HTTPAddr       string
}

func LoadConfig(env output.ConfigPort) Config {
	defaults := poller.DefaultConfig()

	return Config{
		OpenAIAPIKey:  env.Get("OPENAI_API_KEY"),
		OpenAIModel:   env.GetWithDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: env.Get("OPENAI_BASE_URL"),
		LLMBackend:    strings.ToLower(env.GetWithDefault("LLM_BACKEND", BackendOpenAI)),
		LLMProvider:   env.GetWithDefault("LLM_PROVIDER_LABEL", farerules.DefaultProvider),
		LLMTimeout:    env.GetDuration("LLM_TIMEOUT", farerules.DefaultCallTimeout),

		CamundaURL:           env.GetWithDefault("CAMUNDA_URL", camunda.DefaultBaseURL),
		WorkerID:             env.GetWithDefault("WORKER_ID", defaults.WorkerID),
		Topic:                env.GetWithDefault("WORKER_TOPIC", defaults.Topic),
		MaxTasks:             env.GetInt("WORKER_MAX_TASKS", defaults.MaxTasks),
		LockDuration:         env.GetDuration("WORKER_LOCK_DURATION", defaults.LockDuration),
		AsyncResponseTimeout: env.GetDuration("WORKER_ASYNC_RESPONSE_TIMEOUT", defaults.AsyncResponseTimeout),
		PollInterval:         env.GetDuration("POLL_INTERVAL", defaults.PollInterval),
		BackoffMax:           env.GetDuration("POLL_BACKOFF_MAX", defaults.BackoffMax),

		LogLevel:       env.GetWithDefault("LOG_LEVEL", "info"),
		LogDevelopment: env.GetBool("LOG_DEVELOPMENT", false),
		HTTPAddr:       env.Get("HTTP_ADDR"),
	}
}

var envNames = map[string]string{
	"OpenAIAPIKey":         "OPENAI_API_KEY",
	"OpenAIModel":          "OPENAI_MODEL",
	"OpenAIBaseURL":        "OPENAI_BASE_URL",
	"LLMBackend":           "LLM_BACKEND",
	"LLMProvider":          "LLM_PROVIDER_LABEL",
	"LLMTimeout":           "LLM_TIMEOUT",
	"CamundaURL":           "CAMUNDA_URL",
	"WorkerID":             "WORKER_ID",
	"Topic":                "WORKER_TOPIC",
	"MaxTasks":             "WORKER_MAX_TASKS",
	"LockDuration":         "WORKER_LOCK_DURATION",
	"AsyncResponseTimeout": "WORKER_ASYNC_RESPONSE_TIMEOUT",
	"PollInterval":         "POLL_INTERVAL",
	"BackoffMax":           "POLL_BACKOFF_MAX",
}

// Validate reports every invalid setting by its environment variable name.
func (c Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := envNames[fe.StructField()]
		if name == "" {
			name = fe.StructField()
		}
		if fe.Tag() == "required" {
			msgs = append(msgs, fmt.Sprintf("%s is not set", name))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", name, fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func (c Config) pollerConfig() poller.Config {
	cfg := poller.DefaultConfig()
	cfg.WorkerID = c.WorkerID
	cfg.Topic = c.Topic
	cfg.MaxTasks = c.MaxTasks
	cfg.LockDuration = c.LockDuration
	cfg.AsyncResponseTimeout = c.AsyncResponseTimeout
	cfg.PollInterval = c.PollInterval
	cfg.BackoffMax = c.BackoffMax
	return cfg
}

func (c Config) classifierConfig() farerules.Config {
	cfg := farerules.DefaultConfig()
	cfg.Backend = c.LLMBackend
	cfg.Provider = c.LLMProvider
	cfg.CallTimeout = c.LLMTimeout
	return cfg
}
