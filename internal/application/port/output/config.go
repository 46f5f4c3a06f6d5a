package output

import "time"

type ConfigPort interface {
	Get(key string) string
	GetWithDefault(key string, defaultValue string) string
	GetInt(key string, defaultValue int) int
	GetBool(key string, defaultValue bool) bool
	GetDuration(key string, defaultValue time.Duration) time.Duration
}
