package di

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapEnv map[string]string

func (m mapEnv) Get(key string) string { return m[key] }

func (m mapEnv) GetWithDefault(key, defaultValue string) string {
	if v := m[key]; v != "" {
		return v
	}
	return defaultValue
}

func (m mapEnv) GetInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(m[key])
	if err != nil {
		return defaultValue
	}
	return n
}

func (m mapEnv) GetBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(m[key])
	if err != nil {
		return defaultValue
	}
	return b
}

func (m mapEnv) GetDuration(key string, defaultValue time.Duration) time.Duration {
	if m[key] == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(m[key])
	if err != nil {
		return defaultValue
	}
	return d
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(mapEnv{"OPENAI_API_KEY": "sk-test"})

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "openai", cfg.LLMBackend)
	assert.Equal(t, "OpenAI GPT-4o-mini", cfg.LLMProvider)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "http://localhost:8080/engine-rest", cfg.CamundaURL)
	assert.Equal(t, "llm-fare-analyzer-1", cfg.WorkerID)
	assert.Equal(t, "analyze-fare-rules", cfg.Topic)
	assert.Equal(t, 1, cfg.MaxTasks)
	assert.Equal(t, 30*time.Second, cfg.LockDuration)
	assert.Equal(t, 10*time.Second, cfg.AsyncResponseTimeout)
	assert.Empty(t, cfg.HTTPAddr)
	assert.False(t, cfg.LogDevelopment)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg := LoadConfig(mapEnv{
		"OPENAI_API_KEY":       "sk-test",
		"LLM_BACKEND":          "LangChain",
		"CAMUNDA_URL":          "http://camunda:8080/engine-rest",
		"WORKER_LOCK_DURATION": "1m",
		"HTTP_ADDR":            ":9090",
		"LOG_DEVELOPMENT":      "true",
	})

	assert.Equal(t, "langchain", cfg.LLMBackend)
	assert.Equal(t, "http://camunda:8080/engine-rest", cfg.CamundaURL)
	assert.Equal(t, time.Minute, cfg.LockDuration)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.True(t, cfg.LogDevelopment)
	require.NoError(t, cfg.Validate())
}

func TestConfig_ValidateMissingAPIKey(t *testing.T) {
	cfg := LoadConfig(mapEnv{})

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY is not set")
}

func TestConfig_ValidateInvalidValues(t *testing.T) {
	cfg := LoadConfig(mapEnv{
		"OPENAI_API_KEY":   "sk-test",
		"LLM_BACKEND":      "carrier-pigeon",
		"CAMUNDA_URL":      "not a url",
		"WORKER_MAX_TASKS": "0",
	})

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_BACKEND is invalid")
	assert.Contains(t, err.Error(), "CAMUNDA_URL is invalid")
	assert.Contains(t, err.Error(), "WORKER_MAX_TASKS is invalid")
}

func TestConfig_DerivedComponentConfigs(t *testing.T) {
	cfg := LoadConfig(mapEnv{"OPENAI_API_KEY": "sk-test", "LLM_TIMEOUT": "5s"})

	pc := cfg.pollerConfig()
	assert.Equal(t, cfg.WorkerID, pc.WorkerID)
	assert.Equal(t, cfg.Topic, pc.Topic)
	assert.Equal(t, 1, pc.MaxTasks)

	cc := cfg.classifierConfig()
	assert.Equal(t, 5*time.Second, cc.CallTimeout)
	assert.Equal(t, 10, cc.MaxTokens)
	assert.InDelta(t, 0.3, cc.Temperature, 1e-6)
	assert.Equal(t, "openai", cc.Backend)
}

func TestConfig_ValidateRejectsBatchedLocks(t *testing.T) {
	cfg := LoadConfig(mapEnv{"OPENAI_API_KEY": "sk-test", "WORKER_MAX_TASKS": "2"})

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKER_MAX_TASKS is invalid (max)")
}

func TestLoadConfig_MalformedNumbersFallBack(t *testing.T) {
	cfg := LoadConfig(mapEnv{
		"OPENAI_API_KEY":   "sk-test",
		"WORKER_MAX_TASKS": "one",
		"LOG_DEVELOPMENT":  "sometimes",
	})

	assert.Equal(t, 1, cfg.MaxTasks)
	assert.False(t, cfg.LogDevelopment)
	require.NoError(t, cfg.Validate())
}
