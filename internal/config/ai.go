package config

import (
	"os"
	"strconv"
	"time"
)

// Oracle backends
const (
	BackendAssistants = "assistants"
	BackendGemini     = "gemini"
	BackendMock       = "mock"
)

// AssistantIDs names one OpenAI assistant per job kind
type AssistantIDs struct {
	Question string `json:"question"`
	Eval     string `json:"eval"`
	Summary  string `json:"summary"`
}

// AIConfig holds all oracle-related configuration
type AIConfig struct {
	Backend string `json:"backend"`

	OpenAIKey     string       `json:"-"` // Never serialize
	OpenAIBaseURL string       `json:"openaiBaseUrl"`
	Assistants    AssistantIDs `json:"assistants"`

	GeminiKey   string `json:"-"` // Never serialize
	GeminiModel string `json:"geminiModel"`

	PollInterval time.Duration `json:"pollInterval"`
	JobTimeout   time.Duration `json:"jobTimeout"`
}

// DefaultAIConfig returns the oracle configuration from the environment
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		Backend:       getEnvOrDefault("ORACLE_BACKEND", BackendAssistants),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Assistants: AssistantIDs{
			Question: os.Getenv("OPENAI_ASSISTANT_QUESTION"),
			Eval:     os.Getenv("OPENAI_ASSISTANT_EVAL"),
			Summary:  os.Getenv("OPENAI_ASSISTANT_SUMMARY"),
		},
		GeminiKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		PollInterval: getEnvMillis("ORACLE_POLL_INTERVAL_MS", time.Second),
		JobTimeout:   getEnvMillis("ORACLE_JOB_TIMEOUT_MS", 60*time.Second),
	}
}

// IsEnabled returns true if the selected backend has credentials
func (c *AIConfig) IsEnabled() bool {
	switch c.Backend {
	case BackendAssistants:
		return c.OpenAIKey != "" && c.Assistants.Question != "" && c.Assistants.Eval != "" && c.Assistants.Summary != ""
	case BackendGemini:
		return c.GeminiKey != ""
	}
	return false
}

// EffectiveBackend is the backend actually used, falling back to mock without credentials
func (c *AIConfig) EffectiveBackend() string {
	if c.IsEnabled() {
		return c.Backend
	}
	return BackendMock
}

func getEnvMillis(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
