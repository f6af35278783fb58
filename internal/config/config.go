package config

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"solagent/internal/domain"
)

// Environment variable names for required startup values.
const (
	EnvMCPHost       = "MCP_SERVER_HOST"
	EnvMCPPort       = "MCP_SERVER_PORT"
	EnvChatAPIKey    = "CHAT_API_KEY"
	EnvEmbedAPIKey   = "EMBEDDINGS_API_KEY"
	EnvAgentPreamble = "AGENT_PREAMBLE"
	EnvRAGDirs       = "RAG_DIRS"
)

// ChunkerConfig configures how files are split into chunks.
type ChunkerConfig struct {
	MaxChunkSize    int    `yaml:"max_chunk_size"`
	SourceExtension string `yaml:"source_extension"`
}

// RetrievalConfig tunes the context assembly step.
type RetrievalConfig struct {
	SampleCount       int     `yaml:"sample_count"`
	DistanceThreshold float64 `yaml:"distance_threshold"`
	MaxContextChars   int     `yaml:"max_context_chars"`
	ClearHistory      bool    `yaml:"clear_history"`
}

// EmbedderConfig configures the OpenAI-compatible embeddings client.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChatConfig configures the chat completion client.
type ChatConfig struct {
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	MaxToolTurns int    `yaml:"max_tool_turns"`
	TimeoutSecs  int    `yaml:"timeout_secs"`
}

// AppConfig is the root tunables structure, read once at startup and
// immutable thereafter.
type AppConfig struct {
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Chat      ChatConfig      `yaml:"chat"`
}

// Env holds the required environment-sourced values: where the tool server
// lives, service credentials, the system preamble and the ingestion roots.
type Env struct {
	MCPHost     string
	MCPPort     string
	ChatAPIKey  string
	EmbedAPIKey string
	Preamble    string
	RAGDirs     []string
}

// MCPAddress returns the host:port the tool server is bound to.
func (e *Env) MCPAddress() string { return e.MCPHost + ":" + e.MCPPort }

// LoadEnv reads the required environment values. A missing value is a fatal
// ConfigError naming the variable.
func LoadEnv() (*Env, error) {
	env := &Env{}
	for _, v := range []struct {
		key string
		dst *string
	}{
		{EnvMCPHost, &env.MCPHost},
		{EnvMCPPort, &env.MCPPort},
		{EnvChatAPIKey, &env.ChatAPIKey},
		{EnvEmbedAPIKey, &env.EmbedAPIKey},
		{EnvAgentPreamble, &env.Preamble},
	} {
		val := os.Getenv(v.key)
		if val == "" {
			return nil, &domain.ConfigError{Key: v.key, Reason: "required environment variable not set"}
		}
		*v.dst = val
	}
	for _, dir := range strings.Split(os.Getenv(EnvRAGDirs), ",") {
		if dir = strings.TrimSpace(dir); dir != "" {
			env.RAGDirs = append(env.RAGDirs, dir)
		}
	}
	if len(env.RAGDirs) == 0 {
		return nil, &domain.ConfigError{Key: EnvRAGDirs, Reason: "at least one ingestion root directory is required"}
	}
	return env, nil
}

// Load reads tunables from a YAML file. A missing file yields defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if cfg.Chunker.MaxChunkSize < 0 {
		return nil, &domain.ConfigError{Key: "chunker.max_chunk_size", Reason: "must be positive"}
	}
	if cfg.Retrieval.SampleCount < 0 {
		return nil, &domain.ConfigError{Key: "retrieval.sample_count", Reason: "must be positive"}
	}
	return &cfg, nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.MaxChunkSize == 0 {
		cfg.Chunker.MaxChunkSize = 1000
	}
	if cfg.Chunker.SourceExtension == "" {
		cfg.Chunker.SourceExtension = ".sol"
	}
	if cfg.Retrieval.SampleCount == 0 {
		cfg.Retrieval.SampleCount = 30
	}
	if cfg.Retrieval.DistanceThreshold == 0 {
		cfg.Retrieval.DistanceThreshold = 0.9
	}
	if cfg.Retrieval.MaxContextChars == 0 {
		cfg.Retrieval.MaxContextChars = 30000
	}
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 64
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "gpt-4o"
	}
	if cfg.Chat.MaxToolTurns == 0 {
		cfg.Chat.MaxToolTurns = 20
	}
	if cfg.Chat.TimeoutSecs == 0 {
		cfg.Chat.TimeoutSecs = 120
	}
}
