package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the study assistant.
type Config struct {
	Courses   CoursesConfig   `yaml:"courses"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CoursesConfig locates course notes and their persisted indexes.
type CoursesConfig struct {
	NotesDir      string `yaml:"notes_dir"`
	IndexDir      string `yaml:"index_dir"`
	DefaultCourse string `yaml:"default_course"`
}

// ChunkConfig holds word-window chunking parameters.
type ChunkConfig struct {
	WindowWords  int `yaml:"window_words"`
	OverlapWords int `yaml:"overlap_words"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`       // e.g. "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // environment variable for API key
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// LLMConfig holds hosted-model configuration and token budgets.
type LLMConfig struct {
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TokenLimit     int    `yaml:"token_limit"`     // context window budget
	ReservedTokens int    `yaml:"reserved_tokens"` // headroom for the response
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Courses: CoursesConfig{
			NotesDir:      "data/notes",
			IndexDir:      "data/index",
			DefaultCourse: "COMP2123",
		},
		Chunk: ChunkConfig{
			WindowWords:  500,
			OverlapWords: 50,
		},
		Retrieve: RetrieveConfig{
			TopK: 3,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			TokenLimit:     128000,
			ReservedTokens: 500,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for studyrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "studyrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnv overrides config values from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("NOTES_BASE_DIR"); v != "" {
		c.Courses.NotesDir = v
	}
	if v := os.Getenv("INDEX_BASE_DIR"); v != "" {
		c.Courses.IndexDir = v
	}
	if v := os.Getenv("DEFAULT_COURSE"); v != "" {
		c.Courses.DefaultCourse = v
	}
	if v := os.Getenv("TOKEN_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.LLM.TokenLimit = n
		}
	}
	if v := os.Getenv("RESERVED_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.LLM.ReservedTokens = n
		}
	}
}

// NotesPath returns the notes directory for a course.
func (c *Config) NotesPath(courseCode string) string {
	return filepath.Join(c.Courses.NotesDir, strings.ToUpper(courseCode))
}

// IndexPrefix returns the path prefix for a course's index artifacts.
// The two artifacts live at <prefix>.index and <prefix>_chunks.json.
func (c *Config) IndexPrefix(courseCode string) string {
	return filepath.Join(c.Courses.IndexDir, strings.ToLower(courseCode))
}
