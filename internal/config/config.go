// Package config provides configuration loading and structs for sdkchat.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Generator GeneratorConfig `yaml:"generator"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Server    ServerConfig    `yaml:"server"`
	Watch     WatchConfig     `yaml:"watch"`
}

// CorpusConfig lists the corpus roots. A missing root is restored from
// the archive of the same name with ArchiveExt appended.
type CorpusConfig struct {
	Directories []string `yaml:"directories"`
	ArchiveExt  string   `yaml:"archive_ext"`
}

// EmbeddingConfig holds embedder settings.
type EmbeddingConfig struct {
	Type       string `yaml:"type"` // "onnx" or "hashing"
	ModelPath  string `yaml:"model_path"`
	VocabPath  string `yaml:"vocab_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	Pooling    string `yaml:"pooling"` // "mean" or "none"
	OutputName string `yaml:"output_name"`
	Lowercase  *bool  `yaml:"lowercase"`
}

// LowercaseOrDefault returns whether the tokenizer lowercases input; defaults to true when unset.
func (e *EmbeddingConfig) LowercaseOrDefault() bool {
	if e.Lowercase != nil {
		return *e.Lowercase
	}
	return true
}

// IndexConfig selects the similarity index backend.
type IndexConfig struct {
	Type string `yaml:"type"` // "flat" or "faiss"
}

// RetrievalConfig holds per-query retrieval settings.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// GeneratorConfig selects and configures the answer generator.
type GeneratorConfig struct {
	Type    string       `yaml:"type"` // "process" or "openai"
	Command []string     `yaml:"command"`
	OpenAI  OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig configures an OpenAI-compatible chat endpoint.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// PromptConfig holds the fixed text around retrieved documents.
type PromptConfig struct {
	Preamble    string `yaml:"preamble"`
	Instruction string `yaml:"instruction"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WatchConfig controls the corpus drift notice.
type WatchConfig struct {
	Enabled  bool `yaml:"enabled"`
	Debounce int  `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.ExpandPaths(filepath.Dir(path))

	return &cfg, nil
}

// ExpandPaths resolves every filesystem path in cfg against configDir.
func (c *Config) ExpandPaths(configDir string) {
	c.Embedding.ModelPath = expandPath(c.Embedding.ModelPath, configDir)
	c.Embedding.VocabPath = expandPath(c.Embedding.VocabPath, configDir)
	for i := range c.Corpus.Directories {
		c.Corpus.Directories[i] = expandPath(c.Corpus.Directories[i], configDir)
	}
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
