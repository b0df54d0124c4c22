package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type WorkspaceConfig struct {
	Root         string   `toml:"root"`
	IgnoreGlobs  []string `toml:"ignore_globs"`
	MaxFileBytes int      `toml:"max_file_bytes"`
}

type VerificationConfig struct {
	MinConfidence   float64 `toml:"min_confidence"`
	MaxIterations   int     `toml:"max_iterations"`
	IncludeEvidence bool    `toml:"include_evidence"`
}

type ConcurrencyConfig struct {
	EvidenceWorkers int     `toml:"evidence_workers"`
	SourceQPS       float64 `toml:"source_qps"`
}

type ContextConfig struct {
	MaxTokens int `toml:"max_tokens"`
	MaxFiles  int `toml:"max_files"`
}

type Config struct {
	LLM          LLMConfig          `toml:"llm"`
	Neo4j        Neo4jConfig        `toml:"neo4j"`
	Workspace    WorkspaceConfig    `toml:"workspace"`
	Context      ContextConfig      `toml:"context"`
	Verification VerificationConfig `toml:"verification"`
	Concurrency  ConcurrencyConfig  `toml:"concurrency"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values so a partial config file still yields a
// runnable service.
func (c *Config) ApplyDefaults() {
	if c.Verification.MinConfidence == 0 {
		c.Verification.MinConfidence = 0.7
	}
	if c.Verification.MaxIterations == 0 {
		c.Verification.MaxIterations = 3
	}
	if c.Concurrency.EvidenceWorkers == 0 {
		c.Concurrency.EvidenceWorkers = 4
	}
	if c.Concurrency.SourceQPS == 0 {
		c.Concurrency.SourceQPS = 20
	}
	if c.Context.MaxTokens == 0 {
		c.Context.MaxTokens = 24000
	}
	if c.Context.MaxFiles == 0 {
		c.Context.MaxFiles = 12
	}
	if c.Workspace.MaxFileBytes == 0 {
		c.Workspace.MaxFileBytes = 256 * 1024
	}
	if c.Neo4j.URI == "" {
		c.Neo4j.URI = "bolt://localhost:7687"
	}
}
