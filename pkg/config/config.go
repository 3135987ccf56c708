// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config defines the Trio configuration model.
//
// Configuration is loaded from a YAML file with environment variable
// expansion (${VAR} and ${VAR:-default}), optionally seeded from .env
// files. Each section has SetDefaults and Validate methods; validation
// happens once at startup so a missing API key fails the process early
// instead of failing the first request.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Search    SearchConfig    `yaml:"search"`
	Documents DocumentsConfig `yaml:"documents"`
	Server    ServerConfig    `yaml:"server"`
}

// LLMConfig configures the chat-completion backend.
// The default host is Groq's OpenAI-compatible endpoint.
type LLMConfig struct {
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	Host        string   `yaml:"host"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	Timeout     int      `yaml:"timeout"` // seconds
}

func (c *LLMConfig) SetDefaults() {
	if c.Model == "" {
		c.Model = "llama-3.1-8b-instant"
	}
	if c.Host == "" {
		c.Host = "https://api.groq.com/openai/v1"
	}
	if c.Temperature == nil {
		t := 0.0
		c.Temperature = &t
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2048
	}
	if c.Timeout == 0 {
		c.Timeout = 120
	}
	if c.APIKey == "" {
		c.APIKey = ProviderAPIKey()
	}
}

func (c *LLMConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("llm: api_key is required (set GROQ_API_KEY or llm.api_key)")
	}
	if c.Model == "" {
		return fmt.Errorf("llm: model is required")
	}
	return nil
}

// EmbedderConfig configures the embeddings backend.
type EmbedderConfig struct {
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	Host      string `yaml:"host"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
	Timeout   int    `yaml:"timeout"` // seconds
}

func (c *EmbedderConfig) SetDefaults() {
	if c.Model == "" {
		c.Model = "text-embedding-3-small"
	}
	if c.Host == "" {
		c.Host = "https://api.openai.com/v1"
	}
	if c.Dimension == 0 {
		c.Dimension = 1536
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.Timeout == 0 {
		c.Timeout = 60
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func (c *EmbedderConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("embedder: api_key is required (set OPENAI_API_KEY or embedder.api_key)")
	}
	return nil
}

// SearchConfig configures the ReAct search agent.
type SearchConfig struct {
	// MaxIterations bounds the reason/act/observe loop per query.
	MaxIterations int `yaml:"max_iterations"`

	// ResultChars caps the text returned by each lookup tool.
	ResultChars int `yaml:"result_chars"`
}

func (c *SearchConfig) SetDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = 5
	}
	if c.ResultChars == 0 {
		c.ResultChars = 500
	}
}

// DocumentsConfig configures the per-session document store.
type DocumentsConfig struct {
	// BaseDir holds one subdirectory per session.
	BaseDir string `yaml:"base_dir"`

	// MaxDocuments is the per-session upload limit.
	MaxDocuments int `yaml:"max_documents"`

	// ChunkSize/ChunkOverlap control text splitting (characters).
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	// TopK is the number of chunks retrieved per question.
	TopK int `yaml:"top_k"`

	// ContextTokenLimit caps the grounding context sent to the model.
	ContextTokenLimit int `yaml:"context_token_limit"`
}

func (c *DocumentsConfig) SetDefaults() {
	if c.BaseDir == "" {
		c.BaseDir = "data/vector_stores"
	}
	if c.MaxDocuments == 0 {
		c.MaxDocuments = 5
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 5000
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 200
	}
	if c.TopK == 0 {
		c.TopK = 10
	}
	if c.ContextTokenLimit == 0 {
		c.ContextTokenLimit = 6000
	}
}

func (c *DocumentsConfig) Validate() error {
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("documents: chunk_overlap (%d) must be less than chunk_size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.MaxDocuments < 1 {
		return fmt.Errorf("documents: max_documents must be positive, got %d", c.MaxDocuments)
	}
	return nil
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
}

// SetDefaults applies defaults to all sections.
func (c *Config) SetDefaults() {
	c.LLM.SetDefaults()
	c.Embedder.SetDefaults()
	c.Search.SetDefaults()
	c.Documents.SetDefaults()
	c.Server.SetDefaults()
}

// Validate checks all sections.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Embedder.Validate(); err != nil {
		return err
	}
	if err := c.Documents.Validate(); err != nil {
		return err
	}
	return nil
}

// Load reads a YAML config file, expands environment variables inside it,
// and applies defaults plus validation. An empty path yields a default
// config (env-only setup).
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}

		expanded, err := yaml.Marshal(ExpandEnvVarsInData(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode expanded config: %w", err)
		}

		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
