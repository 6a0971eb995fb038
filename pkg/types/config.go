// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// EUtilsConfig holds settings for the NCBI E-utilities client.
type EUtilsConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities root (default https://eutils.ncbi.nlm.nih.gov/entrez/eutils).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey raises the NCBI rate ceiling from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Email and Tool identify the caller to NCBI as their usage policy asks.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`
	Tool  string `json:"tool" yaml:"tool" mapstructure:"tool"`

	// RateLimit is requests per second. Zero picks 3, or 10 with an API key.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// BatchSize is the number of PMIDs per efetch request (default 200).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Workers bounds parallel parsing of fetched records (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// StoreConfig holds settings for the SQLite article store.
type StoreConfig struct {
	// DataDir holds pubmed.db and export files.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// LoggingConfig selects the diagnostic log level and format.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// OutputFormat selects how parsed articles are written.
type OutputFormat string

const (
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
	OutputCSL  OutputFormat = "csl"
)

// Config groups all stage configurations; it mirrors pubmed-engine.yaml.
type Config struct {
	EUtils  EUtilsConfig  `json:"eutils" yaml:"eutils" mapstructure:"eutils"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}
