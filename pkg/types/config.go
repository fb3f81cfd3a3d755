// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// KeywordConfig holds the case-insensitive substrings used to classify
// affiliation text. List order matters for Commercial: company extraction
// tries keywords in this order.
type KeywordConfig struct {
	Academic   []string `json:"academic_keywords" yaml:"academic_keywords" mapstructure:"academic"`
	Commercial []string `json:"commercial_keywords" yaml:"commercial_keywords" mapstructure:"commercial"`
}

// HTTPConfig holds shared HTTP settings used by sources that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// PubMedConfig holds settings for the NCBI E-utilities source.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities root (default https://eutils.ncbi.nlm.nih.gov/entrez/eutils).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// APIKey raises the NCBI rate limit from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Email is sent with each request as NCBI asks of tools.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`

	// RateLimit is requests per second; 0 picks 3 (or 10 with an API key).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`

	// MaxResults caps the number of PMIDs returned by a search (default 100).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"gte=0,lte=10000"`

	// FetchBatchSize is the number of PMIDs per efetch call (default 200).
	FetchBatchSize int `json:"fetch_batch_size" yaml:"fetch_batch_size" mapstructure:"fetch_batch_size" validate:"gte=0"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
}

// StoreConfig holds settings for the SQLite result store.
type StoreConfig struct {
	// Path is the database file (default data/papers.db).
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ServeConfig holds settings for the HTTP API.
type ServeConfig struct {
	Addr         string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
}

// LoggingConfig selects log level, format (json or console) and output
// (stderr or stdout).
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled off"`
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json console pretty"`
	Output string `json:"output" yaml:"output" mapstructure:"output" validate:"omitempty,oneof=stderr stdout"`
}

// AppConfig groups all configuration sections.
type AppConfig struct {
	Keywords KeywordConfig `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
	PubMed   PubMedConfig  `json:"pubmed" yaml:"pubmed" mapstructure:"pubmed"`
	Store    StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Serve    ServeConfig   `json:"serve" yaml:"serve" mapstructure:"serve"`
	Log      LoggingConfig `json:"log" yaml:"log" mapstructure:"log"`
}
