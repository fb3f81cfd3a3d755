// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/pharma-papers/internal/affiliation"
	"github.com/pdiddy/pharma-papers/internal/pubmed"
	"github.com/pdiddy/pharma-papers/internal/secrets"
	"github.com/pdiddy/pharma-papers/internal/store"
	"github.com/pdiddy/pharma-papers/pkg/types"
)

// setDefaults registers every config key so env overrides and Unmarshal see it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("keywords.academic", []string{})
	v.SetDefault("keywords.commercial", []string{})

	v.SetDefault("pubmed.base_url", pubmed.DefaultBaseURL)
	v.SetDefault("pubmed.api_key", "")
	v.SetDefault("pubmed.email", "")
	v.SetDefault("pubmed.timeout", pubmed.DefaultTimeout)
	v.SetDefault("pubmed.user_agent", "")
	v.SetDefault("pubmed.rate_limit", 0.0)
	v.SetDefault("pubmed.max_results", pubmed.DefaultMaxResults)
	v.SetDefault("pubmed.fetch_batch_size", pubmed.DefaultFetchBatchSize)
	v.SetDefault("pubmed.max_retries", 5)

	v.SetDefault("store.path", store.DefaultPath)

	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.read_timeout", 30*time.Second)
	v.SetDefault("serve.write_timeout", 60*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
}

// appConfig resolves the effective configuration: viper values, secrets for
// NCBI credentials, the --keywords file, and --debug.
func appConfig(v *viper.Viper, keywordFile string, debug bool) (types.AppConfig, error) {
	var cfg types.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	cfg.PubMed.APIKey = secretDefault(secrets.NCBIAPIKey, cfg.PubMed.APIKey)
	cfg.PubMed.Email = secretDefault(secrets.NCBIEmail, cfg.PubMed.Email)

	if keywordFile != "" {
		kw, err := affiliation.LoadKeywordFile(keywordFile)
		if err != nil {
			return cfg, err
		}
		cfg.Keywords = kw
	}
	cfg.Keywords = affiliation.WithDefaults(cfg.Keywords)

	if debug {
		cfg.Log.Level = "debug"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
