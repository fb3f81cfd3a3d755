// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package affiliation classifies author affiliation text as academic or
// commercial and extracts a best-effort company name from commercial text.
//
// Classification is case-insensitive substring matching against two keyword
// lists. An academic match always wins over a commercial match in the same
// string.
package affiliation

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pharma-papers/pkg/types"
)

// DefaultAcademicKeywords signal a university, hospital, or public body.
var DefaultAcademicKeywords = []string{
	"university",
	"college",
	"school",
	"hospital",
	"institute",
	"department",
	"faculty",
	"academy",
	"national",
	"foundation",
	"clinic",
	"medical center",
	"centre",
	"ministry",
	"government",
}

// DefaultCommercialKeywords signal a company. Company extraction tries them
// in this order.
var DefaultCommercialKeywords = []string{
	"pharma",
	"biotech",
	"inc",
	"ltd",
	"llc",
	"corp",
	"gmbh",
	"laboratories",
	"therapeutics",
	"oncology",
	"biosciences",
	"biologics",
	"diagnostics",
	"company",
}

// DefaultKeywords returns a copy of the built-in keyword lists.
func DefaultKeywords() types.KeywordConfig {
	return types.KeywordConfig{
		Academic:   append([]string(nil), DefaultAcademicKeywords...),
		Commercial: append([]string(nil), DefaultCommercialKeywords...),
	}
}

// WithDefaults fills empty lists in cfg from the defaults and lowercases
// and trims every keyword, dropping blanks.
func WithDefaults(cfg types.KeywordConfig) types.KeywordConfig {
	out := types.KeywordConfig{
		Academic:   cleanKeywords(cfg.Academic),
		Commercial: cleanKeywords(cfg.Commercial),
	}
	if len(out.Academic) == 0 {
		out.Academic = append([]string(nil), DefaultAcademicKeywords...)
	}
	if len(out.Commercial) == 0 {
		out.Commercial = append([]string(nil), DefaultCommercialKeywords...)
	}
	return out
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// LoadKeywordFile reads keyword lists from a YAML file with
// academic_keywords and commercial_keywords sequences. Lists missing from
// the file come back empty; pass the result through WithDefaults.
func LoadKeywordFile(path string) (types.KeywordConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.KeywordConfig{}, fmt.Errorf("reading keyword file: %w", err)
	}
	var cfg types.KeywordConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return types.KeywordConfig{}, fmt.Errorf("parsing keyword file %s: %w", path, err)
	}
	return cfg, nil
}
