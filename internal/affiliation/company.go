// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package affiliation

import (
	"fmt"
	"regexp"
	"strings"
)

// UnknownCompany is returned when no affiliation yields a company name.
const UnknownCompany = "Unknown Company"

// companyPatternFormat finds a proper-noun span next to a commercial cue:
// an optional capitalized word, the optional keyword, a required capitalized
// word, and the optional keyword again. Capitalization is matched case
// sensitively; the keyword is not.
const companyPatternFormat = `([A-Z][A-Za-z]*\s)?(?i:%[1]s)?\s?[A-Z][A-Za-z0-9.\-]+(?:\s?(?i:%[1]s))?`

// Extractor derives a company name from an author's affiliations.
// Patterns are compiled once, one per commercial keyword, in keyword order.
type Extractor struct {
	classifier *Classifier
	patterns   []*regexp.Regexp
}

// NewExtractor compiles one pattern per commercial keyword of c.
func NewExtractor(c *Classifier) *Extractor {
	kws := c.Keywords().Commercial
	patterns := make([]*regexp.Regexp, 0, len(kws))
	for _, kw := range kws {
		patterns = append(patterns, regexp.MustCompile(fmt.Sprintf(companyPatternFormat, regexp.QuoteMeta(kw))))
	}
	return &Extractor{classifier: c, patterns: patterns}
}

// Company returns a best-effort company name for an author.
// Academic strings are skipped. For each remaining string the keyword
// patterns are tried in order and the first match wins; failing that, the
// text before the first comma is used. An empty list yields "", and a
// non-empty list where nothing matched yields UnknownCompany.
//
// The patterns can pick up unrelated capitalized words (a city before
// "Inc", say). That imprecision is accepted.
func (e *Extractor) Company(affiliations []string) string {
	if len(affiliations) == 0 {
		return ""
	}
	for _, a := range affiliations {
		t := Normalize(a)
		if e.classifier.classify(t) == Academic {
			continue
		}
		if name, ok := e.fromText(t); ok {
			return name
		}
	}
	return UnknownCompany
}

func (e *Extractor) fromText(t Text) (string, bool) {
	for _, re := range e.patterns {
		if m := re.FindString(t.Raw); m != "" {
			if name := strings.TrimSpace(m); name != "" {
				return name, true
			}
		}
	}
	if i := strings.Index(t.Raw, ","); i > 0 {
		if name := strings.TrimSpace(t.Raw[:i]); name != "" {
			return name, true
		}
	}
	return "", false
}
