// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paper

import (
	"regexp"
	"strings"

	"github.com/pdiddy/pharma-papers/pkg/types"
)

// pubmedStatus marks the canonical history entry used for the publication date.
const pubmedStatus = "pubmed"

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// publicationDate composes Year[-Month][-Day] from the first "pubmed"
// history entry, or returns types.UnknownDate.
func publicationDate(history []types.PubDate) string {
	for _, d := range history {
		if !strings.EqualFold(strings.TrimSpace(d.Status), pubmedStatus) {
			continue
		}
		var parts []string
		for _, p := range []string{d.Year, d.Month, d.Day} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			return types.UnknownDate
		}
		return strings.Join(parts, "-")
	}
	return types.UnknownDate
}

// findEmail returns the first email address found in affiliations.
func findEmail(affiliations []string) (string, bool) {
	for _, a := range affiliations {
		if m := emailPattern.FindString(a); m != "" {
			return m, true
		}
	}
	return "", false
}
