// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package affiliation

import "strings"

// Text is one affiliation string in the forms the classifier and extractor
// match against.
type Text struct {
	// Raw is the original text with surrounding whitespace removed.
	// Company extraction runs on Raw because it depends on capitalization.
	Raw string

	// Lower is Raw lowercased, used for keyword substring matching.
	Lower string
}

// Normalize prepares s for matching.
func Normalize(s string) Text {
	raw := strings.TrimSpace(s)
	return Text{Raw: raw, Lower: strings.ToLower(raw)}
}

// Contains reports whether the lowercased text contains any of the keywords,
// which must already be lowercase.
func (t Text) Contains(keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(t.Lower, kw) {
			return true
		}
	}
	return false
}
