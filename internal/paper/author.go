// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paper

import (
	"strings"

	"github.com/pdiddy/pharma-papers/pkg/types"
)

// UnknownAuthor is the display name of an author entry with no usable name.
const UnknownAuthor = "Unknown Author"

// BuildAuthor normalizes one raw author entry. The display name is, in
// order of preference: "Last Fore", "Last Initials", the collective name,
// the last name alone, or UnknownAuthor. Empty affiliation entries are
// dropped; the rest keep document order.
func BuildAuthor(raw types.RawAuthor) types.AuthorRecord {
	return types.AuthorRecord{
		DisplayName:  displayName(raw),
		Affiliations: affiliationTexts(raw.Affiliations),
	}
}

func displayName(raw types.RawAuthor) string {
	last := strings.TrimSpace(raw.LastName)
	fore := strings.TrimSpace(raw.ForeName)
	initials := strings.TrimSpace(raw.Initials)
	collective := strings.TrimSpace(raw.CollectiveName)

	switch {
	case last != "" && fore != "":
		return last + " " + fore
	case last != "" && initials != "":
		return last + " " + initials
	case collective != "":
		return collective
	case last != "":
		return last
	default:
		return UnknownAuthor
	}
}

func affiliationTexts(list types.AffiliationList) []string {
	if len(list) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, info := range list {
		if text := strings.TrimSpace(info.Text); text != "" {
			out = append(out, text)
		}
	}
	return out
}
