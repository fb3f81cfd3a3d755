// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package affiliation

import (
	"github.com/pdiddy/pharma-papers/pkg/types"
)

// Class is the classification of one affiliation string.
type Class int

const (
	Unclassified Class = iota
	Academic
	Commercial
)

func (c Class) String() string {
	switch c {
	case Academic:
		return "academic"
	case Commercial:
		return "commercial"
	default:
		return "unclassified"
	}
}

// Classifier tags affiliation strings. It holds no mutable state and is safe
// for concurrent use.
type Classifier struct {
	keywords types.KeywordConfig
}

// NewClassifier builds a Classifier from cfg. Empty lists use the defaults.
func NewClassifier(cfg types.KeywordConfig) *Classifier {
	return &Classifier{keywords: WithDefaults(cfg)}
}

// Keywords returns the effective keyword lists.
func (c *Classifier) Keywords() types.KeywordConfig {
	return c.keywords
}

// Classify tags one affiliation string. An academic keyword short-circuits:
// the commercial list is not consulted.
func (c *Classifier) Classify(affiliation string) Class {
	return c.classify(Normalize(affiliation))
}

func (c *Classifier) classify(t Text) Class {
	if t.Contains(c.keywords.Academic) {
		return Academic
	}
	if t.Contains(c.keywords.Commercial) {
		return Commercial
	}
	return Unclassified
}

// IsNonAcademic reports whether at least one affiliation classifies Commercial.
func (c *Classifier) IsNonAcademic(affiliations []string) bool {
	for _, a := range affiliations {
		if c.Classify(a) == Commercial {
			return true
		}
	}
	return false
}
