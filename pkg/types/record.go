// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pharma-papers pipeline:
// the parsed bibliographic Record consumed by the engine, the PaperResult it
// produces, and the flat ExportRow handed to exporters.
package types

// Record is one parsed bibliographic record. Parsing of raw markup into this
// shape happens in the source packages (see internal/pubmed); the engine
// never touches markup.
type Record struct {
	// ExternalID is the record's identifier in its source system (PMID).
	ExternalID string `json:"externalId" yaml:"external_id"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the raw author entries in document order.
	Authors []RawAuthor `json:"authorList" yaml:"authors"`

	// History holds publication-history dates, if any.
	History []PubDate `json:"publicationHistory,omitempty" yaml:"history,omitempty"`
}

// RawAuthor is one author entry as it appears in the source record.
type RawAuthor struct {
	LastName       string          `json:"lastName,omitempty" yaml:"last_name,omitempty"`
	ForeName       string          `json:"foreName,omitempty" yaml:"fore_name,omitempty"`
	Initials       string          `json:"initials,omitempty" yaml:"initials,omitempty"`
	CollectiveName string          `json:"collectiveName,omitempty" yaml:"collective_name,omitempty"`
	Affiliations   AffiliationList `json:"affiliationInfo,omitempty" yaml:"affiliations,omitempty"`
}

// AffiliationInfo wraps one affiliation text.
type AffiliationInfo struct {
	Text string `json:"affiliationText" yaml:"text"`
}

// AffiliationList is always a sequence, whatever cardinality the source
// used. A nil list means the author had no affiliation container.
type AffiliationList []AffiliationInfo

// PubDate is one entry in a record's publication history.
type PubDate struct {
	Status string `json:"status" yaml:"status"`
	Year   string `json:"year,omitempty" yaml:"year,omitempty"`
	Month  string `json:"month,omitempty" yaml:"month,omitempty"`
	Day    string `json:"day,omitempty" yaml:"day,omitempty"`
}
