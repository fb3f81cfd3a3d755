// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// UnknownDate is the publication date used when a record carries no
// "pubmed" history entry.
const UnknownDate = "Unknown"

// AuthorRecord is the normalized form of one raw author entry.
type AuthorRecord struct {
	// DisplayName is never empty; see paper.BuildAuthor for precedence.
	DisplayName string

	// Affiliations holds non-empty affiliation strings in document order.
	Affiliations []string
}

// PaperResult is the engine's decision for one kept paper.
// NonAcademicAuthors and CompanyAffiliations are index-aligned.
type PaperResult struct {
	ExternalID          string   `json:"external_id" yaml:"external_id"`
	Title               string   `json:"title" yaml:"title"`
	PublicationDate     string   `json:"publication_date" yaml:"publication_date"`
	NonAcademicAuthors  []string `json:"non_academic_authors" yaml:"non_academic_authors"`
	CompanyAffiliations []string `json:"company_affiliations" yaml:"company_affiliations"`

	// CorrespondingEmail is nil when no author affiliation carried an email.
	CorrespondingEmail *string `json:"corresponding_email" yaml:"corresponding_email"`
}

// Email returns the corresponding email or "" when none was found.
func (p PaperResult) Email() string {
	if p.CorrespondingEmail == nil {
		return ""
	}
	return *p.CorrespondingEmail
}

// ExportRow is one flattened (paper, non-academic author) pair.
type ExportRow struct {
	ExternalID         string `json:"pubmed_id" yaml:"pubmed_id"`
	Title              string `json:"title" yaml:"title"`
	PublicationDate    string `json:"publication_date" yaml:"publication_date"`
	Author             string `json:"non_academic_author" yaml:"non_academic_author"`
	Company            string `json:"company_affiliation" yaml:"company_affiliation"`
	CorrespondingEmail string `json:"corresponding_author_email" yaml:"corresponding_author_email"`
}
