// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package paper turns parsed bibliographic records into PaperResults: it
// resolves author names and affiliations, classifies each author, extracts
// a company name and a corresponding email, and drops papers with no
// non-academic author.
//
// Processing is a pure function of the record and the keyword configuration.
// A Processor holds no mutable state and may be shared across goroutines.
package paper

import (
	"github.com/rs/zerolog"

	"github.com/pdiddy/pharma-papers/internal/affiliation"
	"github.com/pdiddy/pharma-papers/pkg/types"
)

// Outcome records why a record was kept or discarded.
type Outcome string

const (
	OutcomeKept         Outcome = "kept"
	OutcomeNoAuthors    Outcome = "no_authors"
	OutcomeNoCommercial Outcome = "no_commercial"
)

// Observer is notified of every record outcome. The observability package
// provides a Prometheus-backed implementation.
type Observer interface {
	ObserveRecord(Outcome)
}

// Processor evaluates records against one keyword configuration.
type Processor struct {
	classifier *affiliation.Classifier
	extractor  *affiliation.Extractor
	logger     zerolog.Logger
	observer   Observer
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for per-record debug events.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithObserver registers an outcome observer.
func WithObserver(o Observer) Option {
	return func(p *Processor) { p.observer = o }
}

// NewProcessor builds a Processor. Empty keyword lists use the defaults.
func NewProcessor(cfg types.KeywordConfig, opts ...Option) *Processor {
	c := affiliation.NewClassifier(cfg)
	p := &Processor{
		classifier: c,
		extractor:  affiliation.NewExtractor(c),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process evaluates one record. It returns nil when the record has no
// authors or no author with a commercial affiliation.
func (p *Processor) Process(rec types.Record) *types.PaperResult {
	res, outcome := p.evaluate(rec)
	if p.observer != nil {
		p.observer.ObserveRecord(outcome)
	}
	if outcome != OutcomeKept {
		p.logger.Debug().
			Str("external_id", rec.ExternalID).
			Str("outcome", string(outcome)).
			Msg("record discarded")
	}
	return res
}

func (p *Processor) evaluate(rec types.Record) (*types.PaperResult, Outcome) {
	if len(rec.Authors) == 0 {
		return nil, OutcomeNoAuthors
	}

	res := &types.PaperResult{
		ExternalID:          rec.ExternalID,
		Title:               rec.Title,
		PublicationDate:     publicationDate(rec.History),
		NonAcademicAuthors:  []string{},
		CompanyAffiliations: []string{},
	}

	for _, raw := range rec.Authors {
		author := BuildAuthor(raw)

		// First email in document order wins, whichever author carries it.
		if res.CorrespondingEmail == nil {
			if email, ok := findEmail(author.Affiliations); ok {
				res.CorrespondingEmail = &email
			}
		}

		if !p.classifier.IsNonAcademic(author.Affiliations) {
			continue
		}

		company := p.extractor.Company(author.Affiliations)
		res.NonAcademicAuthors = append(res.NonAcademicAuthors, author.DisplayName)
		res.CompanyAffiliations = append(res.CompanyAffiliations, company)

		p.logger.Debug().
			Str("external_id", rec.ExternalID).
			Str("author", author.DisplayName).
			Str("company", company).
			Msg("non-academic author")
	}

	if len(res.NonAcademicAuthors) == 0 {
		return nil, OutcomeNoCommercial
	}
	return res, OutcomeKept
}
