// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pharma-papers/pkg/types"
)

// ParseArticleSet decodes an efetch XML document into records.
func ParseArticleSet(r io.Reader) ([]types.Record, error) {
	var set PubmedArticleSet
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing PubMed XML: %w", err)
	}
	return ToRecords(set), nil
}

// ToRecords converts every article in set.
func ToRecords(set PubmedArticleSet) []types.Record {
	records := make([]types.Record, 0, len(set.Articles))
	for _, a := range set.Articles {
		records = append(records, ToRecord(a))
	}
	return records
}

// ToRecord maps one article onto the engine's input shape.
func ToRecord(a PubmedArticle) types.Record {
	rec := types.Record{
		ExternalID: strings.TrimSpace(a.MedlineCitation.PMID.Value),
		Title:      a.MedlineCitation.Article.ArticleTitle.String(),
	}

	if al := a.MedlineCitation.Article.AuthorList; al != nil {
		rec.Authors = make([]types.RawAuthor, 0, len(al.Authors))
		for _, au := range al.Authors {
			rec.Authors = append(rec.Authors, toRawAuthor(au))
		}
	}

	if h := a.PubmedData.History; h != nil {
		for _, d := range h.PubMedPubDates {
			rec.History = append(rec.History, types.PubDate{
				Status: d.PubStatus,
				Year:   strings.TrimSpace(d.Year),
				Month:  strings.TrimSpace(d.Month),
				Day:    strings.TrimSpace(d.Day),
			})
		}
	}
	return rec
}

func toRawAuthor(au Author) types.RawAuthor {
	raw := types.RawAuthor{
		LastName:       strings.TrimSpace(au.LastName),
		ForeName:       strings.TrimSpace(au.ForeName),
		Initials:       strings.TrimSpace(au.Initials),
		CollectiveName: au.CollectiveName.String(),
	}
	if len(au.AffiliationInfo) > 0 {
		raw.Affiliations = make(types.AffiliationList, 0, len(au.AffiliationInfo))
		for _, info := range au.AffiliationInfo {
			raw.Affiliations = append(raw.Affiliations, types.AffiliationInfo{Text: info.Affiliation.String()})
		}
	}
	return raw
}
