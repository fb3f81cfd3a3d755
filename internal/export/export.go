// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export flattens PaperResults into one row per non-academic author
// and writes the rows as CSV, JSON, YAML, or a console table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pharma-papers/pkg/types"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// Header is the fixed CSV column order.
var Header = []string{
	"PubmedID",
	"Title",
	"Publication Date",
	"Non-academic Author(s)",
	"Company Affiliation(s)",
	"Corresponding Author Email",
}

// Flatten emits one row per non-academic author, repeating the paper
// fields on every row. A result with no authors still yields one row with
// empty author and company fields.
func Flatten(results []types.PaperResult) []types.ExportRow {
	rows := make([]types.ExportRow, 0, len(results))
	for _, r := range results {
		base := types.ExportRow{
			ExternalID:         r.ExternalID,
			Title:              r.Title,
			PublicationDate:    r.PublicationDate,
			CorrespondingEmail: r.Email(),
		}
		if len(r.NonAcademicAuthors) == 0 {
			rows = append(rows, base)
			continue
		}
		for i, author := range r.NonAcademicAuthors {
			row := base
			row.Author = author
			if i < len(r.CompanyAffiliations) {
				row.Company = r.CompanyAffiliations[i]
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// ParseFormat validates a format name; "" means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatYAML, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use csv, json, yaml, or table", s)
	}
}

// Write encodes rows to w in the given format.
func Write(w io.Writer, format Format, rows []types.ExportRow) error {
	switch format {
	case FormatCSV, "":
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatYAML:
		return WriteYAML(w, rows)
	case FormatTable:
		WriteTable(w, rows)
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []types.ExportRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{r.ExternalID, r.Title, r.PublicationDate, r.Author, r.Company, r.CorrespondingEmail}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []types.ExportRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteYAML writes rows as a YAML sequence.
func WriteYAML(w io.Writer, rows []types.ExportRow) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// WriteTable writes rows as a human-readable table.
func WriteTable(w io.Writer, rows []types.ExportRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No papers with non-academic authors found.")
		return
	}

	fmt.Fprintf(w, "%-10s  %-40s  %-10s  %-20s  %-25s  %s\n",
		"PMID", "Title", "Date", "Author", "Company", "Email")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for _, r := range rows {
		fmt.Fprintf(w, "%-10s  %-40s  %-10s  %-20s  %-25s  %s\n",
			r.ExternalID, truncate(r.Title, 40), r.PublicationDate,
			truncate(r.Author, 20), truncate(r.Company, 25), r.CorrespondingEmail)
	}

	fmt.Fprintf(w, "\n%d rows\n", len(rows))
}

// truncate shortens s to at most width runes, ending in "..." when cut.
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}
