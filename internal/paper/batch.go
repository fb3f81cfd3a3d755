// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/pharma-papers/pkg/types"
)

// ErrInvalidBatch reports input that is not a sequence of records.
var ErrInvalidBatch = errors.New("invalid record batch")

// Summary counts record outcomes for one batch.
type Summary struct {
	Records      int
	Kept         int
	NoAuthors    int
	NoCommercial int
}

// Add accumulates o into s.
func (s *Summary) Add(o Summary) {
	s.Records += o.Records
	s.Kept += o.Kept
	s.NoAuthors += o.NoAuthors
	s.NoCommercial += o.NoCommercial
}

// Discarded returns the number of records filtered out.
func (s Summary) Discarded() int {
	return s.NoAuthors + s.NoCommercial
}

// ProcessBatch evaluates records in order and returns the kept results.
func (p *Processor) ProcessBatch(records []types.Record) ([]types.PaperResult, Summary) {
	results := make([]types.PaperResult, 0, len(records))
	var sum Summary
	for _, rec := range records {
		sum.Records++
		res := p.Process(rec)
		switch {
		case res != nil:
			sum.Kept++
			results = append(results, *res)
		case len(rec.Authors) == 0:
			sum.NoAuthors++
		default:
			sum.NoCommercial++
		}
	}
	return results, sum
}

// ProcessBatches evaluates independent batches on up to workers goroutines.
// Results keep batch order. It stops early only if ctx is cancelled.
func (p *Processor) ProcessBatches(ctx context.Context, batches [][]types.Record, workers int) ([]types.PaperResult, Summary, error) {
	if workers <= 0 {
		workers = 1
	}

	type batchOut struct {
		results []types.PaperResult
		summary Summary
	}
	outs := make([]batchOut, len(batches))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, b := range batches {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, Summary{}, err
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, Summary{}, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, b []types.Record) {
			defer wg.Done()
			defer func() { <-sem }()
			res, sum := p.ProcessBatch(b)
			outs[i] = batchOut{results: res, summary: sum}
		}(i, b)
	}
	wg.Wait()

	var all []types.PaperResult
	var total Summary
	for _, o := range outs {
		all = append(all, o.results...)
		total.Add(o.summary)
	}
	return all, total, nil
}

// DecodeBatch reads a JSON array of records. Any other document shape, or
// an array element that is not an object, yields ErrInvalidBatch. Fields
// inside a record never fail the batch; see types.Record.UnmarshalJSON.
func DecodeBatch(r io.Reader) ([]types.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading batch: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array of records", ErrInvalidBatch)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}

	records := make([]types.Record, 0, len(raw))
	for i, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is not a record", ErrInvalidBatch, i)
		}
		var rec types.Record
		if err := json.Unmarshal(elem, &rec); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidBatch, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// EncodeBatch writes records as an indented JSON array that DecodeBatch
// reads back.
func EncodeBatch(w io.Writer, records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}
	return nil
}
