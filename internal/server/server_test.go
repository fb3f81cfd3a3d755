// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pharma-papers/internal/affiliation"
	"github.com/pdiddy/pharma-papers/internal/export"
	"github.com/pdiddy/pharma-papers/internal/observability"
	"github.com/pdiddy/pharma-papers/internal/paper"
	"github.com/pdiddy/pharma-papers/internal/store"
	"github.com/pdiddy/pharma-papers/pkg/types"
)

const batchJSON = `[
  {
    "externalId": "100",
    "title": "Industry Trial",
    "authorList": [
      {"lastName": "Smith", "foreName": "John", "affiliationInfo": "Acme Pharmaceuticals Inc, Boston. jsmith@acme.com"},
      {"lastName": "Doe", "initials": "A", "affiliationInfo": [{"affiliationText": "Harvard University"}]}
    ],
    "publicationHistory": [{"status": "pubmed", "year": "2024", "month": "3", "day": "9"}]
  },
  {
    "externalId": "200",
    "title": "Academic Only",
    "authorList": [{"lastName": "Roe", "affiliationInfo": "Stanford University"}]
  }
]`

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "papers.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	metrics := observability.NewMetrics()
	proc := paper.NewProcessor(affiliation.DefaultKeywords(), paper.WithObserver(metrics))
	return New(types.ServeConfig{Addr: "127.0.0.1:0"}, proc, st, metrics, zerolog.Nop()), st
}

func seed(t *testing.T, s *Server, st *store.Store) {
	t.Helper()
	records, err := paper.DecodeBatch(strings.NewReader(batchJSON))
	require.NoError(t, err)
	results, _ := s.processor.ProcessBatch(records)
	require.NoError(t, st.Save(context.Background(), "", results))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestProcessJSON(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/v1/process", batchJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var results []types.PaperResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "100", results[0].ExternalID)
	assert.Equal(t, "2024-3-9", results[0].PublicationDate)
	assert.Equal(t, []string{"Smith John"}, results[0].NonAcademicAuthors)
	assert.Equal(t, "jsmith@acme.com", results[0].Email())
}

func TestProcessEmptyBatch(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/v1/process", "[]")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestProcessCSV(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/v1/process?format=csv", batchJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, export.Header, rows[0])
	assert.Equal(t, "100", rows[1][0])
	assert.Equal(t, "Smith John", rows[1][3])
}

func TestProcessInvalid(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"object not array", "/v1/process", `{"externalId":"1"}`},
		{"null element", "/v1/process", `[null]`},
		{"not json", "/v1/process", `hello`},
		{"unsupported format", "/v1/process?format=yaml", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			rec := do(t, s.Handler(), http.MethodPost, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestListAndGetPapers(t *testing.T) {
	s, st := newTestServer(t)
	seed(t, s, st)

	rec := do(t, s.Handler(), http.MethodGet, "/v1/papers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []types.PaperResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = do(t, s.Handler(), http.MethodGet, "/v1/papers?company=nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, s.Handler(), http.MethodGet, "/v1/papers/100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got types.PaperResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Industry Trial", got.Title)

	rec = do(t, s.Handler(), http.MethodGet, "/v1/papers/200", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s.Handler(), http.MethodGet, "/v1/papers?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	s, st := newTestServer(t)
	seed(t, s, st)

	rec := do(t, s.Handler(), http.MethodGet, "/v1/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme Pharmaceuticals", rows[1][4])
	assert.Equal(t, "jsmith@acme.com", rows[1][5])
}

func TestStoreRoutesDisabledWithoutStore(t *testing.T) {
	proc := paper.NewProcessor(affiliation.DefaultKeywords())
	s := New(types.ServeConfig{}, proc, nil, nil, zerolog.Nop())

	rec := do(t, s.Handler(), http.MethodGet, "/v1/papers", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s.Handler(), http.MethodPost, "/v1/process", "[]")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s.Handler(), http.MethodPost, "/v1/process", batchJSON)

	rec := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `pharma_papers_records_total{outcome="kept"} 1`)
	assert.Contains(t, body, `pharma_papers_records_total{outcome="no_commercial"} 1`)
	assert.Contains(t, body, `pharma_papers_http_requests_total{route="/v1/process",status="200"} 1`)
}
