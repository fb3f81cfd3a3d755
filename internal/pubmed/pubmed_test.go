// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pharma-papers/internal/httputil"
	"github.com/pdiddy/pharma-papers/pkg/types"
)

const esearchXML = `<?xml version="1.0" encoding="UTF-8" ?>
<!DOCTYPE eSearchResult PUBLIC "-//NLM//DTD esearch 20060628//EN" "https://eutils.ncbi.nlm.nih.gov/eutils/dtd/20060628/esearch.dtd">
<eSearchResult>
	<Count>42</Count>
	<RetMax>2</RetMax>
	<RetStart>0</RetStart>
	<IdList>
		<Id>38000001</Id>
		<Id>38000002</Id>
	</IdList>
</eSearchResult>`

const esearchPhraseNotFoundXML = `<?xml version="1.0" encoding="UTF-8" ?>
<eSearchResult>
	<Count>0</Count>
	<RetMax>0</RetMax>
	<RetStart>0</RetStart>
	<IdList></IdList>
	<ErrorList><PhraseNotFound>zzqqxx</PhraseNotFound></ErrorList>
</eSearchResult>`

const efetchXML = `<?xml version="1.0" ?>
<!DOCTYPE PubmedArticleSet PUBLIC "-//NLM//DTD PubMedArticle, 1st January 2025//EN" "https://dtd.nlm.nih.gov/ncbi/pubmed/out/pubmed_250101.dtd">
<PubmedArticleSet>
	<PubmedArticle>
		<MedlineCitation Status="MEDLINE" Owner="NLM">
			<PMID Version="1">38000001</PMID>
			<Article PubModel="Print">
				<ArticleTitle>Effect of <i>drug X</i> on tumours.</ArticleTitle>
				<AuthorList CompleteYN="Y">
					<Author ValidYN="Y">
						<LastName>Smith</LastName>
						<ForeName>John</ForeName>
						<Initials>J</Initials>
						<AffiliationInfo>
							<Affiliation>Acme Pharmaceuticals Inc, Boston, MA, USA. john.smith@acme.com.</Affiliation>
						</AffiliationInfo>
						<AffiliationInfo>
							<Affiliation>Harvard Medical School, Boston.</Affiliation>
						</AffiliationInfo>
					</Author>
					<Author ValidYN="Y">
						<LastName>Doe</LastName>
						<Initials>A</Initials>
					</Author>
					<Author ValidYN="Y">
						<CollectiveName>The <b>Example</b> Consortium</CollectiveName>
					</Author>
				</AuthorList>
			</Article>
		</MedlineCitation>
		<PubmedData>
			<History>
				<PubMedPubDate PubStatus="received"><Year>2023</Year><Month>1</Month><Day>2</Day></PubMedPubDate>
				<PubMedPubDate PubStatus="pubmed"><Year>2023</Year><Month>5</Month><Day>17</Day><Hour>6</Hour></PubMedPubDate>
			</History>
		</PubmedData>
	</PubmedArticle>
	<PubmedArticle>
		<MedlineCitation>
			<PMID Version="1">38000002</PMID>
			<Article>
				<ArticleTitle>No authors here</ArticleTitle>
			</Article>
		</MedlineCitation>
		<PubmedData></PubmedData>
	</PubmedArticle>
</PubmedArticleSet>`

func testConfig(baseURL string) types.PubMedConfig {
	return types.PubMedConfig{
		BaseURL:   baseURL,
		RateLimit: 1000,
		Email:     "dev@example.com",
	}
}

func TestParseArticleSet(t *testing.T) {
	records, err := ParseArticleSet(strings.NewReader(efetchXML))
	require.NoError(t, err)
	require.Len(t, records, 2)

	rec := records[0]
	assert.Equal(t, "38000001", rec.ExternalID)
	assert.Equal(t, "Effect of drug X on tumours.", rec.Title)
	require.Len(t, rec.Authors, 3)

	smith := rec.Authors[0]
	assert.Equal(t, "Smith", smith.LastName)
	assert.Equal(t, "John", smith.ForeName)
	require.Len(t, smith.Affiliations, 2)
	assert.Equal(t, "Acme Pharmaceuticals Inc, Boston, MA, USA. john.smith@acme.com.", smith.Affiliations[0].Text)

	assert.Nil(t, rec.Authors[1].Affiliations)
	assert.Equal(t, "The Example Consortium", rec.Authors[2].CollectiveName)

	require.Len(t, rec.History, 2)
	assert.Equal(t, types.PubDate{Status: "pubmed", Year: "2023", Month: "5", Day: "17"}, rec.History[1])

	assert.Equal(t, "38000002", records[1].ExternalID)
	assert.Nil(t, records[1].Authors)
	assert.Nil(t, records[1].History)
}

func TestParseArticleSetInvalid(t *testing.T) {
	_, err := ParseArticleSet(strings.NewReader("<notpubmed>"))
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	var gotQuery atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/esearch.fcgi", r.URL.Path)
		gotQuery.Store(r.URL.Query())
		w.Write([]byte(esearchXML))
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	res, err := c.Search(context.Background(), "cancer immunotherapy", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"38000001", "38000002"}, res.IDs)
	assert.Equal(t, 42, res.Count)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, []string{"cancer immunotherapy"}, q["term"])
	assert.Equal(t, []string{"2"}, q["retmax"])
	assert.Equal(t, []string{"pubmed"}, q["db"])
	assert.Equal(t, []string{toolName}, q["tool"])
	assert.Equal(t, []string{"dev@example.com"}, q["email"])
	assert.NotContains(t, q, "api_key")
}

func TestSearchRetryWaitsOnLimiter(t *testing.T) {
	saved := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = saved }()

	var mu sync.Mutex
	var stamps []time.Time
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		n := len(stamps)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(esearchXML))
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.RateLimit = 10
	_, err := New(cfg).Search(context.Background(), "x", 0)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, stamps, 2)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 80*time.Millisecond)
}

func TestSearchPhraseNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(esearchPhraseNotFoundXML))
	}))
	defer ts.Close()

	res, err := New(testConfig(ts.URL)).Search(context.Background(), "zzqqxx", 0)
	require.NoError(t, err)
	assert.Empty(t, res.IDs)
}

func TestSearchEmptyQuery(t *testing.T) {
	_, err := New(testConfig("http://unused")).Search(context.Background(), "  ", 0)
	assert.Error(t, err)
}

func TestSearchAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad request"))
	}))
	defer ts.Close()

	_, err := New(testConfig(ts.URL)).Search(context.Background(), "x", 0)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "esearch.fcgi", apiErr.Endpoint)
}

func TestFetchBatches(t *testing.T) {
	var calls int32
	var mu sync.Mutex
	var ids []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/efetch.fcgi", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		atomic.AddInt32(&calls, 1)
		mu.Lock()
		ids = append(ids, r.URL.Query().Get("id"))
		mu.Unlock()
		w.Write([]byte(efetchXML))
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.FetchBatchSize = 2
	cfg.APIKey = "secret"
	c := New(cfg)

	batches, err := c.FetchBatches(context.Background(), []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Len(t, batches, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	mu.Lock()
	assert.Equal(t, []string{"1,2", "3"}, ids)
	mu.Unlock()

	records, err := c.Fetch(context.Background(), []string{"1"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFetchNoIDs(t *testing.T) {
	batches, err := New(testConfig("http://unused")).FetchBatches(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestFetchServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := New(testConfig(ts.URL)).Fetch(context.Background(), []string{"1"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestApplyDefaults(t *testing.T) {
	cfg := applyDefaults(types.PubMedConfig{})
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimit)
	assert.Equal(t, DefaultMaxResults, cfg.MaxResults)
	assert.Equal(t, DefaultFetchBatchSize, cfg.FetchBatchSize)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)

	keyed := applyDefaults(types.PubMedConfig{APIKey: "k", BaseURL: "http://x/", MaxResults: 999999})
	assert.Equal(t, keyedRateLimit, keyed.RateLimit)
	assert.Equal(t, "http://x", keyed.BaseURL)
	assert.Equal(t, MaxResultsLimit, keyed.MaxResults)
}
