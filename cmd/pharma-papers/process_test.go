// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pharma-papers/internal/paper"
	"github.com/pdiddy/pharma-papers/pkg/types"
)

const articleSetXML = `<?xml version="1.0" ?>
<PubmedArticleSet>
	<PubmedArticle>
		<MedlineCitation>
			<PMID Version="1">555</PMID>
			<Article>
				<ArticleTitle>Saved record</ArticleTitle>
				<AuthorList>
					<Author>
						<LastName>Smith</LastName>
						<Initials>J</Initials>
						<AffiliationInfo><Affiliation>Acme Biotech Ltd, Cambridge</Affiliation></AffiliationInfo>
					</Author>
				</AuthorList>
			</Article>
		</MedlineCitation>
	</PubmedArticle>
</PubmedArticleSet>`

func TestReadRecords(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "batch.XML")
	require.NoError(t, os.WriteFile(xmlPath, []byte(articleSetXML), 0o644))

	records, err := readRecords(nil, xmlPath)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "555", records[0].ExternalID)
	assert.Equal(t, "Smith", records[0].Authors[0].LastName)

	jsonPath := filepath.Join(dir, "batch.json")
	f, err := os.Create(jsonPath)
	require.NoError(t, err)
	require.NoError(t, paper.EncodeBatch(f, records))
	require.NoError(t, f.Close())

	again, err := readRecords(nil, jsonPath)
	require.NoError(t, err)
	assert.Equal(t, records, again)

	fromStdin, err := readRecords(strings.NewReader(`[{"externalId": "9", "authorList": []}]`), "-")
	require.NoError(t, err)
	assert.Equal(t, []types.Record{{ExternalID: "9", Authors: []types.RawAuthor{}}}, fromStdin)
}

func TestReadRecordsErrors(t *testing.T) {
	_, err := readRecords(nil, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = readRecords(strings.NewReader(`{"not": "a batch"}`), "-")
	assert.ErrorIs(t, err, paper.ErrInvalidBatch)
}
