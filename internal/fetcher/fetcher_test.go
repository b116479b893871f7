package fetcher

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
	"segments": [
		[
			{"term": "fox", "doc_id": 1, "offsets": [4, 9]},
			{"term": "dog", "doc_id": 1, "offsets": [1]}
		],
		[
			{"term": "fox", "doc_id": 2, "offsets": [0]}
		]
	]
}`

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	data, err := Fetch(path)
	require.NoError(t, err)
	assert.Equal(t, sampleJSON, string(data))
}

func TestFetchLocalFileMissing(t *testing.T) {
	_, err := Fetch(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFetchOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleJSON))
	}))
	defer server.Close()

	data, err := Fetch(server.URL)
	require.NoError(t, err)
	assert.Equal(t, sampleJSON, string(data))
}

func TestFetchOverHTTPNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Fetch(server.URL)
	assert.Error(t, err)
}

func TestParseSegments(t *testing.T) {
	segments, err := ParseSegments([]byte(sampleJSON))
	require.NoError(t, err)
	require.Len(t, segments, 2)

	require.Len(t, segments[0], 2)
	assert.Equal(t, Posting{Term: "fox", DocID: 1, Offsets: []uint32{4, 9}}, segments[0][0])

	require.Len(t, segments[1], 1)
	assert.Equal(t, uint32(2), segments[1][0].DocID)
}

func TestParseSegmentsRejectsMalformedJSON(t *testing.T) {
	_, err := ParseSegments([]byte("not json"))
	assert.Error(t, err)
}
