// Package fetcher loads posting data from a URL or local JSON file, in the
// same shape as weaviate/fetcher's corpus loader, adapted to emit the
// (term, doc id, offsets) triples the posting-list core indexes rather
// than a term-frequency float.
package fetcher

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Posting is a single entry in the source JSON: one term's occurrence in
// one document, at a set of positions within it.
type Posting struct {
	Term    string   `json:"term"`
	DocID   uint32   `json:"doc_id"`
	Offsets []uint32 `json:"offsets"`
}

// Root is the top-level structure of the JSON file: one slice of postings
// per segment, so a single corpus file can seed several segments at once.
type Root struct {
	Segments [][]Posting `json:"segments"`
}

// Fetch retrieves JSON data from either a URL or a local file path,
// dispatching on the "http://"/"https://" prefix.
func Fetch(path string) ([]byte, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		response, err := http.Get(path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch json: %w", err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("non-ok HTTP response: %s", response.Status)
		}

		data, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read local file: %w", err)
	}
	return data, nil
}

// ParseSegments parses fetched JSON data into its per-segment posting
// slices.
func ParseSegments(data []byte) ([][]Posting, error) {
	var root Root
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse json: %w", err)
	}
	return root.Segments, nil
}
