// Package engine answers multi-term boolean queries over a set of segments
// by gathering each term's posting list across every segment that has it
// and intersecting the results, grounded on weaviate/engine's QueryEngine
// but simplified to plain AND matching: the posting-list core tracks
// arbitrary offsets, not term frequencies, so there is no document
// frequency to score against.
package engine

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"postinglist/internal/facade"
	"postinglist/internal/segment"
)

// Engine answers queries against a fixed set of segments.
type Engine struct {
	segments []*segment.Segment
	log      *zap.Logger
}

// New builds an Engine over segments. At least one segment is required.
func New(segments []*segment.Segment, log *zap.Logger) (*Engine, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments to query")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{segments: segments, log: log}, nil
}

// Query returns the sorted ids of documents containing every given term.
// An empty terms slice is an error. A term absent from every segment
// fails the whole query, matching the teacher's "term not found" error
// rather than silently returning no results.
func (e *Engine) Query(terms []string) ([]uint32, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("no terms given")
	}

	handles := make([]*facade.Handle, 0, len(terms))
	for _, term := range terms {
		h, err := e.termHandle(term)
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}

	result := facade.Intersect(handles)
	e.log.Debug("query", zap.Strings("terms", terms), zap.Int("matches", len(result)))
	return result, nil
}

// termHandle gathers the posting list for term across every segment that
// has it. When only one segment has the term its Handle is reused
// directly; otherwise the ids are unioned into a fresh Handle.
func (e *Engine) termHandle(term string) (*facade.Handle, error) {
	var found []*facade.Handle
	for _, s := range e.segments {
		if h, ok := s.Terms[term]; ok {
			found = append(found, h)
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("term %q not found in any segment", term)
	}
	if len(found) == 1 {
		return found[0], nil
	}

	merged := facade.NewHandle(nil, nil, nil)
	seen := make(map[uint32]bool)
	for _, h := range found {
		for _, id := range h.IDs() {
			if seen[id] {
				continue
			}
			seen[id] = true
			offsets, _ := h.Offsets(id)
			merged.Upsert(id, offsets)
		}
	}
	return merged, nil
}

// QueryAll reports every distinct document id across all segments,
// regardless of term, sorted ascending. Useful for callers that want a
// universe to subtract a query's results from.
func (e *Engine) QueryAll() []uint32 {
	seen := make(map[uint32]struct{})
	for _, s := range e.segments {
		for _, h := range s.Terms {
			for _, id := range h.IDs() {
				seen[id] = struct{}{}
			}
		}
	}
	out := make([]uint32, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
