// Package facade hides the choice between the compact and blocked posting
// representations behind a single Handle, promoting a list from compact to
// blocked in place once it outgrows the compact threshold, and implements
// the multi-way intersection that treats both representations uniformly
// through a shared block-view abstraction.
package facade

import (
	"postinglist/internal/blocked"
	"postinglist/internal/compact"
)

// Representation identifies which concrete posting list a Handle currently
// wraps.
type Representation int

const (
	RepCompact Representation = iota
	RepBlocked
)

// DefaultCompactThreshold is the word count past which Upsert promotes a
// compact list to blocked, matching the original test suite's ~6 ids of 8
// offsets each.
const DefaultCompactThreshold = 60

// Handle is a tagged reference to either a compact or a blocked posting
// list. Callers never see which one they're holding; Upsert silently
// promotes compact to blocked in place the first time a mutation would push
// the compact buffer past its threshold. Promotion is one-way.
type Handle struct {
	rep              Representation
	compact          *compact.Posting
	blocked          *blocked.Posting
	compactThreshold int
	blockSize        int
}

// NewHandle builds a Handle from parallel id/offsetIndex/offsets slices,
// using the default compact threshold and block size.
func NewHandle(ids []uint32, offsetIndex []int, offsets []uint32) *Handle {
	return NewHandleWithOptions(ids, offsetIndex, offsets, DefaultCompactThreshold, blocked.DefaultBlockSize)
}

// NewHandleWithOptions is NewHandle with an explicit compact threshold and
// blocked-list block size, for callers that want to tune either (the
// segment layer does, passing its own configured threshold and block size).
func NewHandleWithOptions(ids []uint32, offsetIndex []int, offsets []uint32, compactThreshold, blockSize int) *Handle {
	h := &Handle{
		rep:              RepCompact,
		compactThreshold: compactThreshold,
		blockSize:        blockSize,
		compact:          compact.NewPosting(ids, offsetIndex, offsets),
	}
	if h.compact.Length() > compactThreshold {
		h.promote()
	}
	return h
}

// Representation reports which concrete posting list the handle currently
// wraps.
func (h *Handle) Representation() Representation { return h.rep }

// promote replays every id currently held in the compact buffer into a
// fresh blocked posting list and discards the compact one. Promotion never
// runs in reverse.
func (h *Handle) promote() {
	if h.rep == RepBlocked {
		return
	}
	bp := blocked.New(h.blockSize)
	for _, id := range h.compact.IDs() {
		offs, _ := h.compact.Offsets(id)
		bp.Upsert(id, offs)
	}
	h.blocked = bp
	h.compact = nil
	h.rep = RepBlocked
}

// Upsert inserts id with the given offsets, or updates id's offsets if
// already present, promoting the handle's representation first if the
// mutation would push a compact buffer past its configured threshold.
func (h *Handle) Upsert(id uint32, offsets []uint32) {
	if h.rep == RepBlocked {
		h.blocked.Upsert(id, offsets)
		return
	}

	delta := h.compact.Delta(id, offsets)
	projected := h.compact.Length() + delta
	if projected > h.compactThreshold {
		h.promote()
		h.blocked.Upsert(id, offsets)
		return
	}
	if projected > h.compact.Capacity() {
		h.compact.Reserve(max(projected, h.compact.Length()+h.compact.Length()/2))
	}
	h.compact.Upsert(id, offsets)
}

// Erase removes id, if present. It is a no-op when id is absent.
func (h *Handle) Erase(id uint32) {
	if h.rep == RepBlocked {
		h.blocked.Erase(id)
		return
	}
	if h.compact.Erase(id) {
		h.compact.TightenCapacity(h.compact.Length() + 2)
	}
}

// Contains reports whether id is present.
func (h *Handle) Contains(id uint32) bool {
	if h.rep == RepBlocked {
		return h.blocked.Contains(id)
	}
	return h.compact.Contains(id)
}

// NumIDs reports the number of ids stored.
func (h *Handle) NumIDs() int {
	if h.rep == RepBlocked {
		return h.blocked.NumIDs()
	}
	return h.compact.NumIDs()
}

// Offsets returns the offsets stored for id, and whether id is present.
func (h *Handle) Offsets(id uint32) ([]uint32, bool) {
	if h.rep == RepBlocked {
		return h.blocked.Offsets(id)
	}
	return h.compact.Offsets(id)
}

// IDs returns every id in the handle, in ascending order.
func (h *Handle) IDs() []uint32 {
	if h.rep == RepBlocked {
		out := make([]uint32, 0, h.blocked.NumIDs())
		for b := h.blocked.Root(); b != nil; b = b.Next() {
			out = append(out, b.IDs()...)
		}
		return out
	}
	return h.compact.IDs()
}
