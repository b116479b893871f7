// Package compact implements the short-list posting representation: a single
// flat buffer of 32-bit words storing interleaved (offsetCount, offsets…, id)
// records in ascending id order.
//
// The layout favors short postings — the long tail of rare terms — where
// per-id allocation and pointer chasing would dominate the cost of the list
// itself. Every mutation is O(length) in the number of buffered words;
// acceptable because callers are expected to promote to the blocked
// representation (see package blocked) once a list grows past a configured
// threshold.
//
// Posting deliberately does not grow its own buffer: Delta reports how many
// words a pending Upsert needs beyond the current length, and Reserve grows
// the buffer on request. This mirrors the split between the core mutation
// and the caller-owned growth policy described for the facade layer, and
// keeps Upsert/Erase testable against exact buffer contents without a
// growth strategy interfering.
package compact

// recordOverhead is the number of words a record spends on its offset count
// and its id, exclusive of the offsets themselves.
const recordOverhead = 2

// Posting is the flat compact posting-list representation.
type Posting struct {
	buf    []uint32
	length int
	numIDs int
}

// NewPosting builds a compact posting list from three parallel arrays: the
// ascending ids, the per-id starting offsets into the offsets array
// (offsetIndex[i] is where ids[i]'s offsets begin), and the concatenated
// offsets themselves. The resulting buffer is sized exactly to the built
// length; no slack capacity is reserved.
func NewPosting(ids []uint32, offsetIndex []int, offsets []uint32) *Posting {
	p := &Posting{}
	if len(ids) == 0 {
		return p
	}

	length := 0
	for i := range ids {
		length += recordOverhead + offsetCount(i, offsetIndex, offsets)
	}

	p.buf = make([]uint32, length)
	p.numIDs = len(ids)

	pos := 0
	for i, id := range ids {
		n := offsetCount(i, offsetIndex, offsets)
		start := offsetIndex[i]
		pos = p.writeRecord(pos, id, offsets[start:start+n])
	}
	p.length = pos
	return p
}

func offsetCount(i int, offsetIndex []int, offsets []uint32) int {
	if i+1 < len(offsetIndex) {
		return offsetIndex[i+1] - offsetIndex[i]
	}
	return len(offsets) - offsetIndex[i]
}

// Length reports the number of words currently in use.
func (p *Posting) Length() int { return p.length }

// Capacity reports the number of words currently allocated.
func (p *Posting) Capacity() int { return len(p.buf) }

// NumIDs reports the number of ids stored.
func (p *Posting) NumIDs() int { return p.numIDs }

// LastID returns the id of the final record, or 0 when the list is empty.
func (p *Posting) LastID() uint32 {
	if p.length == 0 {
		return 0
	}
	i, last := 0, 0
	for i < p.length {
		last = i
		i += int(p.buf[i]) + recordOverhead
	}
	n := int(p.buf[last])
	return p.buf[last+1+n]
}

// Contains reports whether id is present.
func (p *Posting) Contains(id uint32) bool {
	_, found, _ := p.locate(id)
	return found
}

// Offsets returns the offsets stored for id, and whether id is present.
func (p *Posting) Offsets(id uint32) ([]uint32, bool) {
	pos, found, width := p.locate(id)
	if !found {
		return nil, false
	}
	n := width - recordOverhead
	out := make([]uint32, n)
	copy(out, p.buf[pos+1:pos+1+n])
	return out, true
}

// IDs returns every id in ascending order.
func (p *Posting) IDs() []uint32 {
	ids := make([]uint32, 0, p.numIDs)
	i := 0
	for i < p.length {
		n := int(p.buf[i])
		ids = append(ids, p.buf[i+1+n])
		i += n + recordOverhead
	}
	return ids
}

// locate scans for id and returns the word offset of its record, whether it
// was found, and (if found) the record's total width in words. When id is
// absent, the returned offset is the position a new record for id would be
// inserted at (p.length if id exceeds every stored id).
func (p *Posting) locate(id uint32) (pos int, found bool, width int) {
	i := 0
	for i < p.length {
		n := int(p.buf[i])
		recID := p.buf[i+1+n]
		if recID == id {
			return i, true, n + recordOverhead
		}
		if recID > id {
			return i, false, 0
		}
		i += n + recordOverhead
	}
	return p.length, false, 0
}

// Delta reports the change in word-length that Upsert(id, newOffsets) would
// require: zero or negative for an update with equal or fewer offsets,
// positive for an update with more offsets, and the full new record width
// when id is new, since an insert always grows the used length.
func (p *Posting) Delta(id uint32, newOffsets []uint32) int {
	_, found, oldWidth := p.locate(id)
	newWidth := len(newOffsets) + recordOverhead
	if !found {
		return newWidth
	}
	return newWidth - oldWidth
}

// Reserve grows the backing buffer to at least capacity words. It is a
// no-op if the buffer is already large enough.
func (p *Posting) Reserve(capacity int) {
	if capacity <= len(p.buf) {
		return
	}
	buf := make([]uint32, capacity)
	copy(buf, p.buf[:p.length])
	p.buf = buf
}

// Upsert inserts a new record for id, or updates id's offsets if already
// present. Capacity must already accommodate the growth reported by Delta;
// callers that need more room must call Reserve first.
func (p *Posting) Upsert(id uint32, newOffsets []uint32) {
	pos, found, oldWidth := p.locate(id)
	newWidth := len(newOffsets) + recordOverhead

	if !found {
		copy(p.buf[pos+newWidth:p.length+newWidth], p.buf[pos:p.length])
		p.length += newWidth
		p.writeRecord(pos, id, newOffsets)
		p.numIDs++
		return
	}

	oldEnd := pos + oldWidth
	if newWidth <= oldWidth {
		shrink := oldWidth - newWidth
		copy(p.buf[pos+newWidth:p.length-shrink], p.buf[oldEnd:p.length])
		p.length -= shrink
	} else {
		grow := newWidth - oldWidth
		copy(p.buf[oldEnd+grow:p.length+grow], p.buf[oldEnd:p.length])
		p.length += grow
	}
	p.writeRecord(pos, id, newOffsets)
}

// Erase removes id's record, if present, and reports whether it was found.
// Capacity is left untouched; callers wishing to tighten it should call
// TightenCapacity themselves (the facade does this, see internal/facade).
func (p *Posting) Erase(id uint32) bool {
	pos, found, width := p.locate(id)
	if !found {
		return false
	}
	copy(p.buf[pos:p.length-width], p.buf[pos+width:p.length])
	p.length -= width
	p.numIDs--
	return true
}

// TightenCapacity reallocates the backing buffer to exactly capacity words,
// shrinking or growing as needed. Unlike Reserve, which only ever grows, this
// is for callers (the facade, after a successful Erase) that want to give
// back capacity freed by deletion rather than let it linger.
func (p *Posting) TightenCapacity(capacity int) {
	if capacity == len(p.buf) {
		return
	}
	buf := make([]uint32, capacity)
	copy(buf, p.buf[:min(p.length, capacity)])
	p.buf = buf
}

// writeRecord writes a full record at pos and returns the word offset just
// past it. The caller must ensure p.buf has room for the record.
func (p *Posting) writeRecord(pos int, id uint32, offsets []uint32) int {
	p.buf[pos] = uint32(len(offsets))
	copy(p.buf[pos+1:], offsets)
	p.buf[pos+1+len(offsets)] = id
	return pos + 1 + len(offsets) + 1
}
