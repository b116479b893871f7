package facade

import (
	"container/heap"

	"postinglist/internal/blocked"
)

// blockView is the shared iteration surface that lets Intersect walk a
// compact or a blocked posting list without caring which one it has. A
// compact list presents itself as a single synthetic block holding every
// id; a blocked list's Blocks are adapted to it by blockedView.
type blockView interface {
	Len() int
	IDAt(i int) uint32
	MaxID() uint32
	Next() blockView
}

// compactView wraps a compact posting's id slice as a single block, so
// Intersect's block-skipping logic degrades gracefully to a plain linear
// scan over short lists.
type compactView struct {
	ids []uint32
}

func (v *compactView) Len() int          { return len(v.ids) }
func (v *compactView) IDAt(i int) uint32 { return v.ids[i] }
func (v *compactView) MaxID() uint32 {
	if len(v.ids) == 0 {
		return 0
	}
	return v.ids[len(v.ids)-1]
}
func (v *compactView) Next() blockView { return nil }

// blockedView adapts *blocked.Block to blockView, translating Next's
// concrete *blocked.Block return into the interface type.
type blockedView struct {
	b *blocked.Block
}

func (v *blockedView) Len() int          { return v.b.Len() }
func (v *blockedView) IDAt(i int) uint32 { return v.b.IDAt(i) }
func (v *blockedView) MaxID() uint32     { return v.b.MaxID() }
func (v *blockedView) Next() blockView {
	next := v.b.Next()
	if next == nil {
		return nil
	}
	return &blockedView{b: next}
}

// view returns the handle's contents as a blockView chain, regardless of
// which representation currently backs it.
func (h *Handle) view() blockView {
	if h.rep == RepBlocked {
		root := h.blocked.Root()
		if root == nil {
			return nil
		}
		return &blockedView{b: root}
	}
	return &compactView{ids: h.compact.IDs()}
}

// iterator walks a blockView chain id by id, skipping whole blocks whose
// maximum id falls below a requested target rather than decoding them.
type iterator struct {
	blk blockView
	idx int
}

func newIterator(v blockView) *iterator {
	it := &iterator{blk: v}
	it.normalize()
	return it
}

// normalize advances past any exhausted (or empty) block so blk is either
// nil or positioned at a valid idx.
func (it *iterator) normalize() {
	for it.blk != nil && it.idx >= it.blk.Len() {
		it.blk = it.blk.Next()
		it.idx = 0
	}
}

func (it *iterator) currentID() (uint32, bool) {
	if it.blk == nil {
		return 0, false
	}
	return it.blk.IDAt(it.idx), true
}

// advanceOne moves to the next id in the chain, reporting whether one
// exists.
func (it *iterator) advanceOne() bool {
	it.idx++
	it.normalize()
	return it.blk != nil
}

// advanceToAtLeast skips whole blocks whose last id is below target without
// decoding them, then binary searches within the first candidate block for
// the first id >= target.
func (it *iterator) advanceToAtLeast(target uint32) bool {
	for it.blk != nil && it.blk.MaxID() < target {
		it.blk = it.blk.Next()
		it.idx = 0
	}
	if it.blk == nil {
		return false
	}

	lo, hi := it.idx, it.blk.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		if it.blk.IDAt(mid) < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	it.idx = lo
	it.normalize()
	return it.blk != nil
}

// mergeItem pairs an iterator with its current id, for ordering in the
// merge heap.
type mergeItem struct {
	it *iterator
	id uint32
}

// mergeHeap is a min-heap over mergeItems by current id, in the same spirit
// as the teacher's block-processing min-heap, repurposed here to drive a
// k-way sorted intersection instead of a scored multi-term union.
type mergeHeap []*mergeItem

func (h mergeHeap) Len() int            { return len(h) }
func (h mergeHeap) Less(i, j int) bool  { return h[i].id < h[j].id }
func (h mergeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x interface{}) { *h = append(*h, x.(*mergeItem)) }
func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Intersect returns the ascending sorted set of ids present in every given
// handle. Block-skipping happens inside each iterator's advanceToAtLeast:
// lists that disagree on the running pivot jump straight past whole blocks
// that can't possibly contain it.
func Intersect(handles []*Handle) []uint32 {
	if len(handles) == 0 {
		return nil
	}

	k := len(handles)
	h := &mergeHeap{}
	heap.Init(h)
	for _, hd := range handles {
		it := newIterator(hd.view())
		id, ok := it.currentID()
		if !ok {
			return nil
		}
		heap.Push(h, &mergeItem{it: it, id: id})
	}

	var out []uint32
	for h.Len() == k {
		minID := (*h)[0].id

		var matched []*mergeItem
		for h.Len() > 0 && (*h)[0].id == minID {
			matched = append(matched, heap.Pop(h).(*mergeItem))
		}

		if len(matched) == k {
			out = append(out, minID)
			for _, m := range matched {
				if !m.it.advanceOne() {
					return out
				}
				id, _ := m.it.currentID()
				heap.Push(h, &mergeItem{it: m.it, id: id})
			}
			continue
		}

		for _, m := range matched {
			if !m.it.advanceToAtLeast(minID + 1) {
				return out
			}
			id, _ := m.it.currentID()
			heap.Push(h, &mergeItem{it: m.it, id: id})
		}
	}
	return out
}
