// Package blocked implements the long-list posting representation: a
// singly-linked list of fixed-capacity blocks, each holding a parallel set
// of ids, offsets, and an offset-index, with split-on-overflow and
// merge-or-redistribute-on-underflow rebalancing.
//
// Every non-last block is kept at or above the underflow floor (floor(M/2)
// ids, where M is the configured maxBlockElements); the last block is exempt
// and may hold anywhere from 0 to M ids. Random lookup is served by an eagerly maintained
// id-to-block map rather than by walking the list.
package blocked

import "fmt"

// Block is one node of the posting list: a bounded run of ascending ids,
// their concatenated offsets, and the offset-index locating each id's
// offsets within that concatenation.
type Block struct {
	ids         []uint32
	offsets     []uint32
	offsetIndex []int
	next        *Block
}

// Len reports the number of ids in the block.
func (b *Block) Len() int { return len(b.ids) }

// MaxID returns the block's largest id, or 0 if the block is empty.
func (b *Block) MaxID() uint32 {
	if len(b.ids) == 0 {
		return 0
	}
	return b.ids[len(b.ids)-1]
}

// IDAt returns the id at block-local index i.
func (b *Block) IDAt(i int) uint32 { return b.ids[i] }

// IDs returns a copy of the block's ids in ascending order.
func (b *Block) IDs() []uint32 {
	out := make([]uint32, len(b.ids))
	copy(out, b.ids)
	return out
}

// Offsets returns the offsets for the id at block-local index i.
func (b *Block) Offsets(i int) []uint32 {
	start := b.offsetIndex[i]
	end := len(b.offsets)
	if i+1 < len(b.offsetIndex) {
		end = b.offsetIndex[i+1]
	}
	return b.offsets[start:end]
}

// Next returns the next block in the list, or nil at the tail.
func (b *Block) Next() *Block { return b.next }

// indexOf returns the position of id within the block and whether it is
// present; when absent, the position is where id would be inserted.
func (b *Block) indexOf(id uint32) (pos int, found bool) {
	lo, hi := 0, len(b.ids)
	for lo < hi {
		mid := (lo + hi) / 2
		if b.ids[mid] < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(b.ids) && b.ids[lo] == id {
		return lo, true
	}
	return lo, false
}

func (b *Block) offsetCount(i int) int {
	end := len(b.offsets)
	if i+1 < len(b.offsetIndex) {
		end = b.offsetIndex[i+1]
	}
	return end - b.offsetIndex[i]
}

// insertAt inserts id and its offsets at block-local position pos.
func (b *Block) insertAt(pos int, id uint32, offsets []uint32) {
	start := len(b.offsets)
	if pos < len(b.ids) {
		start = b.offsetIndex[pos]
	}

	b.ids = append(b.ids, 0)
	copy(b.ids[pos+1:], b.ids[pos:len(b.ids)-1])
	b.ids[pos] = id

	b.offsets = append(b.offsets, make([]uint32, len(offsets))...)
	copy(b.offsets[start+len(offsets):], b.offsets[start:len(b.offsets)-len(offsets)])
	copy(b.offsets[start:], offsets)

	b.offsetIndex = append(b.offsetIndex, 0)
	copy(b.offsetIndex[pos+1:], b.offsetIndex[pos:len(b.offsetIndex)-1])
	b.offsetIndex[pos] = start
	for i := pos + 1; i < len(b.offsetIndex); i++ {
		b.offsetIndex[i] += len(offsets)
	}
}

// updateAt replaces the offsets for the id at block-local position pos.
func (b *Block) updateAt(pos int, offsets []uint32) {
	start := b.offsetIndex[pos]
	oldCount := b.offsetCount(pos)
	delta := len(offsets) - oldCount

	if delta != 0 {
		tail := append([]uint32(nil), b.offsets[start+oldCount:]...)
		b.offsets = append(b.offsets[:start], append(append([]uint32(nil), offsets...), tail...)...)
	} else {
		copy(b.offsets[start:start+len(offsets)], offsets)
	}

	for i := pos + 1; i < len(b.offsetIndex); i++ {
		b.offsetIndex[i] += delta
	}
}

// removeAt deletes the id at block-local position pos, returning the number
// of offset words removed.
func (b *Block) removeAt(pos int) int {
	n := b.offsetCount(pos)
	start := b.offsetIndex[pos]

	b.offsets = append(b.offsets[:start], b.offsets[start+n:]...)
	b.ids = append(b.ids[:pos], b.ids[pos+1:]...)
	b.offsetIndex = append(b.offsetIndex[:pos], b.offsetIndex[pos+1:]...)
	for i := pos; i < len(b.offsetIndex); i++ {
		b.offsetIndex[i] -= n
	}
	return n
}

// Posting is the blocked posting-list representation: a singly-linked list
// of blocks bounded by maxBlockElements, with an eager id-to-block index.
type Posting struct {
	m         int
	root      *Block
	idToBlock map[uint32]*Block
}

// DefaultBlockSize is the block capacity used when a facade promotes a
// compact posting list without an explicit override (see internal/facade).
const DefaultBlockSize = 1024

// New creates an empty blocked posting list with the given per-block
// capacity. m must be at least 2; the constructor panics otherwise, since an
// undersized block capacity is a programmer error the spec treats as such.
func New(m int) *Posting {
	if m < 2 {
		panic(fmt.Sprintf("blocked: maxBlockElements must be >= 2, got %d", m))
	}
	root := &Block{}
	return &Posting{
		m:         m,
		root:      root,
		idToBlock: map[uint32]*Block{},
	}
}

// M returns the configured per-block capacity.
func (p *Posting) M() int { return p.m }

// Root returns the first block in the list.
func (p *Posting) Root() *Block { return p.root }

// Size returns the number of blocks in the list.
func (p *Posting) Size() int {
	n := 0
	for b := p.root; b != nil; b = b.next {
		n++
	}
	return n
}

// NumIDs returns the total number of ids across all blocks.
func (p *Posting) NumIDs() int {
	n := 0
	for b := p.root; b != nil; b = b.next {
		n += b.Len()
	}
	return n
}

// lastBlock returns the final block in the list.
func (p *Posting) lastBlock() *Block {
	b := p.root
	for b.next != nil {
		b = b.next
	}
	return b
}

// halfFull is the split-keep constant (⌈M/2⌉): the number of ids a block
// retains in place when it overflows past M and splits in two.
func halfFull(m int) int { return (m + 1) / 2 }

// underflowFloor is the merge-or-redistribute trigger (⌊M/2⌋): a non-last
// block is only rebalanced once its size falls below this. For odd M it is
// one lower than the split-keep constant above; for even M the two are
// equal. A block sitting at exactly underflowFloor(m) (e.g. size 2 of 5) is
// a legal, stable resting state and must not bounce straight back into a
// merge or redistribute.
func underflowFloor(m int) int { return m / 2 }

// BlockOf returns the block containing id, and whether id is present.
func (p *Posting) BlockOf(id uint32) (*Block, bool) {
	b, ok := p.idToBlock[id]
	return b, ok
}

// Contains reports whether id is present.
func (p *Posting) Contains(id uint32) bool {
	_, ok := p.idToBlock[id]
	return ok
}

// Offsets returns the offsets stored for id, and whether id is present.
func (p *Posting) Offsets(id uint32) ([]uint32, bool) {
	b, ok := p.idToBlock[id]
	if !ok {
		return nil, false
	}
	pos, found := b.indexOf(id)
	if !found {
		panic("blocked: id-to-block index out of sync")
	}
	return b.Offsets(pos), true
}

// Upsert inserts id with the given offsets, or updates id's offsets if
// already present.
func (p *Posting) Upsert(id uint32, offsets []uint32) {
	last := p.lastBlock()

	var target *Block
	_, exists := p.idToBlock[id]
	isAppend := !exists && (last.Len() == 0 || id > last.MaxID())
	if isAppend {
		if last.Len() >= p.m {
			target = &Block{}
			last.next = target
		} else {
			target = last
		}
		target.insertAt(target.Len(), id, offsets)
		p.idToBlock[id] = target
		p.maybeSplit(target)
		return
	}

	if b, ok := p.idToBlock[id]; ok {
		pos, found := b.indexOf(id)
		if !found {
			panic("blocked: id-to-block index out of sync")
		}
		b.updateAt(pos, offsets)
		return
	}

	target = p.findTargetBlock(id)
	pos, found := target.indexOf(id)
	if found {
		target.updateAt(pos, offsets)
		return
	}
	target.insertAt(pos, id, offsets)
	p.idToBlock[id] = target
	p.maybeSplit(target)
}

// findTargetBlock returns the first block whose last id is >= id, or the
// last block if no such block exists.
func (p *Posting) findTargetBlock(id uint32) *Block {
	for b := p.root; b != nil; b = b.next {
		if b.next == nil || b.MaxID() >= id {
			return b
		}
	}
	return p.lastBlock()
}

// maybeSplit splits b if it has grown past the configured capacity.
func (p *Posting) maybeSplit(b *Block) {
	if b.Len() <= p.m {
		return
	}

	keep := halfFull(p.m)
	moveIDs := append([]uint32(nil), b.ids[keep:]...)
	moveOffsets := append([]uint32(nil), b.offsets[b.offsetIndex[keep]:]...)
	moveOffsetIndex := make([]int, len(moveIDs))
	base := b.offsetIndex[keep]
	for i := keep; i < len(b.offsetIndex); i++ {
		moveOffsetIndex[i-keep] = b.offsetIndex[i] - base
	}

	next := &Block{
		ids:         moveIDs,
		offsets:     moveOffsets,
		offsetIndex: moveOffsetIndex,
		next:        b.next,
	}
	b.next = next
	b.ids = b.ids[:keep]
	b.offsets = b.offsets[:base]
	b.offsetIndex = b.offsetIndex[:keep]

	for _, id := range next.ids {
		p.idToBlock[id] = next
	}
}

// Erase removes id, if present, rebalancing blocks on underflow.
func (p *Posting) Erase(id uint32) {
	b, exists := p.idToBlock[id]
	if !exists {
		return
	}
	pos, found := b.indexOf(id)
	if !found {
		panic("blocked: id-to-block index out of sync")
	}
	b.removeAt(pos)
	delete(p.idToBlock, id)

	if b.Len() >= underflowFloor(p.m) || p.Size() == 1 {
		return
	}
	p.rebalance(b)
}

// rebalance handles a block (last or not, as long as it is not the only
// block) that has dropped below the underflow floor, by merging it with a
// neighbor, or redistributing elements from one.
func (p *Posting) rebalance(b *Block) {
	prev := p.blockBefore(b)
	donor := b.next
	donorIsNext := true
	if donor == nil {
		donor = prev
		donorIsNext = false
	}
	if donor == nil {
		return
	}

	if b.Len()+donor.Len() <= p.m {
		p.merge(b, donor, donorIsNext)
		return
	}
	p.redistribute(b, donor, donorIsNext)
}

func (p *Posting) blockBefore(b *Block) *Block {
	if b == p.root {
		return nil
	}
	for n := p.root; n != nil; n = n.next {
		if n.next == b {
			return n
		}
	}
	return nil
}

// merge absorbs donor entirely into self (if donor is the next block) or
// self entirely into donor (if donor is the previous block), unlinking
// whichever block is emptied out from the list.
func (p *Posting) merge(self, donor *Block, donorIsNext bool) {
	if donorIsNext {
		appendBlock(self, donor)
		self.next = donor.next
		for _, id := range self.ids {
			p.idToBlock[id] = self
		}
		return
	}

	appendBlock(donor, self)
	donor.next = self.next
	for _, id := range donor.ids {
		p.idToBlock[id] = donor
	}
}

// appendBlock appends src's ids/offsets/offsetIndex onto the end of dst.
func appendBlock(dst, src *Block) {
	base := len(dst.offsets)
	dst.ids = append(dst.ids, src.ids...)
	dst.offsets = append(dst.offsets, src.offsets...)
	for _, start := range src.offsetIndex {
		dst.offsetIndex = append(dst.offsetIndex, start+base)
	}
}

// redistribute moves elements from donor into self until self is back up to
// full block capacity (not merely to the underflow floor): from the front
// of donor when donor is the next block, from the back of donor when donor
// is the previous block. A donor that is not the last block gives only what
// it holds above the underflow floor, so it never drops below it itself.
// rebalance only reaches here when self and donor together can't fit in one
// block, so donor always has at least one element to give and self ends at
// or above the floor.
func (p *Posting) redistribute(self, donor *Block, donorIsNext bool) {
	need := p.m - self.Len()
	spare := donor.Len()
	if donor.next != nil {
		spare -= underflowFloor(p.m)
	}
	if need > spare {
		need = spare
	}
	if need <= 0 {
		return
	}

	if donorIsNext {
		for i := 0; i < need; i++ {
			id := donor.ids[0]
			offs := donor.Offsets(0)
			donor.removeAt(0)
			self.insertAt(self.Len(), id, offs)
			p.idToBlock[id] = self
		}
		return
	}

	for i := 0; i < need; i++ {
		last := donor.Len() - 1
		id := donor.ids[last]
		offs := donor.Offsets(last)
		donor.removeAt(last)
		self.insertAt(0, id, offs)
		p.idToBlock[id] = self
	}
}
