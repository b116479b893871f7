package compact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildThreeRecord() *Posting {
	ids := []uint32{0, 1000, 1002}
	offsetIndex := []int{0, 3, 6}
	offsets := []uint32{0, 3, 4, 0, 3, 4, 0, 3, 4}
	return NewPosting(ids, offsetIndex, offsets)
}

func TestNewPostingLength(t *testing.T) {
	p := buildThreeRecord()
	assert.Equal(t, 15, p.Length())
	assert.Equal(t, 15, p.Capacity())
	assert.Equal(t, 3, p.NumIDs())
	assert.Equal(t, uint32(1002), p.LastID())
}

func TestContains(t *testing.T) {
	p := buildThreeRecord()
	assert.True(t, p.Contains(0))
	assert.True(t, p.Contains(1000))
	assert.True(t, p.Contains(1002))
	assert.False(t, p.Contains(1001))
}

func TestIDsAscending(t *testing.T) {
	p := buildThreeRecord()
	assert.Equal(t, []uint32{0, 1000, 1002}, p.IDs())
}

// S9 — compact update with shrinking offsets.
func TestUpsertShrinkingOffsets(t *testing.T) {
	p := buildThreeRecord()

	delta := p.Delta(1000, []uint32{1, 2})
	require.Equal(t, -1, delta)
	require.LessOrEqual(t, p.Length()+delta, p.Capacity())

	p.Upsert(1000, []uint32{1, 2})

	assert.Equal(t, 14, p.Length())
	want := []uint32{3, 0, 3, 4, 0, 2, 1, 2, 1000, 3, 0, 3, 4, 1002}
	assert.Equal(t, want, p.buf[:p.length])

	offs, ok := p.Offsets(1000)
	require.True(t, ok)
	assert.Equal(t, []uint32{1, 2}, offs)
}

func TestUpsertGrowingOffsetsRequiresReserve(t *testing.T) {
	p := buildThreeRecord()

	delta := p.Delta(1000, []uint32{1, 2, 3, 4, 5})
	require.Equal(t, 2, delta)

	needed := p.Length() + delta
	require.Greater(t, needed, p.Capacity())
	p.Reserve(needed)
	p.Upsert(1000, []uint32{1, 2, 3, 4, 5})

	assert.Equal(t, 17, p.Length())
	offs, ok := p.Offsets(1000)
	require.True(t, ok)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, offs)
	assert.Equal(t, uint32(1002), p.LastID())
}

func TestUpsertAppend(t *testing.T) {
	p := buildThreeRecord()
	delta := p.Delta(2000, []uint32{7})
	require.Equal(t, 3, delta)
	p.Reserve(p.Length() + delta)
	p.Upsert(2000, []uint32{7})

	assert.Equal(t, uint32(2000), p.LastID())
	assert.Equal(t, 4, p.NumIDs())
	offs, ok := p.Offsets(2000)
	require.True(t, ok)
	assert.Equal(t, []uint32{7}, offs)
}

func TestUpsertMidInsert(t *testing.T) {
	p := buildThreeRecord()
	delta := p.Delta(500, []uint32{9, 10})
	require.Equal(t, 4, delta)
	p.Reserve(p.Length() + delta)
	p.Upsert(500, []uint32{9, 10})

	assert.Equal(t, []uint32{0, 500, 1000, 1002}, p.IDs())
	offs, ok := p.Offsets(500)
	require.True(t, ok)
	assert.Equal(t, []uint32{9, 10}, offs)
}

func TestEraseAbsentIsNoop(t *testing.T) {
	p := buildThreeRecord()
	ok := p.Erase(1001)
	assert.False(t, ok)
	assert.Equal(t, 15, p.Length())
}

func TestErasePresent(t *testing.T) {
	p := buildThreeRecord()
	ok := p.Erase(1000)
	require.True(t, ok)
	assert.Equal(t, []uint32{0, 1002}, p.IDs())
	assert.Equal(t, 2, p.NumIDs())
	assert.Equal(t, 10, p.Length())
}

func TestEraseThenReinsertRoundTrip(t *testing.T) {
	p := buildThreeRecord()
	before := append([]uint32(nil), p.buf[:p.length]...)

	require.True(t, p.Erase(1000))
	delta := p.Delta(1000, []uint32{0, 3, 4})
	p.Reserve(p.Length() + delta)
	p.Upsert(1000, []uint32{0, 3, 4})

	assert.Equal(t, before, p.buf[:p.length])
}

func TestEmptyPosting(t *testing.T) {
	p := NewPosting(nil, nil, nil)
	assert.Equal(t, 0, p.Length())
	assert.Equal(t, uint32(0), p.LastID())
	assert.False(t, p.Contains(42))
	assert.Empty(t, p.IDs())
}
