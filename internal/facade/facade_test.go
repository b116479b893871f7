package facade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeOffsets() []uint32 { return []uint32{0, 1, 3} }

func TestNewHandleStartsCompact(t *testing.T) {
	h := NewHandle([]uint32{0, 1000, 1002}, []int{0, 3, 6}, []uint32{0, 3, 4, 0, 3, 4, 0, 3, 4})
	assert.Equal(t, RepCompact, h.Representation())
	assert.Equal(t, 3, h.NumIDs())
	assert.True(t, h.Contains(1000))
}

func TestUpsertAndErase(t *testing.T) {
	h := NewHandle(nil, nil, nil)
	h.Upsert(5, threeOffsets())
	h.Upsert(3, threeOffsets())
	h.Upsert(9, threeOffsets())

	assert.Equal(t, []uint32{3, 5, 9}, h.IDs())
	assert.True(t, h.Contains(5))

	h.Erase(5)
	assert.False(t, h.Contains(5))
	assert.Equal(t, 2, h.NumIDs())
}

// S8 — compact->blocked promotion. With DefaultCompactThreshold = 60, the
// projected length on upserting 1007 (65 words) is the first to exceed the
// threshold, one upsert earlier than the distilled behavioral description's
// approximate "~6 ids of 8 offsets" framing; see SPEC_FULL.md §8.3 and
// DESIGN.md for the worked arithmetic.
func TestCompactPromotesToBlockedOnThreshold(t *testing.T) {
	h := NewHandle([]uint32{0, 1000, 1002}, []int{0, 3, 6}, []uint32{0, 3, 4, 0, 3, 4, 0, 3, 4})
	eight := make([]uint32, 8)

	for _, id := range []uint32{1003, 1004, 1005, 1006} {
		h.Upsert(id, eight)
		require.Equal(t, RepCompact, h.Representation())
	}

	h.Upsert(1007, eight)
	require.Equal(t, RepBlocked, h.Representation())
	assert.Equal(t, 8, h.NumIDs())
	assert.Equal(t, []uint32{0, 1000, 1002, 1003, 1004, 1005, 1006, 1007}, h.IDs())

	offs, ok := h.Offsets(1007)
	require.True(t, ok)
	assert.Equal(t, eight, offs)
}

func TestPromotionNeverReverses(t *testing.T) {
	h := NewHandleWithOptions(nil, nil, nil, 0, 4)
	h.Upsert(1, nil)
	require.Equal(t, RepBlocked, h.Representation())

	h.Erase(1)
	assert.Equal(t, RepBlocked, h.Representation())
	assert.Equal(t, 0, h.NumIDs())
}

func buildHandle(t *testing.T, ids []uint32, compactThreshold, blockSize int) *Handle {
	t.Helper()
	h := NewHandleWithOptions(nil, nil, nil, compactThreshold, blockSize)
	for _, id := range ids {
		h.Upsert(id, nil)
	}
	return h
}

// S7 — intersection with block skipping. M=2 forces several small blocks
// per list so the merge must skip entire blocks to find agreement.
func TestIntersectWithBlockSkipping(t *testing.T) {
	l1 := buildHandle(t, []uint32{9, 11}, 0, 2)
	l2 := buildHandle(t, []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 11}, 0, 2)
	l3 := buildHandle(t, []uint32{2, 3, 8, 9, 11, 20}, 0, 2)

	got := Intersect([]*Handle{l1, l2, l3})
	assert.Equal(t, []uint32{9, 11}, got)
}

func TestIntersectEmptyWhenAnyListEmpty(t *testing.T) {
	l1 := buildHandle(t, []uint32{1, 2, 3}, 0, 2)
	l2 := buildHandle(t, nil, 0, 2)

	got := Intersect([]*Handle{l1, l2})
	assert.Empty(t, got)
}

func TestIntersectSingleHandleReturnsAllIDs(t *testing.T) {
	l1 := buildHandle(t, []uint32{4, 8, 15, 16, 23, 42}, 0, 3)
	got := Intersect([]*Handle{l1})
	assert.Equal(t, []uint32{4, 8, 15, 16, 23, 42}, got)
}

func TestIntersectNoCommonIDsReturnsEmpty(t *testing.T) {
	l1 := buildHandle(t, []uint32{1, 3, 5}, 0, 4)
	l2 := buildHandle(t, []uint32{2, 4, 6}, 0, 4)

	got := Intersect([]*Handle{l1, l2})
	assert.Empty(t, got)
}

func TestIntersectMixedRepresentations(t *testing.T) {
	compactHandle := NewHandle([]uint32{1, 2, 3}, []int{0, 0, 0}, nil)
	blockedHandle := buildHandle(t, []uint32{2, 3, 4}, 0, 2)

	got := Intersect([]*Handle{compactHandle, blockedHandle})
	assert.Equal(t, []uint32{2, 3}, got)
}
