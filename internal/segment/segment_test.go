package segment

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postinglist/internal/facade"
)

func TestIndexCreatesTermAndTracksTotalDocs(t *testing.T) {
	s := New(nil)
	s.Index("fox", 1, []uint32{4})
	s.Index("fox", 2, []uint32{0})
	s.Index("dog", 2, []uint32{9})

	require.Contains(t, s.Terms, "fox")
	require.Contains(t, s.Terms, "dog")
	assert.Equal(t, 2, s.Terms["fox"].NumIDs())
	assert.Equal(t, uint32(2), s.TotalDocs) // doc 2 counted once despite appearing in two terms
}

func TestIndexPromotesTermIndependently(t *testing.T) {
	s := New(nil)
	s.compactThreshold = 10
	s.blockSize = 4

	eight := make([]uint32, 8)
	s.Index("rare", 1, []uint32{0})
	s.Index("common", 1, eight)
	s.Index("common", 2, eight)

	assert.Equal(t, facade.RepCompact, s.Terms["rare"].Representation())
	assert.Equal(t, facade.RepBlocked, s.Terms["common"].Representation())
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	s := New(nil)
	s.Index("fox", 1, []uint32{4, 9})
	s.Index("fox", 2, []uint32{0})
	s.Index("dog", 2, []uint32{9, 10, 11})
	s.Index("dog", 5, nil)

	var buf bytes.Buffer
	require.NoError(t, s.Serialize(&buf))

	got := &Segment{}
	require.NoError(t, got.Deserialize(&buf))

	assert.Equal(t, s.TotalDocs, got.TotalDocs)
	assert.Equal(t, s.BuildID, got.BuildID)
	require.Contains(t, got.Terms, "fox")
	require.Contains(t, got.Terms, "dog")

	assert.Equal(t, s.Terms["fox"].IDs(), got.Terms["fox"].IDs())
	assert.Equal(t, s.Terms["dog"].IDs(), got.Terms["dog"].IDs())

	foxOffsets, ok := got.Terms["fox"].Offsets(1)
	require.True(t, ok)
	assert.Equal(t, []uint32{4, 9}, foxOffsets)

	dogOffsets, ok := got.Terms["dog"].Offsets(5)
	require.True(t, ok)
	assert.Empty(t, dogOffsets)
}

func TestDeserializeRejectsBadMagicNumber(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0xDE, 0xAD, 0xBE, 0xEF, 1, 0, 0})
	got := &Segment{}
	err := got.Deserialize(buf)
	assert.Error(t, err)
}

func TestSerializeEmptySegment(t *testing.T) {
	s := New(nil)
	var buf bytes.Buffer
	require.NoError(t, s.Serialize(&buf))

	got := &Segment{}
	require.NoError(t, got.Deserialize(&buf))
	assert.Equal(t, uint32(0), got.TotalDocs)
	assert.Empty(t, got.Terms)
}
