// Package segment implements an on-disk format for a set of posting lists
// indexed by term, adapted from weaviate/storage's binary segment layout but
// serializing facade.Handles instead of Roaring-bitmap-backed blocks. This
// is the one place persistence legitimately reappears above the
// posting-list core: the core itself stays a pure in-memory structure,
// persistence is a collaborator's concern layered on top of it.
package segment

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"postinglist/internal/facade"
)

const (
	magicNumber = 0x007E8B11 // kept identical to the teacher's segment format
	version     = 2          // bumped: term blocks now hold posting-list handles, not roaring bitmaps
)

// DefaultCompactThreshold and DefaultBlockSize mirror the facade's own
// defaults; segments built without an explicit override use them.
const (
	DefaultCompactThreshold = facade.DefaultCompactThreshold
	DefaultBlockSize        = 1024
)

// Segment is an immutable-once-built collection of terms, each backed by a
// posting-list Handle, plus the distinct document ids seen across all
// terms.
type Segment struct {
	MagicNumber uint32
	Version     uint8
	BuildID     string
	TotalDocs   uint32

	Terms map[string]*facade.Handle

	seenDocs         map[uint32]struct{}
	compactThreshold int
	blockSize        int
	log              *zap.Logger
}

// New creates an empty segment ready for indexing. log may be nil, in
// which case segment events are not logged (tests do this).
func New(log *zap.Logger) *Segment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Segment{
		MagicNumber:      magicNumber,
		Version:          version,
		BuildID:          uuid.New().String(),
		Terms:            make(map[string]*facade.Handle),
		seenDocs:         make(map[uint32]struct{}),
		compactThreshold: DefaultCompactThreshold,
		blockSize:        DefaultBlockSize,
		log:              log,
	}
}

// Index records a single (term, id, offsets) triple, creating the term's
// posting list on first use.
func (s *Segment) Index(term string, id uint32, offsets []uint32) {
	h, exists := s.Terms[term]
	if !exists {
		h = facade.NewHandleWithOptions(nil, nil, nil, s.compactThreshold, s.blockSize)
		s.Terms[term] = h
		s.log.Debug("new term", zap.String("term", term))
	}

	wasBlocked := h.Representation() == facade.RepBlocked
	h.Upsert(id, offsets)
	if !wasBlocked && h.Representation() == facade.RepBlocked {
		s.log.Debug("term promoted to blocked", zap.String("term", term), zap.Int("ids", h.NumIDs()))
	}

	if _, ok := s.seenDocs[id]; !ok {
		s.seenDocs[id] = struct{}{}
		s.TotalDocs++
	}
}

// PrintInfo prints a human-readable summary of the segment, in the
// teacher's own strings.Repeat-ruled table style.
func (s *Segment) PrintInfo() {
	fmt.Printf("Segment Information\n\n")
	fmt.Printf("Magic Number   : 0x%X\n", s.MagicNumber)
	fmt.Printf("Version        : %d\n", s.Version)
	fmt.Printf("Build ID       : %s\n", s.BuildID)
	fmt.Printf("Total Docs     : %d\n", s.TotalDocs)
	fmt.Printf("Total Terms    : %d\n", len(s.Terms))

	fmt.Printf("\n%-25s | %-12s | %-12s |\n", "Term", "Postings", "Representation")
	fmt.Println(strings.Repeat("-", 58))
	for term, h := range s.Terms {
		rep := "compact"
		if h.Representation() == facade.RepBlocked {
			rep = "blocked"
		}
		fmt.Printf("%-25s | %-12d | %-12s |\n", term, h.NumIDs(), rep)
	}
	fmt.Println(strings.Repeat("-", 58))
}

// Serialize writes the segment to writer: header, then one record per
// term (term string, id count, then each id with its offsets).
func (s *Segment) Serialize(writer io.Writer) error {
	if err := binary.Write(writer, binary.LittleEndian, s.MagicNumber); err != nil {
		return fmt.Errorf("failed to write magic number: %w", err)
	}
	if err := binary.Write(writer, binary.LittleEndian, s.Version); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	buildID := []byte(s.BuildID)
	if err := binary.Write(writer, binary.LittleEndian, uint16(len(buildID))); err != nil {
		return fmt.Errorf("failed to write build id length: %w", err)
	}
	if _, err := writer.Write(buildID); err != nil {
		return fmt.Errorf("failed to write build id: %w", err)
	}
	if err := binary.Write(writer, binary.LittleEndian, s.TotalDocs); err != nil {
		return fmt.Errorf("failed to write total docs: %w", err)
	}
	if err := binary.Write(writer, binary.LittleEndian, uint32(len(s.Terms))); err != nil {
		return fmt.Errorf("failed to write term count: %w", err)
	}

	for term, h := range s.Terms {
		if err := writeTerm(writer, term, h); err != nil {
			return fmt.Errorf("failed to write term %q: %w", term, err)
		}
	}
	return nil
}

func writeTerm(writer io.Writer, term string, h *facade.Handle) error {
	termBytes := []byte(term)
	if err := binary.Write(writer, binary.LittleEndian, uint16(len(termBytes))); err != nil {
		return err
	}
	if _, err := writer.Write(termBytes); err != nil {
		return err
	}

	ids := h.IDs()
	if err := binary.Write(writer, binary.LittleEndian, uint32(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		offsets, _ := h.Offsets(id)
		if err := binary.Write(writer, binary.LittleEndian, id); err != nil {
			return err
		}
		if err := binary.Write(writer, binary.LittleEndian, uint32(len(offsets))); err != nil {
			return err
		}
		for _, off := range offsets {
			if err := binary.Write(writer, binary.LittleEndian, off); err != nil {
				return err
			}
		}
	}
	return nil
}

// Deserialize reads a segment previously written by Serialize. Each term's
// posting list is rebuilt with a single facade.NewHandleWithOptions call
// rather than replayed id by id, so a term that was blocked when written
// promotes again immediately if it's still past the threshold.
func (s *Segment) Deserialize(reader io.Reader) error {
	if err := binary.Read(reader, binary.LittleEndian, &s.MagicNumber); err != nil {
		return fmt.Errorf("failed to read magic number: %w", err)
	}
	if s.MagicNumber != magicNumber {
		return fmt.Errorf("unrecognized segment magic number: 0x%X", s.MagicNumber)
	}
	if err := binary.Read(reader, binary.LittleEndian, &s.Version); err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}

	var buildIDLen uint16
	if err := binary.Read(reader, binary.LittleEndian, &buildIDLen); err != nil {
		return fmt.Errorf("failed to read build id length: %w", err)
	}
	buildIDBytes := make([]byte, buildIDLen)
	if _, err := io.ReadFull(reader, buildIDBytes); err != nil {
		return fmt.Errorf("failed to read build id: %w", err)
	}
	s.BuildID = string(buildIDBytes)

	if err := binary.Read(reader, binary.LittleEndian, &s.TotalDocs); err != nil {
		return fmt.Errorf("failed to read total docs: %w", err)
	}

	var numTerms uint32
	if err := binary.Read(reader, binary.LittleEndian, &numTerms); err != nil {
		return fmt.Errorf("failed to read term count: %w", err)
	}

	if s.compactThreshold == 0 {
		s.compactThreshold = DefaultCompactThreshold
	}
	if s.blockSize == 0 {
		s.blockSize = DefaultBlockSize
	}

	s.Terms = make(map[string]*facade.Handle, numTerms)
	for i := uint32(0); i < numTerms; i++ {
		term, h, err := readTerm(reader, s.compactThreshold, s.blockSize)
		if err != nil {
			return fmt.Errorf("failed to read term %d: %w", i, err)
		}
		s.Terms[term] = h
	}
	return nil
}

func readTerm(reader io.Reader, compactThreshold, blockSize int) (string, *facade.Handle, error) {
	var termLen uint16
	if err := binary.Read(reader, binary.LittleEndian, &termLen); err != nil {
		return "", nil, err
	}
	termBytes := make([]byte, termLen)
	if _, err := io.ReadFull(reader, termBytes); err != nil {
		return "", nil, err
	}

	var numIDs uint32
	if err := binary.Read(reader, binary.LittleEndian, &numIDs); err != nil {
		return "", nil, err
	}

	ids := make([]uint32, numIDs)
	offsetIndex := make([]int, numIDs)
	var offsets []uint32

	for i := uint32(0); i < numIDs; i++ {
		if err := binary.Read(reader, binary.LittleEndian, &ids[i]); err != nil {
			return "", nil, err
		}
		var numOffsets uint32
		if err := binary.Read(reader, binary.LittleEndian, &numOffsets); err != nil {
			return "", nil, err
		}
		offsetIndex[i] = len(offsets)
		for j := uint32(0); j < numOffsets; j++ {
			var off uint32
			if err := binary.Read(reader, binary.LittleEndian, &off); err != nil {
				return "", nil, err
			}
			offsets = append(offsets, off)
		}
	}

	h := facade.NewHandleWithOptions(ids, offsetIndex, offsets, compactThreshold, blockSize)
	return string(termBytes), h, nil
}
