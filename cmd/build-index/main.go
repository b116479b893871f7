// Command build-index fetches a JSON corpus (local file or URL) and writes
// one binary segment file per JSON segment entry, in the style of
// weaviate/cmd/index adapted to the facade-backed segment.Segment.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"postinglist/internal/fetcher"
	"postinglist/internal/segment"
)

const DefaultSegmentDir = "segment-data"

func main() {
	jsonPath := flag.String("path", "", "Path or URL to the input JSON corpus")
	dir := flag.String("dir", DefaultSegmentDir, "Directory to store segment files")
	flag.Parse()

	log := buildLogger()
	defer log.Sync()

	buildID := uuid.New().String()
	log.Info("starting build", zap.String("build_id", buildID), zap.String("path", *jsonPath))

	if *jsonPath == "" {
		log.Fatal("missing required -path flag")
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatal("failed to create segment directory", zap.String("dir", *dir), zap.Error(err))
	}

	data, err := fetcher.Fetch(*jsonPath)
	if err != nil {
		log.Fatal("failed to fetch corpus", zap.Error(err))
	}

	jsonSegments, err := fetcher.ParseSegments(data)
	if err != nil {
		log.Fatal("failed to parse corpus", zap.Error(err))
	}

	log.Info("parsed corpus", zap.Int("segments", len(jsonSegments)))

	for segmentID, postings := range jsonSegments {
		s := segment.New(log)
		for _, p := range postings {
			s.Index(p.Term, p.DocID, p.Offsets)
		}

		segmentPath := filepath.Join(*dir, fmt.Sprintf("segment_%d.bin", segmentID))
		if err := writeSegment(segmentPath, s); err != nil {
			log.Fatal("failed to write segment", zap.String("path", segmentPath), zap.Error(err))
		}

		log.Info("wrote segment",
			zap.String("path", segmentPath),
			zap.Uint32("total_docs", s.TotalDocs),
			zap.Int("terms", len(s.Terms)),
		)
		s.PrintInfo()
	}

	log.Info("build complete", zap.String("build_id", buildID), zap.Int("segments", len(jsonSegments)))
}

func buildLogger() *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.DisableStacktrace = true
	return zap.Must(logConfig.Build())
}

func writeSegment(path string, s *segment.Segment) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create segment file: %w", err)
	}
	defer file.Close()

	if err := s.Serialize(file); err != nil {
		return fmt.Errorf("failed to serialize segment: %w", err)
	}
	return nil
}
