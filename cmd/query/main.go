// Command query loads every segment file from a directory and answers a
// boolean AND query over its terms, in the style of weaviate/cmd/query
// adapted to engine.Engine's unscored intersection.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"postinglist/internal/engine"
	"postinglist/internal/segment"
)

const DefaultSegmentDir = "segment-data"

func main() {
	dir := flag.String("dir", DefaultSegmentDir, "Directory to load segment files from")
	flag.Parse()

	log := buildLogger()
	defer log.Sync()

	files, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatal("failed to read segment directory", zap.String("dir", *dir), zap.Error(err))
	}

	var segments []*segment.Segment
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".bin" {
			continue
		}
		segmentPath := filepath.Join(*dir, file.Name())
		s := segment.New(log)
		if err := loadSegment(segmentPath, s); err != nil {
			log.Warn("failed to load segment, skipping", zap.String("path", segmentPath), zap.Error(err))
			continue
		}
		segments = append(segments, s)
		s.PrintInfo()
	}

	if len(segments) == 0 {
		fmt.Println("No valid segments found.")
		return
	}

	queryEngine, err := engine.New(segments, log)
	if err != nil {
		log.Fatal("failed to build query engine", zap.Error(err))
	}

	query := getQuery()
	terms := strings.Fields(query)

	fmt.Printf("Query: %s\n", query)
	fmt.Printf("Terms: %v\n", terms)

	ids, err := queryEngine.Query(terms)
	if err != nil {
		fmt.Printf("Query execution failed: %v\n", err)
		return
	}

	printResults(ids)
}

func buildLogger() *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.DisableStacktrace = true
	return zap.Must(logConfig.Build())
}

func loadSegment(path string, s *segment.Segment) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.Deserialize(file)
}

func getQuery() string {
	query, exists := os.LookupEnv("QUERY")
	if !exists {
		query = "great vector database"
	}
	return query
}

func printResults(ids []uint32) {
	fmt.Printf("Matched documents: %d\n", len(ids))
	fmt.Println(strings.Repeat("-", 14))
	fmt.Printf("| %-10s |\n", "DocID")
	fmt.Println(strings.Repeat("-", 14))
	for _, id := range ids {
		fmt.Printf("| %-10d |\n", id)
	}
	fmt.Println(strings.Repeat("-", 14))
}
