package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ahrav/go-ballot/internal/testutils"
)

func main() {
	var (
		agents       = flag.Int("agents", 25, "Number of agents (rows)")
		alternatives = flag.Int("alternatives", 5, "Number of alternatives (columns)")
		levels       = flag.Int("levels", 10, "Number of distinct valuations; small values produce more ties")
		seed         = flag.Int64("seed", 0, "Random seed; 0 picks a time-based seed")
		outputPath   = flag.String("output", "testdata/valuations/sample.csv", "Output file path")
	)
	flag.Parse()

	if *agents < 1 || *alternatives < 1 {
		log.Fatalf("agents and alternatives must be positive, got %d and %d", *agents, *alternatives)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	spec := testutils.ValuationSpec{Agents: *agents, Alternatives: *alternatives, Levels: *levels}
	rows := testutils.GenerateValuations(spec, *seed)

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o750); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	f, err := os.Create(filepath.Clean(*outputPath))
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	if err := testutils.WriteValuationsCSV(f, rows); err != nil {
		_ = f.Close()
		log.Fatalf("Failed to write valuations: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to close output file: %v", err)
	}

	fmt.Printf("Generated valuation table:\n")
	fmt.Printf("- Path: %s\n", *outputPath)
	fmt.Printf("- Agents: %d\n", *agents)
	fmt.Printf("- Alternatives: %d\n", *alternatives)
	fmt.Printf("- Levels: %d\n", *levels)
	fmt.Printf("- Seed: %d\n", *seed)
}
