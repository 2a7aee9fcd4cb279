// Package testutils provides utilities for testing, including test data
// generators. These components are intended for internal use within the
// project's test suites and tooling and are not part of the public API.
package testutils

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/ahrav/go-ballot/internal/domain"
)

// ValuationSpec describes the shape of a generated valuation table.
type ValuationSpec struct {
	// Agents is the number of rows.
	Agents int
	// Alternatives is the number of columns.
	Alternatives int
	// Levels is the number of distinct integer valuations 0..Levels-1.
	// Small values produce many equal valuations and therefore many ties.
	Levels int
}

// GenerateValuations creates a random valuation table.
// The seed parameter controls randomization - use time.Now().UnixNano() for
// non-deterministic generation or a fixed value for reproducible tests.
func GenerateValuations(spec ValuationSpec, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))

	levels := spec.Levels
	if levels < 1 {
		levels = 1
	}

	rows := make([][]float64, spec.Agents)
	for i := range rows {
		row := make([]float64, spec.Alternatives)
		for j := range row {
			row[j] = float64(rng.Intn(levels))
		}
		rows[i] = row
	}
	return rows
}

// GenerateValuationsDefault creates a table with a time-based seed.
func GenerateValuationsDefault(spec ValuationSpec) [][]float64 {
	return GenerateValuations(spec, time.Now().UnixNano())
}

// MustTable builds a ValuationTable and panics on invalid input.
// It is meant for fixtures whose validity is known up front.
func MustTable(rows [][]float64) domain.ValuationTable {
	table, err := domain.NewValuationTable(rows)
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid fixture table: %v", err))
	}
	return table
}

// MustProfile builds a Profile from plain ints and panics on invalid input.
func MustProfile(rankings ...[]int) domain.Profile {
	converted := make([][]domain.Alternative, len(rankings))
	for i, ranking := range rankings {
		converted[i] = make([]domain.Alternative, len(ranking))
		for j, alt := range ranking {
			converted[i][j] = domain.Alternative(alt)
		}
	}
	profile, err := domain.NewProfile(converted)
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid fixture profile: %v", err))
	}
	return profile
}

// WriteValuationsCSV writes rows as CSV, one agent per line.
func WriteValuationsCSV(w io.Writer, rows [][]float64) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
