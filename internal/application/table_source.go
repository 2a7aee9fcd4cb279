package application

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ahrav/go-ballot/internal/domain"
)

// ReadValuationsCSV reads a valuation table from CSV, one agent per record
// and one alternative per field. When header is true the first record is
// skipped. Cells must parse as floating point numbers; rectangularity is
// left to domain.NewValuationTable so all shape problems are reported
// together.
func ReadValuationsCSV(r io.Reader, header bool) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]float64
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedTable, err)
		}
		if header && line == 1 {
			continue
		}

		row := make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %q is not a number",
					domain.ErrMalformedTable, line, j+1, cell)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// readSource loads the table referenced by source. Relative paths are
// resolved against baseDir.
func readSource(source *SourceConfig, baseDir string) ([][]float64, error) {
	path := source.Path
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open valuation source: %w", err)
	}
	defer f.Close()

	rows, err := ReadValuationsCSV(f, source.Header)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source.Path, err)
	}
	return rows, nil
}
