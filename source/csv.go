package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/RyanBlaney/fftscope/logging"
)

// OpenCSV reads a comma separated file with a header row
func OpenCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return table, nil
}

// ReadCSV decodes a header row followed by data rows. Cells that are empty
// or not numeric become NaN; short rows are padded with NaN.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv has no header row")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	table := &memTable{
		names:   make([]string, len(header)),
		columns: make(map[string][]float64, len(header)),
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := table.columns[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		table.names[i] = name
		table.columns[name] = nil
	}

	nonNumeric := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", table.rows+2, err)
		}

		for i, name := range table.names {
			v := math.NaN()
			if i < len(record) {
				cell := strings.TrimSpace(record[i])
				if cell != "" {
					if parsed, perr := strconv.ParseFloat(cell, 64); perr == nil {
						v = parsed
					} else {
						nonNumeric++
					}
				}
			}
			table.columns[name] = append(table.columns[name], v)
		}
		table.rows++
	}

	if nonNumeric > 0 {
		logging.Debug("Non-numeric csv cells read as missing", logging.Fields{
			"component": "csv_source",
			"cells":     nonNumeric,
		})
	}

	return table, nil
}
