// Package source reads named numeric columns out of tabular files.
package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrColumnNotFound is returned when a table has no column of the requested name
var ErrColumnNotFound = errors.New("column not found")

// Table is a read-only tabular data source. Missing cells read as NaN.
// Close releases the underlying file, if any.
type Table interface {
	io.Closer
	Columns() []string
	Rows() int
	Column(name string) ([]float64, error)
}

// Open loads a table, choosing the reader from the file extension
func Open(path string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return OpenParquet(path)
	case ".csv", ".txt", "":
		return OpenCSV(path)
	default:
		return nil, fmt.Errorf("unsupported table format: %s", filepath.Ext(path))
	}
}

// memTable holds fully decoded columns
type memTable struct {
	names   []string
	columns map[string][]float64
	rows    int
}

func (m *memTable) Columns() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

func (m *memTable) Rows() int {
	return m.rows
}

func (m *memTable) Column(name string) ([]float64, error) {
	col, ok := m.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

func (m *memTable) Close() error {
	return nil
}
