package source

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	parquet "github.com/parquet-go/parquet-go"
)

// ParquetTable reads numeric leaf columns of a parquet file on demand
type ParquetTable struct {
	file   *parquet.File
	names  []string
	closer io.Closer
}

// OpenParquet loads the footer of a parquet file; column data is decoded
// lazily by Column, so the file stays open until Close.
func OpenParquet(path string) (*ParquetTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening parquet: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat parquet: %w", err)
	}

	table, err := ReadParquet(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	table.closer = f
	return table, nil
}

// ReadParquet opens a parquet file from any random-access reader
func ReadParquet(r io.ReaderAt, size int64) (*ParquetTable, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, err
	}

	fields := file.Schema().Fields()
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.Leaf() {
			names = append(names, field.Name())
		}
	}

	return &ParquetTable{file: file, names: names}, nil
}

// Close closes the file behind a table from OpenParquet. Tables read from
// a caller's reader leave it open.
func (p *ParquetTable) Close() error {
	if p.closer == nil {
		return nil
	}
	err := p.closer.Close()
	p.closer = nil
	return err
}

func (p *ParquetTable) Columns() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

func (p *ParquetTable) Rows() int {
	return int(p.file.NumRows())
}

// Column decodes every page of the named column. Nulls become NaN.
func (p *ParquetTable) Column(name string) ([]float64, error) {
	leaf, ok := p.file.Schema().Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	out := make([]float64, 0, p.Rows())
	for _, rowGroup := range p.file.RowGroups() {
		chunk := rowGroup.ColumnChunks()[leaf.ColumnIndex]
		values, err := readChunk(chunk)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		out = append(out, values...)
	}
	return out, nil
}

func readChunk(chunk parquet.ColumnChunk) ([]float64, error) {
	pages := chunk.Pages()
	defer pages.Close()

	var out []float64
	buf := make([]parquet.Value, 512)
	for {
		page, err := pages.ReadPage()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading page: %w", err)
		}

		reader := page.Values()
		for {
			n, rerr := reader.ReadValues(buf)
			for _, v := range buf[:n] {
				f, cerr := toFloat(v)
				if cerr != nil {
					return nil, cerr
				}
				out = append(out, f)
			}
			if errors.Is(rerr, io.EOF) {
				break
			}
			if rerr != nil {
				return nil, fmt.Errorf("reading values: %w", rerr)
			}
		}
	}
}

func toFloat(v parquet.Value) (float64, error) {
	if v.IsNull() {
		return math.NaN(), nil
	}

	switch v.Kind() {
	case parquet.Double:
		return v.Double(), nil
	case parquet.Float:
		return float64(v.Float()), nil
	case parquet.Int32:
		return float64(v.Int32()), nil
	case parquet.Int64:
		return float64(v.Int64()), nil
	case parquet.Boolean:
		if v.Boolean() {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("non-numeric parquet type %s", v.Kind())
	}
}
