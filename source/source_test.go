package source

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	parquet "github.com/parquet-go/parquet-go"
)

func TestReadCSV(t *testing.T) {
	data := "time,accel, label\n0,1.5,a\n1,,b\n2,abc,c\n3,4e-3\n"
	table, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	if got := table.Columns(); len(got) != 3 || got[1] != "accel" || got[2] != "label" {
		t.Fatalf("unexpected columns %v", got)
	}
	if table.Rows() != 4 {
		t.Fatalf("expected 4 rows, got %d", table.Rows())
	}

	accel, err := table.Column("accel")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if accel[0] != 1.5 || accel[3] != 4e-3 {
		t.Errorf("unexpected values %v", accel)
	}
	if !math.IsNaN(accel[1]) || !math.IsNaN(accel[2]) {
		t.Errorf("expected empty and non-numeric cells as NaN, got %v", accel)
	}

	label, _ := table.Column("label")
	if !math.IsNaN(label[3]) {
		t.Errorf("expected padded short row, got %v", label)
	}

	if _, err := table.Column("missing"); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := ReadCSV(strings.NewReader("a,a\n1,2\n")); err == nil {
		t.Error("expected error for duplicate column")
	}
}

func TestColumnReturnsCopy(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("x\n1\n2\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	col, _ := table.Column("x")
	col[0] = 99
	again, _ := table.Column("x")
	if again[0] != 1 {
		t.Fatal("column data mutated through returned slice")
	}
}

type vibrationRow struct {
	Index int64    `parquet:"index"`
	Accel float64  `parquet:"accel"`
	Temp  *float32 `parquet:"temp,optional"`
}

func TestReadParquet(t *testing.T) {
	warm := float32(21.5)
	rows := []vibrationRow{
		{Index: 0, Accel: 0.25, Temp: &warm},
		{Index: 1, Accel: -1.5, Temp: nil},
		{Index: 2, Accel: 3, Temp: &warm},
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[vibrationRow](&buf)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	table, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadParquet: %v", err)
	}
	if table.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Rows())
	}

	accel, err := table.Column("accel")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	want := []float64{0.25, -1.5, 3}
	for i := range want {
		if accel[i] != want[i] {
			t.Fatalf("accel[%d] = %v, want %v", i, accel[i], want[i])
		}
	}

	index, _ := table.Column("index")
	if index[2] != 2 {
		t.Errorf("expected int64 column converted, got %v", index)
	}

	temp, err := table.Column("temp")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if len(temp) != 3 || !math.IsNaN(temp[1]) || temp[0] != 21.5 {
		t.Errorf("expected null as NaN, got %v", temp)
	}

	if _, err := table.Column("nope"); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestOpen_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("v\n1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	table, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if table.Rows() != 1 {
		t.Errorf("expected 1 row, got %d", table.Rows())
	}

	if _, err := Open(filepath.Join(dir, "data.xlsx")); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestOpenParquetClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vibration.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := parquet.NewGenericWriter[vibrationRow](f)
	if _, err := w.Write([]vibrationRow{{Index: 0, Accel: 1}, {Index: 1, Accel: 2}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	table, err := OpenParquet(path)
	if err != nil {
		t.Fatalf("OpenParquet: %v", err)
	}
	if accel, err := table.Column("accel"); err != nil || len(accel) != 2 {
		t.Fatalf("Column = %v, %v", accel, err)
	}

	file, ok := table.closer.(*os.File)
	if !ok {
		t.Fatalf("closer = %T, want *os.File", table.closer)
	}
	if err := table.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := file.Close(); !errors.Is(err, os.ErrClosed) {
		t.Errorf("file still open after Close: %v", err)
	}
	if err := table.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
