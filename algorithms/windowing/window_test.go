package windowing

import (
	"math"
	"testing"
)

func TestNew_None(t *testing.T) {
	w, err := New(None, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i, c := range w.Coefficients() {
		if c != 1.0 {
			t.Fatalf("coefficient %d: expected 1, got %v", i, c)
		}
	}
}

func TestNew_Shapes(t *testing.T) {
	tests := []struct {
		kind     Type
		endpoint float64
	}{
		{Blackman, 0.0},
		{Hann, 0.0},
		{Hamming, 0.08},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			const size = 9
			w, err := New(tt.kind, size)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			c := w.Coefficients()
			if len(c) != size {
				t.Fatalf("expected %d coefficients, got %d", size, len(c))
			}
			if math.Abs(c[0]-tt.endpoint) > 1e-9 || math.Abs(c[size-1]-tt.endpoint) > 1e-9 {
				t.Errorf("endpoints: expected %v, got %v and %v", tt.endpoint, c[0], c[size-1])
			}
			if math.Abs(c[size/2]-1.0) > 1e-9 {
				t.Errorf("center: expected 1, got %v", c[size/2])
			}
			for i := 0; i < size/2; i++ {
				if math.Abs(c[i]-c[size-1-i]) > 1e-12 {
					t.Errorf("not symmetric at %d: %v vs %v", i, c[i], c[size-1-i])
				}
			}
		})
	}
}

func TestNew_SingleSample(t *testing.T) {
	for _, kind := range Types {
		w, err := New(kind, 1)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if got := w.Coefficients(); len(got) != 1 || got[0] != 1.0 {
			t.Errorf("%s: expected [1], got %v", kind, got)
		}
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New("kaiser", 16); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := New("kaiser", 1); err == nil {
		t.Error("expected error for unknown type with one sample")
	}
	if _, err := New(Hann, -1); err == nil {
		t.Error("expected error for negative size")
	}
}

func TestApply(t *testing.T) {
	w, err := New(Hann, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	signal := []float64{2, 2, 2, 2, 2}

	out, err := w.Apply(signal)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if signal[2] != 2 {
		t.Fatal("Apply must not modify its input")
	}
	if math.Abs(out[2]-2) > 1e-12 || math.Abs(out[0]) > 1e-12 {
		t.Errorf("unexpected windowed signal %v", out)
	}

	if _, err := w.Apply([]float64{1, 2}); err == nil {
		t.Error("expected length mismatch error")
	}
	if err := w.ApplyInPlace(signal); err != nil {
		t.Fatalf("ApplyInPlace: %v", err)
	}
	if math.Abs(signal[0]) > 1e-12 {
		t.Errorf("expected in-place taper, got %v", signal)
	}
}

func TestParseType(t *testing.T) {
	tests := map[string]Type{
		"":         None,
		"none":     None,
		"Blackman": Blackman,
		"hanning":  Hann,
		" hamming": Hamming,
	}
	for in, want := range tests {
		got, err := ParseType(in)
		if err != nil || got != want {
			t.Errorf("ParseType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseType("tukey"); err == nil {
		t.Error("expected error for unsupported type")
	}
}
