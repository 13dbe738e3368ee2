package spectral

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/RyanBlaney/fftscope/algorithms/windowing"
)

func sine(n int, freq, amp, fs float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/fs)
	}
	return out
}

// naiveAmplitudes is a direct DFT used as the reference for the fast path
func naiveAmplitudes(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n/2)
	for k := range out {
		var sum complex128
		for t, v := range x {
			angle := -2 * math.Pi * float64(k) * float64(t) / float64(n)
			sum += complex(v, 0) * cmplx.Exp(complex(0, angle))
		}
		out[k] = 2.0 / float64(n) * cmplx.Abs(sum)
	}
	return out
}

func TestCompute_BinCountAndOrdering(t *testing.T) {
	c := NewComputer()
	for _, n := range []int{2, 3, 10, 17, 64, 101} {
		s, err := c.Compute(sine(n, 3, 1, 50), 50, windowing.None)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if s.Len() != n/2 {
			t.Fatalf("n=%d: expected %d bins, got %d", n, n/2, s.Len())
		}
		if s.Frequency(0) != 0 {
			t.Errorf("n=%d: first bin must be 0 Hz, got %v", n, s.Frequency(0))
		}
		for k := 1; k < s.Len(); k++ {
			if s.Frequency(k) <= s.Frequency(k-1) {
				t.Fatalf("n=%d: frequencies not ascending at %d", n, k)
			}
		}
	}
}

func TestCompute_NoWindowMatchesRawTransform(t *testing.T) {
	x := []float64{0.3, -1.2, 2.5, 0.7, -0.1, 1.9, -2.2, 0.4, 1.1, -0.6, 0.05}
	s, err := NewComputer().Compute(x, 11, windowing.None)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	want := naiveAmplitudes(x)
	got := s.Amplitudes()
	for k := range want {
		if math.Abs(got[k]-want[k]) > 1e-9 {
			t.Errorf("bin %d: got %v, want %v", k, got[k], want[k])
		}
	}
}

func TestCompute_PureSinusoid(t *testing.T) {
	const (
		fs  = 1000.0
		n   = 1000
		f0  = 50.0
		amp = 2.5
	)
	s, err := NewComputer().Compute(sine(n, f0, amp, fs), fs, windowing.None)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	best := 0
	for k := 1; k < s.Len(); k++ {
		if s.Amplitude(k) > s.Amplitude(best) {
			best = k
		}
	}
	if s.Frequency(best) != f0 {
		t.Fatalf("expected dominant bin at %v Hz, got %v", f0, s.Frequency(best))
	}
	if math.Abs(s.Amplitude(best)-amp) > 1e-6 {
		t.Errorf("expected amplitude %v, got %v", amp, s.Amplitude(best))
	}
}

func TestCompute_DropsMissingValues(t *testing.T) {
	x := []float64{1, math.NaN(), 2, 3, math.NaN(), 4}
	s, err := NewComputer().Compute(x, 4, windowing.Hann)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 bins from 4 clean samples, got %d", s.Len())
	}
	if got := s.Frequency(1); got != 1 {
		t.Errorf("expected 1 Hz resolution, got %v", got)
	}
}

func TestCompute_Errors(t *testing.T) {
	c := NewComputer()
	tests := []struct {
		name    string
		samples []float64
		fs      float64
		kind    windowing.Type
		want    error
	}{
		{"empty", nil, 10, windowing.None, ErrInvalidInput},
		{"all missing", []float64{math.NaN(), math.NaN()}, 10, windowing.None, ErrInvalidInput},
		{"zero rate", []float64{1, 2}, 0, windowing.None, ErrInvalidInput},
		{"negative rate", []float64{1, 2}, -5, windowing.None, ErrInvalidInput},
		{"unknown window", []float64{1, 2}, 10, "kaiser", ErrInvalidInput},
		{"infinite sample", []float64{1, math.Inf(1)}, 10, windowing.None, ErrTransformFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compute(tt.samples, tt.fs, tt.kind)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSpectrum_IsImmutable(t *testing.T) {
	freqs := []float64{0, 1, 2}
	amps := []float64{5, 6, 7}
	s, err := NewSpectrum(freqs, amps)
	if err != nil {
		t.Fatalf("NewSpectrum: %v", err)
	}

	freqs[1] = 100
	s.Amplitudes()[0] = -1
	if s.Frequency(1) != 1 || s.Amplitude(0) != 5 {
		t.Fatal("spectrum changed through an aliased slice")
	}

	clone := s.Clone()
	if clone == s || clone.Len() != s.Len() || clone.Amplitude(2) != 7 {
		t.Fatal("clone differs from source")
	}

	if _, err := NewSpectrum([]float64{0}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unequal lengths, got %v", err)
	}
}
