package windowing

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// Type identifies a tapering function applied before the transform
type Type string

const (
	None     Type = "none"
	Blackman Type = "blackman"
	Hann     Type = "hann"
	Hamming  Type = "hamming"
)

// Types lists the supported window types in display order
var Types = []Type{None, Blackman, Hann, Hamming}

// ParseType maps a settings or flag value onto a Type. Empty means None.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "rectangular":
		return None, nil
	case "blackman":
		return Blackman, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	default:
		return None, fmt.Errorf("unknown window function: %q", s)
	}
}

// Window holds the weights of one window function for a fixed size
type Window struct {
	kind         Type
	coefficients []float64
}

// New generates the symmetric weights of kind for size samples.
// None yields all ones.
func New(kind Type, size int) (*Window, error) {
	if size < 0 {
		return nil, fmt.Errorf("window size must not be negative, got %d", size)
	}

	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1.0
	}

	// gonum divides by size-1; a single sample keeps its unit weight
	if size > 1 {
		switch kind {
		case None:
		case Blackman:
			window.Blackman(coeffs)
		case Hann:
			window.Hann(coeffs)
		case Hamming:
			window.Hamming(coeffs)
		default:
			return nil, fmt.Errorf("unknown window function: %q", kind)
		}
	} else if _, err := ParseType(string(kind)); err != nil {
		return nil, err
	}

	return &Window{kind: kind, coefficients: coeffs}, nil
}

// Apply applies the window to a signal (creates new array)
func (w *Window) Apply(signal []float64) ([]float64, error) {
	if len(signal) != len(w.coefficients) {
		return nil, fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(w.coefficients))
	}

	windowed := make([]float64, len(signal))
	for i, v := range signal {
		windowed[i] = v * w.coefficients[i]
	}
	return windowed, nil
}

// ApplyInPlace applies the window to a signal in-place
func (w *Window) ApplyInPlace(signal []float64) error {
	if len(signal) != len(w.coefficients) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(w.coefficients))
	}

	for i := range signal {
		signal[i] *= w.coefficients[i]
	}
	return nil
}

// Coefficients returns a copy of the window coefficients
func (w *Window) Coefficients() []float64 {
	coeffs := make([]float64, len(w.coefficients))
	copy(coeffs, w.coefficients)
	return coeffs
}

func (w *Window) Size() int {
	return len(w.coefficients)
}

func (w *Window) Type() Type {
	return w.kind
}
