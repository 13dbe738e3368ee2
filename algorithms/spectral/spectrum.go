package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/fftscope/algorithms/common"
	"github.com/RyanBlaney/fftscope/algorithms/windowing"
	"github.com/RyanBlaney/fftscope/logging"
)

var (
	// ErrInvalidInput reports an empty sample range or a bad sampling rate
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransformFailure reports non-finite numeric input or output
	ErrTransformFailure = errors.New("transform failure")
)

// Spectrum is a single-sided amplitude spectrum. It is immutable once built:
// frequencies and amplitudes are index-aligned and only exposed by copy.
type Spectrum struct {
	frequencies []float64
	amplitudes  []float64
}

// NewSpectrum builds a Spectrum from copies of frequencies and amplitudes
func NewSpectrum(frequencies, amplitudes []float64) (*Spectrum, error) {
	if len(frequencies) != len(amplitudes) {
		return nil, fmt.Errorf("%w: %d frequencies but %d amplitudes", ErrInvalidInput, len(frequencies), len(amplitudes))
	}

	s := &Spectrum{
		frequencies: make([]float64, len(frequencies)),
		amplitudes:  make([]float64, len(amplitudes)),
	}
	copy(s.frequencies, frequencies)
	copy(s.amplitudes, amplitudes)
	return s, nil
}

// Len returns the number of bins
func (s *Spectrum) Len() int {
	return len(s.frequencies)
}

func (s *Spectrum) Frequency(bin int) float64 {
	return s.frequencies[bin]
}

func (s *Spectrum) Amplitude(bin int) float64 {
	return s.amplitudes[bin]
}

// Frequencies returns a copy of the bin frequencies in Hz
func (s *Spectrum) Frequencies() []float64 {
	out := make([]float64, len(s.frequencies))
	copy(out, s.frequencies)
	return out
}

// Amplitudes returns a copy of the bin amplitudes
func (s *Spectrum) Amplitudes() []float64 {
	out := make([]float64, len(s.amplitudes))
	copy(out, s.amplitudes)
	return out
}

// Span returns the distance between the first and last bin frequency
func (s *Spectrum) Span() float64 {
	if len(s.frequencies) < 2 {
		return 0
	}
	return s.frequencies[len(s.frequencies)-1] - s.frequencies[0]
}

// Resolution returns the bin spacing in Hz
func (s *Spectrum) Resolution() float64 {
	if len(s.frequencies) < 2 {
		return 0
	}
	return s.frequencies[1] - s.frequencies[0]
}

// NearestBin returns the bin whose frequency is closest to hz, -1 if empty
func (s *Spectrum) NearestBin(hz float64) int {
	return common.NearestIndex(s.frequencies, hz)
}

// Clone returns an independent copy
func (s *Spectrum) Clone() *Spectrum {
	clone, _ := NewSpectrum(s.frequencies, s.amplitudes)
	return clone
}

// CleanSamples returns samples with missing (NaN) values dropped
func CleanSamples(samples []float64) []float64 {
	cleaned := make([]float64, 0, len(samples))
	for _, v := range samples {
		if !math.IsNaN(v) {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}

// Computer turns a sample sequence into a single-sided amplitude spectrum
type Computer struct {
	logger logging.Logger
}

// NewComputer creates a new spectrum computer
func NewComputer() *Computer {
	return &Computer{
		logger: logging.WithFields(logging.Fields{
			"component": "spectrum_computer",
		}),
	}
}

// Compute windows the cleaned samples, transforms them and keeps the first
// floor(N/2) bins. go-dsp handles any N, using Bluestein's algorithm when N
// is not a power of two. Bin k sits at k*fs/N with amplitude (2/N)*|X[k]|; the
// factor two restores the energy of the discarded mirror half.
func (c *Computer) Compute(samples []float64, samplingRate float64, kind windowing.Type) (*Spectrum, error) {
	if samplingRate <= 0 || math.IsNaN(samplingRate) || math.IsInf(samplingRate, 0) {
		return nil, fmt.Errorf("%w: sampling frequency must be positive, got %v", ErrInvalidInput, samplingRate)
	}

	data := CleanSamples(samples)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no valid samples in range", ErrInvalidInput)
	}
	if !common.AllFinite(data) {
		return nil, fmt.Errorf("%w: samples contain infinite values", ErrTransformFailure)
	}

	n := len(data)
	logger := c.logger.WithFields(logging.Fields{
		"function":      "Compute",
		"samples":       n,
		"dropped":       len(samples) - n,
		"sampling_rate": samplingRate,
		"window":        string(kind),
	})

	w, err := windowing.New(kind, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := w.ApplyInPlace(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransformFailure, err)
	}

	transformed := fft.FFTReal(data)

	bins := n / 2
	frequencies := make([]float64, bins)
	amplitudes := make([]float64, bins)
	scale := 2.0 / float64(n)
	for k := 0; k < bins; k++ {
		frequencies[k] = float64(k) * samplingRate / float64(n)
		amplitudes[k] = scale * cmplx.Abs(transformed[k])
	}

	if !common.AllFinite(amplitudes) {
		return nil, fmt.Errorf("%w: transform produced non-finite amplitudes", ErrTransformFailure)
	}

	logger.Debug("Spectrum computed", logging.Fields{
		"bins":       bins,
		"resolution": samplingRate / float64(n),
	})

	return &Spectrum{frequencies: frequencies, amplitudes: amplitudes}, nil
}
