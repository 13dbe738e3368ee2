// Package inspect tracks the cursor and pinned points over plotted spectra.
package inspect

import (
	"math"

	"github.com/RyanBlaney/fftscope/algorithms/spectral"
)

// DefaultTolerance is the fraction of a series' frequency span within which
// the cursor snaps to a bin
const DefaultTolerance = 0.02

// Series is one plotted spectrum. ID is the registry id of a saved result
// and 0 for the unsaved single-view spectrum.
type Series struct {
	ID       int
	Name     string
	Color    string
	Spectrum *spectral.Spectrum
}

// Hit is the bin a cursor position resolved to
type Hit struct {
	Index     int // position of the series in the candidate list
	SeriesID  int
	Name      string
	Bin       int
	Frequency float64
	Amplitude float64
	Distance  float64
}

// Locator snaps a cursor x position to the nearest plotted bin
type Locator struct {
	Tolerance float64
}

func NewLocator() *Locator {
	return &Locator{Tolerance: DefaultTolerance}
}

// Nearest finds the bin closest to x across all candidates. A series only
// accepts when its nearest bin lies within Tolerance of its own frequency
// span. The smallest distance wins and ties keep the earlier series. A
// candidate with fewer than two bins has no span, and the call finds nothing.
func (l *Locator) Nearest(x float64, candidates ...Series) (Hit, bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Hit{}, false
	}
	for _, c := range candidates {
		if c.Spectrum == nil || c.Spectrum.Len() < 2 {
			return Hit{}, false
		}
	}

	best := Hit{Distance: math.Inf(1)}
	found := false
	for i, c := range candidates {
		s := c.Spectrum
		bin := s.NearestBin(x)
		distance := math.Abs(s.Frequency(bin) - x)
		if distance > l.Tolerance*s.Span() {
			continue
		}
		if distance < best.Distance {
			best = Hit{
				Index:     i,
				SeriesID:  c.ID,
				Name:      c.Name,
				Bin:       bin,
				Frequency: s.Frequency(bin),
				Amplitude: s.Amplitude(bin),
				Distance:  distance,
			}
			found = true
		}
	}
	return best, found
}
