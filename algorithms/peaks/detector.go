package peaks

import (
	"fmt"
	"sort"

	"github.com/RyanBlaney/fftscope/algorithms/spectral"
)

// Peak is a local maximum copied out of one spectrum
type Peak struct {
	Bin       int     `json:"bin"`
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"`
}

// Config holds the parameters of one detection call
type Config struct {
	Policy Policy `json:"policy"`

	// MinDistance is the minimum separation between accepted peaks, in bins
	MinDistance int `json:"min_distance"`

	// HalfWidth is how many neighbours on each side a peak must exceed
	HalfWidth int `json:"half_width"`

	// SkipDC excludes bin 0 from the threshold statistics and the scan
	SkipDC bool `json:"skip_dc"`
}

// DefaultConfig mirrors the default analysis settings
func DefaultConfig() Config {
	return Config{
		Policy:      RelativeThreshold(0.1),
		MinDistance: 10,
		HalfWidth:   3,
		SkipDC:      true,
	}
}

func (c Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if c.MinDistance < 1 {
		return fmt.Errorf("%w: minimum distance must be >= 1, got %d", ErrInvalidPolicy, c.MinDistance)
	}
	if c.HalfWidth < 1 {
		return fmt.Errorf("%w: window half width must be >= 1, got %d", ErrInvalidPolicy, c.HalfWidth)
	}
	return nil
}

// Detect finds the peaks of s in ascending scan order.
//
// A candidate must be strictly greater than every neighbour within HalfWidth
// bins and strictly above the threshold. Separation is enforced online: a new
// candidate is compared only with the first already accepted peak closer than
// MinDistance, and the higher of the two survives. The result therefore
// depends on scan order and is not a global optimum.
func Detect(s *spectral.Spectrum, cfg Config) ([]Peak, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	amplitudes := s.Amplitudes()
	start := 0
	if cfg.SkipDC {
		start = 1
	}
	if start >= len(amplitudes) {
		return nil, nil
	}

	threshold := cfg.Policy.Threshold(amplitudes[start:])
	hw := cfg.HalfWidth

	var accepted []int
	for i := start + hw; i < len(amplitudes)-hw; i++ {
		if !isLocalMaximum(amplitudes, i, hw) || amplitudes[i] <= threshold {
			continue
		}

		keep := true
		for j, prior := range accepted {
			if abs(i-prior) >= cfg.MinDistance {
				continue
			}
			if amplitudes[i] > amplitudes[prior] {
				accepted = append(accepted[:j], accepted[j+1:]...)
			} else {
				keep = false
			}
			break
		}

		if keep {
			accepted = append(accepted, i)
		}
	}

	found := make([]Peak, len(accepted))
	for n, bin := range accepted {
		found[n] = Peak{
			Bin:       bin,
			Frequency: s.Frequency(bin),
			Amplitude: amplitudes[bin],
		}
	}
	return found, nil
}

func isLocalMaximum(amplitudes []float64, i, hw int) bool {
	for j := -hw; j <= hw; j++ {
		if j != 0 && amplitudes[i] <= amplitudes[i+j] {
			return false
		}
	}
	return true
}

// Strongest orders peaks by amplitude, highest first, and keeps count of them.
// A count of zero disables labeling.
func Strongest(found []Peak, count int) []Peak {
	if count <= 0 || len(found) == 0 {
		return nil
	}

	ranked := make([]Peak, len(found))
	copy(ranked, found)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amplitude > ranked[j].Amplitude
	})

	if len(ranked) > count {
		ranked = ranked[:count]
	}
	return ranked
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
