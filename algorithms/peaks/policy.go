package peaks

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/RyanBlaney/fftscope/algorithms/common"
)

// ErrInvalidPolicy reports detection parameters outside their documented ranges
var ErrInvalidPolicy = errors.New("invalid peak detection policy")

// Mode selects how the amplitude threshold is derived
type Mode string

const (
	Relative    Mode = "relative"
	Absolute    Mode = "absolute"
	Statistical Mode = "statistical"
)

// ParseMode maps a settings value onto a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Relative:
		return Relative, nil
	case Absolute:
		return Absolute, nil
	case Statistical:
		return Statistical, nil
	default:
		return "", fmt.Errorf("%w: unknown threshold mode %q", ErrInvalidPolicy, s)
	}
}

// Policy is the threshold rule of one detection call.
// Value is a fraction of the maximum (Relative), an amplitude (Absolute)
// or a standard deviation factor (Statistical).
type Policy struct {
	Mode  Mode    `json:"mode"`
	Value float64 `json:"value"`
}

func RelativeThreshold(fraction float64) Policy {
	return Policy{Mode: Relative, Value: fraction}
}

func AbsoluteThreshold(amplitude float64) Policy {
	return Policy{Mode: Absolute, Value: amplitude}
}

func StatisticalThreshold(factor float64) Policy {
	return Policy{Mode: Statistical, Value: factor}
}

// Validate checks Value against the range of its mode
func (p Policy) Validate() error {
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return fmt.Errorf("%w: %s threshold must be finite, got %v", ErrInvalidPolicy, p.Mode, p.Value)
	}

	switch p.Mode {
	case Relative:
		if p.Value <= 0 || p.Value > 1 {
			return fmt.Errorf("%w: relative threshold must be in (0, 1], got %v", ErrInvalidPolicy, p.Value)
		}
	case Absolute:
		if p.Value < 0 {
			return fmt.Errorf("%w: absolute threshold must be >= 0, got %v", ErrInvalidPolicy, p.Value)
		}
	case Statistical:
		if p.Value < 0 {
			return fmt.Errorf("%w: statistical factor must be >= 0, got %v", ErrInvalidPolicy, p.Value)
		}
	default:
		return fmt.Errorf("%w: unknown threshold mode %q", ErrInvalidPolicy, p.Mode)
	}
	return nil
}

// Threshold resolves the policy against the amplitudes considered for peaks
func (p Policy) Threshold(amplitudes []float64) float64 {
	switch p.Mode {
	case Relative:
		return p.Value * common.Max(amplitudes)
	case Statistical:
		mean, std := common.PopulationMeanStdDev(amplitudes)
		return mean + p.Value*std
	default:
		return p.Value
	}
}

func (p Policy) String() string {
	switch p.Mode {
	case Relative:
		return fmt.Sprintf("relative(%.0f%% of max)", p.Value*100)
	case Statistical:
		return fmt.Sprintf("statistical(mean + %.2g·σ)", p.Value)
	default:
		return fmt.Sprintf("%s(%.3g)", p.Mode, p.Value)
	}
}
