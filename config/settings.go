// Package config holds the persisted analysis settings.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RyanBlaney/fftscope/algorithms/peaks"
	"github.com/RyanBlaney/fftscope/algorithms/windowing"
)

// DefaultPath is where settings are kept when no path is given
const DefaultPath = "fft_analyzer_settings.json"

// ErrInvalidSettings is returned when a settings document fails validation
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the user-tunable analysis options. Field names follow the
// keys of the settings file.
type Settings struct {
	PeakLabelsCount       int      `json:"peak_labels_count" yaml:"peak_labels_count"`
	PeakThresholdMode     string   `json:"peak_threshold_mode" yaml:"peak_threshold_mode"`
	PeakRelativeThreshold float64  `json:"peak_relative_threshold" yaml:"peak_relative_threshold"`
	PeakAbsoluteThreshold float64  `json:"peak_absolute_threshold" yaml:"peak_absolute_threshold"`
	PeakStatisticalFactor float64  `json:"peak_statistical_factor" yaml:"peak_statistical_factor"`
	PeakMinDistance       int      `json:"peak_min_distance" yaml:"peak_min_distance"`
	SkipDCComponent       bool     `json:"skip_dc_component" yaml:"skip_dc_component"`
	PeakWindowSize        int      `json:"peak_window_size" yaml:"peak_window_size"`
	DefaultColors         []string `json:"default_colors" yaml:"default_colors"`
	WindowFunction        string   `json:"window_function" yaml:"window_function"`
	PinFaceColor          string   `json:"pin_face_color" yaml:"pin_face_color"`
	PinEdgeColor          string   `json:"pin_edge_color" yaml:"pin_edge_color"`
}

// Default returns the factory settings
func Default() *Settings {
	return &Settings{
		PeakLabelsCount:       5,
		PeakThresholdMode:     string(peaks.Relative),
		PeakRelativeThreshold: 0.1,
		PeakAbsoluteThreshold: 0.001,
		PeakStatisticalFactor: 1.0,
		PeakMinDistance:       10,
		SkipDCComponent:       true,
		PeakWindowSize:        3,
		DefaultColors:         []string{"#0095ff", "#ff7f0e", "#22d322", "#ff0000", "#a94cff", "#8c564b"},
		WindowFunction:        string(windowing.None),
		PinFaceColor:          "yellow",
		PinEdgeColor:          "orange",
	}
}

// Clone returns a copy that shares no slices with s
func (s *Settings) Clone() *Settings {
	clone := *s
	clone.DefaultColors = append([]string(nil), s.DefaultColors...)
	return &clone
}

// Validate reports every out-of-range option at once
func (s *Settings) Validate() error {
	var errs []error

	if s.PeakLabelsCount < 0 {
		errs = append(errs, fmt.Errorf("peak_labels_count must be >= 0, got %d", s.PeakLabelsCount))
	}
	if _, err := peaks.ParseMode(s.PeakThresholdMode); err != nil {
		errs = append(errs, err)
	}
	for _, p := range []peaks.Policy{
		peaks.RelativeThreshold(s.PeakRelativeThreshold),
		peaks.AbsoluteThreshold(s.PeakAbsoluteThreshold),
		peaks.StatisticalThreshold(s.PeakStatisticalFactor),
	} {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.PeakMinDistance < 1 {
		errs = append(errs, fmt.Errorf("peak_min_distance must be >= 1, got %d", s.PeakMinDistance))
	}
	if s.PeakWindowSize < 1 {
		errs = append(errs, fmt.Errorf("peak_window_size must be >= 1, got %d", s.PeakWindowSize))
	}
	if len(s.DefaultColors) == 0 {
		errs = append(errs, errors.New("default_colors must not be empty"))
	}
	for i, c := range s.DefaultColors {
		if strings.TrimSpace(c) == "" {
			errs = append(errs, fmt.Errorf("default_colors[%d] is blank", i))
		}
	}
	if _, err := windowing.ParseType(s.WindowFunction); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(s.PinFaceColor) == "" || strings.TrimSpace(s.PinEdgeColor) == "" {
		errs = append(errs, errors.New("pin colors must not be blank"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// Policy returns the threshold policy selected by PeakThresholdMode
func (s *Settings) Policy() (peaks.Policy, error) {
	mode, err := peaks.ParseMode(s.PeakThresholdMode)
	if err != nil {
		return peaks.Policy{}, err
	}

	var p peaks.Policy
	switch mode {
	case peaks.Absolute:
		p = peaks.AbsoluteThreshold(s.PeakAbsoluteThreshold)
	case peaks.Statistical:
		p = peaks.StatisticalThreshold(s.PeakStatisticalFactor)
	default:
		p = peaks.RelativeThreshold(s.PeakRelativeThreshold)
	}
	return p, p.Validate()
}

// DetectorConfig assembles the peak detector parameters
func (s *Settings) DetectorConfig() (peaks.Config, error) {
	policy, err := s.Policy()
	if err != nil {
		return peaks.Config{}, err
	}
	cfg := peaks.Config{
		Policy:      policy,
		MinDistance: s.PeakMinDistance,
		HalfWidth:   s.PeakWindowSize,
		SkipDC:      s.SkipDCComponent,
	}
	return cfg, cfg.Validate()
}

func (s *Settings) Window() (windowing.Type, error) {
	return windowing.ParseType(s.WindowFunction)
}
