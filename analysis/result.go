package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/RyanBlaney/fftscope/algorithms/peaks"
	"github.com/RyanBlaney/fftscope/algorithms/spectral"
	"github.com/RyanBlaney/fftscope/algorithms/windowing"
)

var (
	ErrInvalidInput  = spectral.ErrInvalidInput
	ErrInvalidPolicy = peaks.ErrInvalidPolicy

	// ErrNotFound is returned for registry lookups by a stale id
	ErrNotFound = errors.New("result not found")
)

// RangeAdjustment records a requested row window clamped to the table size
type RangeAdjustment struct {
	RequestedRows int `json:"requested_rows"`
	UsedRows      int `json:"used_rows"`
}

// Result is one completed analysis run: the spectrum plus what produced it
type Result struct {
	Name         string             `json:"name"`
	Column       string             `json:"column"`
	SamplingRate float64            `json:"sampling_rate"`
	FirstRow     int                `json:"first_row"` // 1-based
	LastRow      int                `json:"last_row"`
	Samples      int                `json:"samples"`
	Window       windowing.Type     `json:"window"`
	Color        string             `json:"color"`
	CreatedAt    time.Time          `json:"created_at"`
	Spectrum     *spectral.Spectrum `json:"-"`
	Adjustment   *RangeAdjustment   `json:"adjustment,omitempty"`
}

// DisplayName is the analysis name, falling back to the column name
func (r *Result) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Column
}

func (r *Result) RangeText() string {
	return fmt.Sprintf("Rows %d-%d", r.FirstRow, r.LastRow)
}

// Title is the plot heading of a single-result view
func (r *Result) Title() string {
	return fmt.Sprintf("FFT Analysis: %s (%s)", r.DisplayName(), r.RangeText())
}

// Clone returns a deep copy sharing nothing with r
func (r *Result) Clone() *Result {
	clone := *r
	if r.Spectrum != nil {
		clone.Spectrum = r.Spectrum.Clone()
	}
	if r.Adjustment != nil {
		adj := *r.Adjustment
		clone.Adjustment = &adj
	}
	return &clone
}
