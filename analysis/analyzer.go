package analysis

import (
	"fmt"
	"time"

	"github.com/RyanBlaney/fftscope/algorithms/peaks"
	"github.com/RyanBlaney/fftscope/algorithms/spectral"
	"github.com/RyanBlaney/fftscope/algorithms/windowing"
	"github.com/RyanBlaney/fftscope/logging"
	"github.com/RyanBlaney/fftscope/source"
)

// Request describes one analysis run over a table column
type Request struct {
	Name         string         `json:"name"`
	Column       string         `json:"column"`
	SamplingRate float64        `json:"sampling_rate"`
	StartRow     int            `json:"start_row"` // 1-based
	RowCount     int            `json:"row_count"`
	Window       windowing.Type `json:"window"`
}

// Analyzer runs the windowing → transform pipeline over table columns
type Analyzer struct {
	computer *spectral.Computer
	logger   logging.Logger
	now      func() time.Time
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		computer: spectral.NewComputer(),
		logger: logging.WithFields(logging.Fields{
			"component": "analyzer",
		}),
		now: time.Now,
	}
}

// Run slices the requested rows, drops missing values and computes the
// spectrum. A row window running past the table is clamped, recorded in
// Result.Adjustment and logged; it is not an error.
func (a *Analyzer) Run(table source.Table, req Request, color string) (*Result, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: no table loaded", ErrInvalidInput)
	}
	if req.Column == "" {
		return nil, fmt.Errorf("%w: no column selected", ErrInvalidInput)
	}
	if req.StartRow < 1 {
		return nil, fmt.Errorf("%w: start row must be >= 1, got %d", ErrInvalidInput, req.StartRow)
	}
	if req.RowCount < 1 {
		return nil, fmt.Errorf("%w: row count must be >= 1, got %d", ErrInvalidInput, req.RowCount)
	}

	logger := a.logger.WithFields(logging.Fields{
		"function": "Run",
		"column":   req.Column,
	})

	rows := table.Rows()
	start := req.StartRow - 1
	if start >= rows {
		return nil, fmt.Errorf("%w: start row (%d) exceeds data size (%d rows)", ErrInvalidInput, req.StartRow, rows)
	}

	var adjustment *RangeAdjustment
	end := start + req.RowCount
	if end > rows {
		end = rows
		adjustment = &RangeAdjustment{RequestedRows: req.RowCount, UsedRows: end - start}
		logger.Warn("Requested range exceeds data size, clamping", logging.Fields{
			"requested_rows": req.RowCount,
			"used_rows":      end - start,
		})
	}

	column, err := table.Column(req.Column)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if end > len(column) {
		return nil, fmt.Errorf("%w: column %q has %d values, table reports %d rows", ErrInvalidInput, req.Column, len(column), rows)
	}

	kind := req.Window
	if kind == "" {
		kind = windowing.None
	}

	samples := spectral.CleanSamples(column[start:end])
	spectrum, err := a.computer.Compute(samples, req.SamplingRate, kind)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", req.Column, err)
	}

	result := &Result{
		Name:         req.Name,
		Column:       req.Column,
		SamplingRate: req.SamplingRate,
		FirstRow:     req.StartRow,
		LastRow:      start + len(samples),
		Samples:      len(samples),
		Window:       kind,
		Color:        color,
		CreatedAt:    a.now(),
		Spectrum:     spectrum,
		Adjustment:   adjustment,
	}
	logger.Info("Analysis completed", logging.Fields{
		"samples": result.Samples,
		"dropped": (end - start) - result.Samples,
		"bins":    spectrum.Len(),
		"range":   result.RangeText(),
	})

	return result, nil
}

// Peaks detects and ranks the label peaks of a result
func (a *Analyzer) Peaks(result *Result, cfg peaks.Config, count int) ([]peaks.Peak, error) {
	if count <= 0 || result == nil || result.Spectrum == nil {
		return nil, nil
	}

	found, err := peaks.Detect(result.Spectrum, cfg)
	if err != nil {
		return nil, err
	}

	top := peaks.Strongest(found, count)
	a.logger.Debug("Peaks labeled", logging.Fields{
		"function": "Peaks",
		"found":    len(found),
		"labeled":  len(top),
		"policy":   cfg.Policy.String(),
	})
	return top, nil
}
