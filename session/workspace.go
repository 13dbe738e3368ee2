// Package session drives an interactive analysis: it runs analyses, keeps
// the saved results and routes pointer events to the pin boards of the
// single and overlay views.
package session

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/fftscope/algorithms/peaks"
	"github.com/RyanBlaney/fftscope/analysis"
	"github.com/RyanBlaney/fftscope/config"
	"github.com/RyanBlaney/fftscope/export"
	"github.com/RyanBlaney/fftscope/inspect"
	"github.com/RyanBlaney/fftscope/logging"
	"github.com/RyanBlaney/fftscope/source"
)

// OverlayTitle heads the plot of combined saved results
const OverlayTitle = "Combined FFT Results"

// ErrNoAnalysis is returned when an operation needs a plotted spectrum
var ErrNoAnalysis = errors.New("no analysis results")

// View identifies one of the two plots of a workspace
type View int

const (
	SingleView View = iota
	OverlayView
)

func (v View) String() string {
	if v == OverlayView {
		return "overlay"
	}
	return "single"
}

// ParseView maps "single" and "overlay" onto a View
func ParseView(s string) (View, error) {
	switch s {
	case "single", "":
		return SingleView, nil
	case "overlay", "combined":
		return OverlayView, nil
	}
	return SingleView, fmt.Errorf("unknown view %q", s)
}

// Button is the pointer button of a click
type Button int

const (
	LeftButton Button = iota + 1
	MiddleButton
	RightButton
)

// Surface displays frames. Draw is called once per event that changed what
// the view shows.
type Surface interface {
	Draw(frame inspect.Frame)
}

// SurfaceFunc adapts a function to Surface
type SurfaceFunc func(frame inspect.Frame)

func (f SurfaceFunc) Draw(frame inspect.Frame) {
	f(frame)
}

// Workspace is not safe for concurrent use; events are handled one at a time.
type Workspace struct {
	settings *config.Settings
	analyzer *analysis.Analyzer
	registry *analysis.Registry
	boards   map[View]*inspect.Board
	surfaces map[View]Surface
	logger   logging.Logger

	table   source.Table
	current *analysis.Result
	labels  []peaks.Peak
	shown   []int // registry ids on the overlay view
}

// NewWorkspace creates a workspace with a copy of settings; nil uses the
// defaults.
func NewWorkspace(settings *config.Settings) (*Workspace, error) {
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &Workspace{
		settings: settings.Clone(),
		analyzer: analysis.NewAnalyzer(),
		registry: analysis.NewRegistry(),
		boards: map[View]*inspect.Board{
			SingleView:  inspect.NewBoard(false),
			OverlayView: inspect.NewBoard(true),
		},
		surfaces: make(map[View]Surface),
		logger: logging.WithFields(logging.Fields{
			"component": "workspace",
		}),
	}, nil
}

// SetSurface attaches the surface that displays view
func (w *Workspace) SetSurface(view View, s Surface) {
	w.surfaces[view] = s
}

// Settings returns a copy of the active settings
func (w *Workspace) Settings() *config.Settings {
	return w.settings.Clone()
}

// ApplySettings validates and activates s. The next run uses it; the
// plotted spectrum keeps its labels until then.
func (w *Workspace) ApplySettings(s *config.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	w.settings = s.Clone()
	return nil
}

// Open sets the table analyses read from, closing the one it replaces
func (w *Workspace) Open(table source.Table) {
	if w.table != table {
		w.closeTable()
	}
	w.table = table
	w.logger.Info("Table opened", logging.Fields{
		"columns": len(table.Columns()),
		"rows":    table.Rows(),
	})
}

func (w *Workspace) Table() source.Table {
	return w.table
}

// Close releases the open table
func (w *Workspace) Close() error {
	err := w.closeTable()
	w.table = nil
	return err
}

func (w *Workspace) closeTable() error {
	if w.table == nil {
		return nil
	}
	err := w.table.Close()
	if err != nil {
		w.logger.Warn("Closing table failed", logging.Fields{"error": err.Error()})
	}
	return err
}

// Registry exposes the saved results
func (w *Workspace) Registry() *analysis.Registry {
	return w.registry
}

// Board returns the pin board behind view
func (w *Workspace) Board(view View) *inspect.Board {
	return w.boards[view]
}

// Current returns the spectrum on the single view
func (w *Workspace) Current() (*analysis.Result, bool) {
	if w.current == nil {
		return nil, false
	}
	return w.current.Clone(), true
}

// Peaks returns the labeled peaks of the current spectrum
func (w *Workspace) Peaks() []peaks.Peak {
	return append([]peaks.Peak(nil), w.labels...)
}

// Shown returns the registry ids plotted on the overlay view
func (w *Workspace) Shown() []int {
	return append([]int(nil), w.shown...)
}

// Run analyzes req and replaces the single view. An empty req.Window uses
// the configured window function. Invalid peak settings leave the spectrum
// unlabeled rather than failing the run.
func (w *Workspace) Run(req analysis.Request) (*analysis.Result, error) {
	if req.Window == "" {
		kind, err := w.settings.Window()
		if err != nil {
			return nil, err
		}
		req.Window = kind
	}

	color := w.registry.NextColor(w.settings.DefaultColors)
	result, err := w.analyzer.Run(w.table, req, color)
	if err != nil {
		return nil, err
	}

	var labels []peaks.Peak
	if w.settings.PeakLabelsCount > 0 {
		labels, err = w.label(result)
		if err != nil {
			w.logger.Error(err, "Peak labeling skipped", logging.Fields{
				"function": "Run",
			})
		}
	}

	w.current = result
	w.labels = labels
	w.boards[SingleView].Load(inspect.Series{
		Name:     result.DisplayName(),
		Color:    result.Color,
		Spectrum: result.Spectrum,
	})
	w.draw(SingleView)

	return result.Clone(), nil
}

func (w *Workspace) label(result *analysis.Result) ([]peaks.Peak, error) {
	cfg, err := w.settings.DetectorConfig()
	if err != nil {
		return nil, err
	}
	return w.analyzer.Peaks(result, cfg, w.settings.PeakLabelsCount)
}

// Save stores a copy of the current result and returns its id. The color is
// recomputed from the registry size at save time.
func (w *Workspace) Save() (int, error) {
	if w.current == nil {
		return 0, fmt.Errorf("%w: run an analysis first", ErrNoAnalysis)
	}

	result := w.current.Clone()
	result.Color = w.registry.NextColor(w.settings.DefaultColors)
	id := w.registry.Insert(result)

	w.logger.Info("Result saved", logging.Fields{
		"id":    id,
		"name":  result.DisplayName(),
		"color": result.Color,
	})
	return id, nil
}

// Overlay plots the saved results with the given ids together. Unknown ids
// are skipped with a warning and overlay pins are cleared. When none of the
// ids is saved the overlay is left as it was.
func (w *Workspace) Overlay(ids ...int) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no results selected", ErrNoAnalysis)
	}

	series, shown := w.collect(ids)
	if len(series) == 0 {
		return fmt.Errorf("%w: none of %v are saved", ErrNoAnalysis, ids)
	}
	w.showOverlay(series, shown)
	return nil
}

// collect looks up saved results, warning about ids that are gone
func (w *Workspace) collect(ids []int) ([]inspect.Series, []int) {
	var series []inspect.Series
	var found []int
	for _, id := range ids {
		result, err := w.registry.Get(id)
		if err != nil {
			w.logger.Warn("Skipping result", logging.Fields{
				"function": "Overlay",
				"id":       id,
				"error":    err.Error(),
			})
			continue
		}
		series = append(series, inspect.Series{
			ID:       id,
			Name:     result.DisplayName(),
			Color:    result.Color,
			Spectrum: result.Spectrum,
		})
		found = append(found, id)
	}
	return series, found
}

func (w *Workspace) showOverlay(series []inspect.Series, shown []int) {
	w.shown = shown
	w.boards[OverlayView].Load(series...)
	w.draw(OverlayView)
}

// Remove deletes saved results and reports how many existed. Removed
// results disappear from the overlay view.
func (w *Workspace) Remove(ids ...int) int {
	removed := make(map[int]bool)
	for _, id := range ids {
		if w.registry.Remove(id) {
			removed[id] = true
		}
	}
	if len(removed) == 0 {
		return 0
	}

	var keep []int
	for _, id := range w.shown {
		if !removed[id] {
			keep = append(keep, id)
		}
	}
	if len(keep) != len(w.shown) {
		series, shown := w.collect(keep)
		w.showOverlay(series, shown)
	}
	return len(removed)
}

// RemoveAll deletes every saved result and empties the overlay view
func (w *Workspace) RemoveAll() {
	w.registry.RemoveAll()
	w.clearOverlay()
}

func (w *Workspace) clearOverlay() {
	w.showOverlay(nil, nil)
}

// SetViewport records the limits a surface shows for view
func (w *Workspace) SetViewport(view View, v inspect.Viewport) bool {
	return w.boards[view].SetViewport(v)
}

// Hover moves the hover marker of view
func (w *Workspace) Hover(view View, p inspect.Point) {
	board := w.boards[view]
	before, had := board.HoverMarker()
	shown := board.Hover(p)
	after, _ := board.HoverMarker()
	if had || shown {
		if had != shown || before != after {
			w.draw(view)
		}
	}
}

// Leave hides the hover marker of view
func (w *Workspace) Leave(view View) {
	if w.boards[view].Leave() {
		w.draw(view)
	}
}

// Click pins with the left button. The right button removes the pin under
// the pointer, or every pin when there is none.
func (w *Workspace) Click(view View, button Button, p inspect.Point) {
	board := w.boards[view]
	switch button {
	case LeftButton:
		if _, ok := board.Pin(p); ok {
			w.draw(view)
		}
	case RightButton:
		before := board.Len()
		board.UnpinAt(p)
		if board.Len() != before {
			w.draw(view)
		}
	}
}

// ClearPins removes every pin of view
func (w *Workspace) ClearPins(view View) {
	board := w.boards[view]
	if board.Len() == 0 {
		return
	}
	board.Clear()
	w.draw(view)
}

// Frame snapshots view for drawing
func (w *Workspace) Frame(view View) inspect.Frame {
	if view == OverlayView {
		return w.boards[OverlayView].Frame(OverlayTitle, nil)
	}

	title := ""
	if w.current != nil {
		title = w.current.Title()
	}
	labels := make([]inspect.Label, 0, len(w.labels))
	for _, p := range w.labels {
		labels = append(labels, inspect.PeakLabel(p.Frequency, p.Amplitude, ""))
	}
	return w.boards[SingleView].Frame(title, labels)
}

func (w *Workspace) draw(view View) {
	if s, ok := w.surfaces[view]; ok && s != nil {
		s.Draw(w.Frame(view))
	}
}

// ExportSpectrum writes the current spectrum as CSV
func (w *Workspace) ExportSpectrum(path string) error {
	if w.current == nil {
		return fmt.Errorf("%w: nothing to export", ErrNoAnalysis)
	}
	return export.SaveSpectrum(path, w.current.Spectrum)
}

// ExportPlot renders view to an image file
func (w *Workspace) ExportPlot(view View, path string) error {
	frame := w.Frame(view)
	if len(frame.Series) == 0 {
		return fmt.Errorf("%w: %s view is empty", ErrNoAnalysis, view)
	}

	cfg := export.DefaultPlotConfig()
	cfg.PinFaceColor = w.settings.PinFaceColor
	cfg.PinEdgeColor = w.settings.PinEdgeColor
	plotter, err := export.NewPlotter(cfg)
	if err != nil {
		return err
	}
	return plotter.SavePlot(path, frame)
}
