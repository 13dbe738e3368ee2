// Package app wires the fftscope command to a workspace.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/RyanBlaney/fftscope/algorithms/peaks"
	"github.com/RyanBlaney/fftscope/algorithms/windowing"
	"github.com/RyanBlaney/fftscope/analysis"
	"github.com/RyanBlaney/fftscope/config"
	"github.com/RyanBlaney/fftscope/inspect"
	"github.com/RyanBlaney/fftscope/logging"
	"github.com/RyanBlaney/fftscope/session"
	"github.com/RyanBlaney/fftscope/source"
)

// Run executes one batch analysis, or the interactive loop with -i
func Run(ctx context.Context, c *Config, in io.Reader, out io.Writer) error {
	logger := logging.WithContext(logging.ContextWithFields(ctx, logging.Fields{
		"component": "cli",
	}))

	// a broken settings file is reported by Load and replaced by defaults
	settings, err := config.Load(c.SettingsPath)
	if err != nil {
		logger.Warn("Continuing with default settings", logging.Fields{"error": err.Error()})
	}

	ws, err := session.NewWorkspace(settings)
	if err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}
	defer ws.Close()

	if c.File != "" {
		if err := openTable(ws, c.File); err != nil {
			return err
		}
	}

	if c.Interactive {
		return newShell(ws, c, out).loop(ctx, in)
	}
	return batch(ws, c, out)
}

func openTable(ws *session.Workspace, path string) error {
	table, err := source.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	ws.Open(table)
	return nil
}

func batch(ws *session.Workspace, c *Config, out io.Writer) error {
	result, err := ws.Run(request(ws, c))
	if err != nil {
		return err
	}
	printResult(out, result)
	printPeaks(out, ws.Peaks())

	if c.CSVPath != "" {
		if err := ws.ExportSpectrum(c.CSVPath); err != nil {
			return fmt.Errorf("exporting spectrum: %w", err)
		}
		fmt.Fprintf(out, "Data exported to %s\n", c.CSVPath)
	}
	if c.PlotPath != "" {
		if err := ws.ExportPlot(session.SingleView, c.PlotPath); err != nil {
			return fmt.Errorf("exporting plot: %w", err)
		}
		fmt.Fprintf(out, "Plot exported to %s\n", c.PlotPath)
	}
	return nil
}

// request builds the analysis request from the options; a zero row count
// reads to the end of the open table
func request(ws *session.Workspace, c *Config) analysis.Request {
	rows := c.RowCount
	if rows == 0 && ws.Table() != nil {
		rows = ws.Table().Rows() - c.StartRow + 1
	}
	return analysis.Request{
		Name:         c.Name,
		Column:       c.Column,
		SamplingRate: c.SamplingRate,
		StartRow:     c.StartRow,
		RowCount:     rows,
		Window:       windowing.Type(strings.ToLower(c.Window)),
	}
}

func printResult(out io.Writer, r *analysis.Result) {
	fmt.Fprintf(out, "%s\n", r.Title())
	fmt.Fprintf(out, "  %s samples at %s, window %s, resolution %s\n",
		humanize.Comma(int64(r.Samples)), formatHz(r.SamplingRate), r.Window, formatHz(r.Spectrum.Resolution()))
	if r.Adjustment != nil {
		fmt.Fprintf(out, "  requested %s rows, used %s\n",
			humanize.Comma(int64(r.Adjustment.RequestedRows)), humanize.Comma(int64(r.Adjustment.UsedRows)))
	}
}

func printPeaks(out io.Writer, found []peaks.Peak) {
	if len(found) == 0 {
		fmt.Fprintln(out, "  no labeled peaks")
		return
	}
	for i, p := range found {
		fmt.Fprintf(out, "  %s peak: %.1f Hz  %.2e\n", humanize.Ordinal(i+1), p.Frequency, p.Amplitude)
	}
}

func printPins(out io.Writer, pins []inspect.Pin) {
	if len(pins) == 0 {
		fmt.Fprintln(out, "  no pins")
		return
	}
	for i, p := range pins {
		fmt.Fprintf(out, "  [%d] %s\n", i, strings.ReplaceAll(p.Label(), "\n", "  "))
	}
}

func formatHz(hz float64) string {
	value, suffix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%0.2f %sHz", value, suffix)
}

// textSurface prints a one-line summary of every redraw
type textSurface struct {
	view session.View
	out  io.Writer
}

func (s textSurface) Draw(f inspect.Frame) {
	var parts []string
	if f.Title != "" {
		parts = append(parts, f.Title)
	}
	parts = append(parts, fmt.Sprintf("%d series", len(f.Series)))
	if f.Caption != "" {
		parts = append(parts, f.Caption)
	}
	if f.Hover != nil {
		parts = append(parts, "hover: "+strings.ReplaceAll(f.Hover.Label(), "\n", " "))
	}
	fmt.Fprintf(s.out, "<%s> %s\n", s.view, strings.Join(parts, " | "))
}
