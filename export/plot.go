package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/RyanBlaney/fftscope/algorithms/spectral"
	"github.com/RyanBlaney/fftscope/inspect"
	"github.com/RyanBlaney/fftscope/logging"
)

const (
	jpegQuality = 98

	pixelsPerXTick = 160.0
)

var (
	background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	foreground = drawing.ColorBlack
	gridColor  = drawing.Color{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
	hoverFace  = named("lightblue")
	hoverEdge  = named("blue")
	pinMarker  = named("orange")
	lineColor  = named("steelblue")
)

// PlotConfig sets the raster size and annotation colors of rendered plots
type PlotConfig struct {
	Width    int     // Canvas width before cropping
	Height   int     // Canvas height before cropping
	Scale    float64 // Multiplier for text, strokes and markers
	FontSize float64 // Base font size in points
	Padding  int     // White space kept around the content after cropping

	PinFaceColor string
	PinEdgeColor string
}

func DefaultPlotConfig() PlotConfig {
	return PlotConfig{
		Width:        1600,
		Height:       1000,
		Scale:        2,
		FontSize:     8,
		Padding:      12,
		PinFaceColor: "yellow",
		PinEdgeColor: "orange",
	}
}

// Plotter renders inspection frames as semi-log line charts
type Plotter struct {
	config PlotConfig
	font   *truetype.Font
	logger logging.Logger
}

// NewPlotter creates a plotter, filling zero config values with defaults
func NewPlotter(config PlotConfig) (*Plotter, error) {
	def := DefaultPlotConfig()
	if config.Width <= 0 {
		config.Width = def.Width
	}
	if config.Height <= 0 {
		config.Height = def.Height
	}
	if config.Scale <= 0 {
		config.Scale = def.Scale
	}
	if config.FontSize <= 0 {
		config.FontSize = def.FontSize
	}
	if config.Padding < 0 {
		config.Padding = def.Padding
	}
	if config.PinFaceColor == "" {
		config.PinFaceColor = def.PinFaceColor
	}
	if config.PinEdgeColor == "" {
		config.PinEdgeColor = def.PinEdgeColor
	}

	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	return &Plotter{
		config: config,
		font:   parsedFont,
		logger: logging.WithFields(logging.Fields{
			"component": "plotter",
		}),
	}, nil
}

// Render draws the frame and crops the result tightly to its content
func (p *Plotter) Render(frame inspect.Frame) (*image.RGBA, error) {
	var out chart.ImageWriter
	if err := p.chart(frame).Render(chart.PNG, &out); err != nil {
		return nil, fmt.Errorf("drawing chart: %w", err)
	}
	img, err := out.Image()
	if err != nil {
		return nil, fmt.Errorf("collecting chart image: %w", err)
	}

	cropped := crop(img, p.config.Padding)
	p.logger.Debug("Plot rendered", logging.Fields{
		"function": "Render",
		"series":   len(frame.Series),
		"pins":     len(frame.Pins),
		"width":    cropped.Bounds().Dx(),
		"height":   cropped.Bounds().Dy(),
	})
	return cropped, nil
}

// SavePlot renders frame to path as PNG, JPEG or SVG chosen by extension.
// Nothing is written when rendering fails.
func (p *Plotter) SavePlot(path string, frame inspect.Frame) error {
	format, err := plotFormat(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if format == "svg" {
		if err := p.chart(frame).Render(chart.SVG, &buf); err != nil {
			return fmt.Errorf("rendering plot: %w", err)
		}
	} else {
		img, err := p.Render(frame)
		if err != nil {
			return fmt.Errorf("rendering plot: %w", err)
		}
		if err := WriteImage(&buf, img, format); err != nil {
			return fmt.Errorf("encoding %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}

	p.logger.Info("Plot exported", logging.Fields{
		"function": "SavePlot",
		"path":     path,
		"format":   format,
		"size":     humanize.Bytes(uint64(buf.Len())),
	})
	return nil
}

// WriteImage encodes img as "png" or "jpeg"
func WriteImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{
			Quality: jpegQuality,
		})
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func plotFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png", nil
	case ".jpg", ".jpeg":
		return "jpeg", nil
	case ".svg":
		return "svg", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func (p *Plotter) px(v float64) int {
	return int(math.Round(v * p.config.Scale))
}

func (p *Plotter) fontSize(k float64) float64 {
	return p.config.FontSize * p.config.Scale * k
}

// logView is the viewport with the amplitude axis in decades
type logView struct {
	inspect.Viewport
	lo, hi float64
}

func newLogView(v inspect.Viewport) logView {
	return logView{Viewport: v, lo: math.Log10(v.YMin), hi: math.Log10(v.YMax)}
}

// y maps an amplitude onto the decade axis, clamped to the view
func (v logView) y(amp float64) (float64, bool) {
	if !(amp > 0) || math.IsInf(amp, 0) {
		return 0, false
	}
	return math.Min(math.Max(math.Log10(amp), v.lo), v.hi), true
}

// point reports the decade y of (freq, amp) when it lies inside the view
func (v logView) point(freq, amp float64) (float64, bool) {
	if freq < v.XMin || freq > v.XMax || !(amp > 0) {
		return 0, false
	}
	y := math.Log10(amp)
	if y < v.lo || y > v.hi {
		return 0, false
	}
	return y, true
}

// segments splits a spectrum into plottable runs. The DC bin is skipped,
// and non-positive amplitudes or bins outside the view break the line.
func (v logView) segments(name string, s *spectral.Spectrum, style chart.Style) []chart.Series {
	var out []chart.Series
	var xs, ys []float64
	flush := func() {
		if len(xs) >= 2 {
			out = append(out, chart.ContinuousSeries{Name: name, Style: style, XValues: xs, YValues: ys})
		}
		xs, ys = nil, nil
	}

	for i := 1; i < s.Len(); i++ {
		f := s.Frequency(i)
		y, ok := v.y(s.Amplitude(i))
		if !ok || f < v.XMin || f > v.XMax {
			flush()
			continue
		}
		xs = append(xs, f)
		ys = append(ys, y)
	}
	flush()
	return out
}

func (p *Plotter) chart(frame inspect.Frame) chart.Chart {
	view := frame.Viewport
	if !view.Valid() || view.LogHeight() <= 0 {
		view = inspect.AutoViewport(frame.Series...)
	}
	v := newLogView(view)

	var series, legend []chart.Series
	for _, s := range frame.Series {
		if s.Spectrum == nil {
			continue
		}
		style := chart.Style{
			StrokeColor: colorOr(s.Color, lineColor),
			StrokeWidth: 1.5 * p.config.Scale,
		}
		series = append(series, v.segments(s.Name, s.Spectrum, style)...)
		legend = append(legend, chart.ContinuousSeries{Name: s.Name, Style: style})
	}
	if len(series) == 0 {
		// the chart needs one visible series to lay out its axes
		series = append(series, chart.ContinuousSeries{
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 1},
			XValues: []float64{v.XMin, v.XMax},
			YValues: []float64{v.lo, v.hi},
		})
	}
	series = append(series, p.annotations(frame, v)...)

	axis := chart.Style{
		StrokeColor: foreground,
		StrokeWidth: p.config.Scale,
		FontColor:   foreground,
		FontSize:    p.fontSize(1),
	}
	grid := chart.Style{StrokeColor: gridColor, StrokeWidth: p.config.Scale}

	ch := chart.Chart{
		Title:      frame.Title,
		TitleStyle: chart.Style{FontColor: foreground, FontSize: p.fontSize(1.2)},
		Width:      p.config.Width,
		Height:     p.config.Height,
		Font:       p.font,
		Background: chart.Style{
			FillColor: toDrawing(background),
			Padding:   chart.Box{Top: p.px(40), Left: p.px(20), Right: p.px(20), Bottom: p.px(30)},
		},
		Canvas: chart.Style{FillColor: toDrawing(background)},
		XAxis: chart.XAxis{
			Name:           "Frequency (Hz)",
			NameStyle:      axis,
			Style:          axis,
			Range:          &chart.ContinuousRange{Min: v.XMin, Max: v.XMax},
			Ticks:          p.frequencyTicks(view),
			GridMajorStyle: grid,
			GridMinorStyle: grid,
		},
		YAxis: chart.YAxis{
			Name:           "Amplitude",
			NameStyle:      axis,
			Style:          axis,
			Range:          &chart.ContinuousRange{Min: v.lo, Max: v.hi},
			Ticks:          decadeTicks(v.lo, v.hi),
			GridMajorStyle: grid,
			GridMinorStyle: grid,
		},
		Series: series,
	}

	if frame.Caption != "" {
		ch.Elements = append(ch.Elements, p.caption(frame.Caption))
	}
	if frame.Overlay && len(legend) > 0 {
		entries := &chart.Chart{Series: legend, Font: p.font}
		ch.Elements = append(ch.Elements, chart.Legend(entries, chart.Style{
			FontSize:    p.fontSize(1),
			StrokeColor: gridColor,
		}))
	}
	return ch
}

// annotations builds peak labels, pins and the hover marker, in that
// drawing order
func (p *Plotter) annotations(frame inspect.Frame, v logView) []chart.Series {
	var out []chart.Series
	text := chart.Style{
		FontColor:   foreground,
		FontSize:    p.fontSize(0.9),
		StrokeWidth: p.config.Scale,
		Padding:     chart.Box{Top: p.px(4), Left: p.px(4), Right: p.px(4), Bottom: p.px(4)},
	}

	var labels []chart.Value2
	for _, l := range frame.Labels {
		if y, ok := v.point(l.Frequency, l.Amplitude); ok {
			labels = append(labels, callout(l.Frequency, y, l.Text, chart.Style{
				FillColor:   withAlpha(toDrawing(background), 0.8),
				StrokeColor: colorOr(l.Color, foreground),
			}))
		}
	}

	face := withAlpha(colorOr(p.config.PinFaceColor, named("yellow")), 0.9)
	edge := colorOr(p.config.PinEdgeColor, named("orange"))
	var pins []chart.Value2
	for _, pin := range frame.Pins {
		y, ok := v.point(pin.Frequency, pin.Amplitude)
		if !ok {
			continue
		}
		out = append(out, p.marker(pin.Frequency, y, 3, pinMarker))
		pins = append(pins, callout(pin.Frequency, y, pin.Label(), chart.Style{FillColor: face, StrokeColor: edge}))
	}

	if len(labels) > 0 {
		out = append(out, chart.AnnotationSeries{Name: "peaks", Style: text, Annotations: labels})
	}
	if len(pins) > 0 {
		out = append(out, chart.AnnotationSeries{Name: "pins", Style: text, Annotations: pins})
	}

	if m := frame.Hover; m != nil {
		if y, ok := v.point(m.Frequency, m.Amplitude); ok {
			out = append(out,
				p.marker(m.Frequency, y, 4, hoverEdge),
				chart.AnnotationSeries{Name: "hover", Style: text, Annotations: []chart.Value2{
					callout(m.Frequency, y, m.Label(), chart.Style{
						FillColor:   withAlpha(hoverFace, 0.8),
						StrokeColor: hoverEdge,
					}),
				}},
			)
		}
	}
	return out
}

// marker is a single dot; the point is doubled because a line series
// needs two values
func (p *Plotter) marker(x, y, radius float64, fill drawing.Color) chart.Series {
	return chart.ContinuousSeries{
		XValues: []float64{x, x},
		YValues: []float64{y, y},
		Style: chart.Style{
			StrokeColor: drawing.ColorTransparent,
			StrokeWidth: 1,
			DotColor:    fill,
			DotWidth:    radius * p.config.Scale,
		},
	}
}

// callout flattens multi-line text since chart annotations hold one line
func callout(x, y float64, text string, style chart.Style) chart.Value2 {
	return chart.Value2{
		XValue: x,
		YValue: y,
		Label:  strings.ReplaceAll(text, "\n", "  "),
		Style:  style,
	}
}

// caption centres a line of text under the x axis
func (p *Plotter) caption(text string) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		r.SetFont(defaults.GetFont(p.font))
		r.SetFontColor(foreground)
		r.SetFontSize(p.fontSize(0.9))
		box := r.MeasureText(text)
		r.Text(text, canvas.Left+(canvas.Width()-box.Width())/2, p.config.Height-p.px(8))
	}
}

func (p *Plotter) frequencyTicks(view inspect.Viewport) []chart.Tick {
	target := float64(p.config.Width) / (pixelsPerXTick * p.config.Scale / 2)
	step := niceStep(view.Width(), target)

	var inner []chart.Tick
	for k := math.Ceil(view.XMin / step); k*step <= view.XMax; k++ {
		f := k * step
		inner = append(inner, chart.Tick{Value: f, Label: formatHz(f)})
	}
	return framedTicks(view.XMin, view.XMax, inner)
}

func decadeTicks(lo, hi float64) []chart.Tick {
	var inner []chart.Tick
	for k := math.Ceil(lo); k <= hi; k++ {
		inner = append(inner, chart.Tick{Value: k, Label: fmt.Sprintf("1e%+03d", int(k))})
	}
	if len(inner) == 0 {
		// less than a decade in view
		return []chart.Tick{
			{Value: lo, Label: fmt.Sprintf("%.1e", math.Pow(10, lo))},
			{Value: hi, Label: fmt.Sprintf("%.1e", math.Pow(10, hi))},
		}
	}
	return framedTicks(lo, hi, inner)
}

// framedTicks adds unlabeled ticks at lo and hi when inner does not reach
// them; the chart sizes an axis with custom ticks to their extent
func framedTicks(lo, hi float64, inner []chart.Tick) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(inner)+2)
	if len(inner) == 0 || inner[0].Value > lo {
		ticks = append(ticks, chart.Tick{Value: lo})
	}
	ticks = append(ticks, inner...)
	if len(inner) == 0 || inner[len(inner)-1].Value < hi {
		ticks = append(ticks, chart.Tick{Value: hi})
	}
	return ticks
}

func crop(img image.Image, padding int) *image.RGBA {
	rect := img.Bounds()
	if content := contentBounds(img, background); !content.Empty() {
		rect = image.Rect(
			content.Min.X-padding, content.Min.Y-padding,
			content.Max.X+padding, content.Max.Y+padding,
		).Intersect(img.Bounds())
	}

	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}

// contentBounds returns the smallest rectangle holding every pixel that
// differs from bg
func contentBounds(img image.Image, bg color.RGBA) image.Rectangle {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.RGBAModel.Convert(img.At(x, y)) == bg {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// formatHz renders a tick frequency with an SI prefix
func formatHz(hz float64) string {
	if math.Abs(hz) < 1e-9 {
		return "0 Hz"
	}
	fract, suffix := humanize.ComputeSI(hz)
	return strconv.FormatFloat(math.Round(fract*100)/100, 'f', -1, 64) + " " + suffix + "Hz"
}

// niceStep picks a 1-2-5 step giving roughly target ticks over span
func niceStep(span, target float64) float64 {
	if span <= 0 || target < 1 {
		return math.Max(span, 1)
	}
	rough := span / target
	mag := math.Pow(10, math.Floor(math.Log10(rough)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= rough {
			return m * mag
		}
	}
	return 10 * mag
}
