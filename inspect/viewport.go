package inspect

import (
	"math"
)

// Viewport is the visible data range of a plot. The y axis is logarithmic.
type Viewport struct {
	XMin, XMax float64
	YMin, YMax float64
}

// autoMargin is the padding added around the data on each side
const autoMargin = 0.05

// Width is the visible frequency range
func (v Viewport) Width() float64 {
	return v.XMax - v.XMin
}

func (v Viewport) Height() float64 {
	return v.YMax - v.YMin
}

// LogHeight is the visible range in decades, 0 when the y range cannot be
// drawn on a log axis
func (v Viewport) LogHeight() float64 {
	if v.YMin <= 0 || v.YMax <= v.YMin {
		return 0
	}
	return math.Log10(v.YMax) - math.Log10(v.YMin)
}

// Valid reports whether the viewport spans a positive, finite area
func (v Viewport) Valid() bool {
	for _, f := range []float64{v.XMin, v.XMax, v.YMin, v.YMax} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return v.XMax > v.XMin && v.YMax > v.YMin
}

// AutoViewport fits the plotted points of every series: the DC bin and
// non-positive amplitudes are not drawn on a log axis and are left out.
func AutoViewport(series ...Series) Viewport {
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)

	for _, s := range series {
		if s.Spectrum == nil {
			continue
		}
		for i := 1; i < s.Spectrum.Len(); i++ {
			a := s.Spectrum.Amplitude(i)
			if a <= 0 {
				continue
			}
			f := s.Spectrum.Frequency(i)
			xMin, xMax = math.Min(xMin, f), math.Max(xMax, f)
			yMin, yMax = math.Min(yMin, a), math.Max(yMax, a)
		}
	}

	if math.IsInf(xMin, 1) {
		return Viewport{XMin: 0, XMax: 1, YMin: 0.1, YMax: 10}
	}

	var v Viewport
	if span := xMax - xMin; span > 0 {
		v.XMin, v.XMax = xMin-autoMargin*span, xMax+autoMargin*span
	} else {
		pad := math.Max(math.Abs(xMin)*autoMargin, 0.5)
		v.XMin, v.XMax = xMin-pad, xMax+pad
	}

	lo, hi := math.Log10(yMin), math.Log10(yMax)
	decades := hi - lo
	if decades == 0 {
		decades = 1
	}
	v.YMin = math.Pow(10, lo-autoMargin*decades)
	v.YMax = math.Pow(10, hi+autoMargin*decades)
	return v
}

// Point is a cursor position in data coordinates
type Point struct {
	X, Y float64
}
