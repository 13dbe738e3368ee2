package inspect

import (
	"math"
	"sync"

	"github.com/RyanBlaney/fftscope/logging"
)

const (
	pinToleranceX = 0.02
	pinToleranceY = 0.05
)

// Board holds the hover marker and pins of one plot. The overlay board tags
// pins with the registry id and name of the series they belong to; the
// single-view board leaves them untagged.
type Board struct {
	mu       sync.Mutex
	overlay  bool
	locator  *Locator
	series   []Series
	pins     []Pin
	hover    *Marker
	viewport Viewport
	logger   logging.Logger
}

// NewBoard creates an empty board for the single view or the overlay view
func NewBoard(overlay bool) *Board {
	view := "single"
	if overlay {
		view = "overlay"
	}
	return &Board{
		overlay:  overlay,
		locator:  NewLocator(),
		viewport: AutoViewport(),
		logger: logging.WithFields(logging.Fields{
			"component": "pin_board",
			"view":      view,
		}),
	}
}

func (b *Board) Overlay() bool {
	return b.overlay
}

// Load replaces the plotted series. Pins and the hover marker refer to the
// previous plot and are dropped.
func (b *Board) Load(series ...Series) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.series = append([]Series(nil), series...)
	b.pins = nil
	b.hover = nil
	b.viewport = AutoViewport(series...)
}

// Series returns the plotted series
func (b *Board) Series() []Series {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Series(nil), b.series...)
}

// SetViewport records the limits the surface actually shows. Invalid
// viewports are ignored.
func (b *Board) SetViewport(v Viewport) bool {
	if !v.Valid() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.viewport = v
	return true
}

func (b *Board) Viewport() Viewport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewport
}

// Hover moves the marker to the bin under p, or clears it when the cursor is
// too far from any data. It reports whether a marker is shown.
func (b *Board) Hover(p Point) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	hit, ok := b.locator.Nearest(p.X, b.series...)
	if !ok {
		b.hover = nil
		return false
	}

	marker := Marker{
		Frequency: hit.Frequency,
		Amplitude: hit.Amplitude,
		Color:     b.series[hit.Index].Color,
	}
	if b.overlay {
		marker.Series = hit.SeriesID
		marker.Name = hit.Name
	}
	b.hover = &marker
	return true
}

// Leave clears the hover marker and reports whether one was shown
func (b *Board) Leave() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	shown := b.hover != nil
	b.hover = nil
	return shown
}

// HoverMarker returns the current marker, if any
func (b *Board) HoverMarker() (Marker, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hover == nil {
		return Marker{}, false
	}
	return *b.hover, true
}

// Pin annotates the bin under p. Pins are not deduplicated.
func (b *Board) Pin(p Point) (Pin, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	hit, ok := b.locator.Nearest(p.X, b.series...)
	if !ok {
		return Pin{}, false
	}

	pin := Pin{Frequency: hit.Frequency, Amplitude: hit.Amplitude}
	if b.overlay {
		pin.Series = hit.SeriesID
		pin.Name = hit.Name
	}
	b.pins = append(b.pins, pin)

	b.logger.Debug("Pinned point", logging.Fields{
		"frequency": pin.Frequency,
		"amplitude": pin.Amplitude,
		"series":    pin.Series,
		"pins":      len(b.pins),
	})
	return pin, true
}

// FindNear returns the index of the first pin within reach of p, or -1.
// Reach is 2% of the visible width in x and 5% of the visible decades in y.
// When either y value is not positive the y test falls back to 5% of the
// linear visible height.
func (b *Board) FindNear(p Point) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.findNear(p)
}

func (b *Board) findNear(p Point) int {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return -1
	}

	v := b.viewport
	xTolerance := pinToleranceX * v.Width()
	logTolerance := pinToleranceY * v.LogHeight()
	linTolerance := pinToleranceY * v.Height()

	for i, pin := range b.pins {
		if math.Abs(p.X-pin.Frequency) > xTolerance {
			continue
		}

		if p.Y > 0 && pin.Amplitude > 0 && v.LogHeight() > 0 {
			if math.Abs(math.Log10(p.Y)-math.Log10(pin.Amplitude)) <= logTolerance {
				return i
			}
		} else if math.Abs(p.Y-pin.Amplitude) <= linTolerance {
			return i
		}
	}
	return -1
}

// Remove deletes the pin at index i
func (b *Board) Remove(i int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remove(i)
}

func (b *Board) remove(i int) bool {
	if i < 0 || i >= len(b.pins) {
		return false
	}
	b.pins = append(b.pins[:i], b.pins[i+1:]...)
	return true
}

// UnpinAt removes the pin near p. A click that hits no pin clears every pin.
// It reports whether a single pin was removed.
func (b *Board) UnpinAt(p Point) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.findNear(p); i >= 0 {
		b.remove(i)
		b.logger.Debug("Removed pin", logging.Fields{"index": i, "pins": len(b.pins)})
		return true
	}

	if len(b.pins) > 0 {
		b.logger.Debug("Cleared pins", logging.Fields{"removed": len(b.pins)})
	}
	b.pins = nil
	return false
}

func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pins = nil
}

// Pins returns a copy of the pins in the order they were placed
func (b *Board) Pins() []Pin {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Pin(nil), b.pins...)
}

func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pins)
}

// Caption describes the pin count: empty without pins, singular for one
func (b *Board) Caption() string {
	return caption(b.Len())
}

// Frame snapshots the board for drawing
func (b *Board) Frame(title string, labels []Label) Frame {
	b.mu.Lock()
	defer b.mu.Unlock()

	f := Frame{
		Title:    title,
		Caption:  caption(len(b.pins)),
		Overlay:  b.overlay,
		Series:   append([]Series(nil), b.series...),
		Labels:   append([]Label(nil), labels...),
		Pins:     append([]Pin(nil), b.pins...),
		Viewport: b.viewport,
	}
	if b.hover != nil {
		marker := *b.hover
		f.Hover = &marker
	}
	return f
}
