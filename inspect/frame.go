package inspect

import (
	"fmt"

	"github.com/dustin/go-humanize/english"
)

const pinHint = "right-click a pin to remove it, right-click empty space to clear all"

// Pin is a permanently annotated point. Series is the owning registry id
// on the overlay view and 0 on the single view.
type Pin struct {
	Frequency float64
	Amplitude float64
	Series    int
	Name      string
}

// Label is the annotation text of the pin
func (p Pin) Label() string {
	return pointLabel(p.Name, p.Frequency, p.Amplitude)
}

// Marker is the transient highlight under the cursor
type Marker struct {
	Frequency float64
	Amplitude float64
	Series    int
	Name      string
	Color     string
}

func (m Marker) Label() string {
	return pointLabel(m.Name, m.Frequency, m.Amplitude) + "\n(Click to pin)"
}

// Label is free text anchored at a data point, such as a peak annotation
type Label struct {
	Frequency float64
	Amplitude float64
	Text      string
	Color     string
}

// PeakLabel formats the annotation of a detected peak
func PeakLabel(frequency, amplitude float64, color string) Label {
	return Label{
		Frequency: frequency,
		Amplitude: amplitude,
		Text:      fmt.Sprintf("%.1f Hz\n%.2e", frequency, amplitude),
		Color:     color,
	}
}

// Frame is a point-in-time snapshot of everything a surface draws
type Frame struct {
	Title    string
	Caption  string
	Overlay  bool
	Series   []Series
	Labels   []Label
	Pins     []Pin
	Hover    *Marker
	Viewport Viewport
}

func pointLabel(name string, frequency, amplitude float64) string {
	text := fmt.Sprintf("Freq: %.2f Hz\nAmp: %.2e", frequency, amplitude)
	if name != "" {
		text = name + "\n" + text
	}
	return text
}

// caption renders the pin count suffix shown under the plot title
func caption(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("(%s - %s)", english.Plural(n, "pin", ""), pinHint)
}
