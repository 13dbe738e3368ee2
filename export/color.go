package export

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/colornames"
)

// ParseColor accepts SVG color names and #rgb / #rrggbb hex strings
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if hex == s {
		return color.RGBA{}, fmt.Errorf("unknown color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("malformed hex color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("malformed hex color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// colorOr parses s, falling back to def for unparseable values
func colorOr(s string, def drawing.Color) drawing.Color {
	c, err := ParseColor(s)
	if err != nil {
		return def
	}
	return toDrawing(c)
}

func named(name string) drawing.Color {
	c, _ := ParseColor(name)
	return toDrawing(c)
}

func toDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func withAlpha(c drawing.Color, alpha float64) drawing.Color {
	return c.WithAlpha(uint8(alpha * 0xff))
}
