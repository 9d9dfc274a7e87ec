package scene

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Color is an RGBA color with channels normalized to [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// NewColor returns the given channels as a Color. Values are passed through unchecked.
func NewColor(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// ColorFromHex parses a "#rrggbb" color and pairs it with alpha.
func ColorFromHex(hex string, alpha float64) (Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, errors.Wrapf(err, "invalid color %q", hex)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

// Hex returns the "#rrggbb" form of the color, dropping alpha.
func (c Color) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}

func (c Color) String() string {
	return fmt.Sprintf("%s@%.2f", c.Hex(), c.A)
}
