package color

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// RGBA is a non-premultiplied pixel with 8-bit channels.
type RGBA struct {
	R, G, B, A uint8
}

// FromStdColor converts a standard library color to non-premultiplied RGBA.
func FromStdColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
}

// ToStdColor converts RGBA to a standard library color.
func (c RGBA) ToStdColor() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// RGBA implements color.Color.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	return c.ToStdColor().RGBA()
}

func (c RGBA) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Hex formats the color as "#rrggbb", or "#rrggbbaa" when it is not opaque.
func (c RGBA) Hex() string {
	h := c.colorful().Hex()
	if c.A != 255 {
		h += fmt.Sprintf("%02x", c.A)
	}
	return h
}

// ParseHex parses a hex color string like "#000", "#FF00FF" or "#FF00FF80".
func ParseHex(s string) (RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	alpha := uint8(255)
	switch len(s) {
	case 3, 6:
	case 8:
		var a uint8
		if _, err := fmt.Sscanf(s[6:], "%02x", &a); err != nil {
			return RGBA{}, errors.Wrapf(err, "invalid hex color %q", s)
		}
		alpha = a
		s = s[:6]
	default:
		return RGBA{}, errors.Errorf("invalid hex color %q: must be 3, 6 or 8 hex digits", s)
	}
	c, err := colorful.Hex("#" + s)
	if err != nil {
		return RGBA{}, errors.Wrapf(err, "invalid hex color %q", s)
	}
	r, g, b := c.RGB255()
	return RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// DistanceLAB is the CIE76 distance between two colors, with lightness on a
// 0-100 scale. Alpha is ignored.
func DistanceLAB(a, b RGBA) float64 {
	return a.colorful().DistanceLab(b.colorful()) * 100
}

// DistanceRGB computes the Euclidean distance in RGB space between two colors.
func DistanceRGB(a, b RGBA) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// DistanceSq is the squared Euclidean distance over all four channels.
func DistanceSq(a, b RGBA) int {
	da := int(a.A) - int(b.A)
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return da*da + dr*dr + dg*dg + db*db
}

// IsLight returns true if the color is perceptually light (luminance > 0.5).
func (c RGBA) IsLight() bool {
	r, g, b := c.colorful().LinearRgb()
	return 0.2126*r+0.7152*g+0.0722*b > 0.5
}

// MaxRGBDistance is the maximum possible Euclidean distance in RGB space.
var MaxRGBDistance = math.Sqrt(255 * 255 * 3)
