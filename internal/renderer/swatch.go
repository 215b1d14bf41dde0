// Package renderer draws a palette as a sheet of numbered color swatches.
package renderer

import (
	"image"
	stdcolor "image/color"
	"image/draw"
	"strconv"

	"github.com/maax3v3/wuquant/internal/color"
)

// Config holds swatch sheet layout.
type Config struct {
	CircleSize int        // diameter of each swatch
	Spacing    int        // gap between swatches
	Margin     int        // border around the sheet
	Columns    int        // swatches per row
	ShowHex    bool       // print the hex value under each swatch
	Background color.RGBA // fill behind the swatches
}

// DefaultConfig returns the default layout.
func DefaultConfig() Config {
	return Config{
		CircleSize: 36,
		Spacing:    14,
		Margin:     20,
		Columns:    16,
		ShowHex:    true,
		Background: color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Swatch is one palette color and its 1-based number.
type Swatch struct {
	Number int
	Color  color.RGBA
}

var (
	white   = stdcolor.RGBA{255, 255, 255, 255}
	checker = stdcolor.RGBA{204, 204, 204, 255}
	outline = stdcolor.RGBA{100, 100, 100, 255}
)

func (cfg Config) labelSize() int {
	return glyphHeight * 2
}

func (cfg Config) cellSize(font FontRenderer) (w, h int) {
	w, h = cfg.CircleSize, cfg.CircleSize
	if cfg.ShowHex {
		lw, lh := font.MeasureString("#00000000", cfg.labelSize())
		if lw > w {
			w = lw
		}
		h += cfg.Spacing/2 + lh
	}
	return w, h
}

// RenderSwatches lays the swatches out in rows. Translucent colors are drawn
// over a checkerboard so their alpha stays visible.
func RenderSwatches(swatches []Swatch, font FontRenderer, cfg Config) *image.RGBA {
	if cfg.Columns < 1 {
		cfg.Columns = 1
	}
	cols := cfg.Columns
	if len(swatches) < cols {
		cols = len(swatches)
	}
	rows := 0
	if cols > 0 {
		rows = (len(swatches) + cols - 1) / cols
	}

	cellW, cellH := cfg.cellSize(font)
	w := 2 * cfg.Margin
	h := 2 * cfg.Margin
	if cols > 0 {
		w += cols*cellW + (cols-1)*cfg.Spacing
		h += rows*cellH + (rows-1)*cfg.Spacing
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), &image.Uniform{cfg.Background.ToStdColor()}, image.Point{}, draw.Src)

	radius := cfg.CircleSize / 2
	for i, s := range swatches {
		row, col := i/cols, i%cols
		x0 := cfg.Margin + col*(cellW+cfg.Spacing)
		y0 := cfg.Margin + row*(cellH+cfg.Spacing)
		cx, cy := x0+cellW/2, y0+radius

		drawSwatch(out, image.Pt(cx, cy), radius, s.Color)

		textColor := stdcolor.Color(stdcolor.Black)
		if s.Color.A >= 128 && !s.Color.IsLight() {
			textColor = stdcolor.White
		}
		font.DrawString(out, strconv.Itoa(s.Number), cx, cy, textColor, cfg.CircleSize*2/3)

		if cfg.ShowHex {
			_, lh := font.MeasureString("#", cfg.labelSize())
			ly := y0 + cfg.CircleSize + cfg.Spacing/2 + lh/2
			font.DrawString(out, s.Color.Hex(), cx, ly, stdcolor.Black, cfg.labelSize())
		}
	}
	return out
}

func drawSwatch(img *image.RGBA, center image.Point, radius int, c color.RGBA) {
	mask := &circle{center: center, radius: radius}
	r := mask.Bounds()
	if c.A < 255 {
		draw.DrawMask(img, r, &checkerboard{size: 4}, image.Point{}, mask, r.Min, draw.Over)
	}
	draw.DrawMask(img, r, &image.Uniform{c.ToStdColor()}, image.Point{}, mask, r.Min, draw.Over)

	ring := &circle{center: center, radius: radius, ring: true}
	draw.DrawMask(img, r, &image.Uniform{outline}, image.Point{}, ring, r.Min, draw.Over)
}

// circle is an alpha mask covering a disc, or only its one-pixel rim.
type circle struct {
	center image.Point
	radius int
	ring   bool
}

func (c *circle) ColorModel() stdcolor.Model { return stdcolor.AlphaModel }

func (c *circle) Bounds() image.Rectangle {
	return image.Rect(c.center.X-c.radius, c.center.Y-c.radius, c.center.X+c.radius+1, c.center.Y+c.radius+1)
}

func (c *circle) At(x, y int) stdcolor.Color {
	dx, dy := x-c.center.X, y-c.center.Y
	d := dx*dx + dy*dy
	r2 := c.radius * c.radius
	inside := d <= r2
	if c.ring {
		inner := (c.radius - 1) * (c.radius - 1)
		inside = inside && d > inner
	}
	if inside {
		return stdcolor.Alpha{A: 255}
	}
	return stdcolor.Alpha{}
}

// checkerboard is an infinite two-tone pattern of size x size squares.
type checkerboard struct {
	size int
}

func (c *checkerboard) ColorModel() stdcolor.Model { return stdcolor.RGBAModel }

func (c *checkerboard) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (c *checkerboard) At(x, y int) stdcolor.Color {
	if ((x/c.size)+(y/c.size))%2 == 0 {
		return white
	}
	return checker
}
