// Package color holds the pixel type shared by the quantizer and its
// collaborators, and a row-major grid of such pixels.
package color

// Grid is a row-major grid of pixels.
type Grid struct {
	Width, Height int
	Pix           []RGBA
}

// NewGrid returns a transparent grid of the given size.
func NewGrid(width, height int) Grid {
	return Grid{Width: width, Height: height, Pix: make([]RGBA, width*height)}
}

// Row returns the pixels of row y.
func (g Grid) Row(y int) []RGBA {
	return g.Pix[y*g.Width : (y+1)*g.Width]
}

// At returns the pixel at (x, y).
func (g Grid) At(x, y int) RGBA {
	return g.Pix[y*g.Width+x]
}

// Set stores the pixel at (x, y).
func (g Grid) Set(x, y int, c RGBA) {
	g.Pix[y*g.Width+x] = c
}

// Len returns the number of pixels.
func (g Grid) Len() int {
	return g.Width * g.Height
}
