package renderer

import (
	"image"
	"image/color"
	"unicode"
)

// FontRenderer draws short labels onto images.
type FontRenderer interface {
	// DrawString draws text centered at (cx, cy) with the given color and
	// approximate height in pixels.
	DrawString(img *image.RGBA, text string, cx, cy int, col color.Color, size int)

	// MeasureString returns the size of text at the given height.
	MeasureString(text string, size int) (width, height int)
}

// BitmapFont renders a fixed 5x7 glyph set: digits, hex letters and '#'.
// Lowercase letters are drawn as uppercase.
type BitmapFont struct{}

// NewBitmapFont creates a new BitmapFont.
func NewBitmapFont() *BitmapFont {
	return &BitmapFont{}
}

var glyphs = map[rune][glyphHeight]uint8{
	'0': {0x0E, 0x11, 0x13, 0x15, 0x19, 0x11, 0x0E},
	'1': {0x04, 0x0C, 0x04, 0x04, 0x04, 0x04, 0x0E},
	'2': {0x0E, 0x11, 0x01, 0x06, 0x08, 0x10, 0x1F},
	'3': {0x0E, 0x11, 0x01, 0x06, 0x01, 0x11, 0x0E},
	'4': {0x02, 0x06, 0x0A, 0x12, 0x1F, 0x02, 0x02},
	'5': {0x1F, 0x10, 0x1E, 0x01, 0x01, 0x11, 0x0E},
	'6': {0x06, 0x08, 0x10, 0x1E, 0x11, 0x11, 0x0E},
	'7': {0x1F, 0x01, 0x02, 0x04, 0x08, 0x08, 0x08},
	'8': {0x0E, 0x11, 0x11, 0x0E, 0x11, 0x11, 0x0E},
	'9': {0x0E, 0x11, 0x11, 0x0F, 0x01, 0x02, 0x0C},
	'A': {0x0E, 0x11, 0x11, 0x1F, 0x11, 0x11, 0x11},
	'B': {0x1E, 0x11, 0x11, 0x1E, 0x11, 0x11, 0x1E},
	'C': {0x0E, 0x11, 0x10, 0x10, 0x10, 0x11, 0x0E},
	'D': {0x1C, 0x12, 0x11, 0x11, 0x11, 0x12, 0x1C},
	'E': {0x1F, 0x10, 0x10, 0x1E, 0x10, 0x10, 0x1F},
	'F': {0x1F, 0x10, 0x10, 0x1E, 0x10, 0x10, 0x10},
	'#': {0x0A, 0x0A, 0x1F, 0x0A, 0x1F, 0x0A, 0x0A},
}

const (
	glyphWidth  = 5
	glyphHeight = 7
)

func scaleFor(size int) int {
	if s := size / glyphHeight; s > 1 {
		return s
	}
	return 1
}

// DrawString skips unknown characters but keeps their space.
func (bf *BitmapFont) DrawString(img *image.RGBA, text string, cx, cy int, col color.Color, size int) {
	scale := scaleFor(size)
	totalW, totalH := bf.MeasureString(text, size)
	curX := cx - totalW/2
	startY := cy - totalH/2
	b := img.Bounds()

	for _, ch := range text {
		glyph, ok := glyphs[unicode.ToUpper(ch)]
		if !ok {
			curX += (glyphWidth + 1) * scale
			continue
		}
		for row := 0; row < glyphHeight; row++ {
			for bit := 0; bit < glyphWidth; bit++ {
				if glyph[row]&(1<<(glyphWidth-1-bit)) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						p := image.Pt(curX+bit*scale+dx, startY+row*scale+dy).Add(b.Min)
						if p.In(b) {
							img.Set(p.X, p.Y, col)
						}
					}
				}
			}
		}
		curX += (glyphWidth + 1) * scale
	}
}

func (bf *BitmapFont) MeasureString(text string, size int) (width, height int) {
	scale := scaleFor(size)
	n := len([]rune(text))
	if n == 0 {
		return 0, 0
	}
	return n*glyphWidth*scale + (n-1)*scale, glyphHeight * scale
}
