package mapping

import (
	"context"
	"image"
	stdcolor "image/color"

	"github.com/pkg/errors"

	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/imaging"
)

// MaxPaletteSize is the largest palette an *image.Paletted can index.
const MaxPaletteSize = 256

// StdPalette converts colors to a standard palette and appends the fully
// transparent slot used for dropped pixels.
func StdPalette(colors []color.RGBA) stdcolor.Palette {
	pal := make(stdcolor.Palette, 0, len(colors)+1)
	for _, c := range colors {
		pal = append(pal, c.ToStdColor())
	}
	return append(pal, stdcolor.NRGBA{})
}

// Remap builds a paletted image from grid. Pixels with alpha at or below
// threshold take the transparent slot that follows the palette colors; every
// other pixel takes the index m picks for it.
func Remap(ctx context.Context, grid color.Grid, colors []color.RGBA, m Mapper, threshold uint8) (*image.Paletted, error) {
	if len(colors)+1 > MaxPaletteSize {
		return nil, errors.Errorf("palette has %d colors, at most %d fit beside the transparent slot", len(colors), MaxPaletteSize-1)
	}
	transparent := uint8(len(colors))
	out := image.NewPaletted(image.Rect(0, 0, grid.Width, grid.Height), StdPalette(colors))

	err := imaging.ParallelRows(ctx, grid.Height, func(startY, endY int) error {
		for y := startY; y < endY; y++ {
			dst := out.Pix[y*out.Stride : y*out.Stride+grid.Width]
			for x, c := range grid.Row(y) {
				if c.A <= threshold {
					dst[x] = transparent
					continue
				}
				i := m.Index(c)
				if i < 0 {
					dst[x] = transparent
					continue
				}
				dst[x] = uint8(i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
