package mapping

import (
	"context"
	"image"
	"sync"

	"github.com/pkg/errors"

	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/imaging"
)

// Report summarizes the error between a source grid and its remapped image.
// Only pixels above the alpha threshold are counted.
type Report struct {
	Pixels  int
	MeanRGB float64
	MaxRGB  float64
	MeanLAB float64
}

type pairKey struct {
	src color.RGBA
	idx uint8
}

// Measure compares every counted pixel of grid with the palette color it was
// mapped to in img.
func Measure(ctx context.Context, grid color.Grid, img *image.Paletted, threshold uint8) (Report, error) {
	if b := img.Bounds(); b.Dx() != grid.Width || b.Dy() != grid.Height {
		return Report{}, errors.Errorf("size mismatch: grid is %dx%d, image is %dx%d", grid.Width, grid.Height, b.Dx(), b.Dy())
	}
	colors := make([]color.RGBA, len(img.Palette))
	for i, c := range img.Palette {
		colors[i] = color.FromStdColor(c)
	}

	var (
		mu                     sync.Mutex
		rep                    Report
		sumRGB, sumLAB, maxRGB float64
	)
	err := imaging.ParallelRows(ctx, grid.Height, func(startY, endY int) error {
		labCache := make(map[pairKey]float64)
		var n int
		var bandRGB, bandLAB, bandMax float64
		for y := startY; y < endY; y++ {
			off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
			row := img.Pix[off : off+grid.Width]
			for x, c := range grid.Row(y) {
				if c.A <= threshold {
					continue
				}
				idx := row[x]
				q := colors[idx]
				d := color.DistanceRGB(c, q)
				bandRGB += d
				if d > bandMax {
					bandMax = d
				}
				key := pairKey{src: c, idx: idx}
				lab, ok := labCache[key]
				if !ok {
					lab = color.DistanceLAB(c, q)
					labCache[key] = lab
				}
				bandLAB += lab
				n++
			}
		}
		mu.Lock()
		defer mu.Unlock()
		rep.Pixels += n
		sumRGB += bandRGB
		sumLAB += bandLAB
		if bandMax > maxRGB {
			maxRGB = bandMax
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	if rep.Pixels > 0 {
		rep.MeanRGB = sumRGB / float64(rep.Pixels)
		rep.MeanLAB = sumLAB / float64(rep.Pixels)
	}
	rep.MaxRGB = maxRGB
	return rep, nil
}
