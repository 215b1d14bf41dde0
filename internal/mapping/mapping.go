// Package mapping assigns every pixel of an image to a palette entry and
// measures how far the result strays from the source.
package mapping

import (
	"github.com/pkg/errors"

	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/cube"
	"github.com/maax3v3/wuquant/internal/palette"
)

// Strategy names accepted by New.
const (
	StrategyLookup = "lookup"
	StrategyLinear = "linear"
)

// A Mapper picks the palette index for a pixel. Implementations must be safe
// for concurrent use.
type Mapper interface {
	Index(c color.RGBA) int
}

// New returns the mapper for the named strategy.
func New(strategy string, p *palette.Palette, fader int) (Mapper, error) {
	switch strategy {
	case StrategyLookup, "":
		return NewLookup(p, fader), nil
	case StrategyLinear:
		return NewLinear(p.Colors()), nil
	default:
		return nil, errors.Errorf("unknown mapping strategy %q (supported: %s, %s)", strategy, StrategyLookup, StrategyLinear)
	}
}

// Linear scans every palette color and returns the nearest one by squared
// distance over all four channels. Ties go to the lowest index.
type Linear struct {
	colors []color.RGBA
}

// NewLinear returns a Linear mapper over colors.
func NewLinear(colors []color.RGBA) *Linear {
	return &Linear{colors: colors}
}

// Index returns -1 only when the palette is empty.
func (l *Linear) Index(c color.RGBA) int {
	best, bestDist := -1, int(^uint(0)>>1)
	for i, p := range l.colors {
		if d := color.DistanceSq(c, p); d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return best
}

// Lookup maps a pixel through the same fade and bucket rule used to build the
// histogram, then reads the entry whose box covers that bucket. Buckets left
// without an entry fall back to a linear scan.
type Lookup struct {
	pal      *palette.Palette
	fader    int
	fallback *Linear
}

// NewLookup returns a Lookup mapper for p. fader must match the value the
// histogram was built with.
func NewLookup(p *palette.Palette, fader int) *Lookup {
	return &Lookup{pal: p, fader: fader, fallback: NewLinear(p.Colors())}
}

func (l *Lookup) Index(c color.RGBA) int {
	c.A = cube.Fade(c.A, l.fader)
	if i, ok := l.pal.Lookup(cube.BucketOf(c.A), cube.BucketOf(c.R), cube.BucketOf(c.G), cube.BucketOf(c.B)); ok {
		return i
	}
	return l.fallback.Index(c)
}
