// Package cube holds the 4-dimensional alpha/red/green/blue moment table used
// by the Wu quantizer, the boxes that partition it, and the region queries
// answered by its cumulative form.
package cube

import (
	"fmt"

	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/moment"
)

const (
	// MaxSide is the largest bucket index on every axis.
	MaxSide = 32
	// Side is the number of bucket levels per axis: 5-bit buckets 1..32 plus
	// the boundary level 0.
	Side = MaxSide + 1
	// Cells is the number of buckets in the table.
	Cells = Side * Side * Side * Side
)

// Index is a packed table key.
type Index int

// IndexOf packs four bucket indices. It panics when a coordinate is outside
// [0, MaxSide]; every bounds check on the table happens here.
func IndexOf(a, r, g, b int) Index {
	if a < 0 || a > MaxSide || r < 0 || r > MaxSide || g < 0 || g > MaxSide || b < 0 || b > MaxSide {
		panic(fmt.Sprintf("cube: bucket (%d,%d,%d,%d) out of range", a, r, g, b))
	}
	return Index(((a*Side+r)*Side+g)*Side + b)
}

// Table maps every bucket to a Moment. It starts as a raw histogram and is
// turned into a cumulative table by Cumulate.
type Table struct {
	cells      []moment.Moment
	cumulative bool
}

// NewTable returns an empty raw table.
func NewTable() *Table {
	return &Table{cells: make([]moment.Moment, Cells)}
}

// At returns the moment stored at (a, r, g, b).
func (t *Table) At(a, r, g, b int) moment.Moment {
	return t.cells[IndexOf(a, r, g, b)]
}

// Add merges m into the raw bucket (a, r, g, b).
func (t *Table) Add(a, r, g, b int, m moment.Moment) {
	if t.cumulative {
		panic("cube: Add on a cumulative table")
	}
	i := IndexOf(a, r, g, b)
	t.cells[i] = t.cells[i].Add(m)
}

// Fade applies the alpha fader to a translucent alpha value: alpha is raised
// by alpha mod fader and clamped to 255. Opaque values are left alone.
func Fade(alpha uint8, fader int) uint8 {
	if alpha == 255 {
		return alpha
	}
	v := int(alpha) + int(alpha)%fader
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// BucketOf quantizes a channel value to a bucket index in [1, MaxSide].
func BucketOf(v uint8) int {
	return int(v>>3) + 1
}

// Build accumulates the histogram of the given pixel rows. Pixels whose
// alpha is at or below threshold are dropped. A single (0,0,0,0) pixel is
// always added to bucket [0,0,0,0]. It returns the table and the number of
// pixels kept.
func Build(grid color.Grid, threshold uint8, fader int) (*Table, int) {
	t := NewTable()
	kept := 0
	for y := 0; y < grid.Height; y++ {
		for _, p := range grid.Row(y) {
			if p.A <= threshold {
				continue
			}
			a := Fade(p.A, fader)
			t.Add(BucketOf(a), BucketOf(p.R), BucketOf(p.G), BucketOf(p.B), moment.Of(a, p.R, p.G, p.B))
			kept++
		}
	}
	t.Add(0, 0, 0, 0, moment.Of(0, 0, 0, 0))
	return t, kept
}

// Cumulate transforms the raw histogram in place into a 4-dimensional prefix
// sum: afterwards the cell (a, r, g, b) holds the total moment of buckets
// [1..a]x[1..r]x[1..g]x[1..b]. Cells with a zero coordinate are not
// rewritten, so the synthetic pixel stays alone in [0,0,0,0].
//
// Every axis must be walked from low to high; the running sums depend on it.
func (t *Table) Cumulate() {
	if t.cumulative {
		return
	}
	var (
		xarea [Side * Side]moment.Moment
		area  [Side]moment.Moment
	)
	for a := 1; a <= MaxSide; a++ {
		xarea = [Side * Side]moment.Moment{}
		for r := 1; r <= MaxSide; r++ {
			area = [Side]moment.Moment{}
			for g := 1; g <= MaxSide; g++ {
				var line moment.Moment
				for b := 1; b <= MaxSide; b++ {
					i := IndexOf(a, r, g, b)
					line = line.Add(t.cells[i])
					area[b] = area[b].Add(line)
					xarea[g*Side+b] = xarea[g*Side+b].Add(area[b])
					t.cells[i] = t.cells[IndexOf(a-1, r, g, b)].Add(xarea[g*Side+b])
				}
			}
		}
	}
	t.cumulative = true
}
