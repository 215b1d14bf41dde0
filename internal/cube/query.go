package cube

import "github.com/maax3v3/wuquant/internal/moment"

// AxisSet is a bit set of axes.
type AxisSet uint8

// AllAxes selects every axis.
const AllAxes AxisSet = 1<<numAxes - 1

// Has reports whether axis is in the set.
func (s AxisSet) Has(axis Axis) bool {
	return s&(1<<axis) != 0
}

// Without returns the set minus axis.
func (s AxisSet) Without(axis Axis) AxisSet {
	return s &^ (1 << axis)
}

// CornerSum is the signed inclusion-exclusion sum of the cumulative table
// over the corners spanned by lo and hi on the axes in free. Axes outside
// free are pinned to hi. A corner picking the lower bound on k axes enters
// with sign (-1)^k.
//
// With every axis free the result is the total moment of the buckets
// lo < i <= hi.
func (t *Table) CornerSum(lo, hi [numAxes]int, free AxisSet) moment.Moment {
	var sum moment.Moment
	for corner := AxisSet(0); corner <= AllAxes; corner++ {
		if corner&^free != 0 {
			continue
		}
		var at [numAxes]int
		mins := 0
		for _, axis := range Axes {
			if corner.Has(axis) {
				at[axis] = lo[axis]
				mins++
			} else {
				at[axis] = hi[axis]
			}
		}
		m := t.cells[IndexOf(at[Alpha], at[Red], at[Green], at[Blue])]
		if mins%2 == 0 {
			sum = sum.Add(m)
		} else {
			sum = sum.Sub(m)
		}
	}
	return sum
}

// Volume returns the total moment of the box.
func (t *Table) Volume(b Box) moment.Moment {
	lo, hi := b.Bounds()
	return t.CornerSum(lo, hi, AllAxes)
}

// Top returns the corner sum of the box with axis pinned at position. The
// slab of the box between its lower bound and position on axis is
// Bottom(b, axis) + Top(b, axis, position).
func (t *Table) Top(b Box, axis Axis, position int) moment.Moment {
	lo, hi := b.Bounds()
	hi[axis] = position
	return t.CornerSum(lo, hi, AllAxes.Without(axis))
}

// Bottom returns the negated corner sum of the box with axis pinned at its
// lower bound. It does not depend on the cut position.
func (t *Table) Bottom(b Box, axis Axis) moment.Moment {
	return t.Top(b, axis, b.Min(axis)).Neg()
}
