// Package partition splits the colour cube into boxes of low variance, the
// greedy search at the heart of the Wu quantizer.
package partition

import (
	"github.com/maax3v3/wuquant/internal/cube"
	"github.com/maax3v3/wuquant/internal/moment"
)

// CutResult is the best cut plane found on one axis. OK is false when every
// candidate plane left one side empty.
type CutResult struct {
	Position int
	OK       bool
	Value    float64
}

// Maximize scans the planes first..last-1 on axis and returns the one whose
// two halves have the largest combined weighted distance. whole is the
// volume of b.
func Maximize(t *cube.Table, b cube.Box, axis cube.Axis, first, last int, whole moment.Moment) CutResult {
	bottom := t.Bottom(b, axis)
	var res CutResult
	for position := first; position < last; position++ {
		half := bottom.Add(t.Top(b, axis, position))
		if half.Weight == 0 {
			continue
		}
		temp := half.WeightedDistance()

		half = whole.Sub(half)
		if half.Weight == 0 {
			continue
		}
		temp += half.WeightedDistance()

		if temp > res.Value {
			res = CutResult{Position: position, OK: true, Value: temp}
		}
	}
	return res
}

// Cut splits first in two along the axis with the best cut plane. On success
// first keeps the lower part and the upper part is returned.
//
// Ties go to alpha, then red, then green. When alpha wins without a valid
// plane the box is reported unsplittable even if another axis had one.
func Cut(t *cube.Table, first *cube.Box) (cube.Box, bool) {
	whole := t.Volume(*first)

	var results [len(cube.Axes)]CutResult
	for _, axis := range cube.Axes {
		results[axis] = Maximize(t, *first, axis, first.Min(axis)+1, first.Max(axis), whole)
	}

	axis := cube.Blue
	for _, candidate := range cube.Axes {
		if dominates(results, candidate) {
			axis = candidate
			break
		}
	}
	if axis == cube.Alpha && !results[cube.Alpha].OK {
		return cube.Box{}, false
	}

	second := *first
	position := results[axis].Position
	first.SetMax(axis, position)
	second.SetMin(axis, position)
	first.Resize()
	second.Resize()
	return second, true
}

func dominates(results [len(cube.Axes)]CutResult, axis cube.Axis) bool {
	for _, other := range results {
		if results[axis].Value < other.Value {
			return false
		}
	}
	return true
}
