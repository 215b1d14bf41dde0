package partition

import "github.com/maax3v3/wuquant/internal/cube"

// Split partitions the cumulative table into at most maxColors-1 boxes, one
// slot being left for the caller's transparent entry. It repeatedly cuts the
// box with the largest variance and stops early once no box has variance
// left, so fewer boxes than requested may come back.
//
// maxColors must be at least 2.
func Split(t *cube.Table, maxColors int) []cube.Box {
	colorCount := maxColors - 1
	boxes := make([]cube.Box, colorCount)
	variance := make([]float64, colorCount)
	boxes[0] = cube.Whole()

	next := 0
	for i := 1; i < colorCount; i++ {
		if second, ok := Cut(t, &boxes[next]); ok {
			boxes[i] = second
			variance[next] = boxVariance(t, boxes[next])
			variance[i] = boxVariance(t, boxes[i])
		} else {
			variance[next] = 0
			i--
		}

		next = 0
		best := variance[0]
		for j := 1; j <= i; j++ {
			if variance[j] > best {
				best = variance[j]
				next = j
			}
		}
		if best <= 0 {
			colorCount = i + 1
			break
		}
	}
	return boxes[:colorCount]
}

func boxVariance(t *cube.Table, b cube.Box) float64 {
	if b.Size <= 1 {
		return 0
	}
	return t.Volume(b).Variance()
}
