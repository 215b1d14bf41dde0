package partition

import (
	"math/rand"
	"testing"

	"go.viam.com/test"

	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/cube"
	"github.com/maax3v3/wuquant/internal/moment"
)

func gridOf(pixels ...color.RGBA) color.Grid {
	g := color.NewGrid(len(pixels), 1)
	copy(g.Pix, pixels)
	return g
}

func randomGrid(rng *rand.Rand, w, h int) color.Grid {
	g := color.NewGrid(w, h)
	for i := range g.Pix {
		g.Pix[i] = color.RGBA{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
			A: uint8(rng.Intn(256)),
		}
	}
	return g
}

func cumulative(g color.Grid, threshold uint8, fader int) (*cube.Table, int) {
	t, kept := cube.Build(g, threshold, fader)
	t.Cumulate()
	return t, kept
}

func TestSplitSinglePixel(t *testing.T) {
	tbl, _ := cumulative(gridOf(color.RGBA{R: 10, G: 20, B: 30, A: 255}), 0, 1)

	boxes := Split(tbl, 256)
	test.That(t, boxes, test.ShouldHaveLength, 2)

	// alpha and red tie on the first cut; alpha wins and cuts at its first plane
	test.That(t, boxes[0].AlphaMin, test.ShouldEqual, 0)
	test.That(t, boxes[0].AlphaMax, test.ShouldEqual, 1)
	test.That(t, boxes[1].AlphaMin, test.ShouldEqual, 1)
	test.That(t, boxes[1].RedMax, test.ShouldEqual, cube.MaxSide)

	test.That(t, tbl.Volume(boxes[0]), test.ShouldResemble, moment.Of(0, 0, 0, 0))
	test.That(t, tbl.Volume(boxes[1]), test.ShouldResemble, moment.Of(255, 10, 20, 30))
}

func TestSplitTransparentImage(t *testing.T) {
	g := color.NewGrid(8, 8)
	tbl, kept := cumulative(g, 0, 1)
	test.That(t, kept, test.ShouldEqual, 0)

	boxes := Split(tbl, 256)
	test.That(t, boxes, test.ShouldHaveLength, 1)
	test.That(t, boxes[0], test.ShouldResemble, cube.Whole())
	test.That(t, tbl.Volume(boxes[0]).Weight, test.ShouldEqual, int64(1))
}

func TestSplitTwoColors(t *testing.T) {
	g := gridOf(
		color.RGBA{R: 255, A: 255}, color.RGBA{R: 255, A: 255},
		color.RGBA{B: 255, A: 255}, color.RGBA{B: 255, A: 255},
	)
	tbl, _ := cumulative(g, 0, 1)

	// one slot is reserved, so two colors leave room for a single box
	test.That(t, Split(tbl, 2), test.ShouldHaveLength, 1)

	boxes := Split(tbl, 3)
	test.That(t, len(boxes), test.ShouldBeGreaterThanOrEqualTo, 1)
	test.That(t, len(boxes), test.ShouldBeLessThanOrEqualTo, 2)
}

func TestSplitWeightIsConserved(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := randomGrid(rng, 64, 48)
	for _, threshold := range []uint8{0, 60, 200} {
		tbl, kept := cumulative(g, threshold, 3)
		for _, maxColors := range []int{2, 16, 256} {
			boxes := Split(tbl, maxColors)
			test.That(t, len(boxes), test.ShouldBeLessThanOrEqualTo, maxColors-1)

			var total int64
			for _, b := range boxes {
				total += tbl.Volume(b).Weight
			}
			test.That(t, total, test.ShouldEqual, int64(kept+1))
		}
	}
}

func TestSplitBoxesAreDisjoint(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	tbl, _ := cumulative(randomGrid(rng, 32, 32), 0, 1)
	boxes := Split(tbl, 64)

	hits := make([]uint8, cube.Cells)
	covered := 0
	for _, b := range boxes {
		b.Each(func(idx cube.Index) { hits[idx]++ })
		covered += b.Size
	}
	test.That(t, covered, test.ShouldEqual, cube.Whole().Size)
	for idx, n := range hits {
		if n > 1 {
			t.Fatalf("bucket %d covered %d times", idx, n)
		}
	}
}

func TestSplitMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tbl, _ := cumulative(randomGrid(rng, 40, 40), 0, 1)

	prev := 0
	for _, maxColors := range []int{2, 3, 4, 8, 16, 32, 64, 128, 256} {
		n := len(Split(tbl, maxColors))
		test.That(t, n, test.ShouldBeGreaterThanOrEqualTo, prev)
		prev = n
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	g := randomGrid(rng, 30, 30)
	a, _ := cumulative(g, 0, 1)
	b, _ := cumulative(g, 0, 1)
	test.That(t, Split(a, 100), test.ShouldResemble, Split(b, 100))
}

func TestMaximizeSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	tbl, _ := cumulative(randomGrid(rng, 20, 20), 0, 1)
	b := cube.Whole()
	whole := tbl.Volume(b)

	for _, axis := range cube.Axes {
		bottom := tbl.Bottom(b, axis)
		for pos := 1; pos < cube.MaxSide; pos++ {
			lower := bottom.Add(tbl.Top(b, axis, pos))
			upperBox := b
			upperBox.SetMin(axis, pos)
			upperBox.Resize()
			upper := tbl.Volume(upperBox)

			test.That(t, lower.Add(upper).Weight, test.ShouldEqual, whole.Weight)
			fromLower := lower.WeightedDistance() + whole.Sub(lower).WeightedDistance()
			fromUpper := upper.WeightedDistance() + whole.Sub(upper).WeightedDistance()
			test.That(t, fromLower, test.ShouldAlmostEqual, fromUpper, 1e-6)
		}
	}
}

func TestMaximizeNoCut(t *testing.T) {
	// both pixels share a bucket, so every plane leaves one side empty
	g := gridOf(color.RGBA{R: 100, G: 100, B: 100, A: 255}, color.RGBA{R: 101, G: 100, B: 100, A: 255})
	tbl, _ := cumulative(g, 0, 1)

	b := cube.Whole()
	b.SetMin(cube.Alpha, 31)
	b.Resize()
	whole := tbl.Volume(b)
	for _, axis := range cube.Axes {
		res := Maximize(tbl, b, axis, b.Min(axis)+1, b.Max(axis), whole)
		test.That(t, res.OK, test.ShouldBeFalse)
		test.That(t, res.Value, test.ShouldEqual, 0.0)
	}

	before := b
	_, ok := Cut(tbl, &b)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, b, test.ShouldResemble, before)
}

func TestCutSplitsAlongBestAxis(t *testing.T) {
	// identical alpha, red and green; only blue separates the two colors
	g := gridOf(
		color.RGBA{R: 50, G: 50, B: 0, A: 255},
		color.RGBA{R: 50, G: 50, B: 255, A: 255},
	)
	tbl, _ := cumulative(g, 0, 1)

	b := cube.Whole()
	b.SetMin(cube.Alpha, 31)
	b.Resize()
	second, ok := Cut(tbl, &b)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, b.BlueMax, test.ShouldEqual, second.BlueMin)
	test.That(t, b.AlphaMin, test.ShouldEqual, 31)
	test.That(t, second.AlphaMin, test.ShouldEqual, 31)
	test.That(t, tbl.Volume(b).Weight, test.ShouldEqual, int64(1))
	test.That(t, tbl.Volume(second).Weight, test.ShouldEqual, int64(1))
}
