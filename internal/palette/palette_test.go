package palette

import (
	"testing"

	"go.viam.com/test"

	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/cube"
	"github.com/maax3v3/wuquant/internal/partition"
)

func build(t *testing.T, maxColors int, pixels ...color.RGBA) (*cube.Table, *Palette) {
	t.Helper()
	g := color.NewGrid(len(pixels), 1)
	copy(g.Pix, pixels)
	tbl, _ := cube.Build(g, 0, 1)
	tbl.Cumulate()
	return tbl, Build(tbl, partition.Split(tbl, maxColors))
}

func TestBuild_SinglePixel(t *testing.T) {
	_, p := build(t, 256, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	test.That(t, p.Len(), test.ShouldEqual, 2)
	test.That(t, p.Colors(), test.ShouldResemble, []color.RGBA{
		{R: 0, G: 0, B: 0, A: 0},
		{R: 10, G: 20, B: 30, A: 255},
	})
	test.That(t, p.Entries[0].Number, test.ShouldEqual, 1)
	test.That(t, p.Entries[1].Number, test.ShouldEqual, 2)
	test.That(t, p.Entries[1].Weight, test.ShouldEqual, int64(1))
}

func TestBuild_TransparentOnly(t *testing.T) {
	_, p := build(t, 256, color.RGBA{}, color.RGBA{R: 200, A: 0})

	test.That(t, p.Colors(), test.ShouldResemble, []color.RGBA{{R: 0, G: 0, B: 0, A: 0}})
	test.That(t, p.Entries[0].Weight, test.ShouldEqual, int64(1))
}

func TestBuild_DistinctColorsReproducedExactly(t *testing.T) {
	colors := []color.RGBA{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
		{R: 0, G: 0, B: 255, A: 255},
		{R: 255, G: 255, B: 0, A: 255},
		{R: 17, G: 99, B: 200, A: 128},
		{R: 250, G: 250, B: 250, A: 255},
	}
	var pixels []color.RGBA
	for i, c := range colors {
		for n := 0; n <= i; n++ {
			pixels = append(pixels, c)
		}
	}
	tbl, p := build(t, 256, pixels...)

	got := make(map[color.RGBA]int64)
	for _, e := range p.Entries {
		got[e.Color] = e.Weight
		test.That(t, tbl.Volume(e.Box).Variance(), test.ShouldAlmostEqual, 0.0, 1e-6)
	}
	for i, c := range colors {
		test.That(t, got[c], test.ShouldEqual, int64(i+1))
	}
	test.That(t, got[color.RGBA{}], test.ShouldEqual, int64(1))
}

func TestBuild_EmptyBoxesSkipped(t *testing.T) {
	tbl, _ := build(t, 2, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	empty := cube.Whole()
	empty.SetMin(cube.Alpha, 10)
	empty.SetMax(cube.Alpha, 20)
	empty.Resize()

	p := Build(tbl, []cube.Box{empty})
	test.That(t, p.Len(), test.ShouldEqual, 0)
	_, ok := p.Lookup(15, 1, 1, 1)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestLookup_CoversEveryBucketOfItsBox(t *testing.T) {
	_, p := build(t, 8,
		color.RGBA{R: 255, G: 0, B: 0, A: 255},
		color.RGBA{R: 0, G: 0, B: 255, A: 255},
		color.RGBA{R: 0, G: 255, B: 0, A: 255},
	)

	for i, e := range p.Entries {
		bx := e.Box
		for a := bx.AlphaMin + 1; a <= bx.AlphaMax; a++ {
			for r := bx.RedMin + 1; r <= bx.RedMax; r++ {
				for g := bx.GreenMin + 1; g <= bx.GreenMax; g++ {
					for b := bx.BlueMin + 1; b <= bx.BlueMax; b++ {
						got, ok := p.Lookup(a, r, g, b)
						if !ok || got != i {
							t.Fatalf("bucket (%d,%d,%d,%d): got %d/%v, want %d", a, r, g, b, got, ok, i)
						}
					}
				}
			}
		}
	}

	idx, ok := p.Lookup(cube.BucketOf(255), cube.BucketOf(0), cube.BucketOf(0), cube.BucketOf(255))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p.Entries[idx].Color, test.ShouldResemble, color.RGBA{R: 0, G: 0, B: 255, A: 255})
}

func TestBuild_MoreColorsNeverFewerEntries(t *testing.T) {
	var pixels []color.RGBA
	for r := 0; r < 256; r += 17 {
		for g := 0; g < 256; g += 51 {
			pixels = append(pixels, color.RGBA{R: uint8(r), G: uint8(g), B: uint8(255 - r), A: 255})
		}
	}
	prev := 0
	for _, n := range []int{2, 4, 16, 64, 256} {
		_, p := build(t, n, pixels...)
		test.That(t, p.Len(), test.ShouldBeGreaterThanOrEqualTo, prev)
		test.That(t, p.Len(), test.ShouldBeLessThanOrEqualTo, n-1)
		prev = p.Len()
	}
}
