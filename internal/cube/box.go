package cube

import "fmt"

// Axis names one of the four dimensions of the table.
type Axis int

// Axes in cut priority order.
const (
	Alpha Axis = iota
	Red
	Green
	Blue
	numAxes
)

// Axes lists every axis in cut priority order.
var Axes = [numAxes]Axis{Alpha, Red, Green, Blue}

func (a Axis) String() string {
	switch a {
	case Alpha:
		return "alpha"
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Box is an axis-aligned region of the table. It covers the buckets i with
// Min < i <= Max on every axis.
type Box struct {
	AlphaMin, AlphaMax int
	RedMin, RedMax     int
	GreenMin, GreenMax int
	BlueMin, BlueMax   int
	// Size is the number of buckets covered.
	Size int
}

// Whole returns the box covering the entire table.
func Whole() Box {
	b := Box{AlphaMax: MaxSide, RedMax: MaxSide, GreenMax: MaxSide, BlueMax: MaxSide}
	b.Resize()
	return b
}

// Bounds returns the lower and upper bound of the box on every axis, indexed
// by Axis.
func (b Box) Bounds() (lo, hi [numAxes]int) {
	lo = [numAxes]int{b.AlphaMin, b.RedMin, b.GreenMin, b.BlueMin}
	hi = [numAxes]int{b.AlphaMax, b.RedMax, b.GreenMax, b.BlueMax}
	return lo, hi
}

// Min returns the lower bound on axis.
func (b Box) Min(axis Axis) int {
	lo, _ := b.Bounds()
	return lo[axis]
}

// Max returns the upper bound on axis.
func (b Box) Max(axis Axis) int {
	_, hi := b.Bounds()
	return hi[axis]
}

// SetMin sets the lower bound on axis. Size is not updated.
func (b *Box) SetMin(axis Axis, v int) {
	switch axis {
	case Alpha:
		b.AlphaMin = v
	case Red:
		b.RedMin = v
	case Green:
		b.GreenMin = v
	case Blue:
		b.BlueMin = v
	}
}

// SetMax sets the upper bound on axis. Size is not updated.
func (b *Box) SetMax(axis Axis, v int) {
	switch axis {
	case Alpha:
		b.AlphaMax = v
	case Red:
		b.RedMax = v
	case Green:
		b.GreenMax = v
	case Blue:
		b.BlueMax = v
	}
}

// Resize recomputes Size from the bounds.
func (b *Box) Resize() {
	b.Size = (b.AlphaMax - b.AlphaMin) * (b.RedMax - b.RedMin) * (b.GreenMax - b.GreenMin) * (b.BlueMax - b.BlueMin)
}

// Each calls fn for every bucket inside the box.
func (b Box) Each(fn func(i Index)) {
	for a := b.AlphaMin + 1; a <= b.AlphaMax; a++ {
		for r := b.RedMin + 1; r <= b.RedMax; r++ {
			for g := b.GreenMin + 1; g <= b.GreenMax; g++ {
				for bl := b.BlueMin + 1; bl <= b.BlueMax; bl++ {
					fn(IndexOf(a, r, g, bl))
				}
			}
		}
	}
}

func (b Box) String() string {
	return fmt.Sprintf("a(%d,%d] r(%d,%d] g(%d,%d] b(%d,%d]",
		b.AlphaMin, b.AlphaMax, b.RedMin, b.RedMax, b.GreenMin, b.GreenMax, b.BlueMin, b.BlueMax)
}
