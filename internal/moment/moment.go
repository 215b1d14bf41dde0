// Package moment holds the aggregable colour statistics used by the Wu quantizer.
package moment

// Moment is the aggregate of a set of pixels: how many there are, the sum of
// each channel and the sum of their squared channel magnitudes.
//
// A Moment obtained by subtraction may carry a negative weight while an
// inclusion-exclusion sum is still being assembled.
type Moment struct {
	Weight     int64
	Alpha      int64
	Red        int64
	Green      int64
	Blue       int64
	SumSquares float64
}

// Of returns the unit moment of a single pixel.
func Of(a, r, g, b uint8) Moment {
	ai, ri, gi, bi := int64(a), int64(r), int64(g), int64(b)
	return Moment{
		Weight:     1,
		Alpha:      ai,
		Red:        ri,
		Green:      gi,
		Blue:       bi,
		SumSquares: float64(ai*ai + ri*ri + gi*gi + bi*bi),
	}
}

// Add returns m + o.
func (m Moment) Add(o Moment) Moment {
	return Moment{
		Weight:     m.Weight + o.Weight,
		Alpha:      m.Alpha + o.Alpha,
		Red:        m.Red + o.Red,
		Green:      m.Green + o.Green,
		Blue:       m.Blue + o.Blue,
		SumSquares: m.SumSquares + o.SumSquares,
	}
}

// Sub returns m - o.
func (m Moment) Sub(o Moment) Moment {
	return Moment{
		Weight:     m.Weight - o.Weight,
		Alpha:      m.Alpha - o.Alpha,
		Red:        m.Red - o.Red,
		Green:      m.Green - o.Green,
		Blue:       m.Blue - o.Blue,
		SumSquares: m.SumSquares - o.SumSquares,
	}
}

// Neg returns -m.
func (m Moment) Neg() Moment {
	return Moment{}.Sub(m)
}

// Amplitude is the squared magnitude of the channel-sum vector. It is
// computed in float64 so that sums over very large images cannot overflow.
func (m Moment) Amplitude() float64 {
	a, r, g, b := float64(m.Alpha), float64(m.Red), float64(m.Green), float64(m.Blue)
	return a*a + r*r + g*g + b*b
}

// WeightedDistance is Amplitude divided by Weight. Comparing it across
// candidate splits of the same region is equivalent to comparing the
// variance reduction of those splits. It is 0 for an empty moment.
func (m Moment) WeightedDistance() float64 {
	if m.Weight == 0 {
		return 0
	}
	return m.Amplitude() / float64(m.Weight)
}

// Variance is the sum of squared deviations from the mean colour.
func (m Moment) Variance() float64 {
	if m.Weight == 0 {
		return 0
	}
	return m.SumSquares - m.Amplitude()/float64(m.Weight)
}

// Mean returns the truncated per-channel average. The second result is false
// when the moment holds no pixels.
func (m Moment) Mean() (a, r, g, b uint8, ok bool) {
	if m.Weight <= 0 {
		return 0, 0, 0, 0, false
	}
	w := m.Weight
	return uint8(m.Alpha / w), uint8(m.Red / w), uint8(m.Green / w), uint8(m.Blue / w), true
}
