// Package palette turns the final boxes of the partition into palette
// entries and a bucket lookup table.
package palette

import (
	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/cube"
)

// Entry is one palette color and the region it stands for.
type Entry struct {
	Number int // 1-based, in box order
	Color  color.RGBA
	Box    cube.Box
	Weight int64 // pixels covered, including the synthetic origin pixel
}

// Palette holds the entries and, for every bucket, the index of the entry
// whose box covers it.
type Palette struct {
	Entries []Entry
	tags    []int32
}

const untagged = -1

// Build averages every box into an entry. Boxes that hold no pixels produce
// no entry and leave their buckets untagged.
func Build(t *cube.Table, boxes []cube.Box) *Palette {
	p := &Palette{
		Entries: make([]Entry, 0, len(boxes)),
		tags:    make([]int32, cube.Cells),
	}
	for i := range p.tags {
		p.tags[i] = untagged
	}

	for _, b := range boxes {
		vol := t.Volume(b)
		a, r, g, bl, ok := vol.Mean()
		if !ok {
			continue
		}
		idx := int32(len(p.Entries))
		b.Each(func(i cube.Index) { p.tags[i] = idx })
		p.Entries = append(p.Entries, Entry{
			Number: len(p.Entries) + 1,
			Color:  color.RGBA{R: r, G: g, B: bl, A: a},
			Box:    b,
			Weight: vol.Weight,
		})
	}
	return p
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return len(p.Entries)
}

// Colors returns the entry colors in order.
func (p *Palette) Colors() []color.RGBA {
	out := make([]color.RGBA, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Color
	}
	return out
}

// Lookup returns the entry index of the bucket (a, r, g, b). The second
// result is false when no non-empty box covers the bucket.
func (p *Palette) Lookup(a, r, g, b int) (int, bool) {
	idx := p.tags[cube.IndexOf(a, r, g, b)]
	if idx == untagged {
		return 0, false
	}
	return int(idx), true
}
