// Package wuquant reduces the colors of an image to a bounded palette with
// Wu's moment-based partitioning of the joint alpha, red, green and blue
// space.
//
// Usage as a library:
//
//	img, _ := wuquant.LoadImage("photo.png")
//	res, _ := wuquant.Quantize(ctx, img, wuquant.DefaultOptions())
//	out, _ := res.Paletted(ctx, img)
//	wuquant.SaveImage("photo-256.png", out)
//
// Or use the file-based convenience:
//
//	err := wuquant.ConvertFile(ctx, "photo.png", "photo-256.gif", wuquant.DefaultOptions())
//
// A Quantizer can also be handed to image/gif as gif.Options.Quantizer.
package wuquant

import (
	"context"
	"image"
	stdcolor "image/color"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/cube"
	"github.com/maax3v3/wuquant/internal/imaging"
	"github.com/maax3v3/wuquant/internal/mapping"
	"github.com/maax3v3/wuquant/internal/palette"
	"github.com/maax3v3/wuquant/internal/partition"
)

// Mapping strategy constants.
const (
	MappingLookup = mapping.StrategyLookup // Read the entry of the pixel's bucket.
	MappingLinear = mapping.StrategyLinear // Scan for the nearest entry.
)

// Parameter errors. Validate wraps them with the offending value.
var (
	ErrInvalidMaxColors      = errors.New("max colors must be at least 2")
	ErrInvalidAlphaFader     = errors.New("alpha fader must be at least 1")
	ErrInvalidAlphaThreshold = errors.New("alpha threshold must be between 0 and 255")
	ErrNilImage              = errors.New("input image is nil")
)

// Pixel is a non-premultiplied 8-bit RGBA pixel.
type Pixel = color.RGBA

// Grid is a row-major grid of pixels.
type Grid = color.Grid

// Box is a region of the quantized color space, min exclusive, max inclusive
// on every axis.
type Box = cube.Box

// NewGrid returns a transparent grid of the given size.
func NewGrid(width, height int) Grid {
	return color.NewGrid(width, height)
}

// Options configures quantization.
type Options struct {
	// AlphaThreshold drops pixels whose alpha is at or below it.
	// Default: 0.
	AlphaThreshold int

	// AlphaFader coarsens translucent alpha values: alpha becomes
	// alpha + alpha%AlphaFader, clamped to 255. 1 leaves them unchanged.
	// Default: 1.
	AlphaFader int

	// MaxColors bounds the palette. One slot is reserved, so at most
	// MaxColors-1 entries are produced.
	// Default: 256.
	MaxColors int

	// Mapping selects how pixels are assigned to entries by Paletted.
	// Default: "lookup".
	Mapping string

	// Logger receives progress at debug level. Nil disables logging.
	Logger *zap.SugaredLogger
}

// DefaultOptions returns Options with the standard parameters.
func DefaultOptions() Options {
	return Options{
		AlphaThreshold: 0,
		AlphaFader:     1,
		MaxColors:      256,
		Mapping:        MappingLookup,
	}
}

// Validate reports the first invalid parameter.
func (o Options) Validate() error {
	if o.MaxColors < 2 {
		return errors.Wrapf(ErrInvalidMaxColors, "got %d", o.MaxColors)
	}
	if o.AlphaFader < 1 {
		return errors.Wrapf(ErrInvalidAlphaFader, "got %d", o.AlphaFader)
	}
	if o.AlphaThreshold < 0 || o.AlphaThreshold > 255 {
		return errors.Wrapf(ErrInvalidAlphaThreshold, "got %d", o.AlphaThreshold)
	}
	switch o.Mapping {
	case "", MappingLookup, MappingLinear:
	default:
		return errors.Errorf("unknown mapping strategy %q", o.Mapping)
	}
	return nil
}

func (o Options) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return o.Logger
}

// Entry is one palette color.
type Entry struct {
	Number int // 1-based
	Color  stdcolor.NRGBA
	Box    Box
	Weight int64 // pixels averaged into Color
}

// Result is the outcome of quantizing one image.
type Result struct {
	// Entries holds at most MaxColors-1 colors, fewer when the image runs
	// out of separable regions.
	Entries []Entry

	// Kept is the number of pixels above the alpha threshold.
	Kept int

	opts Options
	pal  *palette.Palette
}

// LoadImage reads an image from disk. Supports PNG, JPEG, GIF and WEBP.
func LoadImage(path string) (image.Image, error) {
	return imaging.Load(path)
}

// SaveImage writes an image to disk as PNG or GIF depending on the extension.
func SaveImage(path string, img image.Image) error {
	return imaging.Save(path, img)
}

// Quantize builds the palette of img.
func Quantize(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	grid, err := imaging.ToGrid(ctx, img)
	if err != nil {
		return nil, errors.Wrap(err, "reading pixels")
	}
	return QuantizeGrid(grid, opts)
}

// QuantizeGrid builds the palette of a pixel grid.
func QuantizeGrid(grid Grid, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := opts.logger()
	start := time.Now()

	tbl, kept := cube.Build(grid, uint8(opts.AlphaThreshold), opts.AlphaFader)
	tbl.Cumulate()
	log.Debugw("histogram built", "pixels", grid.Len(), "kept", kept)

	boxes := partition.Split(tbl, opts.MaxColors)
	pal := palette.Build(tbl, boxes)
	log.Debugw("palette built",
		"requested", opts.MaxColors,
		"boxes", len(boxes),
		"entries", pal.Len(),
		"elapsed", time.Since(start),
	)

	res := &Result{Kept: kept, opts: opts, pal: pal, Entries: make([]Entry, len(pal.Entries))}
	for i, e := range pal.Entries {
		res.Entries[i] = Entry{Number: e.Number, Color: e.Color.ToStdColor(), Box: e.Box, Weight: e.Weight}
	}
	return res, nil
}

// Boxes returns the region of every entry, in entry order.
func (r *Result) Boxes() []Box {
	out := make([]Box, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Box
	}
	return out
}

// Palette returns the entry colors followed by the fully transparent slot
// given to pixels at or below the alpha threshold.
func (r *Result) Palette() stdcolor.Palette {
	return mapping.StdPalette(r.pal.Colors())
}

// Paletted maps every pixel of img onto the palette.
func (r *Result) Paletted(ctx context.Context, img image.Image) (*image.Paletted, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	grid, err := imaging.ToGrid(ctx, img)
	if err != nil {
		return nil, errors.Wrap(err, "reading pixels")
	}
	return r.PalettedGrid(ctx, grid)
}

// PalettedGrid maps every pixel of grid onto the palette.
func (r *Result) PalettedGrid(ctx context.Context, grid Grid) (*image.Paletted, error) {
	m, err := mapping.New(r.opts.Mapping, r.pal, r.opts.AlphaFader)
	if err != nil {
		return nil, err
	}
	return mapping.Remap(ctx, grid, r.pal.Colors(), m, uint8(r.opts.AlphaThreshold))
}

// Quantizer adapts Quantize to image/draw.Quantizer.
type Quantizer struct {
	Options Options
}

// Quantize appends the palette of m to p. Zero option fields take their
// defaults, and the number of colors added is capped by the spare capacity
// of p when that is at least 2. On error only the transparent slot is
// appended, so the result is never empty.
func (q Quantizer) Quantize(p stdcolor.Palette, m image.Image) stdcolor.Palette {
	opts := q.Options.withDefaults()
	if room := cap(p) - len(p); room >= 2 && room < opts.MaxColors {
		opts.MaxColors = room
	}
	res, err := Quantize(context.Background(), m, opts)
	if err != nil {
		opts.logger().Warnw("quantization failed", "error", err)
		return append(p, stdcolor.NRGBA{})
	}
	return append(p, res.Palette()...)
}

// withDefaults fills the zero fields that Validate would reject.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxColors == 0 {
		o.MaxColors = def.MaxColors
	}
	if o.AlphaFader == 0 {
		o.AlphaFader = def.AlphaFader
	}
	return o
}

// ConvertFile loads inPath, quantizes it and writes the paletted image to
// outPath as PNG or GIF.
func ConvertFile(ctx context.Context, inPath, outPath string, opts Options) error {
	if _, err := imaging.FormatFromPath(outPath); err != nil {
		return err
	}
	img, err := LoadImage(inPath)
	if err != nil {
		return errors.Wrap(err, "loading image")
	}
	res, err := Quantize(ctx, img, opts)
	if err != nil {
		return errors.Wrap(err, "quantizing")
	}
	out, err := res.Paletted(ctx, img)
	if err != nil {
		return errors.Wrap(err, "remapping")
	}
	if err := SaveImage(outPath, out); err != nil {
		return errors.Wrap(err, "saving output")
	}
	opts.logger().Infow("converted", "in", inPath, "out", outPath, "colors", len(res.Entries))
	return nil
}
