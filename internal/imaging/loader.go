// Package imaging reads and writes image files and converts decoded images
// into pixel grids.
package imaging

import (
	"context"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	_ "golang.org/x/image/webp"

	"github.com/maax3v3/wuquant/internal/color"
)

// Output formats.
const (
	FormatPNG = "png"
	FormatGIF = "gif"
)

// Load reads an image file from disk. Supports PNG, JPEG, GIF and WEBP.
// The path is normalized: ~ is expanded to the user's home directory,
// and relative paths are resolved to absolute.
func Load(path string) (image.Image, error) {
	path = ExpandPath(path)
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		return nil, errors.Errorf("unsupported image format %q (supported: png, jpg, jpeg, gif, webp)", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening image")
	}
	defer f.Close()

	switch ext {
	case ".png":
		return png.Decode(f)
	case ".jpg", ".jpeg":
		return jpeg.Decode(f)
	case ".gif":
		return gif.Decode(f)
	default:
		// Decoded via the blank import of golang.org/x/image/webp
		return Decode(f)
	}
}

// Decode decodes an image of any registered format from r.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}
	return img, nil
}

// FormatFromPath picks the output format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return FormatPNG, nil
	case ".gif":
		return FormatGIF, nil
	default:
		return "", errors.Errorf("output must be a .png or .gif file, got %q", ext)
	}
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG:
		return errors.Wrap(png.Encode(w, img), "encoding PNG")
	case FormatGIF:
		return errors.Wrap(gif.Encode(w, img, &gif.Options{NumColors: 256}), "encoding GIF")
	default:
		return errors.Errorf("unsupported output format %q", format)
	}
}

// Save writes img to disk, choosing the format from the extension.
// The path is normalized: ~ is expanded and relative paths are resolved.
func Save(path string, img image.Image) (err error) {
	path = ExpandPath(path)
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer func() {
		err = multierr.Combine(err, errors.Wrap(f.Close(), "closing output file"))
	}()
	return Encode(f, img, format)
}

// ToGrid converts any image into a grid of non-premultiplied pixels. Rows are
// converted concurrently.
func ToGrid(ctx context.Context, img image.Image) (color.Grid, error) {
	b := img.Bounds()
	grid := color.NewGrid(b.Dx(), b.Dy())

	if src, ok := img.(*image.NRGBA); ok {
		for i := range grid.Pix {
			x, y := i%grid.Width, i/grid.Width
			o := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			grid.Pix[i] = color.RGBA{R: src.Pix[o], G: src.Pix[o+1], B: src.Pix[o+2], A: src.Pix[o+3]}
		}
		return grid, nil
	}

	err := ParallelRows(ctx, grid.Height, func(startY, endY int) error {
		for y := startY; y < endY; y++ {
			row := grid.Row(y)
			for x := range row {
				row[x] = color.FromStdColor(img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
		return nil
	})
	return grid, err
}

// ExpandPath normalizes a file path by expanding ~ to the user's home
// directory and resolving relative paths to absolute.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand ~ and ~/ to home directory
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	// On Windows, also handle ~\
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "~\\") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	// Resolve relative paths to absolute
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return filepath.Clean(path)
}
