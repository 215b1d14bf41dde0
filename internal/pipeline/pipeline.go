// Package pipeline runs a full file-to-file quantization: load, build the
// palette, remap, save, and optionally draw the palette sheet.
package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/maax3v3/wuquant"
	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/config"
	"github.com/maax3v3/wuquant/internal/imaging"
	"github.com/maax3v3/wuquant/internal/mapping"
	"github.com/maax3v3/wuquant/internal/renderer"
)

// Summary describes one run.
type Summary struct {
	Width, Height int
	Entries       []wuquant.Entry
	Kept          int
	Report        mapping.Report // zero unless an output was written
}

// Run executes the pipeline described by cfg. The remapped image is only
// produced when cfg.OutPath is set, the palette sheet only when
// cfg.SwatchPath is set.
func Run(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	logger.Infow("loading image", "path", cfg.InPath)
	img, err := imaging.Load(cfg.InPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading image")
	}
	grid, err := imaging.ToGrid(ctx, img)
	if err != nil {
		return nil, errors.Wrap(err, "reading pixels")
	}
	logger.Debugw("image loaded", "width", grid.Width, "height", grid.Height)

	res, err := wuquant.QuantizeGrid(grid, cfg.Options(logger))
	if err != nil {
		return nil, errors.Wrap(err, "quantizing")
	}
	sum := &Summary{Width: grid.Width, Height: grid.Height, Entries: res.Entries, Kept: res.Kept}
	logger.Infow("palette built", "colors", len(res.Entries), "kept", res.Kept, "of", grid.Len())

	if cfg.OutPath != "" {
		out, err := res.PalettedGrid(ctx, grid)
		if err != nil {
			return nil, errors.Wrap(err, "remapping")
		}
		if err := imaging.Save(cfg.OutPath, out); err != nil {
			return nil, errors.Wrap(err, "saving output")
		}
		logger.Infow("output written", "path", cfg.OutPath)

		rep, err := mapping.Measure(ctx, grid, out, uint8(cfg.AlphaThreshold))
		if err != nil {
			return nil, errors.Wrap(err, "measuring error")
		}
		sum.Report = rep
		logger.Infow("quality",
			"pixels", rep.Pixels,
			"mean_rgb", rep.MeanRGB,
			"max_rgb", rep.MaxRGB,
			"mean_lab", rep.MeanLAB,
		)
	}

	if cfg.SwatchPath != "" {
		rcfg := renderer.DefaultConfig()
		if rcfg.Background, err = cfg.Background(); err != nil {
			return nil, err
		}
		sheet := renderer.RenderSwatches(Swatches(res.Entries), renderer.NewBitmapFont(), rcfg)
		if err := imaging.Save(cfg.SwatchPath, sheet); err != nil {
			return nil, errors.Wrap(err, "saving swatch sheet")
		}
		logger.Infow("swatch sheet written", "path", cfg.SwatchPath)
	}

	logger.Debugw("done", "elapsed", time.Since(start))
	return sum, nil
}

// Swatches converts palette entries for the renderer.
func Swatches(entries []wuquant.Entry) []renderer.Swatch {
	out := make([]renderer.Swatch, len(entries))
	for i, e := range entries {
		out[i] = renderer.Swatch{Number: e.Number, Color: color.FromStdColor(e.Color)}
	}
	return out
}
