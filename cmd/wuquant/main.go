// Package main is the wuquant command line tool.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/config"
	"github.com/maax3v3/wuquant/internal/logging"
	"github.com/maax3v3/wuquant/internal/pipeline"
	"github.com/maax3v3/wuquant/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var logger *zap.SugaredLogger

	return &cli.App{
		Name:            "wuquant",
		Usage:           "reduce the colors of an image with Wu's quantizer",
		HideHelpCommand: true,
		Flags:           config.GlobalFlags(),
		Before: func(c *cli.Context) error {
			l, err := logging.NewLogger("wuquant", c.Bool(config.FlagDebug))
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		After: func(*cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "quantize",
				Usage:     "write a paletted copy of an image",
				UsageText: "wuquant quantize --in <file> --out <file.png|file.gif> [options]",
				Flags:     concat([]cli.Flag{config.InputFlag()}, config.OutputFlags(), config.QuantizeFlags()),
				Action: func(c *cli.Context) error {
					sum, err := pipeline.Run(c.Context, config.FromContext(c), logger)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d colors, mean error %.2f (rgb) %.2f (lab)\n",
						len(sum.Entries), sum.Report.MeanRGB, sum.Report.MeanLAB)
					return nil
				},
			},
			{
				Name:      "palette",
				Usage:     "print the palette of an image",
				UsageText: "wuquant palette --in <file> [--json] [options]",
				Flags:     concat([]cli.Flag{config.InputFlag(), config.JSONFlag()}, config.QuantizeFlags()),
				Action: func(c *cli.Context) error {
					cfg := config.FromContext(c)
					sum, err := pipeline.Run(c.Context, cfg, logger)
					if err != nil {
						return err
					}
					return printPalette(c, sum, cfg.JSON)
				},
			},
			{
				Name:      "serve",
				Usage:     "serve the quantizer over HTTP",
				UsageText: "wuquant serve [--addr :8080] [options]",
				Flags:     concat(config.ServeFlags(), config.QuantizeFlags()),
				Action: func(c *cli.Context) error {
					cfg := config.FromContext(c)
					if err := cfg.Validate(); err != nil {
						return err
					}
					return server.New(cfg, logger).ListenAndServe(c.Context, cfg.Addr)
				},
			},
		},
	}
}

type paletteLine struct {
	Number int    `json:"number"`
	Hex    string `json:"hex"`
	Weight int64  `json:"weight"`
}

func printPalette(c *cli.Context, sum *pipeline.Summary, asJSON bool) error {
	lines := make([]paletteLine, len(sum.Entries))
	for i, e := range sum.Entries {
		lines[i] = paletteLine{Number: e.Number, Hex: color.FromStdColor(e.Color).Hex(), Weight: e.Weight}
	}
	if asJSON {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(lines)
	}
	for _, l := range lines {
		fmt.Fprintf(c.App.Writer, "%3d  %-9s  %d\n", l.Number, l.Hex, l.Weight)
	}
	return nil
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
