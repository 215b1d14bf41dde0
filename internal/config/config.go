// Package config holds the settings shared by the command line tool and the
// HTTP server, and the flags that populate them.
package config

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/maax3v3/wuquant"
	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/imaging"
)

// Flag names.
const (
	FlagIn             = "in"
	FlagOut            = "out"
	FlagSwatch         = "swatch"
	FlagSwatchBg       = "swatch-background"
	FlagMaxColors      = "max-colors"
	FlagAlphaThreshold = "alpha-threshold"
	FlagAlphaFader     = "alpha-fader"
	FlagMapping        = "mapping"
	FlagAddr           = "addr"
	FlagJSON           = "json"
	FlagDebug          = "debug"
)

// DefaultAddr is the listen address of the HTTP server.
const DefaultAddr = ":8080"

// DefaultSwatchBackground fills the palette sheet behind the swatches.
const DefaultSwatchBackground = "#ffffff"

// Config holds the parsed settings of one invocation.
type Config struct {
	InPath     string
	OutPath    string
	SwatchPath string
	// SwatchBackground is a hex color, see color.ParseHex.
	SwatchBackground string

	MaxColors      int
	AlphaThreshold int
	AlphaFader     int
	Mapping        string

	Addr  string
	JSON  bool
	Debug bool
}

// Default returns a Config holding the default quantization parameters.
func Default() Config {
	o := wuquant.DefaultOptions()
	return Config{
		MaxColors:      o.MaxColors,
		AlphaThreshold: o.AlphaThreshold,
		AlphaFader:     o.AlphaFader,
		Mapping:        o.Mapping,
		Addr:           DefaultAddr,

		SwatchBackground: DefaultSwatchBackground,
	}
}

func envVar(flag string) []string {
	return []string{"WUQUANT_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))}
}

// GlobalFlags are accepted by every command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    FlagDebug,
			Aliases: []string{"v"},
			Usage:   "enable debug logging",
			EnvVars: envVar(FlagDebug),
		},
	}
}

// QuantizeFlags are the quantization parameters.
func QuantizeFlags() []cli.Flag {
	d := Default()
	return []cli.Flag{
		&cli.IntFlag{
			Name:    FlagMaxColors,
			Aliases: []string{"n"},
			Value:   d.MaxColors,
			Usage:   "palette size, one slot is kept for transparency (>= 2)",
			EnvVars: envVar(FlagMaxColors),
		},
		&cli.IntFlag{
			Name:    FlagAlphaThreshold,
			Value:   d.AlphaThreshold,
			Usage:   "drop pixels whose alpha is at or below this value (0-255)",
			EnvVars: envVar(FlagAlphaThreshold),
		},
		&cli.IntFlag{
			Name:    FlagAlphaFader,
			Value:   d.AlphaFader,
			Usage:   "coarsen translucent alpha values by this step (>= 1)",
			EnvVars: envVar(FlagAlphaFader),
		},
		&cli.StringFlag{
			Name:    FlagMapping,
			Value:   d.Mapping,
			Usage:   "pixel mapping strategy: lookup or linear",
			EnvVars: envVar(FlagMapping),
		},
	}
}

// InputFlag names the source image.
func InputFlag() cli.Flag {
	return &cli.PathFlag{
		Name:     FlagIn,
		Aliases:  []string{"i"},
		Required: true,
		Usage:    "input image `FILE` (png, jpg, gif, webp)",
		EnvVars:  envVar(FlagIn),
	}
}

// OutputFlags name the files written by the quantize command.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{
			Name:     FlagOut,
			Aliases:  []string{"o"},
			Required: true,
			Usage:    "output image `FILE` (.png or .gif)",
			EnvVars:  envVar(FlagOut),
		},
		&cli.PathFlag{
			Name:    FlagSwatch,
			Usage:   "also write a numbered palette sheet to this .png `FILE`",
			EnvVars: envVar(FlagSwatch),
		},
		&cli.StringFlag{
			Name:    FlagSwatchBg,
			Value:   DefaultSwatchBackground,
			Usage:   "background of the palette sheet as #rgb, #rrggbb or #rrggbbaa",
			EnvVars: envVar(FlagSwatchBg),
		},
	}
}

// JSONFlag switches palette output to JSON.
func JSONFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    FlagJSON,
		Usage:   "print the palette as JSON",
		EnvVars: envVar(FlagJSON),
	}
}

// ServeFlags configure the HTTP server.
func ServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagAddr,
			Value:   DefaultAddr,
			Usage:   "listen address",
			EnvVars: envVar(FlagAddr),
		},
	}
}

// FromContext reads the flags set on the command line or through the
// environment. Everything else keeps its default.
func FromContext(c *cli.Context) Config {
	cfg := Default()
	if c.IsSet(FlagIn) {
		cfg.InPath = c.Path(FlagIn)
	}
	if c.IsSet(FlagOut) {
		cfg.OutPath = c.Path(FlagOut)
	}
	if c.IsSet(FlagSwatch) {
		cfg.SwatchPath = c.Path(FlagSwatch)
	}
	if c.IsSet(FlagSwatchBg) {
		cfg.SwatchBackground = c.String(FlagSwatchBg)
	}
	if c.IsSet(FlagMaxColors) {
		cfg.MaxColors = c.Int(FlagMaxColors)
	}
	if c.IsSet(FlagAlphaThreshold) {
		cfg.AlphaThreshold = c.Int(FlagAlphaThreshold)
	}
	if c.IsSet(FlagAlphaFader) {
		cfg.AlphaFader = c.Int(FlagAlphaFader)
	}
	if c.IsSet(FlagMapping) {
		cfg.Mapping = c.String(FlagMapping)
	}
	if c.IsSet(FlagAddr) {
		cfg.Addr = c.String(FlagAddr)
	}
	cfg.JSON = c.Bool(FlagJSON)
	cfg.Debug = c.Bool(FlagDebug)
	return cfg
}

// Options converts the quantization parameters.
func (c Config) Options(logger *zap.SugaredLogger) wuquant.Options {
	return wuquant.Options{
		MaxColors:      c.MaxColors,
		AlphaThreshold: c.AlphaThreshold,
		AlphaFader:     c.AlphaFader,
		Mapping:        c.Mapping,
		Logger:         logger,
	}
}

// Background parses SwatchBackground. An empty value means the default.
func (c Config) Background() (color.RGBA, error) {
	s := c.SwatchBackground
	if s == "" {
		s = DefaultSwatchBackground
	}
	bg, err := color.ParseHex(s)
	if err != nil {
		return color.RGBA{}, errors.Wrap(err, "--"+FlagSwatchBg)
	}
	return bg, nil
}

// Validate checks the quantization parameters and the extensions of any
// output paths.
func (c Config) Validate() error {
	if err := c.Options(nil).Validate(); err != nil {
		return err
	}
	if c.OutPath != "" {
		if _, err := imaging.FormatFromPath(c.OutPath); err != nil {
			return errors.Wrap(err, "--"+FlagOut)
		}
	}
	if c.SwatchPath != "" {
		if ext := strings.ToLower(filepath.Ext(c.SwatchPath)); ext != ".png" {
			return errors.Errorf("--%s must be a .png file, got %q", FlagSwatch, ext)
		}
	}
	if _, err := c.Background(); err != nil {
		return err
	}
	return nil
}
