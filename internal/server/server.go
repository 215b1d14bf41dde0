// Package server exposes quantization over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/maax3v3/wuquant"
	"github.com/maax3v3/wuquant/internal/color"
	"github.com/maax3v3/wuquant/internal/config"
	"github.com/maax3v3/wuquant/internal/imaging"
)

// MaxBodyBytes bounds the size of an uploaded image.
const MaxBodyBytes = 32 << 20

const shutdownTimeout = 10 * time.Second

// Server answers palette and quantize requests. Query parameters override
// the defaults it was built with.
type Server struct {
	defaults config.Config
	logger   *zap.SugaredLogger
	maxBody  int64
}

// New returns a Server.
func New(defaults config.Config, logger *zap.SugaredLogger) *Server {
	return &Server{defaults: defaults, logger: logger, maxBody: MaxBodyBytes}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/palette", s.handlePalette)
		r.Post("/quantize", s.handleQuantize)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Infow("shutting down")
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutting down")
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

type paletteColor struct {
	Index  int    `json:"index"`
	Hex    string `json:"hex"`
	R      uint8  `json:"r"`
	G      uint8  `json:"g"`
	B      uint8  `json:"b"`
	A      uint8  `json:"a"`
	Weight int64  `json:"weight"`
}

type paletteBox struct {
	Min  [4]int `json:"min"`
	Max  [4]int `json:"max"`
	Size int    `json:"size"`
}

// PaletteResponse is the body of a successful /v1/palette call.
type PaletteResponse struct {
	Colors []paletteColor `json:"colors"`
	Boxes  []paletteBox   `json:"boxes"`
	Kept   int            `json:"kept"`
}

func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.params(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	grid, status, err := s.decode(w, r)
	if err != nil {
		s.fail(w, r, status, err)
		return
	}
	res, err := wuquant.QuantizeGrid(grid, cfg.Options(s.logger))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	resp := PaletteResponse{
		Colors: make([]paletteColor, len(res.Entries)),
		Boxes:  make([]paletteBox, len(res.Entries)),
		Kept:   res.Kept,
	}
	for i, e := range res.Entries {
		c := color.FromStdColor(e.Color)
		resp.Colors[i] = paletteColor{Index: e.Number, Hex: c.Hex(), R: c.R, G: c.G, B: c.B, A: c.A, Weight: e.Weight}
		lo, hi := e.Box.Bounds()
		resp.Boxes[i] = paletteBox{Min: lo, Max: hi, Size: e.Box.Size}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warnw("writing response", "error", err)
	}
}

func (s *Server) handleQuantize(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.params(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	format := r.URL.Query().Get("format")
	switch format {
	case "":
		format = imaging.FormatPNG
	case imaging.FormatPNG, imaging.FormatGIF:
	default:
		s.fail(w, r, http.StatusBadRequest, errors.Errorf("format must be png or gif, got %q", format))
		return
	}
	grid, status, err := s.decode(w, r)
	if err != nil {
		s.fail(w, r, status, err)
		return
	}
	res, err := wuquant.QuantizeGrid(grid, cfg.Options(s.logger))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	out, err := res.PalettedGrid(r.Context(), grid)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	w.Header().Set("Content-Type", "image/"+format)
	w.Header().Set("X-Palette-Colors", strconv.Itoa(len(res.Entries)))
	if err := imaging.Encode(w, out, format); err != nil {
		s.logger.Warnw("writing response", "error", err)
	}
}

func (s *Server) params(r *http.Request) (config.Config, error) {
	cfg := s.defaults
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"max_colors", &cfg.MaxColors},
		{"alpha_threshold", &cfg.AlphaThreshold},
		{"alpha_fader", &cfg.AlphaFader},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, errors.Errorf("%s must be an integer, got %q", p.name, v)
		}
		*p.dst = n
	}
	if m := q.Get("mapping"); m != "" {
		cfg.Mapping = m
	}
	cfg.InPath, cfg.OutPath, cfg.SwatchPath = "", "", ""
	return cfg, cfg.Validate()
}

// decode reads the request body as an image. The returned status is the one
// to answer with when err is non-nil.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (color.Grid, int, error) {
	img, err := imaging.Decode(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return color.Grid{}, http.StatusRequestEntityTooLarge, err
		}
		return color.Grid{}, http.StatusUnsupportedMediaType, err
	}
	grid, err := imaging.ToGrid(r.Context(), img)
	if err != nil {
		return color.Grid{}, http.StatusInternalServerError, err
	}
	return grid, 0, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Debugw("request failed", "status", status, "error", err, "request_id", middleware.GetReqID(r.Context()))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
