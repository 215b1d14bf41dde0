package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	stdcolor "image/color"
	"image/gif"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/maax3v3/wuquant/internal/config"
	"github.com/maax3v3/wuquant/internal/logging"
)

func pngBody(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := stdcolor.NRGBA{200, 30, 30, 255}
			if x >= 4 {
				c = stdcolor.NRGBA{30, 30, 200, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	test.That(t, png.Encode(&buf, img), test.ShouldBeNil)
	return buf.Bytes()
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(config.Default(), logging.NewTestLogger(t)).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "image/png", bytes.NewReader(body))
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	test.That(t, err, test.ShouldBeNil)
	defer resp.Body.Close()

	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	body, err := io.ReadAll(resp.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(body), test.ShouldEqual, "ok")
}

func TestPalette(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/v1/palette?max_colors=16", pngBody(t))
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	test.That(t, resp.Header.Get("Content-Type"), test.ShouldEqual, "application/json")

	var got PaletteResponse
	test.That(t, json.NewDecoder(resp.Body).Decode(&got), test.ShouldBeNil)
	test.That(t, got.Kept, test.ShouldEqual, 64)
	test.That(t, got.Colors, test.ShouldHaveLength, 3)
	test.That(t, got.Boxes, test.ShouldHaveLength, 3)

	hexes := map[string]int64{}
	for i, c := range got.Colors {
		test.That(t, c.Index, test.ShouldEqual, i+1)
		hexes[c.Hex] = c.Weight
	}
	test.That(t, hexes["#00000000"], test.ShouldEqual, int64(1))
	test.That(t, hexes["#c81e1e"], test.ShouldEqual, int64(32))
	test.That(t, hexes["#1e1ec8"], test.ShouldEqual, int64(32))
}

func TestQuantize(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/v1/quantize", pngBody(t))
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	test.That(t, resp.Header.Get("Content-Type"), test.ShouldEqual, "image/png")
	test.That(t, resp.Header.Get("X-Palette-Colors"), test.ShouldEqual, "3")
	img, err := png.Decode(resp.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stdcolor.NRGBAModel.Convert(img.At(1, 1)), test.ShouldResemble, stdcolor.NRGBA{200, 30, 30, 255})

	resp = post(t, srv.URL+"/v1/quantize?format=gif&mapping=linear&max_colors=2", pngBody(t))
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	test.That(t, resp.Header.Get("Content-Type"), test.ShouldEqual, "image/gif")
	g, err := gif.Decode(resp.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Bounds().Dx(), test.ShouldEqual, 8)
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t)
	body := pngBody(t)

	for _, tc := range []struct {
		path   string
		status int
	}{
		{"/v1/palette?max_colors=1", http.StatusBadRequest},
		{"/v1/palette?max_colors=many", http.StatusBadRequest},
		{"/v1/palette?alpha_fader=0", http.StatusBadRequest},
		{"/v1/palette?alpha_threshold=999", http.StatusBadRequest},
		{"/v1/quantize?mapping=dither", http.StatusBadRequest},
		{"/v1/quantize?format=jpeg", http.StatusBadRequest},
	} {
		t.Run(tc.path, func(t *testing.T) {
			resp := post(t, srv.URL+tc.path, body)
			test.That(t, resp.StatusCode, test.ShouldEqual, tc.status)

			var msg map[string]string
			test.That(t, json.NewDecoder(resp.Body).Decode(&msg), test.ShouldBeNil)
			test.That(t, msg["error"], test.ShouldNotBeEmpty)
		})
	}

	resp := post(t, srv.URL+"/v1/palette", []byte("definitely not an image"))
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusUnsupportedMediaType)

	resp, err := http.Get(srv.URL + "/v1/palette")
	test.That(t, err, test.ShouldBeNil)
	defer resp.Body.Close()
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusMethodNotAllowed)
}

func TestOversizedBody(t *testing.T) {
	s := New(config.Default(), logging.NewTestLogger(t))
	s.maxBody = 20
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	body := pngBody(t)
	test.That(t, len(body), test.ShouldBeGreaterThan, 20)
	for _, path := range []string{"/v1/palette", "/v1/quantize"} {
		t.Run(path, func(t *testing.T) {
			resp := post(t, srv.URL+path, body)
			test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusRequestEntityTooLarge)

			var msg map[string]string
			test.That(t, json.NewDecoder(resp.Body).Decode(&msg), test.ShouldBeNil)
			test.That(t, msg["error"], test.ShouldContainSubstring, "too large")
		})
	}
}

func TestRequestsAreLogged(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	srv := httptest.NewServer(New(config.Default(), logger).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	test.That(t, err, test.ShouldBeNil)
	resp.Body.Close()

	entries := logs.FilterMessage("request").All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	fields := entries[0].ContextMap()
	test.That(t, fields["path"], test.ShouldEqual, "/healthz")
	test.That(t, fields["status"], test.ShouldEqual, int64(http.StatusOK))
	test.That(t, fields["request_id"], test.ShouldNotBeEmpty)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(config.Default(), logging.NewTestLogger(t))

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		test.That(t, err, test.ShouldBeNil)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
