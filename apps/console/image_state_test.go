package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProbeApp(enabled bool) *App {
	return &App{
		cfg:       &Config{ImageProbeEnabled: enabled},
		log:       discardLogger(),
		httpProbe: &http.Client{},
	}
}

func TestResolveImageState(t *testing.T) {
	state := resolveImageState("  ")
	assert.Equal(t, imageFailed, state.Kind)
	assert.Equal(t, "no image", state.Reason)
	assert.False(t, state.Renderable())

	state = resolveImageState("http://localhost:5000/uploads/7.jpg")
	assert.Equal(t, imageLoading, state.Kind)
	assert.True(t, state.Renderable())
}

func TestProbeImageState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/ok.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
		case "/page.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	app := newProbeApp(true)
	ctx := context.Background()

	state := app.probeImageState(ctx, server.URL+"/ok.jpg")
	assert.Equal(t, imageLoaded, state.Kind)

	state = app.probeImageState(ctx, server.URL+"/page.html")
	assert.Equal(t, imageFailed, state.Kind)
	assert.Equal(t, "not an image", state.Reason)

	state = app.probeImageState(ctx, server.URL+"/missing.jpg")
	assert.Equal(t, imageFailed, state.Kind)
	assert.Equal(t, "image returned status 404", state.Reason)
	assert.Equal(t, server.URL+"/missing.jpg", state.URL)
}

func TestProbeImageStateDisabled(t *testing.T) {
	app := newProbeApp(false)
	app.adminProbeImage = func(ctx context.Context, imageURL string) imageState {
		t.Fatal("probe must not run when disabled")
		return imageState{}
	}

	state := app.probeImageState(context.Background(), "http://localhost:5000/uploads/7.jpg")
	assert.Equal(t, imageLoading, state.Kind)
}

func TestFloodReportDetailRendersFailedImage(t *testing.T) {
	app, router, _ := newConsoleTestServer(t, floodBackend)
	app.cfg.ImageProbeEnabled = true
	var probed string
	app.adminProbeImage = func(ctx context.Context, imageURL string) imageState {
		probed = imageURL
		return imageState{Kind: imageFailed, URL: imageURL, Reason: "image unreachable"}
	}

	rec := do(t, app, router, http.MethodGet, "/admin/flood-reports/7", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, probed, "/uploads/flood/7.jpg")
	assert.Contains(t, rec.Body.String(), "image unreachable")
	assert.NotContains(t, rec.Body.String(), `<img src=`)
}
