package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type imageStateKind string

const (
	// imageLoading: a URL exists but nobody has checked it yet.
	imageLoading imageStateKind = "loading"
	imageLoaded  imageStateKind = "loaded"
	imageFailed  imageStateKind = "failed"
)

// imageState is what templates branch on instead of patching markup when an
// image fails.
type imageState struct {
	Kind   imageStateKind
	URL    string
	Reason string
}

func (s imageState) Renderable() bool {
	return s.Kind != imageFailed && s.URL != ""
}

func resolveImageState(imageURL string) imageState {
	if strings.TrimSpace(imageURL) == "" {
		return imageState{Kind: imageFailed, Reason: "no image"}
	}
	return imageState{Kind: imageLoading, URL: imageURL}
}

// probeImageState checks that the URL answers with an image.
func (a *App) probeImageState(ctx context.Context, imageURL string) imageState {
	state := resolveImageState(imageURL)
	if state.Kind == imageFailed || !a.cfg.ImageProbeEnabled {
		return state
	}
	if a.adminProbeImage != nil {
		return a.adminProbeImage(ctx, imageURL)
	}

	probeCtx, cancel := context.WithTimeout(ctx, imageProbeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, imageURL, nil)
	if err != nil {
		return imageState{Kind: imageFailed, URL: imageURL, Reason: "invalid image URL"}
	}
	resp, err := a.httpProbe.Do(req)
	if err != nil {
		a.log.Debug("image probe failed", "url", imageURL, "error", err)
		return imageState{Kind: imageFailed, URL: imageURL, Reason: "image unreachable"}
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return imageState{Kind: imageFailed, URL: imageURL, Reason: fmt.Sprintf("image returned status %d", resp.StatusCode)}
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return imageState{Kind: imageFailed, URL: imageURL, Reason: "not an image"}
	}
	return imageState{Kind: imageLoaded, URL: imageURL}
}
