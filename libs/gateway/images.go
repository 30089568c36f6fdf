package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	imageFieldKeys   = map[string]struct{}{"imageurl": {}, "coverimageurl": {}}
	galleryFieldKeys = map[string]struct{}{"galleryimageurls": {}}
)

// ImageRewriter makes backend image URLs loadable from a browser: emulator
// host aliases become localhost and server-relative paths are resolved
// against the public origin.
type ImageRewriter struct {
	origin  string
	aliases map[string]struct{}
}

// NewImageRewriter builds a rewriter for the given origin and host aliases.
func NewImageRewriter(publicOrigin string, aliases []string) (*ImageRewriter, error) {
	rewriter := &ImageRewriter{aliases: make(map[string]struct{}, len(aliases))}
	for _, alias := range aliases {
		host := strings.ToLower(strings.TrimSpace(alias))
		if host == "" || host == "localhost" {
			continue
		}
		rewriter.aliases[host] = struct{}{}
	}

	parsed, err := url.Parse(strings.TrimSpace(publicOrigin))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("gateway: public origin %q must be an absolute http(s) URL", publicOrigin)
	}
	rewriter.rewriteHost(parsed)
	rewriter.origin = parsed.Scheme + "://" + parsed.Host
	return rewriter, nil
}

// Normalize rewrites one URL. Absolute URLs on other hosts are returned
// unchanged and the result of Normalize is a fixed point.
func (r *ImageRewriter) Normalize(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "//") && !strings.HasPrefix(value, "///") {
		value = strings.SplitN(r.origin, ":", 2)[0] + ":" + value
	}

	if strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "//") {
		return r.origin + value
	}

	parsed, err := url.Parse(value)
	if err != nil {
		if !strings.Contains(value, "://") {
			return r.origin + "/" + value
		}
		return value
	}
	if parsed.IsAbs() {
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return value
		}
		if r.rewriteHost(parsed) {
			return parsed.String()
		}
		return value
	}
	return r.origin + "/" + strings.TrimLeft(value, "/")
}

func (r *ImageRewriter) rewriteHost(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if _, ok := r.aliases[host]; !ok {
		return false
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort("localhost", port)
	} else {
		u.Host = "localhost"
	}
	return true
}

// RewriteFields walks decoded JSON and normalizes every image field in place.
// It returns value for convenience.
func (r *ImageRewriter) RewriteFields(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, field := range typed {
			lowered := strings.ToLower(key)
			if _, ok := imageFieldKeys[lowered]; ok {
				if text, isText := field.(string); isText {
					typed[key] = r.Normalize(text)
					continue
				}
			}
			if _, ok := galleryFieldKeys[lowered]; ok {
				typed[key] = r.rewriteGallery(field)
				continue
			}
			typed[key] = r.RewriteFields(field)
		}
	case []any:
		for i := range typed {
			typed[i] = r.RewriteFields(typed[i])
		}
	}
	return value
}

func (r *ImageRewriter) rewriteGallery(field any) any {
	switch gallery := field.(type) {
	case string:
		parts := splitList(gallery)
		for i := range parts {
			parts[i] = r.Normalize(parts[i])
		}
		return strings.Join(parts, ",")
	case []any:
		for i, item := range gallery {
			if text, ok := item.(string); ok {
				gallery[i] = r.Normalize(text)
			}
		}
		return gallery
	default:
		return field
	}
}

// RewriteJSON applies RewriteFields to an encoded document.
func (r *ImageRewriter) RewriteJSON(raw json.RawMessage) (json.RawMessage, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return nil, err
	}
	return json.Marshal(r.RewriteFields(document))
}
