package mediaapi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/colonyops/mosaic/internal/core/media"
)

// Resolver rewrites relative asset URLs against the service origin.
type Resolver struct {
	base *url.URL
}

// NewResolver parses the service origin.
func NewResolver(baseURL string) (*Resolver, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q: missing host", baseURL)
	}
	return &Resolver{base: u}, nil
}

// Resolve returns ref as an absolute URL. Absolute refs and empty strings
// are returned unchanged.
func (r *Resolver) Resolve(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return r.base.ResolveReference(u).String()
}

// ResolveItem resolves every asset URL of it.
func (r *Resolver) ResolveItem(it media.Item) media.Item {
	it.URL = r.Resolve(it.URL)
	it.ResourceURL = r.Resolve(it.ResourceURL)
	it.ThumbnailURL = r.Resolve(it.ThumbnailURL)
	return it
}

// Origin returns the service origin.
func (r *Resolver) Origin() string {
	return r.base.String()
}
