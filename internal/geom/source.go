package geom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client fetches remote sources. Tests may replace it.
var Client = &http.Client{Timeout: 30 * time.Second}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Open returns a reader for a local path or an http(s) URL.
func Open(ctx context.Context, src string) (io.ReadCloser, error) {
	if !isURL(src) {
		return os.Open(src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", src, resp.Status)
	}
	return resp.Body, nil
}

// ReadAll reads a whole source.
func ReadAll(ctx context.Context, src string) ([]byte, error) {
	rc, err := Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// LoadTopology reads a TopoJSON topology from a path or URL.
func LoadTopology(ctx context.Context, src string) (*Topology, error) {
	rc, err := Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return DecodeTopology(rc)
}

// LoadBoundaries accepts either TopoJSON or GeoJSON.
func LoadBoundaries(ctx context.Context, src string) (Boundaries, error) {
	data, err := ReadAll(ctx, src)
	if err != nil {
		return nil, err
	}
	return ParseBoundaries(data)
}

// ParseBoundaries sniffs the document type and decodes it.
func ParseBoundaries(data []byte) (Boundaries, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode boundaries: %w", err)
	}
	if head.Type == "Topology" {
		return DecodeTopology(bytes.NewReader(data))
	}
	return ParseGeoJSON(data)
}

func ext(src string) string {
	if isURL(src) {
		if i := strings.IndexAny(src, "?#"); i >= 0 {
			src = src[:i]
		}
	}
	return strings.ToLower(filepath.Ext(src))
}
