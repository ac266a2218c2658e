package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// MaxBytes is the largest image accepted from any source
const MaxBytes = 10 * 1024 * 1024

// Fetcher retrieves images from local paths and remote URLs
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsURL reports whether source should be downloaded rather than read from disk
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch loads source, a file path or http(s) URL, and returns its bytes and
// a display filename.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, string, error) {
	if IsURL(source) {
		return f.Download(ctx, source)
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	data, err := readLimited(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image %s: %w", source, err)
	}
	return data, filepath.Base(source), nil
}

// Download fetches an image over HTTP
func (f *Fetcher) Download(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}

	slog.Debug("Downloaded image", "url", imageURL, "bytes", len(data))
	return data, filenameFromURL(imageURL), nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBytes {
		return nil, fmt.Errorf("image too large (max %dMB)", MaxBytes/(1024*1024))
	}
	return data, nil
}

func filenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "image"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "image"
	}
	return name
}
