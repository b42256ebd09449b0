package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pb33f/libopenapi"
)

const (
	// DefaultMaxSize bounds the size of a single fetched document.
	DefaultMaxSize = 10 * 1024 * 1024

	// DefaultHTTPTimeout bounds a single HTTP fetch.
	DefaultHTTPTimeout = 30 * time.Second
)

// Fetcher retrieves the raw bytes of a document.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, location string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// FileFetcher reads documents from the local filesystem. Locations may be
// plain paths or file:// URLs.
type FileFetcher struct {
	MaxSize int64
}

func (f FileFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	path := location
	if strings.HasPrefix(location, "file:") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, err
		}
		path = u.Path
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if limit := maxSize(f.MaxSize); int64(len(data)) > limit {
		return nil, fmt.Errorf("file is %d bytes, exceeds limit of %d bytes", len(data), limit)
	}
	return data, nil
}

// HTTPFetcher retrieves documents over HTTP(S).
type HTTPFetcher struct {
	Client  *http.Client
	MaxSize int64
}

func (f HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/yaml, application/json;q=0.9, */*;q=0.8")

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	limit := maxSize(f.MaxSize)
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response exceeds limit of %d bytes", limit)
	}
	return data, nil
}

// SchemeFetcher dispatches on the location's URL scheme.
type SchemeFetcher map[string]Fetcher

func (s SchemeFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	scheme := "file"
	if isURL(location) {
		u, err := url.Parse(location)
		if err != nil {
			return nil, err
		}
		scheme = strings.ToLower(u.Scheme)
	}
	f, ok := s[scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported scheme %q", scheme)
	}
	return f.Fetch(ctx, location)
}

// DefaultFetcher serves file, http and https locations.
func DefaultFetcher(timeout time.Duration, size int64) Fetcher {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	httpFetcher := HTTPFetcher{
		Client:  &http.Client{Timeout: timeout},
		MaxSize: size,
	}
	return SchemeFetcher{
		"file":  FileFetcher{MaxSize: size},
		"http":  httpFetcher,
		"https": httpFetcher,
	}
}

// CheckVersion verifies that data is an OpenAPI 3.x document and returns its
// declared version.
func CheckVersion(data []byte) (string, error) {
	doc, err := libopenapi.NewDocument(data)
	if err != nil {
		return "", fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return version, fmt.Errorf("unsupported OpenAPI version: %s (only 3.x supported)", version)
	}
	return version, nil
}

func maxSize(size int64) int64 {
	if size <= 0 {
		return DefaultMaxSize
	}
	return size
}
