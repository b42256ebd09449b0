package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

type document struct {
	raw  []byte
	tree any
}

// Cache loads and parses documents at most once per location. A Cache
// belongs to a single resolution session and must not be shared between
// unrelated parses.
type Cache struct {
	fetcher      Fetcher
	logger       *slog.Logger
	maxDocuments int

	mu        sync.Mutex
	documents map[string]*document
	inFlight  int
	fetches   int
	group     singleflight.Group
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxDocuments limits how many distinct documents a session may load.
// Zero means unlimited.
func WithMaxDocuments(n int) CacheOption {
	return func(c *Cache) { c.maxDocuments = n }
}

// NewCache creates an empty cache backed by fetcher.
func NewCache(fetcher Fetcher, opts ...CacheOption) *Cache {
	c := &Cache{
		fetcher:   fetcher,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		documents: make(map[string]*document),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the parsed tree of the document at location.
func (c *Cache) Load(ctx context.Context, location string) (any, error) {
	doc, err := c.load(ctx, location)
	if err != nil {
		return nil, err
	}
	return doc.tree, nil
}

// Raw returns the unparsed bytes of the document at location.
func (c *Cache) Raw(ctx context.Context, location string) ([]byte, error) {
	doc, err := c.load(ctx, location)
	if err != nil {
		return nil, err
	}
	return doc.raw, nil
}

// Fetches reports how many times the underlying fetcher was called.
func (c *Cache) Fetches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

// Len reports the number of cached documents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.documents)
}

func (c *Cache) load(ctx context.Context, location string) (*document, error) {
	key, err := Normalize(location)
	if err != nil {
		return nil, &DocumentLoadError{Location: location, Cause: err}
	}

	if doc, ok := c.lookup(key); ok {
		return doc, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if doc, ok := c.lookup(key); ok {
			return doc, nil
		}
		return c.fetch(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*document), nil
}

func (c *Cache) lookup(key string) (*document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.documents[key]
	return doc, ok
}

func (c *Cache) fetch(ctx context.Context, key string) (*document, error) {
	c.mu.Lock()
	if c.maxDocuments > 0 && len(c.documents)+c.inFlight >= c.maxDocuments {
		c.mu.Unlock()
		return nil, &DocumentLoadError{
			Location: key,
			Message:  fmt.Sprintf("too many documents (limit %d)", c.maxDocuments),
		}
	}
	c.fetches++
	c.inFlight++
	c.mu.Unlock()

	// The reserved slot becomes a cached document on success and is freed
	// on failure.
	doc, err := c.fetchAndParse(ctx, key)

	c.mu.Lock()
	c.inFlight--
	if err == nil {
		c.documents[key] = doc
	}
	c.mu.Unlock()

	return doc, err
}

func (c *Cache) fetchAndParse(ctx context.Context, key string) (*document, error) {
	c.logger.Debug("fetching document", "location", key)

	data, err := c.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, &DocumentLoadError{Location: key, Message: "fetch failed", Cause: err}
	}

	tree, err := Parse(data)
	if err != nil {
		return nil, &DocumentLoadError{Location: key, Message: "parse failed", Cause: err}
	}

	return &document{raw: data, tree: tree}, nil
}
