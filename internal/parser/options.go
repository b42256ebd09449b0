package parser

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kolah/specmodel/internal/loader"
	"github.com/kolah/specmodel/internal/schema"
)

// Option configures a parse session.
type Option func(*sessionConfig) error

type sessionConfig struct {
	fetcher       loader.Fetcher
	logger        *slog.Logger
	registry      *schema.Registry
	mergeSiblings bool
	prefetch      bool
	checkVersion  bool
	maxDocuments  int
	maxSize       int64
	httpTimeout   time.Duration
}

func applyOptions(opts ...Option) (*sessionConfig, error) {
	cfg := &sessionConfig{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		checkVersion: true,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.fetcher == nil {
		cfg.fetcher = loader.DefaultFetcher(cfg.httpTimeout, cfg.maxSize)
	}
	if cfg.registry == nil {
		cfg.registry = schema.NewRegistry(cfg.logger)
	}
	return cfg, nil
}

// WithFetcher replaces the default file and HTTP fetcher.
func WithFetcher(f loader.Fetcher) Option {
	return func(cfg *sessionConfig) error {
		cfg.fetcher = f
		return nil
	}
}

// WithLogger sets the logger shared by every component of the session.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *sessionConfig) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}

// WithRegistry replaces the baseline conversion rules.
func WithRegistry(r *schema.Registry) Option {
	return func(cfg *sessionConfig) error {
		cfg.registry = r
		return nil
	}
}

// WithMergeSiblings keeps keys written beside $ref, merged with the target.
func WithMergeSiblings(enabled bool) Option {
	return func(cfg *sessionConfig) error {
		cfg.mergeSiblings = enabled
		return nil
	}
}

// WithPrefetch loads referenced documents concurrently before resolving.
func WithPrefetch(enabled bool) Option {
	return func(cfg *sessionConfig) error {
		cfg.prefetch = enabled
		return nil
	}
}

// WithVersionCheck controls whether the root document must declare
// OpenAPI 3.x. Enabled by default.
func WithVersionCheck(enabled bool) Option {
	return func(cfg *sessionConfig) error {
		cfg.checkVersion = enabled
		return nil
	}
}

// WithMaxDocuments limits how many documents a session may load.
// A value of 0 means no limit.
func WithMaxDocuments(n int) Option {
	return func(cfg *sessionConfig) error {
		if n < 0 {
			return fmt.Errorf("parser: max documents cannot be negative")
		}
		cfg.maxDocuments = n
		return nil
	}
}

// WithMaxSize bounds the size of each fetched document for the default
// fetcher. A value of 0 means loader.DefaultMaxSize.
func WithMaxSize(size int64) Option {
	return func(cfg *sessionConfig) error {
		if size < 0 {
			return fmt.Errorf("parser: max size cannot be negative")
		}
		cfg.maxSize = size
		return nil
	}
}

// WithHTTPTimeout bounds each HTTP fetch of the default fetcher.
func WithHTTPTimeout(d time.Duration) Option {
	return func(cfg *sessionConfig) error {
		if d < 0 {
			return fmt.Errorf("parser: http timeout cannot be negative")
		}
		cfg.httpTimeout = d
		return nil
	}
}
