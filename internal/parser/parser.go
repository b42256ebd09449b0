// Package parser turns an OpenAPI document, possibly split across files and
// URLs, into a model.Specification.
//
// Every call runs its own session: a fresh document cache and reference
// memo that are discarded when the call returns. Nothing is shared between
// independent calls.
package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/kolah/specmodel/internal/builder"
	"github.com/kolah/specmodel/internal/loader"
	"github.com/kolah/specmodel/internal/model"
	"github.com/kolah/specmodel/internal/resolver"
)

// Parse resolves the document at location and builds its specification.
func Parse(ctx context.Context, location string, opts ...Option) (*model.Specification, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}

	tree, err := resolve(ctx, cfg, location)
	if err != nil {
		return nil, err
	}

	spec, err := builder.Build(tree, cfg.registry)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", location, err)
	}
	cfg.logger.Debug("built specification", "location", location, "endpoints", len(spec.Endpoints))
	return spec, nil
}

// Resolve returns the document at location with every $ref replaced by its
// target.
func Resolve(ctx context.Context, location string, opts ...Option) (any, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	return resolve(ctx, cfg, location)
}

func resolve(ctx context.Context, cfg *sessionConfig, location string) (any, error) {
	cache := loader.NewCache(cfg.fetcher,
		loader.WithLogger(cfg.logger),
		loader.WithMaxDocuments(cfg.maxDocuments),
	)

	if cfg.checkVersion {
		if err := checkVersion(ctx, cfg, cache, location); err != nil {
			return nil, err
		}
	}

	r := resolver.New(cache,
		resolver.WithLogger(cfg.logger),
		resolver.WithMergeSiblings(cfg.mergeSiblings),
		resolver.WithPrefetch(cfg.prefetch),
	)
	tree, err := r.Resolve(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", location, err)
	}

	stats := r.Stats()
	cfg.logger.Debug("resolved document",
		"location", location,
		"documents", cache.Len(),
		"references", stats.Resolved,
		"reused", stats.Hits,
	)
	return tree, nil
}

func checkVersion(ctx context.Context, cfg *sessionConfig, cache *loader.Cache, location string) error {
	raw, err := cache.Raw(ctx, location)
	if err != nil {
		return fmt.Errorf("loading %s: %w", location, err)
	}
	version, err := loader.CheckVersion(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", location, err)
	}

	cfg.logger.Info("loaded document", "location", location, "openapi", version)
	if cfg.mergeSiblings && strings.HasPrefix(version, "3.0") {
		cfg.logger.Warn("OpenAPI 3.0 ignores keys beside $ref, merging them anyway", "location", location, "openapi", version)
	}
	return nil
}
