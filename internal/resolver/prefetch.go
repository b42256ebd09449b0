package resolver

import (
	"context"

	"github.com/kolah/specmodel/internal/loader"
	"golang.org/x/sync/errgroup"
)

const prefetchConcurrency = 8

// prefetchDocuments loads the root and every document it transitively
// references, one breadth-first level at a time. Fetch order does not affect
// the resolved result; it only warms the cache. Failures are left for the
// resolution walk to report, since a document may reference fragments that
// are never reached.
func (r *Resolver) prefetchDocuments(ctx context.Context, root string) error {
	seen := map[string]bool{root: true}
	frontier := []string{root}

	for len(frontier) > 0 {
		trees := make([]any, len(frontier))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(prefetchConcurrency)
		for i, location := range frontier {
			g.Go(func() error {
				tree, err := r.cache.Load(gctx, location)
				if err != nil {
					r.logger.Debug("prefetch failed", "location", location, "error", err)
					return nil
				}
				trees[i] = tree
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var next []string
		for i, tree := range trees {
			for _, location := range externalLocations(frontier[i], tree) {
				if !seen[location] {
					seen[location] = true
					next = append(next, location)
				}
			}
		}
		r.logger.Debug("prefetched documents", "count", len(frontier), "discovered", len(next))
		frontier = next
	}
	return nil
}

// externalLocations lists the distinct documents other than base referenced
// from tree, in document order.
func externalLocations(base string, tree any) []string {
	var locations []string
	seen := map[string]bool{base: true}

	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case *loader.Mapping:
			for key, value := range t.FromOldest() {
				if ref, ok := value.(string); ok && key == refKey {
					location, _, err := loader.Join(base, ref)
					if err == nil && !seen[location] {
						seen[location] = true
						locations = append(locations, location)
					}
					continue
				}
				walk(value)
			}
		case []any:
			for _, item := range t {
				walk(item)
			}
		}
	}
	walk(tree)

	return locations
}
