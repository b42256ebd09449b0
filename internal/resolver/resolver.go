// Package resolver replaces every $ref in an OpenAPI document tree with the
// resolved fragment it points to, following references across documents.
//
// References are identified by (document location, JSON pointer). Each
// identity is resolved once per Resolver and the same *loader.Mapping is
// returned for every reference to it, so the resolved tree shares structure
// wherever the source document does. A reference that reaches an identity
// already on its own resolution path fails with a *CircularReferenceError.
package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kolah/specmodel/internal/loader"
)

// SchemaNameField is the synthetic key holding the declared name of a node
// reached through a reference.
const SchemaNameField = "x-schema-name"

const refKey = "$ref"

// Identity uniquely identifies a reference target.
type Identity struct {
	Location string
	Pointer  string
}

func (i Identity) String() string {
	return i.Location + "#" + i.Pointer
}

// Stats summarizes the work done by a Resolver.
type Stats struct {
	// Resolved is the number of distinct identities resolved
	Resolved int
	// Hits is the number of references served from the memo
	Hits int
}

// Resolver resolves documents loaded through a session cache.
type Resolver struct {
	cache         *loader.Cache
	logger        *slog.Logger
	mergeSiblings bool
	prefetch      bool

	resolved map[Identity]*loader.Mapping
	hits     int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMergeSiblings keeps keys written next to $ref and splices the
// referenced node's keys in at the position of $ref. By default siblings
// are discarded.
func WithMergeSiblings(merge bool) Option {
	return func(r *Resolver) { r.mergeSiblings = merge }
}

// WithPrefetch loads every document reachable from the root concurrently
// before resolution starts.
func WithPrefetch(prefetch bool) Option {
	return func(r *Resolver) { r.prefetch = prefetch }
}

// New creates a Resolver that loads documents through cache.
func New(cache *loader.Cache, opts ...Option) *Resolver {
	r := &Resolver{
		cache:    cache,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		resolved: make(map[Identity]*loader.Mapping),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve loads the document at location and returns it with every $ref
// replaced by its resolved target.
func (r *Resolver) Resolve(ctx context.Context, location string) (any, error) {
	normalized, err := loader.Normalize(location)
	if err != nil {
		return nil, &loader.DocumentLoadError{Location: location, Cause: err}
	}
	location = normalized

	if r.prefetch {
		if err := r.prefetchDocuments(ctx, location); err != nil {
			return nil, err
		}
	}

	doc, err := r.cache.Load(ctx, location)
	if err != nil {
		return nil, err
	}

	return r.resolveValue(ctx, location, doc, nil)
}

// Stats reports how many identities were resolved and how many references
// reused a memoized node.
func (r *Resolver) Stats() Stats {
	return Stats{Resolved: len(r.resolved), Hits: r.hits}
}

func (r *Resolver) resolveValue(ctx context.Context, location string, value any, path *ancestry) (any, error) {
	switch v := value.(type) {
	case *loader.Mapping:
		return r.resolveMapping(ctx, location, v, path)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			resolved, err := r.resolveValue(ctx, location, item, path)
			if err != nil {
				return nil, err
			}
			items[i] = resolved
		}
		return items, nil
	}
	return value, nil
}

func (r *Resolver) resolveMapping(ctx context.Context, location string, m *loader.Mapping, path *ancestry) (*loader.Mapping, error) {
	if rawRef, ok := m.Get(refKey); ok {
		ref, ok := rawRef.(string)
		if !ok {
			return nil, &ReferenceError{Location: location, Message: fmt.Sprintf("$ref must be a string, got %T", rawRef)}
		}

		target, err := r.resolveReference(ctx, location, ref, path)
		if err != nil {
			return nil, err
		}

		if !r.mergeSiblings {
			if m.Len() > 1 {
				r.logger.Debug("ignoring keys beside $ref", "ref", ref, "location", location)
			}
			return target, nil
		}
		return r.mergeReference(ctx, location, m, target, path)
	}

	out := loader.NewMapping()
	for key, value := range m.FromOldest() {
		resolved, err := r.resolveValue(ctx, location, value, path)
		if err != nil {
			return nil, err
		}
		out.Set(key, resolved)
	}
	return out, nil
}

// mergeReference builds a new mapping from m where $ref is replaced in place
// by the keys of target. Later keys override earlier ones.
func (r *Resolver) mergeReference(ctx context.Context, location string, m, target *loader.Mapping, path *ancestry) (*loader.Mapping, error) {
	out := loader.NewMapping()
	for key, value := range m.FromOldest() {
		if key == refKey {
			for tk, tv := range target.FromOldest() {
				out.Set(tk, tv)
			}
			continue
		}
		resolved, err := r.resolveValue(ctx, location, value, path)
		if err != nil {
			return nil, err
		}
		out.Set(key, resolved)
	}
	return out, nil
}

func (r *Resolver) resolveReference(ctx context.Context, location, ref string, path *ancestry) (*loader.Mapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	targetLocation, pointer, err := loader.Join(location, ref)
	if err != nil {
		return nil, &ReferenceError{Ref: ref, Location: location, Message: err.Error()}
	}
	id := Identity{Location: targetLocation, Pointer: pointer}

	if path.contains(id) {
		return nil, &CircularReferenceError{
			Ref:      ref,
			Identity: id,
			Path:     append(path.identities(), id),
		}
	}

	if resolved, ok := r.resolved[id]; ok {
		r.hits++
		r.logger.Debug("reusing resolved reference", "ref", ref, "identity", id.String())
		return resolved, nil
	}

	doc, err := r.cache.Load(ctx, targetLocation)
	if err != nil {
		return nil, err
	}

	fragment, err := loader.Fragment(doc, pointer)
	if err != nil {
		return nil, &loader.DocumentLoadError{Location: targetLocation, Pointer: pointer, Message: "resolving " + ref, Cause: err}
	}

	target, ok := fragment.(*loader.Mapping)
	if !ok {
		return nil, &ReferenceError{Ref: ref, Location: location, Message: fmt.Sprintf("target is %T, not a mapping", fragment)}
	}

	resolved, err := r.resolveMapping(ctx, targetLocation, target, path.push(id))
	if err != nil {
		return nil, err
	}

	// The declared name goes first so that a target which is itself a
	// reference keeps the name of the node it finally points to.
	named := loader.NewMapping()
	if name := loader.LastSegment(pointer); name != "" {
		named.Set(SchemaNameField, name)
	}
	for key, value := range resolved.FromOldest() {
		named.Set(key, value)
	}

	r.logger.Debug("resolved reference", "ref", ref, "identity", id.String())
	r.resolved[id] = named
	return named, nil
}

// ancestry is the immutable chain of identities being resolved on the
// current recursion path. Each branch extends its parent without affecting
// siblings.
type ancestry struct {
	id     Identity
	parent *ancestry
}

func (a *ancestry) push(id Identity) *ancestry {
	return &ancestry{id: id, parent: a}
}

func (a *ancestry) contains(id Identity) bool {
	for n := a; n != nil; n = n.parent {
		if n.id == id {
			return true
		}
	}
	return false
}

func (a *ancestry) identities() []Identity {
	var ids []Identity
	for n := a; n != nil; n = n.parent {
		ids = append(ids, n.id)
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}
