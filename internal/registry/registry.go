// Package registry implements an ordered, predicate-dispatched table of
// converters. Rules are tried by descending priority, ties in registration
// order, and the first rule whose predicate accepts a node converts it.
package registry

import (
	"io"
	"log/slog"
	"slices"
	"sync"
)

// DefaultPriority is the priority of rules that do not set one.
const DefaultPriority = 0

// Predicate reports whether a rule applies to node.
type Predicate func(node any) bool

// Converter turns node into a T. It receives the registry so nested nodes
// can be converted with the same rules.
type Converter[T any] func(r *Registry[T], node any) (T, error)

// Rule binds a named converter to the predicate that selects it.
type Rule[T any] struct {
	// Name identifies the converter and must be unique within a registry.
	// Duplicate detection compares names, not converter funcs.
	Name      string
	Predicate Predicate
	Converter Converter[T]
	Priority  int
}

// Registry holds rules sorted for evaluation. It is safe for concurrent
// use; registration is expected to happen before conversion starts.
type Registry[T any] struct {
	mu     sync.RWMutex
	rules  []Rule[T]
	names  map[string]bool
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to trace rule matches.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an empty registry.
func New[T any](opts ...Option) *Registry[T] {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[T]{
		names:  make(map[string]bool),
		logger: o.logger,
	}
}

// Register adds rules. Registering a converter name that is already present
// fails with a *DuplicateConverterError and leaves the registry unchanged.
func (r *Registry[T]) Register(rules ...Rule[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]bool, len(rules))
	for _, rule := range rules {
		if r.names[rule.Name] || batch[rule.Name] {
			return &DuplicateConverterError{Name: rule.Name}
		}
		batch[rule.Name] = true
	}

	// A fresh slice keeps snapshots taken by Convert intact.
	sorted := append(slices.Clone(r.rules), rules...)
	slices.SortStableFunc(sorted, func(a, b Rule[T]) int {
		return b.Priority - a.Priority
	})
	for _, rule := range rules {
		r.names[rule.Name] = true
	}
	r.rules = sorted
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry[T]) MustRegister(rules ...Rule[T]) *Registry[T] {
	if err := r.Register(rules...); err != nil {
		panic(err)
	}
	return r
}

// Convert converts node with the first matching rule.
func (r *Registry[T]) Convert(node any) (T, error) {
	r.mu.RLock()
	rules := r.rules
	r.mu.RUnlock()

	for _, rule := range rules {
		if rule.Predicate(node) {
			r.logger.Debug("converter matched", "converter", rule.Name, "node", describe(node))
			return rule.Converter(r, node)
		}
	}

	var zero T
	return zero, &NoConverterFoundError{Node: node}
}

// Rules returns the registered rules in evaluation order.
func (r *Registry[T]) Rules() []Rule[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.rules)
}
