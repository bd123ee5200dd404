package lint

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrRegistryFrozen is returned when registering after Freeze.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrNoFallback is returned by Freeze when the fallback format has no analyzer.
	ErrNoFallback = errors.New("fallback analyzer not registered")
)

// Registry maps format identifiers to analyzers.
// It is populated once at startup, frozen, and read-only afterwards.
type Registry struct {
	mu       sync.RWMutex
	byFormat map[string]Analyzer
	fallback string
	frozen   bool
}

// NewRegistry creates an empty registry whose lookups fall back to fallback.
func NewRegistry(fallback string) *Registry {
	return &Registry{
		byFormat: make(map[string]Analyzer),
		fallback: fallback,
	}
}

// Register adds an analyzer under its Format().
// A later registration for the same format replaces the earlier one.
func (r *Registry) Register(a Analyzer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("register %q: %w", a.Format(), ErrRegistryFrozen)
	}
	r.byFormat[a.Format()] = a
	return nil
}

// Freeze makes the registry read-only. It fails if the fallback is missing.
func (r *Registry) Freeze() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byFormat[r.fallback]; !ok {
		return fmt.Errorf("%w: %q", ErrNoFallback, r.fallback)
	}
	r.frozen = true
	return nil
}

// Get returns the analyzer registered for format.
func (r *Registry) Get(format string) (Analyzer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byFormat[format]
	return a, ok
}

// Lookup returns the analyzer for format, or the fallback analyzer.
// The boolean reports whether format itself was registered.
func (r *Registry) Lookup(format string) (Analyzer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.byFormat[format]; ok {
		return a, true
	}
	return r.byFormat[r.fallback], false
}

// Fallback returns the fallback format identifier.
func (r *Registry) Fallback() string {
	return r.fallback
}

// Formats returns all registered format identifiers in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.byFormat))
	for id := range r.byFormat {
		result = append(result, id)
	}
	slices.Sort(result)
	return result
}
