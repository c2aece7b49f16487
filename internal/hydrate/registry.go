package hydrate

import (
	"golang.org/x/net/html"

	"github.com/atollkit/atoll/internal/reconcile"
	"github.com/atollkit/atoll/internal/view"
)

// RecoveryFunc lets application code decide what happens when one island's
// hydration mismatches — preserving form state, say — instead of the
// default clear-and-rerender. fallback performs the default when called.
// Returning true marks the mismatch handled; returning false falls back.
type RecoveryFunc func(m *reconcile.MismatchError, container *html.Node, props view.Props, render view.Render, fallback func() error) bool

type registration struct {
	factory  view.Factory
	recovery RecoveryFunc
}

// Registry maps island type names to component factories. The orchestrator
// consults it once per delivered marker; a miss leaves the island static.
type Registry struct {
	types map[string]registration
}

// RegisterOption configures one island type's registration.
type RegisterOption func(*registration)

// WithRecovery installs a per-island-type recovery strategy.
func WithRecovery(fn RecoveryFunc) RegisterOption {
	return func(r *registration) {
		r.recovery = fn
	}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]registration)}
}

// Register binds an island type name to its component factory. Later
// registrations replace earlier ones.
func (r *Registry) Register(typeName string, factory view.Factory, opts ...RegisterOption) {
	reg := registration{factory: factory}
	for _, opt := range opts {
		opt(&reg)
	}
	r.types[typeName] = reg
}

func (r *Registry) lookup(typeName string) (registration, bool) {
	reg, ok := r.types[typeName]
	return reg, ok
}
