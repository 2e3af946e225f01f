package reflection

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Registry maps types to their providers and memoizes aggregated
// descriptors. Providers are registered during program initialization; the
// first Describe seals the registry.
type Registry struct {
	mu        sync.RWMutex
	providers map[reflect.Type]Provider
	sealed    atomic.Bool

	descriptors sync.Map // reflect.Type -> *TypeDescriptor

	logger *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to trace descriptor construction.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		providers: make(map[reflect.Type]Provider),
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Default is the registry behind the package-level functions. Generated
// providers register into it from init functions.
var Default = NewRegistry()

// Register records the provider of t.
func (r *Registry) Register(t reflect.Type, p Provider) error {
	if t == nil || p == nil {
		return fmt.Errorf("register: nil type or provider")
	}

	if err := p.TypeInfo().validate(t); err != nil {
		return fmt.Errorf("register %s: %w", t, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return fmt.Errorf("register %s: %w", t, ErrSealed)
	}

	if _, ok := r.providers[t]; ok {
		return fmt.Errorf("register %s: %w", t, ErrDuplicate)
	}

	r.providers[t] = p
	r.logger.Debug("provider registered", zap.Stringer("type", t))

	return nil
}

// Register records the provider of T in the Default registry. It is meant for
// init functions and panics on misuse.
func Register[T any](p Provider) {
	if err := Default.Register(reflect.TypeFor[T](), p); err != nil {
		panic("reflection: " + err.Error())
	}
}

// IsReflectible reports whether t has a provider, registered or implemented
// by the type itself.
func (r *Registry) IsReflectible(t reflect.Type) bool {
	_, ok := r.info(t)
	return ok
}

// Types returns the registered types sorted by name.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reflect.Type, 0, len(r.providers))
	for t := range r.providers {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})

	return out
}

// Describe returns the aggregated descriptor of t, computing it on first use.
// A type without a provider gets an empty descriptor.
func (r *Registry) Describe(t reflect.Type) *TypeDescriptor {
	if cached, ok := r.descriptors.Load(t); ok {
		return cached.(*TypeDescriptor)
	}

	r.sealed.Store(true)

	td := r.build(t)

	// Concurrent first uses compute identical descriptors; keep whichever
	// was stored first.
	actual, _ := r.descriptors.LoadOrStore(t, td)

	return actual.(*TypeDescriptor)
}

// info returns the own declaration of t.
func (r *Registry) info(t reflect.Type) (Info, bool) {
	if t == nil {
		return Info{}, false
	}

	r.mu.RLock()
	p, ok := r.providers[t]
	r.mu.RUnlock()

	if ok {
		return p.TypeInfo(), true
	}

	info, ok := selfProvided(t)
	if !ok {
		return Info{}, false
	}

	// A self-provided Info that declares members of another type describes
	// nothing about t.
	if err := info.validate(t); err != nil {
		r.logger.Warn("ignoring self-provided type info", zap.Stringer("type", t), zap.Error(err))
		return Info{}, false
	}

	return info, true
}
