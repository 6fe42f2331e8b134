package completion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/oakwood-commons/replkit/pkg/registry"
)

var (
	// ErrUnknownHandler is returned when a reference names no registered handler.
	ErrUnknownHandler = errors.New("unknown completion handler")
	// ErrDuplicateHandler is returned when a name is registered twice.
	ErrDuplicateHandler = errors.New("duplicate completion handler")
)

// Handler produces candidate values for a value or positional slot.
type Handler interface {
	Options(ctx context.Context, cc *CursorContext) ([]Option, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, cc *CursorContext) ([]Option, error)

// Options calls f.
func (f HandlerFunc) Options(ctx context.Context, cc *CursorContext) ([]Option, error) {
	return f(ctx, cc)
}

// Activator turns a handler reference into a live handler. It owns the
// lifetime of the instances it returns.
type Activator interface {
	Activate(ref registry.HandlerRef) (Handler, error)
}

// Factory builds a handler on first activation.
type Factory func() (Handler, error)

// HandlerRegistry is the default Activator: named factories, each activated at
// most once and then reused.
type HandlerRegistry struct {
	mu        sync.Mutex
	factories map[string]Factory
	instances map[string]Handler
	names     []string // sorted
}

// NewHandlerRegistry creates an empty handler registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		factories: make(map[string]Factory),
		instances: make(map[string]Handler),
	}
}

// Register adds a factory under name.
func (r *HandlerRegistry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("%w: name and factory are required", ErrUnknownHandler)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, name)
	}
	r.factories[name] = f
	r.names = append(r.names, name)
	sort.Strings(r.names)
	return nil
}

// RegisterHandler adds an already built handler under name.
func (r *HandlerRegistry) RegisterHandler(name string, h Handler) error {
	if h == nil {
		return fmt.Errorf("%w: nil handler for %s", ErrUnknownHandler, name)
	}
	return r.Register(name, func() (Handler, error) { return h, nil })
}

// Activate returns the singleton handler for ref, building it on first use.
func (r *HandlerRegistry) Activate(ref registry.HandlerRef) (Handler, error) {
	name := string(ref)
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.instances[name]; ok {
		return h, nil
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandler, name)
	}
	h, err := f()
	if err != nil {
		return nil, fmt.Errorf("activate handler %s: %w", name, err)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: factory for %s returned nil", ErrUnknownHandler, name)
	}
	r.instances[name] = h
	return h, nil
}

// Has reports whether name is registered.
func (r *HandlerRegistry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names sorted alphabetically.
func (r *HandlerRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// Size returns the number of registered handlers.
func (r *HandlerRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.factories)
}
