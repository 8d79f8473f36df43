package providers

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
)

var ErrProviderNotRegistered = errors.New("providers: provider not registered")

// Registry mapea nombre de connection -> Factory, con un fallback opcional
// (normalmente el flujo web) para las que no tienen provider nativo.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	fallback  Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// RegisterFactory registra (o reemplaza) la factory de una connection.
func (r *Registry) RegisterFactory(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// SetFallback se usa para connections sin factory propia. nil lo desactiva.
func (r *Registry) SetFallback(f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = f
}

// Resolve retorna una instancia nueva para conn.
func (r *Registry) Resolve(conn connection.Connection) (Provider, error) {
	r.mu.RLock()
	f, ok := r.factories[conn.Name()]
	if !ok {
		f = r.fallback
	}
	r.mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotRegistered, conn.Name())
	}
	p, err := f(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %s: %w", conn.Name(), err)
	}
	return p, nil
}

// Names lista las connections con factory propia, ordenadas.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister quita la factory de una connection.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, name)
}
