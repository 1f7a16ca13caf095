package routes

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrUnknownView is returned when a route names a view nobody registered.
var ErrUnknownView = errors.New("routes: unknown view")

// View renders a matched route.
type View interface {
	Render(w http.ResponseWriter, r *http.Request, m Match)
}

// Loader builds a view. It runs at most once per registered view.
type Loader func() (View, error)

// LazyView defers building a view until its first navigation and then
// caches the result, including a failed load.
type LazyView struct {
	name string
	load Loader

	once   sync.Once
	view   View
	err    error
	loaded bool
	mu     sync.RWMutex
}

// Get returns the view, loading it on first use.
func (v *LazyView) Get() (View, error) {
	v.once.Do(func() {
		view, err := v.load()
		if err != nil {
			err = fmt.Errorf("routes: load view %q: %w", v.name, err)
		}
		v.mu.Lock()
		v.view, v.err, v.loaded = view, err, true
		v.mu.Unlock()
	})
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.view, v.err
}

// Loaded reports whether the view has been loaded yet.
func (v *LazyView) Loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loaded
}

// Views is a registry of lazily loaded views by name.
type Views struct {
	mu    sync.RWMutex
	views map[string]*LazyView
}

// NewViews returns an empty registry.
func NewViews() *Views {
	return &Views{views: make(map[string]*LazyView)}
}

// Register adds a view loader. Registering a name twice replaces the
// earlier loader.
func (vs *Views) Register(name string, load Loader) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.views[name] = &LazyView{name: name, load: load}
}

// Lookup returns the registered view for name.
func (vs *Views) Lookup(name string) (*LazyView, error) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	v, ok := vs.views[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	return v, nil
}

// Check reports every view in t that is not registered.
func (vs *Views) Check(t *Table) error {
	var errs []error
	for _, name := range t.Views() {
		if _, err := vs.Lookup(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
