// Package plugins holds griffon's statically registered plugins. Plugins are compiled in and enabled by
// name through configuration; nothing is loaded at runtime.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownPlugin is returned when no plugin is registered under a name
	ErrUnknownPlugin = errors.New("unknown plugin")

	// ErrDisabled is returned when a registered plugin is not enabled in configuration
	ErrDisabled = errors.New("plugin not enabled")

	// ErrInvalidArgs is returned when a plugin cannot use its arguments
	ErrInvalidArgs = errors.New("invalid plugin arguments")
)

// Plugin is a small command that produces a renderable result from its arguments
type Plugin interface {
	Name() string
	Description() string
	Run(ctx context.Context, args []string) (any, error)
}

// Registry is the set of available plugins
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{plugins: map[string]Plugin{}}
}

// Register adds a plugin; names must be unique
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[p.Name()]; ok {
		return fmt.Errorf("plugin %q already registered", p.Name())
	}
	r.plugins[p.Name()] = p
	return nil
}

// Get returns the plugin registered under name
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}
	return p, nil
}

// Names lists registered plugin names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enabled resolves the configured plugin names. An unknown name is an error.
func (r *Registry) Enabled(names []string) ([]Plugin, error) {
	out := make([]Plugin, 0, len(names))
	for _, name := range names {
		p, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Lookup returns the named plugin only if it is both registered and enabled
func (r *Registry) Lookup(name string, enabled []string) (Plugin, error) {
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	for _, e := range enabled {
		if e == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDisabled, name)
}

// Builtins returns a registry holding the plugins shipped with griffon.
// incidentURL is the incident database base URL used for links.
func Builtins(incidentURL string) *Registry {
	r := NewRegistry()
	for _, p := range []Plugin{
		PurlPlugin{},
		CVELinkPlugin{IncidentURL: incidentURL},
	} {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}
