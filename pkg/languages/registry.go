// Package languages holds the language plugins and the registry that maps
// a build config's language to one of them.
package languages

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/poltergeist/buildscript/pkg/lifecycle"
)

var (
	// ErrUnknownLanguage is returned by Lookup for unregistered names.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrDuplicateLanguage is returned when a name is registered twice.
	ErrDuplicateLanguage = errors.New("language already registered")
)

// Registry maps language names and aliases to plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]lifecycle.Plugin
	aliases map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]lifecycle.Plugin),
		aliases: make(map[string]string),
	}
}

// Default returns a registry holding the shipped plugins.
func Default() *Registry {
	r := NewRegistry()
	for _, entry := range []struct {
		plugin  lifecycle.Plugin
		aliases []string
	}{
		{ObjectiveC(), []string{"objc", "objective_c", "swift"}},
		{PHP(), nil},
		{Generic(), []string{"minimal", "shell"}},
	} {
		if err := r.Register(entry.plugin, entry.aliases...); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds p under its name and the given aliases.
func (r *Registry) Register(p lifecycle.Plugin, aliases ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := normalize(p.Name)
	if name == "" {
		return fmt.Errorf("plugin has no name")
	}
	for _, n := range append([]string{name}, aliases...) {
		n = normalize(n)
		if _, ok := r.plugins[n]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateLanguage, n)
		}
		if _, ok := r.aliases[n]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateLanguage, n)
		}
	}

	r.plugins[name] = p
	for _, a := range aliases {
		r.aliases[normalize(a)] = name
	}
	return nil
}

// Lookup returns the plugin for a language name or alias.
func (r *Registry) Lookup(language string) (lifecycle.Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := normalize(language)
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	p, ok := r.plugins[name]
	if !ok {
		return lifecycle.Plugin{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
	}
	return p, nil
}

// Names returns the canonical plugin names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for n := range r.plugins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Aliases returns the aliases registered for name, sorted.
func (r *Registry) Aliases(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for alias, canonical := range r.aliases {
		if canonical == name {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
