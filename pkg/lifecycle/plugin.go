package lifecycle

import (
	"maps"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
)

// Next continues the chain with the following handler. The following handler
// runs after the current one returns, so a handler's steps always precede
// the steps of everything after it.
type Next func()

// Handler contributes steps to one stage. It must call next exactly once.
type Handler func(c *Context, next Next) error

// Handlers maps the stages a module overrides to their handlers.
type Handlers map[Stage]Handler

// Binder resolves a module's options once per build and returns its handlers.
type Binder func(o *Options) (Handlers, error)

// CacheCheck reports whether a module needs the directory cache for cfg.
type CacheCheck func(cfg *buildconfig.Config) bool

// Capability is a reusable behavior a language can opt into, such as a
// version manager or a dependency installer.
type Capability struct {
	Name      string
	Defaults  map[string]any
	Bind      Binder
	UsesCache CacheCheck
}

// Plugin is a language: its own handlers plus the capabilities it declares.
// Capabilities run in declared order, after the base handlers and before the
// language's own.
type Plugin struct {
	Name         string
	Defaults     map[string]any
	Capabilities []Capability
	Bind         Binder
	UsesCache    CacheCheck
}

// CapabilityNames lists the declared capabilities in chain order.
func (p Plugin) CapabilityNames() []string {
	names := make([]string, 0, len(p.Capabilities))
	for _, c := range p.Capabilities {
		names = append(names, c.Name)
	}
	return names
}

// defaults merges capability defaults under the plugin's own.
func (p Plugin) defaults() map[string]any {
	out := map[string]any{}
	for _, c := range p.Capabilities {
		maps.Copy(out, c.Defaults)
	}
	maps.Copy(out, p.Defaults)
	return out
}

// Options gives a module typed access to the build config.
type Options struct {
	plugin   string
	cfg      *buildconfig.Config
	defaults map[string]any
}

// Resolve decodes the plugin's options into out. Capability defaults are
// overridden by plugin defaults, which are overridden by the build config.
func (o *Options) Resolve(out any) error {
	return o.cfg.Resolve(o.plugin, o.defaults, out)
}

// Config returns the build config being compiled.
func (o *Options) Config() *buildconfig.Config {
	return o.cfg
}

// Plugin returns the name of the plugin being compiled.
func (o *Options) Plugin() string {
	return o.plugin
}

// Chain lists the module names a stage runs through, in order.
func (p Plugin) Chain() []string {
	return append(append([]string{BaseModule}, p.CapabilityNames()...), p.Name)
}
