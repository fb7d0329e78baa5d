// Package lifecycle assembles a build script by running each stage of the
// build through a chain of handlers: the base handlers, then the plugin's
// capabilities in declared order, then the language itself.
package lifecycle

import (
	"fmt"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/cache"
	"github.com/poltergeist/buildscript/pkg/logger"
	"github.com/poltergeist/buildscript/pkg/shell"
)

// Settings configures Run.
type Settings struct {
	Script shell.Options
	Cache  cache.DirectoryCache
	Logger logger.Logger
}

// Result is one assembled build.
type Result struct {
	Script       string
	CacheTargets []string
	UsesCache    bool
}

type link struct {
	module  string
	handler Handler
}

// Run assembles and renders the script for plugin under cfg. Nothing is
// returned when any handler or builder call fails.
func Run(p Plugin, cfg *buildconfig.Config, s Settings) (*Result, error) {
	if cfg == nil {
		cfg = buildconfig.New(nil)
	}
	log := s.Logger
	if log == nil {
		log = logger.Nop()
	}

	chains, err := resolve(p, cfg)
	if err != nil {
		return nil, err
	}

	useCache := usesCache(p, cfg)
	var dc cache.DirectoryCache = cache.Noop{}
	if useCache && s.Cache != nil {
		dc = s.Cache
	}

	sh := shell.New(s.Script)
	ctx := &Context{
		Sh:     sh,
		Config: cfg,
		Log:    log,
		cache:  dc,
		seen:   map[string]bool{},
	}

	for _, stage := range stageOrder {
		if stage == StageBeforeInstall && useCache {
			dc.Fetch(sh)
		}
		if err := runStage(ctx, p.Name, stage, chains[stage]); err != nil {
			return nil, err
		}
		if stage == StageAfterScript && useCache {
			dc.Push(sh)
		}
	}

	text, err := sh.Render()
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", p.Name, err)
	}
	log.Debug("Assembled script",
		logger.WithField("plugin", p.Name),
		logger.WithField("bytes", len(text)),
	)

	return &Result{
		Script:       text,
		CacheTargets: ctx.CacheTargets(),
		UsesCache:    useCache,
	}, nil
}

// resolve binds every module once and builds the handler chain of each
// stage.
func resolve(p Plugin, cfg *buildconfig.Config) (map[Stage][]link, error) {
	opts := &Options{plugin: p.Name, cfg: cfg, defaults: p.defaults()}

	type bound struct {
		name     string
		handlers Handlers
	}
	var modules []bound

	bind := func(name string, b Binder) error {
		if b == nil {
			modules = append(modules, bound{name: name})
			return nil
		}
		h, err := b(opts)
		if err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name, err)
		}
		modules = append(modules, bound{name: name, handlers: h})
		return nil
	}

	b := base()
	if err := bind(b.Name, b.Bind); err != nil {
		return nil, err
	}
	for _, c := range p.Capabilities {
		if err := bind(c.Name, c.Bind); err != nil {
			return nil, err
		}
	}
	if err := bind(p.Name, p.Bind); err != nil {
		return nil, err
	}

	chains := make(map[Stage][]link, len(stageOrder))
	for _, stage := range stageOrder {
		if cmds, ok := cfg.StageCommands(string(stage)); ok && stage.UserOverridable() {
			if h := modules[0].handlers[stage]; h != nil {
				chains[stage] = append(chains[stage], link{module: modules[0].name, handler: h})
			}
			chains[stage] = append(chains[stage], link{module: "config", handler: userCommands(cmds)})
			continue
		}
		for _, m := range modules {
			if h := m.handlers[stage]; h != nil {
				chains[stage] = append(chains[stage], link{module: m.name, handler: h})
			}
		}
	}
	return chains, nil
}

func userCommands(cmds []string) Handler {
	return func(c *Context, next Next) error {
		for _, cmd := range cmds {
			c.Sh.Cmd(cmd)
		}
		next()
		return nil
	}
}

func usesCache(p Plugin, cfg *buildconfig.Config) bool {
	checks := []CacheCheck{base().UsesCache, p.UsesCache}
	for _, c := range p.Capabilities {
		checks = append(checks, c.UsesCache)
	}
	for _, check := range checks {
		if check != nil && check(cfg) {
			return true
		}
	}
	return false
}

func runStage(ctx *Context, plugin string, stage Stage, chain []link) error {
	ctx.stage = stage
	ctx.Log.Debug("Assembling stage",
		logger.WithField("plugin", plugin),
		logger.WithField("stage", stage),
		logger.WithField("handlers", len(chain)),
	)

	for _, l := range chain {
		ctx.module = l.module
		calls := 0
		if err := l.handler(ctx, func() { calls++ }); err != nil {
			return stageError(plugin, stage, err)
		}
		if err := ctx.Sh.Err(); err != nil {
			return stageError(plugin, stage, err)
		}
		if calls != 1 {
			return stageError(plugin, stage, chainError(l.module, calls))
		}
	}
	ctx.module = ""
	return nil
}
