package lifecycle

import (
	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/cache"
	"github.com/poltergeist/buildscript/pkg/logger"
	"github.com/poltergeist/buildscript/pkg/shell"
)

// Context is what a handler sees while a stage is assembled.
type Context struct {
	Sh     *shell.Script
	Config *buildconfig.Config
	Log    logger.Logger

	stage   Stage
	module  string
	cache   cache.DirectoryCache
	targets []string
	seen    map[string]bool
}

// Stage returns the stage being assembled.
func (c *Context) Stage() Stage {
	return c.stage
}

// Module returns the name of the module whose handler is running.
func (c *Context) Module() string {
	return c.module
}

// RegisterCacheTarget marks path for the directory cache. Paths are recorded
// once, in registration order.
func (c *Context) RegisterCacheTarget(path string) {
	if path == "" || c.seen[path] {
		return
	}
	c.seen[path] = true
	c.targets = append(c.targets, path)
	c.cache.Add(c.Sh, path)
	c.Log.Debug("Registered cache target",
		logger.WithField("path", path),
		logger.WithField("module", c.module),
	)
}

// CacheTargets returns the registered cache paths.
func (c *Context) CacheTargets() []string {
	return append([]string(nil), c.targets...)
}
