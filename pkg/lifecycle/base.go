package lifecycle

import (
	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/shell"
)

// BaseModule names the handlers every plugin inherits.
const BaseModule = "base"

func base() Capability {
	return Capability{
		Name: BaseModule,
		Bind: bindBase,
		UsesCache: func(cfg *buildconfig.Config) bool {
			return cfg.CacheEnabled(buildconfig.CacheDirectories)
		},
	}
}

func bindBase(o *Options) (Handlers, error) {
	vars, err := o.Config().Env()
	if err != nil {
		return nil, err
	}
	language := o.Plugin()

	return Handlers{
		StageExport: func(c *Context, next Next) error {
			c.Sh.Export("CI", "true", shell.NoEcho())
			c.Sh.Export("BUILDSCRIPT", "true", shell.NoEcho())
			c.Sh.Export("BUILDSCRIPT_LANGUAGE", language, shell.NoEcho())

			if len(vars) > 0 {
				c.Sh.Newline()
				c.Sh.Echo("Setting environment variables from build config", shell.WithColor(shell.Yellow))
				for _, v := range vars {
					if v.Secret {
						c.Sh.Echo("$ export " + v.Name + "=[secure]")
						c.Sh.Export(v.Name, v.Value, shell.NoEcho())
						continue
					}
					c.Sh.Export(v.Name, v.Value)
				}
				c.Sh.Newline()
			}
			next()
			return nil
		},
		StageBeforeInstall: func(c *Context, next Next) error {
			if c.Config.CacheEnabled(buildconfig.CacheDirectories) {
				for _, dir := range c.Config.Cache().Directories {
					c.RegisterCacheTarget(dir)
				}
			}
			next()
			return nil
		},
	}, nil
}
