package capabilities

import (
	"strings"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/lifecycle"
	"github.com/poltergeist/buildscript/pkg/shell"
)

// DefaultPHP is the interpreter selected when the build names none.
const DefaultPHP = "5.3.8"

// ComposerCacheDir is cached when composer caching is on.
const ComposerCacheDir = "vendor"

type phpenvOptions struct {
	PHP string `mapstructure:"php"`
}

// Phpenv selects the PHP interpreter with phpenv.
func Phpenv() lifecycle.Capability {
	return lifecycle.Capability{
		Name:     "phpenv",
		Defaults: map[string]any{"php": DefaultPHP},
		Bind: func(o *lifecycle.Options) (lifecycle.Handlers, error) {
			var opts phpenvOptions
			if err := o.Resolve(&opts); err != nil {
				return nil, err
			}
			return lifecycle.Handlers{
				lifecycle.StageExport: func(c *lifecycle.Context, next lifecycle.Next) error {
					c.Sh.Export("TRAVIS_PHP_VERSION", opts.PHP, shell.NoEcho())
					next()
					return nil
				},
				lifecycle.StageSetup: func(c *lifecycle.Context, next lifecycle.Next) error {
					c.Sh.Cmd("phpenv global " + shell.Escape(opts.PHP))
					next()
					return nil
				},
				lifecycle.StageAnnounce: func(c *lifecycle.Context, next lifecycle.Next) error {
					c.Sh.Cmd("php --version")
					next()
					return nil
				},
			}, nil
		},
	}
}

type composerOptions struct {
	ComposerArgs string `mapstructure:"composer_args"`
}

// Composer installs dependencies when composer.json exists.
func Composer() lifecycle.Capability {
	return lifecycle.Capability{
		Name:     "composer",
		Defaults: map[string]any{"composer_args": ""},
		UsesCache: func(cfg *buildconfig.Config) bool {
			return cfg.CacheEnabled(buildconfig.CacheComposer)
		},
		Bind: func(o *lifecycle.Options) (lifecycle.Handlers, error) {
			var opts composerOptions
			if err := o.Resolve(&opts); err != nil {
				return nil, err
			}
			cached := o.Config().CacheEnabled(buildconfig.CacheComposer)

			return lifecycle.Handlers{
				lifecycle.StageInstall: func(c *lifecycle.Context, next lifecycle.Next) error {
					c.Sh.If("-f composer.json", func() {
						if cached {
							c.RegisterCacheTarget(ComposerCacheDir)
						}
						c.Sh.Cmd(ComposerInstall(opts.ComposerArgs), shell.WithRetry())
					})
					next()
					return nil
				},
			}, nil
		},
	}
}

// ComposerInstall renders the install command for args.
func ComposerInstall(args string) string {
	return strings.TrimSpace("composer install " + args)
}
