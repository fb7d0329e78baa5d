package capabilities

import (
	"fmt"
	"strings"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/lifecycle"
	"github.com/poltergeist/buildscript/pkg/shell"
)

// BundlerCacheDir is the install path used when bundler caching is on.
const BundlerCacheDir = "vendor/bundle"

type rvmOptions struct {
	Ruby string `mapstructure:"rvm"`
}

// RVM selects the Ruby interpreter with rvm.
func RVM() lifecycle.Capability {
	return lifecycle.Capability{
		Name:     "rvm",
		Defaults: map[string]any{"rvm": "default"},
		Bind: func(o *lifecycle.Options) (lifecycle.Handlers, error) {
			var opts rvmOptions
			if err := o.Resolve(&opts); err != nil {
				return nil, err
			}
			return lifecycle.Handlers{
				lifecycle.StageExport: func(c *lifecycle.Context, next lifecycle.Next) error {
					c.Sh.Export("TRAVIS_RUBY_VERSION", opts.Ruby, shell.NoEcho())
					next()
					return nil
				},
				lifecycle.StageSetup: func(c *lifecycle.Context, next lifecycle.Next) error {
					c.Sh.Cmd(fmt.Sprintf("rvm use %s --install --binary --fuzzy", shell.Escape(opts.Ruby)))
					next()
					return nil
				},
				lifecycle.StageAnnounce: func(c *lifecycle.Context, next lifecycle.Next) error {
					c.Sh.Cmd("ruby --version")
					c.Sh.Cmd("rvm --version")
					next()
					return nil
				},
			}, nil
		},
	}
}

type bundlerOptions struct {
	Gemfile     string `mapstructure:"gemfile"`
	BundlerArgs string `mapstructure:"bundler_args"`
}

// Bundler installs gems from the configured Gemfile.
func Bundler() lifecycle.Capability {
	return lifecycle.Capability{
		Name:     "bundler",
		Defaults: map[string]any{"gemfile": "Gemfile", "bundler_args": ""},
		UsesCache: func(cfg *buildconfig.Config) bool {
			return cfg.CacheEnabled(buildconfig.CacheBundler)
		},
		Bind: func(o *lifecycle.Options) (lifecycle.Handlers, error) {
			var opts bundlerOptions
			if err := o.Resolve(&opts); err != nil {
				return nil, err
			}
			gemfile := shell.Escape(opts.Gemfile)
			cached := o.Config().CacheEnabled(buildconfig.CacheBundler)

			return lifecycle.Handlers{
				lifecycle.StageSetup: func(c *lifecycle.Context, next lifecycle.Next) error {
					if opts.Gemfile != "Gemfile" {
						c.Sh.Cmd(fmt.Sprintf(`export BUNDLE_GEMFILE="$PWD"/%s`, gemfile))
					}
					next()
					return nil
				},
				lifecycle.StageAnnounce: func(c *lifecycle.Context, next lifecycle.Next) error {
					c.Sh.If("-f "+gemfile, func() {
						c.Sh.Cmd("bundle --version")
					})
					next()
					return nil
				},
				lifecycle.StageInstall: func(c *lifecycle.Context, next lifecycle.Next) error {
					c.Sh.If("-f "+gemfile, func() {
						if cached {
							c.RegisterCacheTarget(BundlerCacheDir)
						}
						c.Sh.Cmd(bundleInstall(opts.BundlerArgs, cached), shell.WithRetry())
					})
					next()
					return nil
				},
			}, nil
		},
	}
}

func bundleInstall(args string, cached bool) string {
	cmd := "bundle install"
	if args != "" {
		cmd += " " + args
	}
	if cached && !strings.Contains(args, "--path") {
		cmd += " --path=" + BundlerCacheDir
	}
	return cmd
}
