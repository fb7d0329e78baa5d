package languages

import (
	"path"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/capabilities"
	"github.com/poltergeist/buildscript/pkg/lifecycle"
	"github.com/poltergeist/buildscript/pkg/shell"
	"github.com/poltergeist/buildscript/pkg/xcode"
)

const (
	rubyMotionCondition = `-f Rakefile && "$(cat Rakefile)" =~ require\ [\"\']motion/project`

	deprecatedMissingTarget = `WARNING: Using Objective-C testing without specifying a scheme and either a workspace or a project is deprecated.`
	deprecatedMissingHelp   = "  Check out our documentation for more information: http://about.travis-ci.org/docs/user/languages/objective-c/"

	actoolStub = "echo '#!/bin/bash\n# no-op' > /usr/local/bin/actool"
)

type objectiveCOptions struct {
	Podfile string `mapstructure:"podfile"`
}

// ObjectiveC builds Xcode projects with xctool, RubyMotion projects with
// rake, and installs CocoaPods when a Podfile is present.
func ObjectiveC() lifecycle.Plugin {
	defaults := xcode.Defaults()
	defaults["rvm"] = "default"
	defaults["gemfile"] = "Gemfile"
	defaults["podfile"] = "Podfile"

	return lifecycle.Plugin{
		Name:         "objective-c",
		Defaults:     defaults,
		Capabilities: []lifecycle.Capability{capabilities.RVM(), capabilities.Bundler()},
		UsesCache: func(cfg *buildconfig.Config) bool {
			return cfg.CacheEnabled(buildconfig.CacheCocoapods)
		},
		Bind: bindObjectiveC,
	}
}

func bindObjectiveC(o *lifecycle.Options) (lifecycle.Handlers, error) {
	var opts objectiveCOptions
	if err := o.Resolve(&opts); err != nil {
		return nil, err
	}
	var xs xcode.Settings
	if err := o.Resolve(&xs); err != nil {
		return nil, err
	}
	cachePods := o.Config().CacheEnabled(buildconfig.CacheCocoapods)
	podDir := path.Dir(opts.Podfile)

	return lifecycle.Handlers{
		lifecycle.StageAnnounce: func(c *lifecycle.Context, next lifecycle.Next) error {
			c.Sh.Fold("announce", func() {
				c.Sh.Cmd("xcodebuild -version -sdk")
				c.Sh.Cmd("xctool -version")
				c.Sh.If(rubyMotion(false), func() {
					c.Sh.Cmd("motion --version")
				})
				c.Sh.Elif("-f Podfile", func() {
					c.Sh.Cmd("pod --version")
				})
			})
			next()
			return nil
		},

		lifecycle.StageExport: func(c *lifecycle.Context, next lifecycle.Next) error {
			for _, v := range xs.Env() {
				c.Sh.Export(v.Name, v.Value, shell.NoEcho())
			}
			next()
			return nil
		},

		lifecycle.StageSetup: func(c *lifecycle.Context, next lifecycle.Next) error {
			c.Sh.Cmd(actoolStub, shell.NoEcho())
			c.Sh.Cmd("chmod +x /usr/local/bin/actool", shell.NoEcho())
			next()
			return nil
		},

		lifecycle.StageInstall: func(c *lifecycle.Context, next lifecycle.Next) error {
			dir := shell.Escape(podDir)
			c.Sh.If("-f "+shell.Escape(opts.Podfile), func() {
				if cachePods {
					c.RegisterCacheTarget(podDir + "/Pods")
				}
				lockMismatch := "! ([[ -f " + dir + "/Podfile.lock && -f " + dir + "/Pods/Manifest.lock ]] && " +
					"cmp --silent " + dir + "/Podfile.lock " + dir + "/Pods/Manifest.lock)"
				c.Sh.If(lockMismatch, func() {
					c.Sh.Fold("install.cocoapods", func() {
						c.Sh.Echo("Installing Pods with: pod install", shell.WithColor(shell.Yellow))
						c.Sh.Cmd("pushd " + dir)
						c.Sh.Cmd("pod install", shell.WithRetry())
						c.Sh.Cmd("popd")
					})
				}, shell.RawCondition())
			})
			next()
			return nil
		},

		lifecycle.StageScript: func(c *lifecycle.Context, next lifecycle.Next) error {
			c.Sh.If(rubyMotion(true), func() {
				c.Sh.Cmd("bundle exec rake spec")
			})
			c.Sh.Elif(rubyMotion(false), func() {
				c.Sh.Cmd("rake spec")
			})
			c.Sh.Else(func() {
				if xs.Testable() {
					c.Sh.Cmd(xs.Command("xctool", "build", "test"))
					return
				}
				c.Sh.Echo(deprecatedMissingTarget, shell.WithColor(shell.Yellow))
				c.Sh.Echo(deprecatedMissingHelp)
			})
			next()
			return nil
		},
	}, nil
}

func rubyMotion(withBundler bool) string {
	if withBundler {
		return rubyMotionCondition + " && -f Gemfile"
	}
	return rubyMotionCondition
}
