package languages

import (
	"github.com/poltergeist/buildscript/pkg/capabilities"
	"github.com/poltergeist/buildscript/pkg/lifecycle"
)

// PHP selects the interpreter with phpenv, installs Composer dependencies
// and runs phpunit.
func PHP() lifecycle.Plugin {
	return lifecycle.Plugin{
		Name:         "php",
		Defaults:     map[string]any{"php": capabilities.DefaultPHP},
		Capabilities: []lifecycle.Capability{capabilities.Phpenv(), capabilities.Composer()},
		Bind: func(*lifecycle.Options) (lifecycle.Handlers, error) {
			return lifecycle.Handlers{
				lifecycle.StageScript: func(c *lifecycle.Context, next lifecycle.Next) error {
					c.Sh.Cmd("phpunit")
					next()
					return nil
				},
			}, nil
		},
	}
}
