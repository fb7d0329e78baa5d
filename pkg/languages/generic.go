package languages

import (
	"github.com/poltergeist/buildscript/pkg/lifecycle"
	"github.com/poltergeist/buildscript/pkg/shell"
)

// Generic runs only what the build config lists.
func Generic() lifecycle.Plugin {
	return lifecycle.Plugin{
		Name: "generic",
		Bind: func(*lifecycle.Options) (lifecycle.Handlers, error) {
			return lifecycle.Handlers{
				lifecycle.StageScript: func(c *lifecycle.Context, next lifecycle.Next) error {
					c.Sh.Echo("No script configured for this build", shell.WithColor(shell.Yellow))
					next()
					return nil
				},
			}, nil
		},
	}
}
