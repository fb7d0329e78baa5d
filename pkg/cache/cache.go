// Package cache emits the script steps that restore and persist directories
// between builds.
package cache

import (
	"fmt"

	"github.com/poltergeist/buildscript/pkg/shell"
)

// DirectoryCache is the collaborator the lifecycle drives around install.
// Implementations only append steps; they never touch the filesystem.
type DirectoryCache interface {
	// Fetch appends the steps that restore a previous archive.
	Fetch(sh *shell.Script)
	// Add appends the steps that mark paths for caching.
	Add(sh *shell.Script, paths ...string)
	// Push appends the steps that upload the archive.
	Push(sh *shell.Script)
}

// DefaultTool is the cache client invoked by Casher.
const DefaultTool = "casher"

// Casher drives a casher-compatible command line client.
type Casher struct {
	Tool string
	Key  string
}

// NewCasher returns a Casher storing archives under key. An empty tool selects
// DefaultTool.
func NewCasher(tool, key string) *Casher {
	if tool == "" {
		tool = DefaultTool
	}
	return &Casher{Tool: tool, Key: key}
}

// Fetch restores the archive. A missing archive is not an error.
func (c *Casher) Fetch(sh *shell.Script) {
	sh.Fold("cache.1", func() {
		sh.Echo("Setting up build cache", shell.WithColor(shell.Yellow))
		sh.Cmd(fmt.Sprintf("%s fetch %s", shell.Escape(c.Tool), shell.Escape(c.Key)), shell.WithRetry(), shell.AllowFailure())
	})
}

// Add registers paths with the client.
func (c *Casher) Add(sh *shell.Script, paths ...string) {
	if len(paths) == 0 {
		return
	}
	sh.Cmd(fmt.Sprintf("%s add %s", shell.Escape(c.Tool), shell.Join(paths...)))
}

// Push uploads the archive. Upload failures do not fail the build.
func (c *Casher) Push(sh *shell.Script) {
	sh.Fold("cache.2", func() {
		sh.Echo("Storing build cache", shell.WithColor(shell.Yellow))
		sh.Cmd(fmt.Sprintf("%s push %s", shell.Escape(c.Tool), shell.Escape(c.Key)), shell.AllowFailure())
	})
}

// Noop is a DirectoryCache that emits nothing.
type Noop struct{}

func (Noop) Fetch(*shell.Script)          {}
func (Noop) Add(*shell.Script, ...string) {}
func (Noop) Push(*shell.Script)           {}

var (
	_ DirectoryCache = (*Casher)(nil)
	_ DirectoryCache = Noop{}
)
