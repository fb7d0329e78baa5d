package lifecycle

import (
	"errors"
	"fmt"

	"github.com/poltergeist/buildscript/pkg/shell"
)

var (
	// ErrBuilderUsage matches misuse of the builder API, including handlers
	// that break the chain.
	ErrBuilderUsage = shell.ErrBuilderUsage

	// ErrUnknownStage is returned for stage names outside the lifecycle.
	ErrUnknownStage = errors.New("unknown lifecycle stage")
)

// stageError attributes err to the plugin and stage it came from. Builder
// misuse keeps its *shell.UsageError type with Plugin and Stage set.
func stageError(plugin string, stage Stage, err error) error {
	if usage, ok := err.(*shell.UsageError); ok && usage.Plugin == "" {
		attributed := *usage
		attributed.Plugin = plugin
		attributed.Stage = string(stage)
		return &attributed
	}
	return fmt.Errorf("plugin %s, stage %s: %w", plugin, stage, err)
}

func chainError(module string, calls int) error {
	msg := "handler " + module + " did not continue the chain"
	if calls > 1 {
		msg = "handler " + module + " continued the chain more than once"
	}
	return &shell.UsageError{Op: "next", Msg: msg}
}
