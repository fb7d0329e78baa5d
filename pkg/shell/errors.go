package shell

import (
	"errors"
	"fmt"
)

// Sentinel errors for script assembly.
// Typed errors below unwrap to these so callers can use errors.Is()
var (
	// ErrBuilderUsage indicates a malformed sequence of builder calls
	ErrBuilderUsage = errors.New("builder usage error")

	// ErrEscape indicates a string that cannot be represented as a shell word
	ErrEscape = errors.New("escape error")

	// ErrUnsafeByte indicates a NUL byte in a string passed to EscapeStrict
	ErrUnsafeByte = fmt.Errorf("%w: string contains a NUL byte", ErrEscape)
)

// UsageError describes a builder call that cannot produce a valid document.
// Plugin and Stage are filled in by the lifecycle when known.
type UsageError struct {
	Plugin string
	Stage  string
	Op     string
	Msg    string
}

func (e *UsageError) Error() string {
	if e.Plugin != "" {
		return fmt.Sprintf("plugin %s, stage %s: %s: %s", e.Plugin, e.Stage, e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// Unwrap makes UsageError match ErrBuilderUsage.
func (e *UsageError) Unwrap() error {
	return ErrBuilderUsage
}

// EscapeError reports a string EscapeStrict cannot represent.
type EscapeError struct {
	Input  string
	Offset int // byte offset of the first offending byte
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("%v at offset %d of %q", ErrUnsafeByte, e.Offset, e.Input)
}

// Unwrap makes EscapeError match ErrUnsafeByte and ErrEscape.
func (e *EscapeError) Unwrap() error {
	return ErrUnsafeByte
}
