// Package xcode turns the xcode_* build options into command-line
// arguments and environment for Xcode tooling.
package xcode

import (
	"strings"

	"github.com/poltergeist/buildscript/pkg/shell"
)

// Settings holds the Xcode selection of a build.
type Settings struct {
	SDK       string `mapstructure:"xcode_sdk"`
	Scheme    string `mapstructure:"xcode_scheme"`
	Project   string `mapstructure:"xcode_project"`
	Workspace string `mapstructure:"xcode_workspace"`
	// ExtraArgs is prepended to the generated flags verbatim.
	ExtraArgs string `mapstructure:"xctool_args"`
}

// Defaults returns the option defaults for Settings.
func Defaults() map[string]any {
	return map[string]any{
		"xcode_sdk":       "",
		"xcode_scheme":    "",
		"xcode_project":   "",
		"xcode_workspace": "",
		"xctool_args":     "",
	}
}

// Flag is one -name value pair.
type Flag struct {
	Name  string
	Value string
}

// Flags returns the set flags in project, workspace, scheme, sdk order.
func (s Settings) Flags() []Flag {
	var flags []Flag
	for _, f := range []Flag{
		{"project", s.Project},
		{"workspace", s.Workspace},
		{"scheme", s.Scheme},
		{"sdk", s.SDK},
	} {
		if f.Value != "" {
			flags = append(flags, f)
		}
	}
	return flags
}

// Args renders ExtraArgs followed by the escaped flags.
func (s Settings) Args() string {
	var b strings.Builder
	b.WriteString(s.ExtraArgs)
	for _, f := range s.Flags() {
		b.WriteString(" -")
		b.WriteString(f.Name)
		b.WriteByte(' ')
		b.WriteString(shell.Escape(f.Value))
	}
	return strings.TrimSpace(b.String())
}

// Testable reports whether a scheme and a project or workspace are set.
func (s Settings) Testable() bool {
	return s.Scheme != "" && (s.Project != "" || s.Workspace != "")
}

// Command renders tool with the settings' arguments and the given actions.
func (s Settings) Command(tool string, actions ...string) string {
	parts := []string{tool}
	if args := s.Args(); args != "" {
		parts = append(parts, args)
	}
	parts = append(parts, actions...)
	return strings.Join(parts, " ")
}

// Var is an environment variable derived from the settings.
type Var struct {
	Name  string
	Value string
}

// Env returns the TRAVIS_XCODE_* variables, always in the same order.
func (s Settings) Env() []Var {
	return []Var{
		{"TRAVIS_XCODE_SDK", s.SDK},
		{"TRAVIS_XCODE_SCHEME", s.Scheme},
		{"TRAVIS_XCODE_PROJECT", s.Project},
		{"TRAVIS_XCODE_WORKSPACE", s.Workspace},
	}
}
