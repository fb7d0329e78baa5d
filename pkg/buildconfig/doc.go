// Package buildconfig parses the declarative build description and resolves
// the typed option sets that plugins read.
//
// A Config is immutable after Parse. Plugins never look up keys directly
// during assembly: each declares an options struct plus defaults and calls
// Resolve once, before any stage runs. Values supplied by the user always
// win over defaults, and an option with neither is a ConfigurationError.
//
//	var opts struct {
//	    PHP string `mapstructure:"php"`
//	}
//	err := cfg.Resolve("php", map[string]any{"php": "5.3.8"}, &opts)
package buildconfig
