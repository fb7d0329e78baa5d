package buildconfig

import (
	"errors"
	"fmt"
)

// ErrConfiguration indicates an option that has neither a value nor a default,
// or a value of the wrong shape.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError names the plugin and option that could not be resolved.
type ConfigurationError struct {
	Plugin string
	Option string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("plugin %s: option %q", e.Plugin, e.Option)
	if e.Option == "" {
		msg = fmt.Sprintf("plugin %s", e.Plugin)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg + ": no value and no default"
}

// Is makes ConfigurationError match ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
