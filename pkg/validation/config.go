// Package validation checks build configs before they are compiled.
package validation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/cache"
	"github.com/poltergeist/buildscript/pkg/languages"
	"github.com/poltergeist/buildscript/pkg/lifecycle"
)

// ConfigValidator validates build configs against a plugin registry.
type ConfigValidator struct {
	registry *languages.Registry
}

// NewConfigValidator creates a validator. A nil registry selects the
// shipped plugins.
func NewConfigValidator(registry *languages.Registry) *ConfigValidator {
	if registry == nil {
		registry = languages.Default()
	}
	return &ConfigValidator{registry: registry}
}

// ValidationError represents a validation error
type ValidationError struct {
	Job     string
	Field   string
	Message string
	Level   ValidationLevel
}

// ValidationLevel represents error severity
type ValidationLevel string

const (
	ValidationLevelError   ValidationLevel = "error"
	ValidationLevelWarning ValidationLevel = "warning"
	ValidationLevelInfo    ValidationLevel = "info"
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] job %s, %s: %s", e.Level, e.Job, e.Field, e.Message)
}

// ValidationResult contains validation results
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// AddError adds an error to the validation result
func (r *ValidationResult) AddError(job, field, message string, level ValidationLevel) {
	r.Errors = append(r.Errors, ValidationError{
		Job:     job,
		Field:   field,
		Message: message,
		Level:   level,
	})
	if level == ValidationLevelError {
		r.Valid = false
	}
}

// Filter returns the findings at level.
func (r *ValidationResult) Filter(level ValidationLevel) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

var knownCacheKinds = map[string]bool{
	buildconfig.CacheBundler:   true,
	buildconfig.CacheCocoapods: true,
	buildconfig.CacheComposer:  true,
}

// Validate checks cfg and every job it expands to.
func (v *ConfigValidator) Validate(cfg *buildconfig.Config) *ValidationResult {
	result := &ValidationResult{Valid: true}

	jobs, err := cfg.Jobs()
	if err != nil {
		result.AddError("-", buildconfig.KeyJobs, err.Error(), ValidationLevelError)
		return result
	}

	for i, job := range jobs {
		v.validateJob(fmt.Sprint(i+1), job, result)
	}
	return result
}

func (v *ConfigValidator) validateJob(job string, cfg *buildconfig.Config, result *ValidationResult) {
	plugin, err := v.registry.Lookup(cfg.Language())
	if err != nil {
		result.AddError(job, buildconfig.KeyLanguage, err.Error(), ValidationLevelError)
		return
	}

	v.validateKeys(job, plugin, cfg, result)
	v.validateStages(job, cfg, result)
	v.validateCache(job, cfg, result)
	v.validateXcode(job, plugin, cfg, result)

	// A dry run surfaces option and builder errors exactly as compile would.
	if _, err := lifecycle.Run(plugin, cfg, lifecycle.Settings{Cache: cache.Noop{}}); err != nil {
		field := "config"
		var cerr *buildconfig.ConfigurationError
		if errors.As(err, &cerr) && cerr.Option != "" {
			field = cerr.Option
		}
		result.AddError(job, field, err.Error(), ValidationLevelError)
	}
}

func (v *ConfigValidator) validateKeys(job string, plugin lifecycle.Plugin, cfg *buildconfig.Config, result *ValidationResult) {
	known := map[string]bool{
		buildconfig.KeyLanguage: true,
		buildconfig.KeyEnv:      true,
		buildconfig.KeyEnvFile:  true,
		buildconfig.KeyCache:    true,
		buildconfig.KeyJobs:     true,
	}
	for _, s := range lifecycle.Stages() {
		if s.UserOverridable() {
			known[string(s)] = true
		}
	}
	for k := range plugin.Defaults {
		known[k] = true
	}
	for _, c := range plugin.Capabilities {
		for k := range c.Defaults {
			known[k] = true
		}
	}

	var unknown []string
	for _, k := range cfg.Keys() {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		result.AddError(job, k, fmt.Sprintf("option is not used by the %s plugin", plugin.Name), ValidationLevelWarning)
	}
}

func (v *ConfigValidator) validateStages(job string, cfg *buildconfig.Config, result *ValidationResult) {
	for _, s := range lifecycle.Stages() {
		raw, ok := cfg.Get(string(s))
		if !ok || raw == nil {
			continue
		}
		if !s.UserOverridable() {
			result.AddError(job, string(s), "stage cannot be replaced by the build config", ValidationLevelWarning)
			continue
		}
		switch t := raw.(type) {
		case string:
		case []any:
			for i, item := range t {
				if _, ok := item.(string); !ok {
					result.AddError(job, fmt.Sprintf("%s[%d]", s, i), fmt.Sprintf("expected a command string, got %T", item), ValidationLevelError)
				}
			}
		default:
			result.AddError(job, string(s), fmt.Sprintf("expected a command or a list of commands, got %T", raw), ValidationLevelError)
		}
	}
}

func (v *ConfigValidator) validateCache(job string, cfg *buildconfig.Config, result *ValidationResult) {
	settings := cfg.Cache()
	for _, kind := range settings.EnabledKinds() {
		if !knownCacheKinds[kind] {
			result.AddError(job, buildconfig.KeyCache, fmt.Sprintf("unknown cache kind %q", kind), ValidationLevelWarning)
		}
	}
	if !settings.Enabled && (len(settings.Kinds) > 0 || len(settings.Directories) > 0) {
		result.AddError(job, buildconfig.KeyCache, "cache is disabled; listed targets are ignored", ValidationLevelInfo)
	}
}

func (v *ConfigValidator) validateXcode(job string, plugin lifecycle.Plugin, cfg *buildconfig.Config, result *ValidationResult) {
	if plugin.Name != "objective-c" {
		return
	}
	_, hasScheme := cfg.Get("xcode_scheme")
	_, hasProject := cfg.Get("xcode_project")
	_, hasWorkspace := cfg.Get("xcode_workspace")
	if !hasScheme || !(hasProject || hasWorkspace) {
		result.AddError(job, "xcode_scheme",
			"testing without a scheme and either a workspace or a project is deprecated",
			ValidationLevelWarning)
	}
}
