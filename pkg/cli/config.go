package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poltergeist/buildscript/pkg/cache"
	"github.com/poltergeist/buildscript/pkg/compiler"
	"github.com/poltergeist/buildscript/pkg/notifier"
	"github.com/poltergeist/buildscript/pkg/shell"
	"github.com/spf13/viper"
)

// DefaultBuildFile is compiled when no file argument is given.
const DefaultBuildFile = ".build.yml"

// Config holds the command-line flags.
type Config struct {
	ConfigFile  string
	ProjectRoot string
	Verbosity   string
	Version     string
}

// NewConfig creates a new CLI configuration with defaults
func NewConfig() *Config {
	return &Config{
		ProjectRoot: ".",
		Verbosity:   "info",
	}
}

// Settings is the tool configuration read from buildscript.yaml and
// BUILDSCRIPT_* environment variables.
type Settings struct {
	Retry struct {
		Attempts int           `mapstructure:"attempts"`
		Sleep    time.Duration `mapstructure:"sleep"`
	} `mapstructure:"retry"`
	Fold struct {
		Prefix string `mapstructure:"prefix"`
	} `mapstructure:"fold"`
	Cache struct {
		Tool string `mapstructure:"tool"`
	} `mapstructure:"cache"`
	Log struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"log"`
	Notifications struct {
		Enabled   bool `mapstructure:"enabled"`
		OnSuccess bool `mapstructure:"on_success"`
		Beep      bool `mapstructure:"beep"`
	} `mapstructure:"notifications"`
	Compile struct {
		Concurrency int `mapstructure:"concurrency"`
	} `mapstructure:"compile"`
}

func setDefaults(v *viper.Viper) {
	defaults := shell.DefaultOptions()
	v.SetDefault("retry.attempts", defaults.Retry.Attempts)
	v.SetDefault("retry.sleep", defaults.Retry.Sleep)
	v.SetDefault("fold.prefix", defaults.FoldPrefix)
	v.SetDefault("cache.tool", cache.DefaultTool)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.on_success", false)
	v.SetDefault("notifications.beep", false)
	v.SetDefault("compile.concurrency", 0)
}

// loadSettings reads the optional settings file and the environment.
func loadSettings(v *viper.Viper, cfg *Config) (*Settings, error) {
	setDefaults(v)

	if cfg.ConfigFile != "" {
		v.SetConfigFile(cfg.ConfigFile)
	} else {
		v.AddConfigPath(cfg.ProjectRoot)
		v.SetConfigName("buildscript")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("BUILDSCRIPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfg.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if s.Retry.Attempts < 1 {
		return nil, fmt.Errorf("retry.attempts must be at least 1, got %d", s.Retry.Attempts)
	}
	return &s, nil
}

// ScriptOptions returns the assembly options selected by s.
func (s *Settings) ScriptOptions() shell.Options {
	return shell.Options{
		Retry:      shell.RetryPolicy{Attempts: s.Retry.Attempts, Sleep: s.Retry.Sleep},
		FoldPrefix: s.Fold.Prefix,
	}
}

// CompilerOptions returns the compiler options selected by s.
func (s *Settings) CompilerOptions() compiler.Options {
	return compiler.Options{
		Script:      s.ScriptOptions(),
		CacheTool:   s.Cache.Tool,
		Concurrency: s.Compile.Concurrency,
	}
}

// NotifierConfig returns the notification settings.
func (s *Settings) NotifierConfig() notifier.Config {
	return notifier.Config{
		Enabled:   s.Notifications.Enabled,
		OnSuccess: s.Notifications.OnSuccess,
		Beep:      s.Notifications.Beep,
	}
}
