// Package cli provides the buildscript command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/poltergeist/buildscript/pkg/compiler"
	"github.com/poltergeist/buildscript/pkg/languages"
	"github.com/poltergeist/buildscript/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLI holds one command tree and everything its commands share.
type CLI struct {
	config   *Config
	settings *Settings
	viper    *viper.Viper
	registry *languages.Registry
	rootCmd  *cobra.Command
	logger   logger.Logger
	output   io.Writer
	errorOut io.Writer
}

// NewCLI creates a new CLI instance with the given configuration
func NewCLI(config *Config) *CLI {
	if config == nil {
		config = NewConfig()
	}

	cli := &CLI{
		config:   config,
		viper:    viper.New(),
		registry: languages.Default(),
		output:   os.Stdout,
		errorOut: os.Stderr,
	}

	cli.setupCommands()
	return cli
}

// NewCLIWithOutput creates a CLI with custom output writers (for testing)
func NewCLIWithOutput(config *Config, output, errorOut io.Writer) *CLI {
	cli := NewCLI(config)
	cli.output = output
	cli.errorOut = errorOut
	cli.rootCmd.SetOut(output)
	cli.rootCmd.SetErr(errorOut)
	return cli
}

// Execute runs the CLI with the given arguments
func (c *CLI) Execute(args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.Execute()
}

// ExecuteContext runs the CLI with context support
func (c *CLI) ExecuteContext(ctx context.Context, args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.ExecuteContext(ctx)
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:   "buildscript",
		Short: "Compile build descriptions into CI shell scripts",
		Long: `buildscript turns a declarative build description (language, versions,
dependency manager, test command, caching) into a single bash script that a
CI worker can run.`,

		SilenceUsage:      true,
		PersistentPreRunE: c.initializeConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	c.setupFlags()

	c.rootCmd.Version = c.config.Version
	c.rootCmd.SetVersionTemplate("buildscript v{{.Version}}\n")

	c.rootCmd.AddCommand(c.newCompileCmd())
	c.rootCmd.AddCommand(c.newValidateCmd())
	c.rootCmd.AddCommand(c.newPluginsCmd())
	c.rootCmd.AddCommand(c.newWatchCmd())
	c.rootCmd.AddCommand(c.newVersionCmd())
}

func (c *CLI) setupFlags() {
	flags := c.rootCmd.PersistentFlags()

	flags.StringVar(&c.config.ConfigFile, "config", "", "settings file (default: buildscript.yaml in the project root)")
	flags.StringVar(&c.config.ProjectRoot, "root", c.config.ProjectRoot, "project root directory")
	flags.StringVarP(&c.config.Verbosity, "verbosity", "v", c.config.Verbosity, "log level (debug, info, warn, error)")

	_ = c.viper.BindPFlag("log.level", flags.Lookup("verbosity"))
}

func (c *CLI) initializeConfig(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(c.viper, c.config)
	if err != nil {
		return err
	}
	c.settings = settings

	if c.errorOut == os.Stderr {
		c.logger = logger.CreateLogger(settings.Log.File, settings.Log.Level)
	} else {
		c.logger = logger.CreateLoggerWithOutput(settings.Log.Level, c.errorOut)
	}
	if used := c.viper.ConfigFileUsed(); used != "" {
		c.logger.Debug("Using settings file", logger.WithField("path", used))
	}
	cmd.SetContext(logger.NewContext(cmd.Context(), c.logger))
	return nil
}

// newCompiler creates a compiler that logs through the command context.
func (c *CLI) newCompiler() *compiler.Compiler {
	return compiler.New(c.registry, c.settings.CompilerOptions())
}

// buildFile resolves the build description path from the arguments.
func (c *CLI) buildFile(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return filepath.Join(c.config.ProjectRoot, DefaultBuildFile)
}

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.output, "buildscript v%s\n", c.config.Version)
		},
	}
}

// Helper functions

func (c *CLI) printSuccess(message string) {
	fmt.Fprintf(c.errorOut, "%s %s\n", color.GreenString("[buildscript]"), message)
}

func (c *CLI) printError(message string) {
	fmt.Fprintf(c.errorOut, "%s %s\n", color.RedString("[buildscript]"), message)
}

func (c *CLI) printInfo(message string) {
	fmt.Fprintf(c.errorOut, "%s %s\n", color.CyanString("[buildscript]"), message)
}

func (c *CLI) printWarning(message string) {
	fmt.Fprintf(c.errorOut, "%s %s\n", color.YellowString("[buildscript]"), message)
}
