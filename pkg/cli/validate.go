package cli

import (
	"errors"
	"fmt"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/validation"
	"github.com/spf13/cobra"
)

// ErrInvalidConfig is returned when validation finds errors.
var ErrInvalidConfig = errors.New("build config is invalid")

func (c *CLI) newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a build description without writing scripts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(c.buildFile(args), strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")

	return cmd
}

func (c *CLI) runValidate(path string, strict bool) error {
	cfg, err := buildconfig.Load(path)
	if err != nil {
		c.printError(err.Error())
		return err
	}

	result := validation.NewConfigValidator(c.registry).Validate(cfg)
	for _, e := range result.Errors {
		msg := fmt.Sprintf("job %s, %s: %s", e.Job, e.Field, e.Message)
		switch e.Level {
		case validation.ValidationLevelError:
			c.printError(msg)
		case validation.ValidationLevelWarning:
			c.printWarning(msg)
		default:
			c.printInfo(msg)
		}
	}

	warnings := len(result.Filter(validation.ValidationLevelWarning))
	if !result.Valid || (strict && warnings > 0) {
		return fmt.Errorf("%s: %w", path, ErrInvalidConfig)
	}
	c.printSuccess(fmt.Sprintf("%s is valid", path))
	return nil
}
