package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/notifier"
	"github.com/poltergeist/buildscript/pkg/watch"
	"github.com/spf13/cobra"
)

type watchFlags struct {
	out      string
	debounce time.Duration
}

func (c *CLI) newWatchCmd() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Recompile a build description whenever it changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runWatch(ctx, c.buildFile(args), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "build", "directory receiving one job-N.sh per job")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", watch.DefaultDebounce, "quiet period before recompiling")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, path string, flags watchFlags) error {
	n := notifier.New(c.settings.NotifierConfig(), c.logger)
	return c.watchAndCompile(ctx, path, flags, n)
}

// watchAndCompile compiles path once, then on every change, until ctx is
// done. Compile failures are reported and do not stop watching.
func (c *CLI) watchAndCompile(ctx context.Context, path string, flags watchFlags, n *notifier.CompileNotifier) error {
	rebuild := func(cfg *buildconfig.Config, err error) {
		start := time.Now()
		if err == nil {
			err = c.compileTo(ctx, cfg, flags.out)
		}
		if err != nil {
			c.printError(fmt.Sprintf("%s: %v", path, err))
			n.NotifyCompileFailure(path, err)
			return
		}
		jobs, _ := cfg.Jobs()
		n.NotifyCompileSuccess(path, len(jobs), time.Since(start))
	}

	w := watch.New(path, c.logger, rebuild)
	w.SetDebounce(flags.debounce)
	if err := w.Start(); err != nil {
		c.printError(err.Error())
		return err
	}
	c.printInfo(fmt.Sprintf("Watching %s (Ctrl+C to stop)", path))
	w.Trigger()

	<-ctx.Done()
	if err := w.Stop(); err != nil {
		return err
	}
	c.printInfo("Stopped watching")
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

func (c *CLI) compileTo(ctx context.Context, cfg *buildconfig.Config, dir string) error {
	outputs, err := c.newCompiler().Compile(ctx, cfg)
	if err != nil {
		return err
	}
	written, err := writeScripts(dir, outputs)
	if err != nil {
		return err
	}
	c.printSuccess(fmt.Sprintf("Compiled %d script(s) into %s", len(written), dir))
	return nil
}
