package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/compiler"
	"github.com/poltergeist/buildscript/pkg/logger"
	"github.com/spf13/cobra"
)

type compileFlags struct {
	out string
	job int
}

func (c *CLI) newCompileCmd() *cobra.Command {
	var flags compileFlags

	cmd := &cobra.Command{
		Use:   "compile [file]",
		Short: "Compile a build description into bash scripts",
		Long: `Compile reads a build description (default .build.yml in the project root)
and assembles one script per job. A single job is written to stdout unless
--out is given; a job matrix needs --out or --job.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompile(cmd, c.buildFile(args), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "directory receiving one job-N.sh per job")
	cmd.Flags().IntVarP(&flags.job, "job", "j", 0, "compile only job N (1-based)")

	return cmd
}

func (c *CLI) runCompile(cmd *cobra.Command, path string, flags compileFlags) error {
	outputs, err := c.compileFile(cmd, path, flags.job)
	if err != nil {
		c.printError(err.Error())
		return err
	}

	if flags.out == "" {
		if len(outputs) != 1 {
			err := fmt.Errorf("%s expands to %d jobs; use --out or --job", path, len(outputs))
			c.printError(err.Error())
			return err
		}
		_, err := fmt.Fprint(c.output, outputs[0].Script)
		return err
	}

	written, err := writeScripts(flags.out, outputs)
	if err != nil {
		c.printError(err.Error())
		return err
	}
	for _, p := range written {
		c.printSuccess(fmt.Sprintf("Wrote %s", p))
	}
	return nil
}

// compileFile loads path and compiles it, or only job number job when job
// is positive.
func (c *CLI) compileFile(cmd *cobra.Command, path string, job int) ([]compiler.Output, error) {
	cfg, err := buildconfig.Load(path)
	if err != nil {
		return nil, err
	}

	comp := c.newCompiler()
	if job > 0 {
		jobs, err := comp.Jobs(cfg)
		if err != nil {
			return nil, err
		}
		if job > len(jobs) {
			return nil, fmt.Errorf("job %d out of range, %s has %d job(s)", job, path, len(jobs))
		}
		cfg = jobs[job-1].Config
	}

	outputs, err := comp.Compile(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	if job > 0 {
		// Keep the user's job number in file names and logs.
		outputs[0].Job.Number = strconv.Itoa(job)
	}
	c.logger.Debug("Compiled build file",
		logger.WithField("path", path),
		logger.WithField("jobs", len(outputs)),
	)
	return outputs, nil
}

// writeScripts writes each output to dir/job-N.sh and returns the paths.
func writeScripts(dir string, outputs []compiler.Output) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		path := filepath.Join(dir, fmt.Sprintf("job-%s.sh", out.Job.Number))
		if err := writeFileAtomic(path, []byte(out.Script), 0755); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeFileAtomic replaces path in one step so a runner never sees a
// partial script.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, perm); err != nil {
		return err
	}
	if err := os.Chmod(tempFile, perm); err != nil {
		os.Remove(tempFile)
		return err
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return err
	}
	return nil
}
