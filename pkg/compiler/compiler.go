// Package compiler expands a build config's job matrix and assembles one
// script per job in parallel.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/cache"
	"github.com/poltergeist/buildscript/pkg/languages"
	"github.com/poltergeist/buildscript/pkg/lifecycle"
	"github.com/poltergeist/buildscript/pkg/logger"
	"github.com/poltergeist/buildscript/pkg/shell"
)

// ErrJobPanic wraps a panic raised while a job was assembled.
var ErrJobPanic = errors.New("job panicked")

// Options configures a Compiler.
type Options struct {
	Script shell.Options
	// CacheTool is the cache client used when a job enables caching.
	CacheTool string
	// Concurrency bounds the number of jobs assembled at once; zero means
	// unbounded.
	Concurrency int
	// Logger overrides the logger carried by the context passed to Compile.
	Logger logger.Logger
}

// Job is one entry of the expanded matrix.
type Job struct {
	ID       string
	Number   string
	Language string
	Config   *buildconfig.Config
}

// Output is the assembled script of one job.
type Output struct {
	Job      Job
	Script   string
	Cache    []string
	Duration time.Duration
}

// Compiler turns build configs into scripts.
type Compiler struct {
	registry *languages.Registry
	opts     Options
}

// New creates a compiler resolving languages through registry.
func New(registry *languages.Registry, opts Options) *Compiler {
	if registry == nil {
		registry = languages.Default()
	}
	return &Compiler{registry: registry, opts: opts}
}

func (c *Compiler) logger(ctx context.Context) logger.Logger {
	if c.opts.Logger != nil {
		return c.opts.Logger
	}
	return logger.FromContext(ctx)
}

// Jobs expands cfg into its jobs without assembling them.
func (c *Compiler) Jobs(cfg *buildconfig.Config) ([]Job, error) {
	configs, err := cfg.Jobs()
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, len(configs))
	for i, jc := range configs {
		jobs[i] = Job{
			ID:       uuid.New().String(),
			Number:   strconv.Itoa(i + 1),
			Language: jc.Language(),
			Config:   jc,
		}
	}
	return jobs, nil
}

// Compile assembles every job of cfg. Outputs are in job order. The first
// failing job cancels the rest and its error is returned.
func (c *Compiler) Compile(ctx context.Context, cfg *buildconfig.Config) ([]Output, error) {
	jobs, err := c.Jobs(cfg)
	if err != nil {
		return nil, err
	}

	log := c.logger(ctx)
	outputs := make([]Output, len(jobs))
	g, ctx := newSafeGroup(ctx, log)
	g.SetLimit(c.opts.Concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := c.compileJob(job, log)
			if err != nil {
				return fmt.Errorf("job %s (%s): %w", job.Number, job.Language, err)
			}
			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Success(fmt.Sprintf("Compiled %d job(s)", len(outputs)))
	return outputs, nil
}

// CompileOne assembles a config that has no matrix, or fails if it has one.
func (c *Compiler) CompileOne(ctx context.Context, cfg *buildconfig.Config) (Output, error) {
	outputs, err := c.Compile(ctx, cfg)
	if err != nil {
		return Output{}, err
	}
	if len(outputs) != 1 {
		return Output{}, fmt.Errorf("expected a single job, config expands to %d", len(outputs))
	}
	return outputs[0], nil
}

func (c *Compiler) compileJob(job Job, log logger.Logger) (Output, error) {
	start := time.Now()
	log = log.WithJob(job.Number)

	plugin, err := c.registry.Lookup(job.Language)
	if err != nil {
		return Output{}, err
	}

	res, err := lifecycle.Run(plugin, job.Config, lifecycle.Settings{
		Script: c.opts.Script,
		Cache:  cache.NewCasher(c.opts.CacheTool, cacheKey(job)),
		Logger: log,
	})
	if err != nil {
		return Output{}, err
	}

	out := Output{
		Job:      job,
		Script:   res.Script,
		Cache:    res.CacheTargets,
		Duration: time.Since(start),
	}
	log.Info("Assembled script",
		logger.WithField("language", plugin.Name),
		logger.WithField("id", job.ID),
		logger.WithField("cache_targets", len(out.Cache)),
	)
	return out, nil
}

func cacheKey(job Job) string {
	return job.Language + "-" + job.Number
}
