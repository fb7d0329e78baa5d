package shell

import "time"

// RetryPolicy bounds the retry loop emitted for retryable commands.
type RetryPolicy struct {
	Attempts int           // total attempts, including the first
	Sleep    time.Duration // pause between attempts, rounded to seconds
}

// DefaultRetryPolicy returns 3 attempts with no pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3}
}

// Options configures a Script.
type Options struct {
	Retry      RetryPolicy
	FoldPrefix string // marker prefix, e.g. "travis_fold"
	Shebang    string
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Retry:      DefaultRetryPolicy(),
		FoldPrefix: "travis_fold",
		Shebang:    "#!/bin/bash",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Retry.Attempts <= 0 {
		o.Retry.Attempts = d.Retry.Attempts
	}
	if o.Retry.Sleep < 0 {
		o.Retry.Sleep = 0
	}
	if o.FoldPrefix == "" {
		o.FoldPrefix = d.FoldPrefix
	}
	if o.Shebang == "" {
		o.Shebang = d.Shebang
	}
	return o
}

// Option adjusts a single builder call.
type Option func(*stepOptions)

type stepOptions struct {
	echo  bool
	retry bool
	raw   bool
	color Color

	allowFailure bool
}

func applyOptions(opts []Option) stepOptions {
	o := stepOptions{echo: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NoEcho hides the command (or assignment) line from the build log.
func NoEcho() Option {
	return func(o *stepOptions) { o.echo = false }
}

// WithRetry wraps the command in the bounded retry loop.
func WithRetry() Option {
	return func(o *stepOptions) { o.retry = true }
}

// AllowFailure keeps the build going when the command (after any retries)
// still fails.
func AllowFailure() Option {
	return func(o *stepOptions) { o.allowFailure = true }
}

// RawCondition inserts an if/elif predicate verbatim.
func RawCondition() Option {
	return func(o *stepOptions) { o.raw = true }
}

// WithColor highlights an echoed line.
func WithColor(c Color) Option {
	return func(o *stepOptions) { o.color = c }
}
