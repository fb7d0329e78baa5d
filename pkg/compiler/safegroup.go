package compiler

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/poltergeist/buildscript/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// safeGroup is an errgroup that turns a panicking job into an error, so a
// broken plugin fails its job instead of the process.
type safeGroup struct {
	group  *errgroup.Group
	logger logger.Logger
}

func newSafeGroup(ctx context.Context, log logger.Logger) (*safeGroup, context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	return &safeGroup{group: g, logger: log}, ctx
}

func (sg *safeGroup) Go(fn func() error) {
	sg.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				sg.logger.Error("Job panic recovered",
					logger.WithField("panic", r),
					logger.WithField("stack_trace", string(debug.Stack())))
				err = fmt.Errorf("%w: %v", ErrJobPanic, r)
			}
		}()
		return fn()
	})
}

func (sg *safeGroup) SetLimit(n int) {
	if n > 0 {
		sg.group.SetLimit(n)
	}
}

func (sg *safeGroup) Wait() error {
	return sg.group.Wait()
}
