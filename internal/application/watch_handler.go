package application

import (
	"context"
	"fmt"
)

// Watch evaluates once, then again every time the report or a rules file
// changes, until ctx is cancelled. Input errors are passed to callback and
// do not stop the loop.
func (s *Service) Watch(ctx context.Context, opts WatchOptions, watcher FileWatcher, callback WatchCallback) error {
	p, err := s.plan(opts.Check)
	if err != nil {
		return err
	}
	if err := watcher.WatchFiles(p.watchedPaths()...); err != nil {
		return fmt.Errorf("failed to watch inputs: %w", err)
	}

	runNumber := 1
	s.watchRun(ctx, p, opts, runNumber, callback)

	events := watcher.Events(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				return nil
			}
			runNumber++
			s.watchRun(ctx, p, opts, runNumber, callback)
		}
	}
}

func (s *Service) watchRun(ctx context.Context, p checkPlan, opts WatchOptions, run int, callback WatchCallback) {
	result, err := s.evaluatePlan(ctx, p, opts.Check)
	if err == nil && s.Reporter != nil && s.Out != nil {
		err = s.Reporter.Write(s.Out, result, p.output)
	}
	if callback != nil {
		callback(run, result, err)
	}
}
