package main

import (
	"context"
	"log/slog"
)

// job is a unit of work for the worker pool.
type job func(context.Context)

// enqueue runs a job on an idle worker, or on a new one when every worker is
// busy. Extra workers exit once the pool has no room to take them back.
// A job that can't be handed off before ctx ends is dropped.
func (robo *Robot) enqueue(ctx context.Context, j job) {
	var w chan job
	select {
	case w = <-robo.works:
	default:
		w = make(chan job, 1)
		go robo.worker(ctx, w)
	}
	select {
	case w <- j:
	case <-ctx.Done():
		robo.metrics.Dropped.Observe(1, "shutdown")
	}
}

// worker runs jobs sent on its inbox until ctx ends or the pool is full.
func (robo *Robot) worker(ctx context.Context, inbox chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-inbox:
			robo.run(ctx, j)
			select {
			case robo.works <- inbox:
			default:
				return
			}
		}
	}
}

// run runs one job, keeping a panic in it from taking down the process.
// Relays already report handler panics unless debugging, so a panic here is
// a bug outside any handler.
func (robo *Robot) run(ctx context.Context, j job) {
	defer func() {
		if x := recover(); x != nil {
			if robo.debug {
				panic(x)
			}
			slog.ErrorContext(ctx, "worker job panicked", slog.Any("panic", x))
		}
	}()
	j(ctx)
}
