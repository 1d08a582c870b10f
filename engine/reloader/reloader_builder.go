package reloader

import (
	"time"
)

type reloaderBuilderOptions struct {
	pollInterval time.Duration
	pollWorkers  int
}

// ReloaderBuilderOption mutates the reloader builder options.
type ReloaderBuilderOption func(*reloaderBuilderOptions)

func defaultReloaderBuilderOptions() *reloaderBuilderOptions {
	return &reloaderBuilderOptions{
		pollInterval: 500 * time.Millisecond,
		pollWorkers:  4,
	}
}

// WithPollInterval overrides the mtime polling interval.
//
// Parameters:
//   - interval: time between poll sweeps
//
// Returns:
//   - ReloaderBuilderOption: the option to apply
func WithPollInterval(interval time.Duration) ReloaderBuilderOption {
	return func(o *reloaderBuilderOptions) {
		o.pollInterval = interval
	}
}

// WithPollWorkers overrides the worker count used to stat watched files in
// parallel during a poll sweep.
//
// Parameters:
//   - workers: the worker pool size
//
// Returns:
//   - ReloaderBuilderOption: the option to apply
func WithPollWorkers(workers int) ReloaderBuilderOption {
	return func(o *reloaderBuilderOptions) {
		o.pollWorkers = workers
	}
}
