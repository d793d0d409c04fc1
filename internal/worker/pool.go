// SPDX-License-Identifier: Apache-2.0

// Package worker runs independent jobs on a bounded number of goroutines.
package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Job is one input together with what processing it produced.
type Job[In any, Out any] struct {
	Input  In
	Output Out
	Err    error
}

// Func processes a single input.
type Func[In any, Out any] func(ctx context.Context, in In) (Out, error)

// Pool fans inputs out to a fixed number of workers.
type Pool[In any, Out any] struct {
	size   int
	fn     Func[In, Out]
	logger zerolog.Logger
}

// New creates a pool of size workers. Sizes below one are raised to one.
func New[In any, Out any](size int, fn Func[In, Out], logger zerolog.Logger) *Pool[In, Out] {
	if size < 1 {
		size = 1
	}
	return &Pool[In, Out]{size: size, fn: fn, logger: logger}
}

// Size returns the number of workers.
func (p *Pool[In, Out]) Size() int {
	return p.size
}

// Run processes every input and returns the jobs in input order. Inputs not
// started before ctx is cancelled carry ctx's error.
func (p *Pool[In, Out]) Run(ctx context.Context, inputs []In) []Job[In, Out] {
	jobs := make([]Job[In, Out], len(inputs))
	for i, in := range inputs {
		jobs[i] = Job[In, Out]{Input: in}
	}
	started := make([]bool, len(inputs))

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.size; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for idx := range indexes {
				out, err := p.fn(ctx, inputs[idx])
				jobs[idx].Output = out
				jobs[idx].Err = err
				if err != nil {
					p.logger.Error().Err(err).Int("worker", worker).Int("index", idx).Msg("Job failed")
				}
			}
		}(w)
	}

feed:
	for i := range inputs {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
			started[i] = true
		}
	}
	close(indexes)
	wg.Wait()

	for i := range jobs {
		if !started[i] {
			jobs[i].Err = ctx.Err()
		}
	}
	return jobs
}
