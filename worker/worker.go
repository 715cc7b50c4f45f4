// Package worker runs CPU intensive functions, such as the frames of independent engine contexts, on a
// fixed amount of goroutines.
package worker

import (
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"
)

// Pool is a fixed set of goroutines consuming submitted functions.
type Pool struct {
	queue chan func()
	once  sync.Once
}

// NewPool starts a pool of n workers. If n is not positive, one worker per CPU is started.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &Pool{queue: make(chan func(), n)}
	for range n {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for f := range p.queue {
		run(f)
	}
}

// run calls f, reporting a panic to sentry instead of taking the worker down with it.
func run(f func()) {
	defer sentry.Recover()
	f()
}

// Submit queues f, blocking while all workers are busy and the queue is full. Submit must not be called
// after Close.
func (p *Pool) Submit(f func()) {
	p.queue <- f
}

// Run submits every function in fns and waits for all of them to return.
func (p *Pool) Run(fns ...func()) {
	var wg sync.WaitGroup
	wg.Add(len(fns))
	for _, f := range fns {
		p.Submit(func() {
			defer wg.Done()
			f()
		})
	}
	wg.Wait()
}

// Close stops the workers once the queued functions have been consumed.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.queue) })
}
