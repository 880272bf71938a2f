// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Pool.Go after the pool has been closed.
var ErrPoolClosed = errors.New("retryx/async: pool closed")

// A Runner runs functions asynchronously.
//
// Go schedules f to run on some other goroutine. If Go returns a
// non-nil error, f will never run.
type Runner interface {
	Go(f func()) error
}

// The RunnerFunc type is an adapter to allow the use of ordinary
// functions as Runners.
type RunnerFunc func(f func()) error

// Go calls r(f).
func (r RunnerFunc) Go(f func()) error {
	return r(f)
}

// Goroutine is a Runner which runs each function on its own new
// goroutine. It never returns an error.
var Goroutine Runner = RunnerFunc(func(f func()) error {
	go f()
	return nil
})

// A Pool is a Runner with a fixed number of worker goroutines. Functions
// passed to Go are queued until a worker is free.
//
// A Pool must be closed when no longer needed to release its workers.
type Pool struct {
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	jobs    chan func()
	quit    chan struct{}
	once    sync.Once
	workers int
}

// NewPool starts a pool with n workers. It panics if n is less than 1.
func NewPool(n int) *Pool {
	if n < 1 {
		panic("retryx/async: pool needs at least one worker")
	}

	p := &Pool{
		jobs:    make(chan func(), n*2),
		quit:    make(chan struct{}),
		workers: n,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Go queues f to run on one of the pool's workers. It blocks while the
// queue is full, and returns ErrPoolClosed if the pool is closed.
func (p *Pool) Go(f func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.jobs <- f
	return nil
}

// Close stops accepting new functions, waits for all queued functions
// to finish, and stops the workers. Calling Close more than once has no
// further effect.
func (p *Pool) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.quit)
	})
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// Queued returns the number of functions waiting for a worker.
func (p *Pool) Queued() int {
	return len(p.jobs)
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case f := <-p.jobs:
			f()
		case <-p.quit:
			for {
				select {
				case f := <-p.jobs:
					f()
				default:
					return
				}
			}
		}
	}
}
