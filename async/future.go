// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"context"
	"fmt"

	"github.com/gogama/retryx"
	"github.com/gogama/retryx/status"
)

// A Future is the pending result of an execution started by Submit.
type Future struct {
	done chan struct{}
	s    *status.Status
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(s *status.Status, err error) {
	f.s = s
	f.err = err
	close(f.done)
}

// Done returns a channel that is closed when the execution has ended.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the execution ends or ctx is done, whichever comes
// first. Once the execution has ended, Wait returns its final status and
// error, exactly as retryx.Doer.Do would have.
//
// A nil ctx is treated as context.Background. If ctx is done first,
// Wait returns a nil status and the context error.
// The execution itself is not affected.
//
// If the execution could not be submitted to its runner, the status is
// nil and the error wraps the runner's error.
func (f *Future) Wait(ctx context.Context) (*status.Status, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-f.done:
		return f.s, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Submit starts an execution of call using d on runner r and returns a
// Future for its outcome. ctx is passed through to d.Do.
func Submit(ctx context.Context, r Runner, d retryx.Doer, name string, call retryx.Call) *Future {
	f := newFuture()
	err := r.Go(func() {
		s, err := d.Do(ctx, name, call)
		f.resolve(s, err)
	})
	if err != nil {
		f.resolve(nil, fmt.Errorf("retryx/async: submit %q: %w", name, err))
	}
	return f
}
