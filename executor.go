// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retryx

import (
	"context"
	"strconv"
	"time"

	"github.com/gogama/retryx/logger"
	"github.com/gogama/retryx/policy"
	"github.com/gogama/retryx/status"
)

// A Call is a unit of work that may fail and is safe to repeat. The
// context passed to the call is the one passed to Executor.Do.
type Call func(ctx context.Context) (interface{}, error)

// An Executor re-invokes a call until it succeeds, the retry policy's
// attempts are exhausted, or the call fails with a fatal error. Its
// zero value is a valid configuration.
//
// The zero value executor uses policy.DefaultPolicy as the retry
// policy, no listeners, and a no-op logger.
//
// An Executor is safe for concurrent use by multiple goroutines, as
// long as its fields are not changed while executions are in flight.
// Each call to Do creates its own status, which is never shared with
// other executions.
type Executor struct {
	// Policy decides which outcomes are retried, how many attempts are
	// allowed, and how long to wait between attempts.
	//
	// If Policy is nil, policy.DefaultPolicy is used.
	Policy *policy.Policy
	// Listeners receive lifecycle notifications during execution.
	//
	// If Listeners is nil, no listeners are run.
	Listeners *Listeners
	// Logger receives diagnostic messages about the execution.
	//
	// If Logger is nil, nothing is logged.
	Logger logger.Logger
}

// Do executes call, retrying according to the executor's policy, and
// returns the final status of the execution.
//
// The execution runs entirely on the calling goroutine, including the
// waits between attempts. A wait ends early if ctx is done, in which
// case the execution stops with an Interrupted error. There is no
// overall timeout other than the one ctx may carry.
//
// The returned status is never nil. The returned error is nil if an
// attempt succeeded, and also if attempts were exhausted while an
// OnFailure listener is installed. Otherwise it is an *Error, whose
// Kind is Unexpected if the call failed with a fatal error, Exhausted
// if the call never succeeded, or Interrupted if ctx was done while
// waiting.
//
// Panics raised by the call or by listeners are not recovered by Do,
// but the OnCompletion listener still runs before the panic unwinds
// past Do.
func (x *Executor) Do(ctx context.Context, name string, call Call) (s *status.Status, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	p := x.policy()
	ls := x.Listeners
	log := x.logger()

	s = status.New(name)
	log.Debugf("retryx: starting %s (max attempts: %s)", s, maxAttempts(p))
	defer func() {
		log.Debugf("retryx: finished %s", s)
		ls.run(OnCompletion, s)
	}()

	for {
		s.Attempts++
		value, callErr := call(ctx)
		verdict := p.Classify(value, callErr)
		log.Debugf("retryx: attempt %d of %s: %s", s.Attempts, s, verdict)

		switch verdict {
		case policy.Success:
			s.Result = value
			s.Finish(status.Succeeded)
			ls.run(OnSuccess, s)
			return s, nil
		case policy.Fatal:
			s.Finish(status.Failed)
			log.Errorf("retryx: attempt %d of %s failed with unexpected error: %v", s.Attempts, s, callErr)
			return s, newError(Unexpected, s, callErr)
		}

		if callErr != nil {
			s.Cause = callErr
		}
		s.Touch()
		ls.run(AfterFailedAttempt, s)

		if p.Exhausted(s.Attempts) {
			break
		}

		wait := p.Wait(s.Attempts)
		log.Warnf("retryx: attempt %d of %s failed, retrying in %s: %v", s.Attempts, s, wait, callErr)
		if waitErr := sleep(ctx, wait); waitErr != nil {
			s.Finish(status.Failed)
			log.Warnf("retryx: %s interrupted while waiting: %v", s, waitErr)
			return s, newError(Interrupted, s, waitErr)
		}
		ls.run(BeforeNextAttempt, s)
	}

	s.Finish(status.Failed)
	log.Warnf("retryx: exhausted all attempts for %s; giving up: %v", s, s.Cause)
	if ls.Get(OnFailure) != nil {
		ls.run(OnFailure, s)
		return s, nil
	}
	return s, newError(Exhausted, s, s.Cause)
}

// Do executes a typed call using d, returning the typed result of the
// successful attempt along with the final status. On failure, the
// returned value is the zero value of T.
func Do[T any](ctx context.Context, d Doer, name string, call func(ctx context.Context) (T, error)) (T, *status.Status, error) {
	s, err := d.Do(ctx, name, func(ctx context.Context) (interface{}, error) {
		return call(ctx)
	})
	var v T
	if s != nil && s.Succeeded() {
		v, _ = s.Result.(T)
	}
	return v, s, err
}

func (x *Executor) policy() *policy.Policy {
	if x.Policy == nil {
		return policy.DefaultPolicy
	}

	return x.Policy
}

func (x *Executor) logger() logger.Logger {
	if x.Logger == nil {
		return logger.Noop{}
	}

	return x.Logger
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func maxAttempts(p *policy.Policy) string {
	if p.Indefinite() {
		return "unlimited"
	}
	return strconv.Itoa(p.MaxAttempts())
}
