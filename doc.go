// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package retryx provides an executor that re-invokes a fallible call until
it succeeds, a retry budget is exhausted, or a non-retryable error
occurs, waiting between attempts according to a pluggable backoff
strategy.

Create an Executor to begin running calls. Its zero value uses
policy.DefaultPolicy.

	x := &retryx.Executor{}
	s, err := x.Do(ctx, "fetch", func(ctx context.Context) (interface{}, error) {
		return fetch(ctx)
	})

For typed results, use the generic Do function:

	body, s, err := retryx.Do(ctx, x, "fetch", fetch)

For control over which outcomes are retried, how many attempts are made
and how long to wait between them, build a policy using package policy:

	p, err := policy.New(
		policy.MaxAttempts(5),
		policy.Delay(200*time.Millisecond),
		policy.ExponentialBackoff(),
		policy.RetryOnErrors(policy.As[net.Error]()),
	)
	x := &retryx.Executor{
		Policy: p,
	}

To hook into the execution at its lifecycle notification points,
install listeners:

	x := &retryx.Executor{
		Policy: p,
		Listeners: &retryx.Listeners{
			AfterFailedAttempt: retryx.ListenerFunc(
				func(_ retryx.Event, s *status.Status) {
					log.Printf("Attempt %d of %s failed: %v", s.Attempts, s.CallName, s.Cause)
				}),
		},
	}

When an execution ends without success, Do returns an *Error carrying a
snapshot of the execution status. Use errors.Is with ErrUnexpected,
ErrExhausted and ErrInterrupted to tell the terminal conditions apart.

To run executions in the background, see package async.
*/
package retryx
