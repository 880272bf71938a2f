// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package status

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// An Outcome is the tri-state result of an execution.
type Outcome int

const (
	// Pending indicates the execution has not finished yet.
	Pending Outcome = iota
	// Succeeded indicates the call eventually returned a value that the
	// retry policy accepted.
	Succeeded
	// Failed indicates the execution ended without success, because
	// retries were exhausted, a fatal error occurred, or the wait
	// between attempts was interrupted.
	Failed
)

var outcomeNames = []string{"Pending", "Succeeded", "Failed"}

// String returns the name of the outcome.
func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// A Status represents the state of a single retried call execution.
//
// A new Status is created for every execution. The Status is updated as
// the execution progresses (after each attempt and when the execution
// ends) and is ultimately returned to the caller, either directly or
// attached to the terminal error.
//
// Event listeners receive the live Status. They may store data on it
// using SetValue and read it back using Value, but should treat the
// exported fields as read-only, since the execution logic relies on
// them.
type Status struct {
	// ID uniquely identifies the execution, so that notifications
	// received by listeners can be correlated with a single run. It is
	// assigned when the execution starts.
	ID uuid.UUID

	// CallName is the optional caller-supplied label of the call.
	CallName string

	// Start is the start time of the execution. It is assigned a
	// non-zero value when the execution starts, and this value remains
	// constant thereafter.
	Start time.Time

	// End is the end time of the execution. It contains the zero value
	// until the execution ends, when it is set to the current time.
	End time.Time

	// Attempts is the number of times the call has been invoked so far.
	// It counts every attempt, whether it succeeded, failed fatally, or
	// failed and was retried.
	Attempts int

	// Elapsed is the time between Start and the most recent update of
	// the status. It is refreshed after each failed attempt and when the
	// execution ends.
	Elapsed time.Duration

	// Outcome starts as Pending and is set exactly once, when the
	// execution ends.
	Outcome Outcome

	// Cause is the most recent error that caused a retry. It is nil if
	// no attempt has failed with a retryable error. A retry triggered
	// by the call's return value, rather than by an error, does not
	// change Cause.
	Cause error

	// Result is the value returned by the successful attempt. It is set
	// only when Outcome is Succeeded.
	Result interface{}

	data context.Context
}

// New returns a Status for a new execution of the named call, with a
// fresh ID and the start time set to now.
func New(callName string) *Status {
	return &Status{
		ID:       uuid.New(),
		CallName: callName,
		Start:    time.Now(),
	}
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start.
func (s *Status) Duration() time.Duration {
	if !s.Started() {
		return time.Duration(0)
	} else if !s.Ended() {
		return time.Since(s.Start)
	}

	return s.End.Sub(s.Start)
}

// Started indicates whether the execution has started.
func (s *Status) Started() bool {
	return !s.Start.IsZero()
}

// Ended indicates whether the execution has ended. Once it has, there
// will be no further changes to the exported fields.
func (s *Status) Ended() bool {
	return !s.End.IsZero()
}

// Succeeded reports whether the outcome is Succeeded.
func (s *Status) Succeeded() bool {
	return s.Outcome == Succeeded
}

// Touch refreshes Elapsed from Start and the current time.
func (s *Status) Touch() {
	s.Elapsed = s.Duration()
}

// Finish ends the execution with outcome o. Finish has no effect if the
// execution has already ended.
func (s *Status) Finish(o Outcome) {
	if s.Ended() {
		return
	}
	s.End = time.Now()
	s.Elapsed = s.End.Sub(s.Start)
	s.Outcome = o
}

// Snapshot returns a shallow copy of the status. Values stored with
// SetValue are shared with the copy.
func (s *Status) Snapshot() *Status {
	c := *s
	return &c
}

// SetValue allows event listeners to store arbitrary data in the
// execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of type string or any other built-in type.
func (s *Status) SetValue(key, value interface{}) {
	ctx := s.data
	if ctx == nil {
		ctx = context.Background()
	}

	s.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (s *Status) Value(key interface{}) interface{} {
	ctx := s.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}

// String returns a short human-readable description of the status.
func (s *Status) String() string {
	name := s.CallName
	if name == "" {
		name = "call"
	}
	return fmt.Sprintf("%s[%s] %s after %d attempt(s) in %s", name, s.ID, s.Outcome, s.Attempts, s.Elapsed)
}
