// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retryx

import (
	"errors"
	"fmt"

	"github.com/gogama/retryx/status"
)

// A Kind classifies the terminal condition reported by an *Error.
type Kind int

const (
	// Unexpected means an attempt failed with an error the retry policy
	// classifies as fatal.
	Unexpected Kind = iota + 1
	// Exhausted means every permitted attempt was made without success.
	Exhausted
	// Interrupted means the context was done while waiting to make the
	// next attempt.
	Interrupted
)

// Sentinel errors for each Kind. Every *Error matches the sentinel for
// its kind under errors.Is.
var (
	ErrUnexpected  = errors.New("retryx: unexpected error")
	ErrExhausted   = errors.New("retryx: retries exhausted")
	ErrInterrupted = errors.New("retryx: interrupted")
)

var kindNames = []string{"", "Unexpected", "Exhausted", "Interrupted"}

// String returns the name of the kind.
func (k Kind) String() string {
	if k < Unexpected || k > Interrupted {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) sentinel() error {
	switch k {
	case Unexpected:
		return ErrUnexpected
	case Exhausted:
		return ErrExhausted
	case Interrupted:
		return ErrInterrupted
	default:
		return nil
	}
}

// An Error is returned by Executor when an execution ends without
// success. It carries a snapshot of the execution status as of the
// moment the execution ended.
type Error struct {
	// Kind is the terminal condition.
	Kind Kind
	// Status is the execution status. Its Attempts field tells how many
	// attempts were made, including the failing one.
	Status *status.Status
	// Err is the underlying error: the fatal error for Unexpected, the
	// last retryable error for Exhausted (nil if the retries were all
	// caused by the call's return value), and the context error for
	// Interrupted.
	Err error
}

func newError(k Kind, s *status.Status, err error) *Error {
	return &Error{
		Kind:   k,
		Status: s.Snapshot(),
		Err:    err,
	}
}

func (err *Error) Error() string {
	var msg string
	switch err.Kind {
	case Unexpected:
		msg = fmt.Sprintf("retryx: %s failed with unexpected error on attempt %d", err.callName(), err.attempts())
	case Exhausted:
		msg = fmt.Sprintf("retryx: %s failed after %d attempt(s)", err.callName(), err.attempts())
	case Interrupted:
		msg = fmt.Sprintf("retryx: %s interrupted after %d attempt(s)", err.callName(), err.attempts())
	default:
		msg = fmt.Sprintf("retryx: %s failed", err.callName())
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (err *Error) Unwrap() error {
	return err.Err
}

// Is reports whether target is the sentinel error for err's kind.
func (err *Error) Is(target error) bool {
	s := err.Kind.sentinel()
	return s != nil && target == s
}

func (err *Error) callName() string {
	if err.Status == nil || err.Status.CallName == "" {
		return "call"
	}
	return fmt.Sprintf("call %q", err.Status.CallName)
}

func (err *Error) attempts() int {
	if err.Status == nil {
		return 0
	}
	return err.Status.Attempts
}
