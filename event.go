// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retryx

// An Event identifies a lifecycle notification point of an execution.
// Install a Listener for an event in Listeners to be notified when it
// occurs.
type Event int

const (
	// AfterFailedAttempt identifies the event that occurs immediately
	// after every attempt that failed in a retryable way, including the
	// final attempt when no attempts remain.
	//
	// When Executor fires AfterFailedAttempt, the status's attempt
	// count includes the failed attempt, its elapsed time is current,
	// and, if the attempt returned an error, its cause is that error.
	AfterFailedAttempt Event = iota
	// BeforeNextAttempt identifies the event that occurs after the
	// backoff wait has finished and immediately before the next
	// attempt starts.
	//
	// BeforeNextAttempt never fires if no attempts remain, or if the
	// wait was interrupted.
	BeforeNextAttempt
	// OnSuccess identifies the event that occurs when an attempt
	// succeeds. When Executor fires OnSuccess, the status has ended and
	// its result is set.
	OnSuccess
	// OnFailure identifies the event that occurs when all attempts have
	// been made without success.
	//
	// If a listener is installed for OnFailure, the executor reports
	// retry exhaustion to it INSTEAD of returning an error. OnFailure
	// does not fire for fatal errors or interrupted waits, which are
	// always returned as errors.
	OnFailure
	// OnCompletion identifies the event that occurs exactly once at the
	// very end of every execution, regardless of its outcome, even if
	// the call or another listener panics.
	OnCompletion
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"AfterFailedAttempt",
	"BeforeNextAttempt",
	"OnSuccess",
	"OnFailure",
	"OnCompletion",
}

// Events returns a slice containing all events which can occur in an
// execution, in the order in which they would occur.
func Events() []Event {
	return []Event{
		AfterFailedAttempt,
		BeforeNextAttempt,
		OnSuccess,
		OnFailure,
		OnCompletion,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
