// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retryx

import (
	"github.com/gogama/retryx/logger"
	"github.com/gogama/retryx/status"
)

// A Listener handles the occurrence of an event during an execution.
//
// Listeners run synchronously on the goroutine running the execution.
// They receive the live status and should not modify its exported
// fields.
type Listener interface {
	Handle(Event, *status.Status)
}

// The ListenerFunc type is an adapter to allow the use of ordinary
// functions as listeners. If f is a function with appropriate
// signature, then ListenerFunc(f) is a Listener that calls f.
type ListenerFunc func(Event, *status.Status)

// Handle calls f(evt, s).
func (f ListenerFunc) Handle(evt Event, s *status.Status) {
	f(evt, s)
}

// Listeners holds one optional listener per lifecycle event. A nil
// field means no listener is installed for that event. Use Chain to
// install more than one listener for the same event.
type Listeners struct {
	AfterFailedAttempt Listener
	BeforeNextAttempt  Listener
	OnSuccess          Listener
	OnFailure          Listener
	OnCompletion       Listener
}

// Get returns the listener installed for evt, or nil.
func (ls *Listeners) Get(evt Event) Listener {
	if ls == nil {
		return nil
	}

	switch evt {
	case AfterFailedAttempt:
		return ls.AfterFailedAttempt
	case BeforeNextAttempt:
		return ls.BeforeNextAttempt
	case OnSuccess:
		return ls.OnSuccess
	case OnFailure:
		return ls.OnFailure
	case OnCompletion:
		return ls.OnCompletion
	default:
		return nil
	}
}

func (ls *Listeners) run(evt Event, s *status.Status) {
	if l := ls.Get(evt); l != nil {
		l.Handle(evt, s)
	}
}

// Chain returns a listener that runs each of ls in order.
func Chain(ls ...Listener) Listener {
	for _, l := range ls {
		if l == nil {
			panic("retryx: nil listener")
		}
	}

	return chain(append([]Listener(nil), ls...))
}

type chain []Listener

func (c chain) Handle(evt Event, s *status.Status) {
	for _, l := range c {
		l.Handle(evt, s)
	}
}

// LogListener returns a listener that logs every event it handles to
// l. OnFailure is logged at warning level and all other events at info
// level.
func LogListener(l logger.Logger) Listener {
	if l == nil {
		panic("retryx: nil logger")
	}

	return ListenerFunc(func(evt Event, s *status.Status) {
		if evt == OnFailure {
			l.Warnf("retryx: %s: %s (cause: %v)", evt, s, s.Cause)
			return
		}
		l.Infof("retryx: %s: %s", evt, s)
	})
}
