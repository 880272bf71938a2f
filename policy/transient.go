// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"syscall"
)

// Timeout returns a matcher reporting whether an error has a Timeout
// method that returns true, as net.Error and syscall.ETIMEDOUT do.
//
// Like every matcher, Timeout only looks at the error it is given.
// Combine it with CausedBy to look at wrapped causes as well.
func Timeout() Matcher {
	return func(err error) bool {
		t, ok := err.(hasTimeout)
		return ok && t.Timeout()
	}
}

// Errno returns a matcher reporting whether an error is a syscall.Errno
// equal to one of codes.
func Errno(codes ...syscall.Errno) Matcher {
	cs := append([]syscall.Errno(nil), codes...)
	return func(err error) bool {
		errno, ok := err.(syscall.Errno)
		if !ok {
			return false
		}
		for _, c := range cs {
			if errno == c {
				return true
			}
		}
		return false
	}
}

// Transient returns a matcher for errors a repeated attempt has some
// prospect of getting past: timeouts, refused connections
// (syscall.ECONNREFUSED) and reset connections (syscall.ECONNRESET).
//
// Connection refusal may be permanent, but it also happens while a
// remote service is starting or restarting. A connection reset
// frequently comes from a load balancer or a service going down
// mid-response, and tends to succeed on retry.
func Transient() Matcher {
	timeout := Timeout()
	conn := Errno(syscall.ECONNREFUSED, syscall.ECONNRESET)
	return func(err error) bool {
		return timeout(err) || conn(err)
	}
}

// RetryOnTransientErrors is a shorthand for RetryOnErrors(Transient())
// combined with CausedBy, so that transient errors are recognized
// anywhere in the cause chain.
func RetryOnTransientErrors() Option {
	return func(b *builder) {
		RetryOnErrors(Transient())(b)
		CausedBy()(b)
	}
}

type hasTimeout interface {
	Timeout() bool
}
