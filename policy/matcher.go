// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"reflect"
)

// MaxCauseDepth is the maximum number of links followed when walking
// the cause chain of an error in caused-by mode.
const MaxCauseDepth = 32

// A Matcher tests whether a single error, on its own, belongs to a set
// of errors the policy treats specially. A Matcher should look only at
// the error it is given and not at the errors it wraps; following the
// cause chain is the policy's job, and is only done if CausedBy is set.
//
// Every Matcher must be safe for concurrent use by multiple goroutines.
//
// Use As to match on error type, Is to match a sentinel error value,
// or write a Matcher function directly.
type Matcher func(err error) bool

// As constructs a Matcher that matches errors whose dynamic type is T.
//
// If T is an interface type, every error implementing T matches. Use an
// interface to exclude or include a whole family of error types at
// once, the same way excluding a supertype excludes its subtypes.
func As[T error]() Matcher {
	return func(err error) bool {
		_, ok := err.(T)
		return ok
	}
}

// Is constructs a Matcher that matches the target error value itself,
// or any error with an Is(error) bool method reporting true for target.
func Is(target error) Matcher {
	comparable := target != nil && reflect.TypeOf(target).Comparable()
	return func(err error) bool {
		if comparable && err == target {
			return true
		}
		if x, ok := err.(interface{ Is(error) bool }); ok && x.Is(target) {
			return true
		}
		return false
	}
}

func matchAny(ms []Matcher, err error) bool {
	for _, m := range ms {
		if m(err) {
			return true
		}
	}
	return false
}

// walk calls visit on err and on each error in its cause chain, in
// breadth-first order, until visit returns true. Both Unwrap() error
// and Unwrap() []error are followed. At most MaxCauseDepth levels are
// visited, which also bounds walks over cyclic chains.
func walk(err error, visit func(error) bool) bool {
	level := []error{err}
	for depth := 0; depth < MaxCauseDepth && len(level) > 0; depth++ {
		var next []error
		for _, e := range level {
			if e == nil {
				continue
			}
			if visit(e) {
				return true
			}
			switch x := e.(type) {
			case interface{ Unwrap() error }:
				next = append(next, x.Unwrap())
			case interface{ Unwrap() []error }:
				next = append(next, x.Unwrap()...)
			}
		}
		level = next
	}
	return false
}

// Causes returns err followed by the errors in its cause chain, in the
// order the caused-by matching mode examines them.
func Causes(err error) []error {
	var causes []error
	walk(err, func(e error) bool {
		causes = append(causes, e)
		return false
	})
	return causes
}

// equal compares with == when the dynamic type is comparable, and with
// reflect.DeepEqual otherwise.
func equal(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == b
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) {
		return false
	}
	if t.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
