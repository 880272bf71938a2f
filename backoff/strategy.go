// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backoff

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// A Strategy specifies how long to wait before retrying a failed
// attempt.
//
// Parameter n is the one-based count of failed attempts so far, so the
// wait preceding the first retry is computed with n equal to 1.
// Parameter base is the base delay configured on the retry policy.
//
// Implementations of Strategy must be safe for concurrent use by
// multiple goroutines, because a single policy may be shared by many
// concurrent executions.
type Strategy interface {
	Delay(n int, base time.Duration) time.Duration
}

// A DelayRequirer is a Strategy that can only be used if the retry
// policy specifies a base delay. Policy construction fails when a
// strategy whose RequiresDelay method returns true is combined with a
// policy that has no delay.
type DelayRequirer interface {
	RequiresDelay() bool
}

// The StrategyFunc type is an adapter to allow the use of ordinary
// functions as backoff strategies.
type StrategyFunc func(n int, base time.Duration) time.Duration

// Delay returns f(n, base).
func (f StrategyFunc) Delay(n int, base time.Duration) time.Duration {
	return f(n, base)
}

// Max is the largest wait any built-in strategy returns.
const Max = time.Duration(math.MaxInt64)

// DefaultMaxMultiplier is the multiplier bound used by the built-in
// Random and RandomExponential strategies when none is given.
const DefaultMaxMultiplier = 10

// FibonacciTerms is the length of the precomputed Fibonacci table. For
// n beyond the table, Fibonacci uses the last term.
const FibonacciTerms = 25

// Fixed is a strategy whose wait is always the base delay.
var Fixed Strategy = fixed{}

// NoWait is a strategy whose wait is always zero. It is the only
// built-in strategy that does not require a base delay.
var NoWait Strategy = noWait{}

// Exponential is a binary exponential strategy. The wait after n
// failed attempts is base * 2^(n-1).
var Exponential Strategy = exponential{}

// Fibonacci is a strategy whose wait after n failed attempts is
// base * fib(n), where fib(1) = fib(2) = 1. The sequence is capped at
// FibonacciTerms terms.
var Fibonacci Strategy = fibonacci{}

type fixed struct{}

func (_ fixed) Delay(_ int, base time.Duration) time.Duration {
	return base
}

func (_ fixed) RequiresDelay() bool {
	return true
}

type noWait struct{}

func (_ noWait) Delay(_ int, _ time.Duration) time.Duration {
	return 0
}

type exponential struct{}

func (_ exponential) Delay(n int, base time.Duration) time.Duration {
	if n < 1 {
		n = 1
	}
	if n-1 >= 63 {
		if base > 0 {
			return Max
		}
		return 0
	}
	return multiply(base, int64(1)<<uint(n-1))
}

func (_ exponential) RequiresDelay() bool {
	return true
}

var fibTable = func() [FibonacciTerms]int64 {
	var t [FibonacciTerms]int64
	t[0], t[1] = 1, 1
	for i := 2; i < FibonacciTerms; i++ {
		t[i] = t[i-1] + t[i-2]
	}
	return t
}()

type fibonacci struct{}

func (_ fibonacci) Delay(n int, base time.Duration) time.Duration {
	return multiply(base, fib(n))
}

func (_ fibonacci) RequiresDelay() bool {
	return true
}

func fib(n int) int64 {
	if n < 1 {
		n = 1
	} else if n > FibonacciTerms {
		n = FibonacciTerms
	}
	return fibTable[n-1]
}

// Random constructs a strategy whose wait is base multiplied by an
// integer drawn uniformly at random from the closed interval
// [0, maxMultiplier]. Both bounds are inclusive, so a zero wait is
// possible and so is a wait of exactly maxMultiplier * base.
//
// Parameter maxMultiplier must not be negative.
func Random(maxMultiplier int) Strategy {
	return RandomSource(maxMultiplier, nil)
}

// RandomSource is like Random but draws multipliers from src. If src
// is nil, the shared generator from math/rand/v2 is used. Access to a
// non-nil src is serialized, so it need not be safe for concurrent
// use.
//
// Use RandomSource with a seeded source to get a repeatable sequence
// of waits, for example in tests.
func RandomSource(maxMultiplier int, src rand.Source) Strategy {
	if maxMultiplier < 0 {
		panic("retryx/backoff: maxMultiplier must not be negative")
	}
	r := &random{max: maxMultiplier}
	if src != nil {
		r.rand = rand.New(src)
	}
	return r
}

type random struct {
	max  int
	rand *rand.Rand
	lock sync.Mutex
}

func (r *random) Delay(_ int, base time.Duration) time.Duration {
	return multiply(base, r.multiplier())
}

func (r *random) RequiresDelay() bool {
	return true
}

func (r *random) multiplier() int64 {
	if r.rand == nil {
		return rand.Int64N(int64(r.max) + 1)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.rand.Int64N(int64(r.max) + 1)
}

// RandomExponential constructs a strategy that first computes the
// Exponential wait and then uses it as the base of a Random strategy
// with the given maxMultiplier.
func RandomExponential(maxMultiplier int) Strategy {
	return RandomExponentialSource(maxMultiplier, nil)
}

// RandomExponentialSource is like RandomExponential but draws
// multipliers from src, following the same rules as RandomSource.
func RandomExponentialSource(maxMultiplier int, src rand.Source) Strategy {
	return randomExponential{RandomSource(maxMultiplier, src)}
}

type randomExponential struct {
	random Strategy
}

func (s randomExponential) Delay(n int, base time.Duration) time.Duration {
	return s.random.Delay(n, Exponential.Delay(n, base))
}

func (_ randomExponential) RequiresDelay() bool {
	return true
}

// RequiresDelay reports whether s declares that it needs a base delay.
func RequiresDelay(s Strategy) bool {
	r, ok := s.(DelayRequirer)
	return ok && r.RequiresDelay()
}

// multiply returns d*k, saturating at Max. Negative inputs produce 0.
func multiply(d time.Duration, k int64) time.Duration {
	if d <= 0 || k <= 0 {
		return 0
	}
	if int64(d) > math.MaxInt64/k {
		return Max
	}
	return d * time.Duration(k)
}
