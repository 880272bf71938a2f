// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"errors"
	"time"

	"github.com/gogama/retryx/backoff"
)

// Configuration rules. A *ConfigError returned by New wraps exactly one
// of these values, which can be tested with errors.Is.
var (
	ErrNoBackoff          = errors.New("must specify a backoff strategy")
	ErrMultipleBackoffs   = errors.New("cannot specify more than one backoff strategy")
	ErrNoMaxAttempts      = errors.New("must specify a maximum number of attempts")
	ErrMaxAttemptsTwice   = errors.New("number of attempts can only be specified once")
	ErrBadMaxAttempts     = errors.New("maximum number of attempts must be at least 1")
	ErrNoDelay            = errors.New("backoff strategy requires a delay between attempts")
	ErrNegativeDelay      = errors.New("delay between attempts must not be negative")
	ErrMultipleErrorModes = errors.New("cannot specify more than one error matching mode")
	ErrPredicateCombined  = errors.New("custom retry predicate cannot be combined with other error matching options")
	ErrNilPredicate       = errors.New("retry predicate or error matcher must not be nil")
	ErrMultipleValueModes = errors.New("cannot specify more than one return value mode")
	ErrBadMultiplier      = errors.New("random backoff multiplier must not be negative")
	ErrUnknownBackoff     = errors.New("unknown backoff strategy name")
	ErrUnknownErrorMode   = errors.New("unknown error matching mode name")
)

// A ConfigError reports an invalid retry policy configuration.
type ConfigError struct {
	// Rule is the configuration rule that was violated.
	Rule error
}

func (err *ConfigError) Error() string {
	return "retryx/policy: invalid configuration: " + err.Rule.Error()
}

// Unwrap returns the violated rule.
func (err *ConfigError) Unwrap() error {
	return err.Rule
}

type errorMode int

const (
	unset errorMode = iota
	anyError
	noError
	onlyErrors
	excludingErrors
	predicate
)

type valueMode int

const (
	noValues valueMode = iota
	retryValues
	expectValues
)

// A Policy decides whether the outcome of an attempt is a success, a
// retryable failure, or a fatal failure, how many attempts are allowed,
// and how long to wait between attempts.
//
// A Policy is immutable and safe for concurrent use by multiple
// goroutines. Construct one with New or MustNew. The zero value makes a
// single attempt, retries on any error, and never waits.
type Policy struct {
	maxAttempts  int
	indefinitely bool
	delay        time.Duration
	strategy     backoff.Strategy
	errorMode    errorMode
	matchers     []Matcher
	retryIf      func(error) bool
	causedBy     bool
	valueMode    valueMode
	valueFunc    func(interface{}) bool
}

// An Option configures a Policy under construction.
type Option func(b *builder)

type builder struct {
	p            Policy
	err          error
	attemptsSet  bool
	delaySet     bool
	backoffCount int
}

func (b *builder) fail(rule error) {
	if b.err == nil {
		b.err = &ConfigError{Rule: rule}
	}
}

func (b *builder) setErrorMode(m errorMode) {
	if b.p.errorMode != unset {
		if b.p.errorMode == predicate || m == predicate {
			b.fail(ErrPredicateCombined)
		} else {
			b.fail(ErrMultipleErrorModes)
		}
		return
	}
	b.p.errorMode = m
}

func (b *builder) setValueMode(m valueMode, f func(interface{}) bool) {
	if b.p.valueMode != noValues {
		b.fail(ErrMultipleValueModes)
		return
	}
	b.p.valueMode = m
	b.p.valueFunc = f
}

func (b *builder) setAttempts(n int, indefinitely bool) {
	if b.attemptsSet {
		b.fail(ErrMaxAttemptsTwice)
		return
	}
	b.attemptsSet = true
	b.p.maxAttempts = n
	b.p.indefinitely = indefinitely
}

// New constructs a Policy from options, validating the result.
//
// Exactly one backoff strategy and exactly one of MaxAttempts or
// Indefinitely must be given. If the chosen strategy requires a base
// delay (all built-in strategies except NoWaitBackoff do), Delay must
// be given too. If no error matching mode is given, every error is
// retryable.
//
// The returned error, if any, is a *ConfigError.
func New(opts ...Option) (*Policy, error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.err != nil {
		return nil, b.err
	}
	if b.p.strategy == nil {
		return nil, &ConfigError{Rule: ErrNoBackoff}
	}
	if !b.attemptsSet {
		return nil, &ConfigError{Rule: ErrNoMaxAttempts}
	}
	if !b.delaySet && backoff.RequiresDelay(b.p.strategy) {
		return nil, &ConfigError{Rule: ErrNoDelay}
	}
	if b.p.causedBy && b.p.errorMode == predicate {
		return nil, &ConfigError{Rule: ErrPredicateCombined}
	}
	if b.p.errorMode == unset {
		b.p.errorMode = anyError
	}
	p := b.p
	return &p, nil
}

// MustNew is like New but panics if the configuration is invalid. It
// simplifies initialization of package-level policies.
func MustNew(opts ...Option) *Policy {
	p, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// MaxAttempts allows at most n attempts, including the first. Parameter
// n must be at least 1.
func MaxAttempts(n int) Option {
	return func(b *builder) {
		if n < 1 {
			b.fail(ErrBadMaxAttempts)
			return
		}
		b.setAttempts(n, false)
	}
}

// Indefinitely allows an unbounded number of attempts. The execution
// then ends only on success, on a fatal error, or when the context is
// cancelled, so the call itself should have some way to terminate.
func Indefinitely() Option {
	return func(b *builder) {
		b.setAttempts(0, true)
	}
}

// Delay sets the base delay between attempts, which the backoff
// strategy scales. Zero is a valid delay.
func Delay(d time.Duration) Option {
	return func(b *builder) {
		if d < 0 {
			b.fail(ErrNegativeDelay)
			return
		}
		b.delaySet = true
		b.p.delay = d
	}
}

// Backoff sets a custom backoff strategy.
func Backoff(s backoff.Strategy) Option {
	return func(b *builder) {
		if s == nil {
			b.fail(ErrNoBackoff)
			return
		}
		if b.p.strategy != nil {
			b.fail(ErrMultipleBackoffs)
			return
		}
		b.p.strategy = s
	}
}

// FixedBackoff waits the base delay between every attempt.
func FixedBackoff() Option { return Backoff(backoff.Fixed) }

// NoWaitBackoff retries immediately.
func NoWaitBackoff() Option { return Backoff(backoff.NoWait) }

// ExponentialBackoff doubles the wait after every failed attempt.
func ExponentialBackoff() Option { return Backoff(backoff.Exponential) }

// FibonacciBackoff scales the wait by the Fibonacci sequence.
func FibonacciBackoff() Option { return Backoff(backoff.Fibonacci) }

// RandomBackoff scales the base delay by a random multiplier between 0
// and backoff.DefaultMaxMultiplier, inclusive.
func RandomBackoff() Option { return Backoff(backoff.Random(backoff.DefaultMaxMultiplier)) }

// RandomExponentialBackoff randomizes an exponential wait the same way
// RandomBackoff randomizes the base delay.
func RandomExponentialBackoff() Option {
	return Backoff(backoff.RandomExponential(backoff.DefaultMaxMultiplier))
}

// RetryOnAnyError makes every error retryable. This is the default.
func RetryOnAnyError() Option {
	return func(b *builder) {
		b.setErrorMode(anyError)
	}
}

// FailOnAnyError makes every error fatal. Retries then only happen
// because of the call's return value.
func FailOnAnyError() Option {
	return func(b *builder) {
		b.setErrorMode(noError)
	}
}

// RetryOnErrors makes errors retryable only if they match one of ms.
// All other errors are fatal.
func RetryOnErrors(ms ...Matcher) Option {
	return func(b *builder) {
		if hasNil(ms) {
			b.fail(ErrNilPredicate)
			return
		}
		b.setErrorMode(onlyErrors)
		b.p.matchers = append([]Matcher(nil), ms...)
	}
}

// RetryOnAnyErrorExcluding makes every error retryable except those
// matching one of ms, which are fatal.
func RetryOnAnyErrorExcluding(ms ...Matcher) Option {
	return func(b *builder) {
		if hasNil(ms) {
			b.fail(ErrNilPredicate)
			return
		}
		b.setErrorMode(excludingErrors)
		b.p.matchers = append([]Matcher(nil), ms...)
	}
}

// RetryIf makes an error retryable exactly when f returns true for it.
// RetryIf cannot be combined with any other error matching option,
// including CausedBy.
func RetryIf(f func(error) bool) Option {
	return func(b *builder) {
		if f == nil {
			b.fail(ErrNilPredicate)
			return
		}
		b.setErrorMode(predicate)
		b.p.retryIf = f
	}
}

// CausedBy makes RetryOnErrors and RetryOnAnyErrorExcluding match an
// error if the error itself or any error in its cause chain matches,
// instead of looking only at the error returned by the call.
func CausedBy() Option {
	return func(b *builder) {
		b.p.causedBy = true
	}
}

// RetryOnValue retries the call when it returns, without error, a value
// equal to one of vs. Values are compared with == when their type is
// comparable, and with reflect.DeepEqual otherwise. A nil return value
// is only retried if nil is one of vs.
func RetryOnValue(vs ...interface{}) Option {
	vs = append([]interface{}(nil), vs...)
	return func(b *builder) {
		b.setValueMode(retryValues, inValues(vs))
	}
}

// RetryOnValueFunc retries the call when it returns, without error, a
// value for which f returns true.
func RetryOnValueFunc(f func(v interface{}) bool) Option {
	return func(b *builder) {
		if f == nil {
			b.fail(ErrNilPredicate)
			return
		}
		b.setValueMode(retryValues, f)
	}
}

// ExpectValue retries the call whenever it returns, without error, a
// value that is not equal to one of vs.
func ExpectValue(vs ...interface{}) Option {
	vs = append([]interface{}(nil), vs...)
	return func(b *builder) {
		b.setValueMode(expectValues, inValues(vs))
	}
}

func hasNil(ms []Matcher) bool {
	for _, m := range ms {
		if m == nil {
			return true
		}
	}
	return false
}

func inValues(vs []interface{}) func(interface{}) bool {
	return func(v interface{}) bool {
		for _, x := range vs {
			if equal(x, v) {
				return true
			}
		}
		return false
	}
}

// MaxAttempts returns the maximum number of attempts, or zero if the
// policy retries indefinitely.
func (p *Policy) MaxAttempts() int {
	return p.maxAttempts
}

// Indefinite reports whether the policy allows unbounded attempts.
func (p *Policy) Indefinite() bool {
	return p.indefinitely
}

// Exhausted reports whether an execution that has made n attempts is
// out of attempts.
func (p *Policy) Exhausted(n int) bool {
	return !p.indefinitely && n >= p.maxAttempts
}

// Delay returns the base delay between attempts.
func (p *Policy) Delay() time.Duration {
	return p.delay
}

// Backoff returns the backoff strategy.
func (p *Policy) Backoff() backoff.Strategy {
	return p.strategy
}

// Wait returns how long to wait after n failed attempts.
func (p *Policy) Wait(n int) time.Duration {
	if p.strategy == nil {
		return 0
	}
	return p.strategy.Delay(n, p.delay)
}
