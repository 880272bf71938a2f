// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

// A Verdict is the classification of a single attempt's outcome.
type Verdict int

const (
	// Success means the attempt's return value is accepted.
	Success Verdict = iota
	// Retry means the attempt failed and may be retried.
	Retry
	// Fatal means the attempt failed and must not be retried, however
	// many attempts remain.
	Fatal
)

var verdictNames = []string{"Success", "Retry", "Fatal"}

// String returns the name of the verdict.
func (v Verdict) String() string {
	return verdictNames[v]
}

// Classify classifies the outcome of one attempt of the call, given the
// value and error the call returned.
//
// When err is nil, the verdict is Success unless the value triggers a
// retry under RetryOnValue, RetryOnValueFunc or ExpectValue, in which
// case it is Retry. When err is non-nil, the value is ignored and the
// error matching mode decides between Retry and Fatal.
//
// Classify is deterministic: for a given policy and outcome it always
// returns the same verdict, and the order of configured matchers does
// not affect it.
func (p *Policy) Classify(value interface{}, err error) Verdict {
	if err == nil {
		if p.retryOnValue(value) {
			return Retry
		}
		return Success
	}

	if p.Retryable(err) {
		return Retry
	}
	return Fatal
}

// Retryable reports whether err is retryable under the policy's error
// matching mode.
func (p *Policy) Retryable(err error) bool {
	switch p.errorMode {
	case predicate:
		return p.retryIf(err)
	case noError:
		return false
	case onlyErrors:
		return p.matches(err)
	case excludingErrors:
		return !p.matches(err)
	default:
		return true
	}
}

func (p *Policy) matches(err error) bool {
	if !p.causedBy {
		return matchAny(p.matchers, err)
	}
	return walk(err, func(e error) bool {
		return matchAny(p.matchers, e)
	})
}

func (p *Policy) retryOnValue(v interface{}) bool {
	switch p.valueMode {
	case retryValues:
		return p.valueFunc(v)
	case expectValues:
		return !p.valueFunc(v)
	default:
		return false
	}
}
