// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retryx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gogama/retryx/policy"
	"github.com/gogama/retryx/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ioError interface {
	error
	IO()
}

type fileError struct{}

func (_ *fileError) Error() string { return "file error" }
func (_ *fileError) IO()           {}

type socketError struct{}

func (_ socketError) Error() string { return "socket error" }
func (_ socketError) IO()           {}

var errTransient = errors.New("transient")

func TestExecutor_Do(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		x := &Executor{
			Policy: policy.MustNew(policy.MaxAttempts(5), policy.NoWaitBackoff()),
		}
		tr := x.addTraceListeners(false)

		s, err := x.Do(context.Background(), "first", func(_ context.Context) (interface{}, error) {
			return true, nil
		})

		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, 1, s.Attempts)
		assert.Equal(t, true, s.Result)
		assert.Equal(t, status.Succeeded, s.Outcome)
		assert.Equal(t, "first", s.CallName)
		assert.True(t, s.Ended())
		assert.Nil(t, s.Cause)
		assert.Equal(t, []string{"OnSuccess", "OnCompletion"}, tr.calls)
	})
	t.Run("exhausts attempts on persistent error", func(t *testing.T) {
		x := &Executor{
			Policy: policy.MustNew(policy.MaxAttempts(5), policy.Delay(0), policy.FixedBackoff()),
		}
		tr := x.addTraceListeners(false)
		n := 0

		s, err := x.Do(context.Background(), "persistent", func(_ context.Context) (interface{}, error) {
			n++
			return nil, errTransient
		})

		assert.Equal(t, 5, n)
		assert.Equal(t, 5, s.Attempts)
		assert.Equal(t, status.Failed, s.Outcome)
		assert.Same(t, errTransient, s.Cause)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExhausted)
		assert.ErrorIs(t, err, errTransient)
		assert.NotErrorIs(t, err, ErrUnexpected)
		var xerr *Error
		require.ErrorAs(t, err, &xerr)
		assert.Equal(t, Exhausted, xerr.Kind)
		assert.Equal(t, 5, xerr.Status.Attempts)
		assert.NotSame(t, s, xerr.Status)
		assert.Equal(t, `retryx: call "persistent" failed after 5 attempt(s): transient`, err.Error())
		assert.Equal(t, []string{
			"AfterFailedAttempt", "BeforeNextAttempt",
			"AfterFailedAttempt", "BeforeNextAttempt",
			"AfterFailedAttempt", "BeforeNextAttempt",
			"AfterFailedAttempt", "BeforeNextAttempt",
			"AfterFailedAttempt",
			"OnCompletion",
		}, tr.calls)
	})
	t.Run("succeeds after transient errors", func(t *testing.T) {
		x := &Executor{
			Policy: policy.MustNew(policy.MaxAttempts(5), policy.NoWaitBackoff()),
		}
		tr := x.addTraceListeners(false)
		n := 0

		s, err := x.Do(context.Background(), "transient", func(_ context.Context) (interface{}, error) {
			n++
			if n < 3 {
				return nil, errTransient
			}
			return "success", nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, s.Attempts)
		assert.Equal(t, "success", s.Result)
		assert.Equal(t, status.Succeeded, s.Outcome)
		assert.Same(t, errTransient, s.Cause, "cause keeps the last retryable error")
		assert.Equal(t, []string{
			"AfterFailedAttempt", "BeforeNextAttempt",
			"AfterFailedAttempt", "BeforeNextAttempt",
			"OnSuccess",
			"OnCompletion",
		}, tr.calls)
	})
	t.Run("excluded error family is fatal", func(t *testing.T) {
		x := &Executor{
			Policy: policy.MustNew(
				policy.MaxAttempts(5),
				policy.NoWaitBackoff(),
				policy.RetryOnAnyErrorExcluding(policy.As[ioError]()),
			),
		}
		tr := x.addTraceListeners(true)
		fatal := &fileError{}

		s, err := x.Do(context.Background(), "", func(_ context.Context) (interface{}, error) {
			return nil, fatal
		})

		assert.Equal(t, 1, s.Attempts)
		assert.Equal(t, status.Failed, s.Outcome)
		assert.ErrorIs(t, err, ErrUnexpected)
		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, "retryx: call failed with unexpected error on attempt 1: file error", err.Error())
		assert.Equal(t, []string{"OnCompletion"}, tr.calls, "OnFailure is not fired for a fatal error")
	})
	t.Run("indefinitely never exhausts", func(t *testing.T) {
		x := &Executor{
			Policy: policy.MustNew(policy.Indefinitely(), policy.NoWaitBackoff()),
		}
		n := 0

		s, err := x.Do(context.Background(), "forever", func(_ context.Context) (interface{}, error) {
			n++
			if n <= 100 {
				return nil, socketError{}
			}
			return n, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 101, s.Attempts)
		assert.Equal(t, 101, s.Result)
	})
}

func TestExecutor_Do_OnFailure(t *testing.T) {
	x := &Executor{
		Policy: policy.MustNew(policy.MaxAttempts(3), policy.NoWaitBackoff()),
	}
	tr := x.addTraceListeners(false)
	m := x.mock(OnFailure)
	m.On("Handle", OnFailure, mock.MatchedBy(func(s *status.Status) bool {
		return s.Attempts == 3 && s.Ended() && s.Outcome == status.Failed && s.Cause == errTransient
	})).Once()

	s, err := x.Do(context.Background(), "handled", func(_ context.Context) (interface{}, error) {
		return nil, errTransient
	})

	assert.NoError(t, err, "OnFailure listener replaces the exhaustion error")
	assert.Equal(t, status.Failed, s.Outcome)
	assert.Equal(t, 3, s.Attempts)
	m.AssertExpectations(t)
	assert.Equal(t, []string{
		"AfterFailedAttempt", "BeforeNextAttempt",
		"AfterFailedAttempt", "BeforeNextAttempt",
		"AfterFailedAttempt",
		"OnCompletion",
	}, tr.calls)
}

func TestExecutor_Do_ListenerObservesStatus(t *testing.T) {
	x := &Executor{
		Policy: policy.MustNew(policy.MaxAttempts(3), policy.NoWaitBackoff()),
	}
	errs := []error{errors.New("first"), errors.New("second")}
	afa := x.mock(AfterFailedAttempt)
	bna := x.mock(BeforeNextAttempt)
	for i := range errs {
		attempt, cause := i+1, errs[i]
		afa.On("Handle", AfterFailedAttempt, mock.MatchedBy(func(s *status.Status) bool {
			return s.Attempts == attempt && s.Cause == cause && !s.Ended()
		})).Once()
		bna.On("Handle", BeforeNextAttempt, mock.MatchedBy(func(s *status.Status) bool {
			return s.Attempts == attempt
		})).Once()
	}
	n := 0

	_, err := x.Do(context.Background(), "observed", func(_ context.Context) (interface{}, error) {
		if n < len(errs) {
			n++
			return nil, errs[n-1]
		}
		return "ok", nil
	})

	require.NoError(t, err)
	afa.AssertExpectations(t)
	bna.AssertExpectations(t)
}

func TestExecutor_Do_Values(t *testing.T) {
	t.Run("retry on value leaves cause unset", func(t *testing.T) {
		x := &Executor{
			Policy: policy.MustNew(
				policy.MaxAttempts(3),
				policy.NoWaitBackoff(),
				policy.FailOnAnyError(),
				policy.RetryOnValue(false),
			),
		}
		n := 0

		s, err := x.Do(context.Background(), "values", func(_ context.Context) (interface{}, error) {
			n++
			return n > 1, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, s.Attempts)
		assert.Equal(t, true, s.Result)
		assert.Nil(t, s.Cause)
	})
	t.Run("unexpected value exhausts without cause", func(t *testing.T) {
		x := &Executor{
			Policy: policy.MustNew(
				policy.MaxAttempts(3),
				policy.NoWaitBackoff(),
				policy.ExpectValue("done"),
			),
		}

		s, err := x.Do(context.Background(), "expect", func(_ context.Context) (interface{}, error) {
			return "pending", nil
		})

		assert.Equal(t, 3, s.Attempts)
		assert.Nil(t, s.Result)
		assert.ErrorIs(t, err, ErrExhausted)
		assert.Nil(t, errors.Unwrap(err))
		assert.Equal(t, `retryx: call "expect" failed after 3 attempt(s)`, err.Error())
	})
	t.Run("error is fatal when errors fail", func(t *testing.T) {
		x := &Executor{
			Policy: policy.MustNew(
				policy.MaxAttempts(3),
				policy.NoWaitBackoff(),
				policy.FailOnAnyError(),
			),
		}

		s, err := x.Do(context.Background(), "fail", func(_ context.Context) (interface{}, error) {
			return nil, errTransient
		})

		assert.Equal(t, 1, s.Attempts)
		assert.ErrorIs(t, err, ErrUnexpected)
	})
}

func TestExecutor_Do_Interrupted(t *testing.T) {
	t.Run("cancelled before wait", func(t *testing.T) {
		x := &Executor{
			Policy: policy.MustNew(policy.MaxAttempts(5), policy.Delay(time.Hour), policy.FixedBackoff()),
		}
		tr := x.addTraceListeners(true)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s, err := x.Do(ctx, "cancelled", func(_ context.Context) (interface{}, error) {
			cancel()
			return nil, errTransient
		})

		assert.Equal(t, 1, s.Attempts)
		assert.Equal(t, status.Failed, s.Outcome)
		assert.ErrorIs(t, err, ErrInterrupted)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrExhausted)
		assert.Equal(t, `retryx: call "cancelled" interrupted after 1 attempt(s): context canceled`, err.Error())
		assert.Equal(t, []string{"AfterFailedAttempt", "OnCompletion"}, tr.calls)
	})
	t.Run("deadline during wait", func(t *testing.T) {
		x := &Executor{
			Policy: policy.MustNew(policy.MaxAttempts(5), policy.Delay(time.Hour), policy.FixedBackoff()),
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		before := time.Now()
		s, err := x.Do(ctx, "deadline", func(_ context.Context) (interface{}, error) {
			return nil, errTransient
		})
		after := time.Now()

		assert.Equal(t, 1, s.Attempts)
		assert.ErrorIs(t, err, ErrInterrupted)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, after.Sub(before), time.Minute)
	})
	t.Run("call receives context", func(t *testing.T) {
		type key struct{}
		x := &Executor{
			Policy: policy.MustNew(policy.MaxAttempts(1), policy.NoWaitBackoff()),
		}
		ctx := context.WithValue(context.Background(), key{}, "v")

		s, err := x.Do(ctx, "", func(ctx context.Context) (interface{}, error) {
			return ctx.Value(key{}), nil
		})

		require.NoError(t, err)
		assert.Equal(t, "v", s.Result)
	})
}

func TestExecutor_Do_Panic(t *testing.T) {
	x := &Executor{
		Policy: policy.MustNew(policy.MaxAttempts(3), policy.NoWaitBackoff()),
	}
	m := x.mock(OnCompletion)
	m.On("Handle", OnCompletion, mock.MatchedBy(func(s *status.Status) bool {
		return s.Attempts == 1
	})).Once()

	assert.PanicsWithValue(t, "boom", func() {
		_, _ = x.Do(context.Background(), "panic", func(_ context.Context) (interface{}, error) {
			panic("boom")
		})
	})
	m.AssertExpectations(t)
}

func TestExecutor_Do_Defaults(t *testing.T) {
	x := &Executor{}

	s, err := x.Do(nil, "defaults", func(ctx context.Context) (interface{}, error) {
		if ctx == nil {
			return nil, errors.New("nil context")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, s.Attempts)
	assert.Equal(t, "ok", s.Result)
	assert.Same(t, policy.DefaultPolicy, x.policy())
}

func TestExecutor_Do_UniqueStatus(t *testing.T) {
	x := &Executor{
		Policy: policy.MustNew(policy.MaxAttempts(1), policy.NoWaitBackoff()),
	}
	call := func(_ context.Context) (interface{}, error) { return nil, nil }

	s1, err1 := x.Do(context.Background(), "a", call)
	s2, err2 := x.Do(context.Background(), "a", call)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotSame(t, s1, s2)
	assert.NotEqual(t, s1.ID, s2.ID)
}

func TestExecutor_Do_Logging(t *testing.T) {
	rec := &recordingLogger{}
	x := &Executor{
		Policy: policy.MustNew(
			policy.MaxAttempts(3),
			policy.NoWaitBackoff(),
			policy.RetryOnErrors(policy.Is(errTransient)),
		),
		Logger: rec,
	}
	n := 0

	_, err := x.Do(context.Background(), "logged", func(_ context.Context) (interface{}, error) {
		n++
		if n == 1 {
			return nil, errTransient
		}
		return nil, &fileError{}
	})

	assert.ErrorIs(t, err, ErrUnexpected)
	var levels []string
	for _, line := range rec.lines {
		levels = append(levels, line[:strings.IndexByte(line, ' ')])
	}
	assert.Equal(t, []string{"DEBUG", "DEBUG", "WARN", "DEBUG", "ERROR", "DEBUG"}, levels)
	assert.Contains(t, rec.lines[4], "unexpected error: file error")
}

func TestDo(t *testing.T) {
	x := &Executor{
		Policy: policy.MustNew(policy.MaxAttempts(2), policy.NoWaitBackoff()),
	}

	t.Run("success", func(t *testing.T) {
		v, s, err := Do(context.Background(), x, "typed", func(_ context.Context) (string, error) {
			return "hello", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "hello", v)
		assert.Equal(t, 1, s.Attempts)
	})
	t.Run("failure", func(t *testing.T) {
		v, s, err := Do(context.Background(), x, "typed", func(_ context.Context) (int, error) {
			return 42, errTransient
		})

		assert.ErrorIs(t, err, ErrExhausted)
		assert.Equal(t, 0, v)
		assert.Equal(t, 2, s.Attempts)
	})
}

func TestSleep(t *testing.T) {
	testCases := []struct {
		name string
		d    time.Duration
		ctx  func() (context.Context, context.CancelFunc)
		err  error
	}{
		{
			name: "zero",
			ctx:  func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) },
		},
		{
			name: "negative",
			d:    -time.Second,
			ctx:  func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) },
		},
		{
			name: "short",
			d:    time.Millisecond,
			ctx:  func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) },
		},
		{
			name: "already cancelled",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
			err: context.Canceled,
		},
		{
			name: "deadline",
			d:    time.Hour,
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), time.Millisecond)
			},
			err: context.DeadlineExceeded,
		},
	}

	for i, testCase := range testCases {
		t.Run(fmt.Sprintf("testCases[%d]=%s", i, testCase.name), func(t *testing.T) {
			ctx, cancel := testCase.ctx()
			defer cancel()

			err := sleep(ctx, testCase.d)

			assert.Equal(t, testCase.err, err)
		})
	}
}

func TestMaxAttempts(t *testing.T) {
	assert.Equal(t, "unlimited", maxAttempts(policy.MustNew(policy.Indefinitely(), policy.NoWaitBackoff())))
	assert.Equal(t, "7", maxAttempts(policy.MustNew(policy.MaxAttempts(7), policy.NoWaitBackoff())))
}

func (x *Executor) mock(evt Event) *mockListener {
	if x.Listeners == nil {
		x.Listeners = &Listeners{}
	}
	m := &mockListener{}
	x.Listeners.add(evt, m)
	return m
}

type mockListener struct {
	mock.Mock
}

func (m *mockListener) Handle(evt Event, s *status.Status) {
	m.Called(evt, s)
}

type trace struct {
	calls []string
}

// addTraceListeners installs a listener recording every event name. The
// OnFailure slot is only traced if onFailure is set, because installing
// it changes how exhaustion is reported.
func (x *Executor) addTraceListeners(onFailure bool) *trace {
	if x.Listeners == nil {
		x.Listeners = &Listeners{}
	}
	tr := &trace{}
	l := ListenerFunc(func(evt Event, _ *status.Status) {
		tr.calls = append(tr.calls, evt.Name())
	})
	for _, evt := range Events() {
		if evt == OnFailure && !onFailure {
			continue
		}
		x.Listeners.add(evt, l)
	}
	return tr
}

func (ls *Listeners) add(evt Event, l Listener) {
	slot := ls.slot(evt)
	if *slot == nil {
		*slot = l
	} else {
		*slot = Chain(*slot, l)
	}
}

func (ls *Listeners) slot(evt Event) *Listener {
	switch evt {
	case AfterFailedAttempt:
		return &ls.AfterFailedAttempt
	case BeforeNextAttempt:
		return &ls.BeforeNextAttempt
	case OnSuccess:
		return &ls.OnSuccess
	case OnFailure:
		return &ls.OnFailure
	case OnCompletion:
		return &ls.OnCompletion
	default:
		panic(fmt.Sprintf("unknown event %d", evt))
	}
}
