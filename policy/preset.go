// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import "time"

// DefaultPolicy is a general-purpose retry policy. It retries on any
// error, makes up to 5 attempts, and waits a fixed 10 seconds between
// attempts.
var DefaultPolicy = MustNew(
	RetryOnAnyError(),
	MaxAttempts(5),
	Delay(10*time.Second),
	FixedBackoff(),
)

// Exponential5Tries5Sec retries on any error, makes up to 5 attempts,
// and uses exponential backoff from a base delay of 5 seconds.
var Exponential5Tries5Sec = MustNew(
	RetryOnAnyError(),
	MaxAttempts(5),
	Delay(5*time.Second),
	ExponentialBackoff(),
)

// Fibonacci7Tries5Sec retries on any error, makes up to 7 attempts,
// and uses Fibonacci backoff from a base delay of 5 seconds.
var Fibonacci7Tries5Sec = MustNew(
	RetryOnAnyError(),
	MaxAttempts(7),
	Delay(5*time.Second),
	FibonacciBackoff(),
)

// RandomExponential10Tries60Sec retries on any error, makes up to 10
// attempts, and uses randomized exponential backoff from a base delay
// of 60 seconds.
var RandomExponential10Tries60Sec = MustNew(
	RetryOnAnyError(),
	MaxAttempts(10),
	Delay(60*time.Second),
	RandomExponentialBackoff(),
)
