// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package backoff provides strategies for computing how long to wait
// between a failed attempt and the next attempt of a retried call.
//
// A Strategy maps the number of failed attempts so far, and the base
// delay configured on the retry policy, to a wait duration. The built-in
// strategies are:
//
//	backoff.Fixed              // base
//	backoff.NoWait             // 0
//	backoff.Exponential        // base * 2^(n-1)
//	backoff.Fibonacci          // base * fib(n)
//	backoff.Random(10)         // base * rand[0, 10]
//	backoff.RandomExponential(10)
//
// All arithmetic saturates at the largest representable time.Duration
// instead of overflowing.
//
// Custom strategies can be created by implementing Strategy, or by
// converting an ordinary function with StrategyFunc.
package backoff
