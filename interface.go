// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retryx

import (
	"context"

	"github.com/gogama/retryx/status"
)

// Doer is the interface that wraps the basic Do method.
//
// Do executes a named call with retries and returns the final status
// (and error, if any). Executor implements the Doer interface, and any
// other Doer implementation must behave substantially the same as
// Executor.Do; in particular it must never return a nil status.
type Doer interface {
	Do(ctx context.Context, name string, call Call) (*status.Status, error)
}

// The DoerFunc type is an adapter to allow the use of ordinary
// functions as Doers, for example to decorate an Executor.
type DoerFunc func(ctx context.Context, name string, call Call) (*status.Status, error)

// Do calls f(ctx, name, call).
func (f DoerFunc) Do(ctx context.Context, name string, call Call) (*status.Status, error) {
	return f(ctx, name, call)
}

// Run executes an unnamed call using d.
func Run(ctx context.Context, d Doer, call Call) (*status.Status, error) {
	return d.Do(ctx, "", call)
}
