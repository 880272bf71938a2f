// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package async runs retryx executions in the background.

Submit hands an execution to a Runner and returns a Future which
resolves to the execution's final status and error. The Runner is
always passed explicitly: use Goroutine for one goroutine per
execution, or a Pool to bound the number of executions in flight.

	pool := async.NewPool(4)
	defer pool.Close()
	f := async.Submit(ctx, pool, x, "fetch", fetch)
	...
	s, err := f.Wait(ctx)

All runs a batch of named calls concurrently, stopping the batch at the
first terminal error.
*/
package async
