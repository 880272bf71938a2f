// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"context"

	"github.com/gogama/retryx"
	"github.com/gogama/retryx/status"
	"golang.org/x/sync/errgroup"
)

// A Task is a named call for use with All.
type Task struct {
	Name string
	Call retryx.Call
}

// All runs each task using d, with at most limit executions in flight
// at once. A limit less than 1 means no limit.
//
// The first execution to end with an error cancels the context passed
// to the others, which are then interrupted at their next wait. All
// waits for every started execution and returns the status of each
// task, in task order, together with the first error. Tasks which were
// never started because of an earlier error have a nil status.
func All(ctx context.Context, limit int, d retryx.Doer, tasks []Task) ([]*status.Status, error) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	statuses := make([]*status.Status, len(tasks))
	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := d.Do(gctx, task.Name, task.Call)
			statuses[i] = s
			return err
		})
	}
	err := g.Wait()
	return statuses, err
}
