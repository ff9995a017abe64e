// SPDX-License-Identifier: Apache-2.0

package flowgraph

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pm4rs/xesflow/xstream"
)

// Executor runs a batch of jobs submitted by Graph.Execute and blocks until
// they complete.
type Executor interface {
	Schedule(jobs []func())
	Join() error
}

// SequentialExecutor runs every job inline, in submission order, as soon as
// it is scheduled. It is correct only for a single, self-contained pipe: any
// channel dependency on another pipe, or on a graph-level input artifact
// sent only after Schedule returns, deadlocks immediately since nothing
// else runs concurrently to supply the other end.
type SequentialExecutor struct{}

func (SequentialExecutor) Schedule(jobs []func()) {
	for _, job := range jobs {
		job()
	}
}

func (SequentialExecutor) Join() error { return nil }

// ThreadExecutor runs every job in its own goroutine via errgroup.Group,
// matching the ambient flow package's InParallel, and surfaces the first
// job failure as a StreamError.
type ThreadExecutor struct {
	group *errgroup.Group
}

func NewThreadExecutor(ctx context.Context) *ThreadExecutor {
	group, _ := errgroup.WithContext(ctx)
	return &ThreadExecutor{group: group}
}

func (e *ThreadExecutor) Schedule(jobs []func()) {
	for _, job := range jobs {
		job := job
		e.group.Go(func() error {
			job()
			return nil
		})
	}
}

func (e *ThreadExecutor) Join() error {
	if err := e.group.Wait(); err != nil {
		return xstream.StreamErrorf("%v", err)
	}
	return nil
}

var (
	_ Executor = SequentialExecutor{}
	_ Executor = (*ThreadExecutor)(nil)
)
