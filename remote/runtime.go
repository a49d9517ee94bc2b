// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package remote

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the number of concurrent requests a runtime created
// without an explicit limit allows.
const DefaultConcurrency = 16

// Runtime is the execution handle shared by remote blocks. It bounds the number
// of requests in flight and carries a base context whose cancellation aborts all
// pending fetches.
type Runtime struct {
	ctx context.Context
	sem *semaphore.Weighted
}

// NewRuntime creates a runtime allowing at most concurrency requests at once.
func NewRuntime(ctx context.Context, concurrency int64) *Runtime {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Runtime{ctx: ctx, sem: semaphore.NewWeighted(concurrency)}
}

// Context returns the base context of the runtime.
func (rt *Runtime) Context() context.Context { return rt.ctx }

// bind derives a context that is cancelled when either ctx or the runtime's
// base context is done.
func (rt *Runtime) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(rt.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// do runs fn holding one request slot.
func (rt *Runtime) do(ctx context.Context, fn func(context.Context) error) error {
	if err := rt.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer rt.sem.Release(1)
	return fn(ctx)
}
