// Copyright 2024-2026
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryQueue is a bounded in-process Queue built on a buffered channel.
// Like MemoryStore it backs single-process deployments and tests.
type MemoryQueue struct {
	ch        chan uuid.UUID
	closeOnce sync.Once
	done      chan struct{}
}

// NewMemoryQueue creates a queue holding at most size pending job ids
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{
		ch:   make(chan uuid.UUID, size),
		done: make(chan struct{}),
	}
}

// Enqueue implements Queue; it never blocks, returning ErrQueueFull when
// the buffer is at capacity
func (q *MemoryQueue) Enqueue(ctx context.Context, id uuid.UUID) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- id:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue implements Queue
func (q *MemoryQueue) Dequeue(ctx context.Context) (uuid.UUID, error) {
	select {
	case <-q.done:
		return uuid.Nil, ErrQueueClosed
	case <-ctx.Done():
		return uuid.Nil, ctx.Err()
	case id := <-q.ch:
		return id, nil
	}
}

// Close implements Queue
func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() {
		close(q.done)
	})
	return nil
}
