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
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrQueueFull indicates the queue rejected an enqueue because it is at
	// capacity; the submission fails as an infrastructure error
	ErrQueueFull = errors.New("job queue is full")

	// ErrQueueClosed is returned by Dequeue after Close
	ErrQueueClosed = errors.New("job queue is closed")
)

// Queue decouples job submission from execution. Delivery is at least
// once: a consumer crash after Dequeue may cause the same id to be
// delivered again, so workers must be idempotent.
type Queue interface {
	// Enqueue adds a job id for asynchronous execution
	Enqueue(ctx context.Context, id uuid.UUID) error

	// Dequeue blocks until a job id is available, the context is canceled,
	// or the queue is closed
	Dequeue(ctx context.Context) (uuid.UUID, error)

	Close() error
}
