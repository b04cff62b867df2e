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
	"time"

	"github.com/google/uuid"
	"github.com/init-51/FinInsight/backtest"
)

var (
	// ErrNotFound indicates the job id was never created or has been purged
	ErrNotFound = errors.New("job not found")

	// ErrAlreadyTerminal indicates a terminal transition was attempted on a
	// job that already reached SUCCESS or FAILURE. Workers treat this as a
	// duplicate queue delivery and discard their result.
	ErrAlreadyTerminal = errors.New("job already in a terminal state")
)

// Store is the durable mapping from job id to job state. Complete and Fail
// are conditional writes: they transition only from PENDING and must be
// atomic with respect to concurrent reads, so a reader observes either
// PENDING or a fully-populated terminal state and never anything between.
type Store interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id uuid.UUID) (*Job, error)
	Complete(ctx context.Context, id uuid.UUID, result *backtest.Result) error
	Fail(ctx context.Context, id uuid.UUID, reason string) error

	// History lists successful jobs, most recent first, at most limit entries
	History(ctx context.Context, limit int) ([]*HistoryEntry, error)

	// Purge removes terminal jobs created before the cutoff and reports how
	// many were deleted. Pending jobs are never purged.
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}
