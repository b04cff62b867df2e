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
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/init-51/FinInsight/backtest"
)

// MemoryStore is a Store kept entirely in process memory. It backs
// single-process deployments and the test suites; it satisfies the same
// transition contract as the Postgres store but offers no durability.
type MemoryStore struct {
	lock sync.RWMutex
	jobs map[uuid.UUID]*Job
}

// NewMemoryStore creates an empty in-memory job store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[uuid.UUID]*Job),
	}
}

// Create implements Store
func (store *MemoryStore) Create(_ context.Context, job *Job) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	if _, exists := store.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}

	stored := *job
	store.jobs[job.ID] = &stored
	return nil
}

// Get implements Store. The returned Job is a copy; mutating it does not
// affect stored state.
func (store *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Job, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()

	job, ok := store.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}

	found := *job
	return &found, nil
}

// Complete implements Store
func (store *MemoryStore) Complete(_ context.Context, id uuid.UUID, result *backtest.Result) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	job, ok := store.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.Terminal() {
		return ErrAlreadyTerminal
	}

	job.Status = StatusSuccess
	job.Result = result
	return nil
}

// Fail implements Store
func (store *MemoryStore) Fail(_ context.Context, id uuid.UUID, reason string) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	job, ok := store.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.Terminal() {
		return ErrAlreadyTerminal
	}

	job.Status = StatusFailure
	job.Error = reason
	return nil
}

// History implements Store
func (store *MemoryStore) History(_ context.Context, limit int) ([]*HistoryEntry, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()

	entries := make([]*HistoryEntry, 0, len(store.jobs))
	for _, job := range store.jobs {
		if job.Status != StatusSuccess {
			continue
		}
		entries = append(entries, &HistoryEntry{
			JobID:         job.ID,
			PortfolioName: job.Portfolio.Name,
			FinalValue:    job.Result.FinalValue,
			CreatedAt:     job.CreatedAt,
		})
	}

	sort.Slice(entries, func(a, b int) bool {
		return entries[a].CreatedAt.After(entries[b].CreatedAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Purge implements Store
func (store *MemoryStore) Purge(_ context.Context, olderThan time.Time) (int64, error) {
	store.lock.Lock()
	defer store.lock.Unlock()

	var removed int64
	for id, job := range store.jobs {
		if job.Status.Terminal() && job.CreatedAt.Before(olderThan) {
			delete(store.jobs, id)
			removed++
		}
	}
	return removed, nil
}
