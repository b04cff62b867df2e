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

	"github.com/google/uuid"
	"github.com/init-51/FinInsight/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Service owns the job lifecycle: it validates and admits portfolios,
// hands pending work to the queue, and answers the status/result/history
// reads the API layer polls. It is the only component that creates jobs;
// workers are the only components that finish them.
type Service struct {
	store Store
	queue Queue
}

// NewService wires the orchestrator to its store and queue
func NewService(store Store, queue Queue) *Service {
	return &Service{
		store: store,
		queue: queue,
	}
}

// Submit validates the portfolio, persists a PENDING job, and enqueues it
// for execution. The job id returns immediately; execution happens on a
// worker. A *portfolio.ValidationError means the portfolio was rejected
// and no job exists; any other error is an infrastructure fault.
func (svc *Service) Submit(ctx context.Context, p *portfolio.Portfolio) (uuid.UUID, error) {
	if err := p.Validate(); err != nil {
		return uuid.Nil, err
	}

	job := NewJob(p)
	subLog := log.With().Str("JobID", job.ID.String()).Str("Portfolio", p.Name).Logger()

	if err := svc.store.Create(ctx, job); err != nil {
		subLog.Error().Err(err).Msg("could not persist job")
		return uuid.Nil, err
	}

	if err := svc.queue.Enqueue(ctx, job.ID); err != nil {
		// the PENDING row stays behind; it is reaped by purge since no
		// worker will ever receive it
		subLog.Error().Err(err).Msg("could not enqueue job")
		return uuid.Nil, err
	}

	subLog.Info().Msg("job submitted")
	return job.ID, nil
}

// Status returns the job's current state. ErrNotFound if the id is
// unknown.
func (svc *Service) Status(ctx context.Context, id uuid.UUID) (*Job, error) {
	return svc.store.Get(ctx, id)
}

// Result returns the full job including the result or error when the job
// has reached a terminal state. A PENDING job returns with neither
// populated; that is "not ready yet", not an error.
func (svc *Service) Result(ctx context.Context, id uuid.UUID) (*Job, error) {
	return svc.store.Get(ctx, id)
}

// History lists completed (SUCCESS) jobs, most recent first. The limit
// comes from jobs.history_limit; zero falls back to 50.
func (svc *Service) History(ctx context.Context) ([]*HistoryEntry, error) {
	limit := viper.GetInt("jobs.history_limit")
	if limit <= 0 {
		limit = 50
	}
	return svc.store.History(ctx, limit)
}
