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
	"sync"

	"github.com/google/uuid"
	"github.com/init-51/FinInsight/backtest"
	"github.com/init-51/FinInsight/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Pool runs a fixed number of workers that pull job ids from the queue and
// execute them with the backtest engine. Engine failures become terminal
// FAILURE states; they never escape a worker. Store or queue faults leave
// the job PENDING for redelivery.
type Pool struct {
	store   Store
	queue   Queue
	engine  *backtest.Engine
	workers int

	wg sync.WaitGroup
}

// NewPool creates a worker pool of the given size
func NewPool(store Store, queue Queue, engine *backtest.Engine, workers int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	return &Pool{
		store:   store,
		queue:   queue,
		engine:  engine,
		workers: workers,
	}
}

// Run starts the workers and blocks until the context is canceled and all
// in-flight jobs have finished
func (pool *Pool) Run(ctx context.Context) {
	log.Info().Int("NumWorkers", pool.workers).Msg("starting backtest workers")

	for ii := 0; ii < pool.workers; ii++ {
		pool.wg.Add(1)
		go func(workerID int) {
			defer pool.wg.Done()
			pool.consume(ctx, workerID)
		}(ii)
	}

	pool.wg.Wait()
}

// Start runs the pool in a background goroutine and returns immediately
func (pool *Pool) Start(ctx context.Context) {
	go pool.Run(ctx)
}

func (pool *Pool) consume(ctx context.Context, workerID int) {
	subLog := log.With().Int("Worker", workerID).Logger()
	for {
		id, err := pool.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrQueueClosed) {
				subLog.Info().Msg("worker shutting down")
				return
			}
			subLog.Error().Err(err).Msg("could not dequeue job")
			continue
		}

		pool.execute(ctx, id)
	}
}

// execute runs a single queue delivery. Redeliveries of already-finished
// jobs are handled twice: an up-front status check skips the engine run,
// and the store's conditional terminal write is the final authority, so a
// duplicate delivery racing a live one can never produce two terminal
// writes.
func (pool *Pool) execute(ctx context.Context, id uuid.UUID) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "worker.execute")
	defer span.End()
	span.SetAttributes(attribute.String("JobID", id.String()))

	subLog := log.With().Str("JobID", id.String()).Logger()

	job, err := pool.store.Get(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "could not load job")
		subLog.Error().Err(err).Msg("could not load dequeued job")
		return
	}

	if job.Status.Terminal() {
		subLog.Info().Str("Status", job.Status.String()).Msg("skipping redelivered job")
		return
	}

	result, runErr := pool.engine.Run(ctx, job.Portfolio)
	if runErr != nil {
		subLog.Warn().Err(runErr).Msg("backtest failed")
		if err := pool.store.Fail(ctx, id, runErr.Error()); err != nil {
			if errors.Is(err, ErrAlreadyTerminal) {
				subLog.Info().Msg("job finished by another delivery")
				return
			}
			span.SetStatus(codes.Error, "could not record failure")
			subLog.Error().Err(err).Msg("could not record job failure")
		}
		return
	}

	if err := pool.store.Complete(ctx, id, result); err != nil {
		if errors.Is(err, ErrAlreadyTerminal) {
			subLog.Info().Msg("job finished by another delivery")
			return
		}
		span.SetStatus(codes.Error, "could not record result")
		subLog.Error().Err(err).Msg("could not record job result")
		return
	}

	subLog.Info().Float64("FinalValue", result.FinalValue).Msg("job succeeded")
}
