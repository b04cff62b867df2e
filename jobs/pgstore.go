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

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/init-51/FinInsight/backtest"
	"github.com/init-51/FinInsight/database"
	"github.com/init-51/FinInsight/portfolio"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog/log"
)

// PgStore is a Store persisted in a backtest_jobs table. The terminal
// transition is a conditional UPDATE guarded on status='PENDING', so a
// duplicate queue delivery can never overwrite a finished job.
type PgStore struct {
	pool database.PgxIface
}

const pgStoreSchema = `CREATE TABLE IF NOT EXISTS backtest_jobs (
	job_id UUID PRIMARY KEY,
	status TEXT NOT NULL,
	portfolio JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	result JSONB,
	error TEXT
)`

// NewPgStore creates a Store backed by the global pgx pool
func NewPgStore() *PgStore {
	return &PgStore{pool: database.Pool()}
}

// Migrate creates the backtest_jobs table if it does not exist
func (store *PgStore) Migrate(ctx context.Context) error {
	if _, err := store.pool.Exec(ctx, pgStoreSchema); err != nil {
		log.Error().Stack().Err(err).Msg("could not create backtest_jobs table")
		return err
	}
	return nil
}

// Create implements Store
func (store *PgStore) Create(ctx context.Context, job *Job) error {
	portfolioJSON, err := json.Marshal(job.Portfolio)
	if err != nil {
		return err
	}

	_, err = store.pool.Exec(ctx,
		`INSERT INTO backtest_jobs (job_id, status, portfolio, created_at) VALUES ($1, $2, $3, $4)`,
		job.ID, job.Status.String(), portfolioJSON, job.CreatedAt)
	if err != nil {
		log.Error().Stack().Err(err).Str("JobID", job.ID.String()).Msg("could not insert job")
		return err
	}
	return nil
}

// Get implements Store
func (store *PgStore) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := store.pool.QueryRow(ctx,
		`SELECT status, portfolio, created_at, result, error FROM backtest_jobs WHERE job_id = $1`, id)

	var (
		statusStr     string
		portfolioJSON []byte
		createdAt     time.Time
		resultJSON    []byte
		errMsg        *string
	)
	if err := row.Scan(&statusStr, &portfolioJSON, &createdAt, &resultJSON, &errMsg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Error().Stack().Err(err).Str("JobID", id.String()).Msg("could not read job")
		return nil, err
	}

	status, err := ParseStatus(statusStr)
	if err != nil {
		return nil, err
	}

	job := &Job{
		ID:        id,
		Status:    status,
		CreatedAt: createdAt,
	}

	job.Portfolio = &portfolio.Portfolio{}
	if err := json.Unmarshal(portfolioJSON, job.Portfolio); err != nil {
		return nil, err
	}

	if len(resultJSON) > 0 {
		job.Result = &backtest.Result{}
		if err := json.Unmarshal(resultJSON, job.Result); err != nil {
			return nil, err
		}
	}
	if errMsg != nil {
		job.Error = *errMsg
	}

	return job, nil
}

// Complete implements Store
func (store *PgStore) Complete(ctx context.Context, id uuid.UUID, result *backtest.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}

	tag, err := store.pool.Exec(ctx,
		`UPDATE backtest_jobs SET status = $2, result = $3 WHERE job_id = $1 AND status = $4`,
		id, StatusSuccess.String(), resultJSON, StatusPending.String())
	if err != nil {
		log.Error().Stack().Err(err).Str("JobID", id.String()).Msg("could not mark job successful")
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.transitionConflict(ctx, id)
	}
	return nil
}

// Fail implements Store
func (store *PgStore) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := store.pool.Exec(ctx,
		`UPDATE backtest_jobs SET status = $2, error = $3 WHERE job_id = $1 AND status = $4`,
		id, StatusFailure.String(), reason, StatusPending.String())
	if err != nil {
		log.Error().Stack().Err(err).Str("JobID", id.String()).Msg("could not mark job failed")
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.transitionConflict(ctx, id)
	}
	return nil
}

// transitionConflict distinguishes a missing job from one that already
// reached a terminal state
func (store *PgStore) transitionConflict(ctx context.Context, id uuid.UUID) error {
	if _, err := store.Get(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyTerminal
}

// History implements Store
func (store *PgStore) History(ctx context.Context, limit int) ([]*HistoryEntry, error) {
	rows, err := store.pool.Query(ctx,
		`SELECT job_id, portfolio->>'name', (result->>'final_value')::double precision, created_at
		 FROM backtest_jobs WHERE status = $1 ORDER BY created_at DESC LIMIT $2`,
		StatusSuccess.String(), limit)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not query job history")
		return nil, err
	}
	defer rows.Close()

	entries := []*HistoryEntry{}
	for rows.Next() {
		entry := &HistoryEntry{}
		if err := rows.Scan(&entry.JobID, &entry.PortfolioName, &entry.FinalValue, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Purge implements Store
func (store *PgStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := store.pool.Exec(ctx,
		`DELETE FROM backtest_jobs WHERE status <> $1 AND created_at < $2`,
		StatusPending.String(), olderThan)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not purge jobs")
		return 0, err
	}
	return tag.RowsAffected(), nil
}
