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

package jobs_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"

	"github.com/init-51/FinInsight/backtest"
	"github.com/init-51/FinInsight/database"
	"github.com/init-51/FinInsight/jobs"
)

var _ = Describe("PgStore", func() {
	var (
		dbPool pgxmock.PgxConnIface
		store  *jobs.PgStore
		ctx    context.Context
		job    *jobs.Job
	)

	BeforeEach(func() {
		var err error
		dbPool, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
		database.SetPool(dbPool)
		store = jobs.NewPgStore()
		ctx = context.Background()
		job = jobs.NewJob(singleAssetPortfolio("AAPL"))
	})

	AfterEach(func() {
		Expect(dbPool.ExpectationsWereMet()).To(Succeed())
	})

	Describe("Migrate", func() {
		It("creates the backtest_jobs table", func() {
			dbPool.ExpectExec("CREATE TABLE IF NOT EXISTS backtest_jobs").
				WillReturnResult(pgxmock.NewResult("CREATE", 0))
			Expect(store.Migrate(ctx)).To(Succeed())
		})
	})

	Describe("Create", func() {
		It("inserts a PENDING row", func() {
			dbPool.ExpectExec("INSERT INTO backtest_jobs").
				WithArgs(job.ID, "PENDING", pgxmock.AnyArg(), job.CreatedAt).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
			Expect(store.Create(ctx, job)).To(Succeed())
		})
	})

	Describe("Get", func() {
		It("reconstructs a pending job from its row", func() {
			dbPool.ExpectQuery("SELECT status, portfolio, created_at, result, error FROM backtest_jobs").
				WithArgs(job.ID).
				WillReturnRows(pgxmock.NewRows([]string{"status", "portfolio", "created_at", "result", "error"}).
					AddRow("PENDING",
						[]byte(`{"name":"Sample","initial_value":10000,"start_date":"2024-01-01","end_date":"2024-01-31","assets":[{"ticker":"AAPL","weight":1}]}`),
						job.CreatedAt, []byte(nil), (*string)(nil)))

			found, err := store.Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(found.Status).To(Equal(jobs.StatusPending))
			Expect(found.Portfolio.Name).To(Equal("Sample"))
			Expect(found.Result).To(BeNil())
			Expect(found.Error).To(BeEmpty())
		})

		It("returns ErrNotFound when no row matches", func() {
			missing := uuid.New()
			dbPool.ExpectQuery("SELECT status, portfolio, created_at, result, error FROM backtest_jobs").
				WithArgs(missing).
				WillReturnError(pgx.ErrNoRows)

			_, err := store.Get(ctx, missing)
			Expect(err).To(MatchError(jobs.ErrNotFound))
		})
	})

	Describe("Complete", func() {
		result := &backtest.Result{Portfolio: "Sample", FinalValue: 11000}

		It("updates a PENDING row to SUCCESS", func() {
			dbPool.ExpectExec("UPDATE backtest_jobs").
				WithArgs(job.ID, "SUCCESS", pgxmock.AnyArg(), "PENDING").
				WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			Expect(store.Complete(ctx, job.ID, result)).To(Succeed())
		})

		It("returns ErrAlreadyTerminal when the guarded update matches no row", func() {
			dbPool.ExpectExec("UPDATE backtest_jobs").
				WithArgs(job.ID, "SUCCESS", pgxmock.AnyArg(), "PENDING").
				WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			dbPool.ExpectQuery("SELECT status, portfolio, created_at, result, error FROM backtest_jobs").
				WithArgs(job.ID).
				WillReturnRows(pgxmock.NewRows([]string{"status", "portfolio", "created_at", "result", "error"}).
					AddRow("FAILURE",
						[]byte(`{"name":"Sample","initial_value":10000,"start_date":"2024-01-01","end_date":"2024-01-31","assets":[{"ticker":"AAPL","weight":1}]}`),
						job.CreatedAt, []byte(nil), (*string)(nil)))

			Expect(store.Complete(ctx, job.ID, result)).To(MatchError(jobs.ErrAlreadyTerminal))
		})

		It("returns ErrNotFound when the job never existed", func() {
			dbPool.ExpectExec("UPDATE backtest_jobs").
				WithArgs(job.ID, "SUCCESS", pgxmock.AnyArg(), "PENDING").
				WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			dbPool.ExpectQuery("SELECT status, portfolio, created_at, result, error FROM backtest_jobs").
				WithArgs(job.ID).
				WillReturnError(pgx.ErrNoRows)

			Expect(store.Complete(ctx, job.ID, result)).To(MatchError(jobs.ErrNotFound))
		})
	})

	Describe("Fail", func() {
		It("updates a PENDING row to FAILURE with the reason", func() {
			dbPool.ExpectExec("UPDATE backtest_jobs").
				WithArgs(job.ID, "FAILURE", "data unavailable for AAPL", "PENDING").
				WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			Expect(store.Fail(ctx, job.ID, "data unavailable for AAPL")).To(Succeed())
		})
	})

	Describe("History", func() {
		It("lists successful jobs most recent first", func() {
			newest := uuid.New()
			oldest := uuid.New()
			now := time.Now().UTC()

			dbPool.ExpectQuery("SELECT job_id, portfolio->>'name'").
				WithArgs("SUCCESS", 50).
				WillReturnRows(pgxmock.NewRows([]string{"job_id", "name", "final_value", "created_at"}).
					AddRow(newest, "Growth", 11000.0, now).
					AddRow(oldest, "Income", 10250.5, now.Add(-24*time.Hour)))

			entries, err := store.History(ctx, 50)
			Expect(err).To(BeNil())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].JobID).To(Equal(newest))
			Expect(entries[0].PortfolioName).To(Equal("Growth"))
			Expect(entries[1].FinalValue).To(Equal(10250.5))
		})
	})

	Describe("Purge", func() {
		It("deletes terminal rows older than the cutoff", func() {
			cutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
			dbPool.ExpectExec("DELETE FROM backtest_jobs").
				WithArgs("PENDING", cutoff).
				WillReturnResult(pgxmock.NewResult("DELETE", 3))

			removed, err := store.Purge(ctx, cutoff)
			Expect(err).To(BeNil())
			Expect(removed).To(Equal(int64(3)))
		})
	})
})
