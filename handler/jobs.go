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

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/init-51/FinInsight/backtest"
	"github.com/init-51/FinInsight/jobs"
	"github.com/init-51/FinInsight/portfolio"
	"github.com/rs/zerolog/log"
)

type backtestRequest struct {
	Portfolio *portfolio.Portfolio `json:"portfolio"`
}

type submitResponse struct {
	JobID uuid.UUID `json:"job_id"`
}

type statusResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
}

type resultResponse struct {
	JobID  uuid.UUID        `json:"job_id"`
	Status string           `json:"status"`
	Result *backtest.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func detail(c *fiber.Ctx, status int, reason string) error {
	return c.Status(status).JSON(fiber.Map{"detail": reason})
}

// SubmitBacktest admits a new backtest job. Validation runs synchronously;
// a rejected portfolio never creates a job.
func SubmitBacktest(svc *jobs.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req backtestRequest
		if err := c.BodyParser(&req); err != nil {
			log.Warn().Err(err).Msg("could not parse backtest request body")
			return detail(c, fiber.StatusBadRequest, "request body is not valid JSON")
		}
		if req.Portfolio == nil {
			return detail(c, fiber.StatusBadRequest, "request must include a portfolio")
		}

		id, err := svc.Submit(c.Context(), req.Portfolio)
		if err != nil {
			var validationErr *portfolio.ValidationError
			if errors.As(err, &validationErr) {
				return detail(c, fiber.StatusUnprocessableEntity, validationErr.Reason)
			}
			log.Error().Err(err).Msg("could not submit job")
			return detail(c, fiber.StatusInternalServerError, "could not submit job")
		}

		return c.Status(fiber.StatusAccepted).JSON(submitResponse{JobID: id})
	}
}

// JobStatus reports the current lifecycle state of a job
func JobStatus(svc *jobs.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return detail(c, fiber.StatusNotFound, "job not found")
		}

		job, err := svc.Status(c.Context(), id)
		if err != nil {
			if errors.Is(err, jobs.ErrNotFound) {
				return detail(c, fiber.StatusNotFound, "job not found")
			}
			log.Error().Err(err).Str("JobID", id.String()).Msg("could not read job status")
			return detail(c, fiber.StatusInternalServerError, "could not read job status")
		}

		return c.JSON(statusResponse{
			JobID:  job.ID,
			Status: job.Status.String(),
			Error:  job.Error,
		})
	}
}

// JobResults returns the stored result or error for a terminal job. For a
// PENDING job the response carries the status alone, signalling "not ready
// yet" rather than an error.
func JobResults(svc *jobs.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return detail(c, fiber.StatusNotFound, "job not found")
		}

		job, err := svc.Result(c.Context(), id)
		if err != nil {
			if errors.Is(err, jobs.ErrNotFound) {
				return detail(c, fiber.StatusNotFound, "job not found")
			}
			log.Error().Err(err).Str("JobID", id.String()).Msg("could not read job result")
			return detail(c, fiber.StatusInternalServerError, "could not read job result")
		}

		return c.JSON(resultResponse{
			JobID:  job.ID,
			Status: job.Status.String(),
			Result: job.Result,
			Error:  job.Error,
		})
	}
}

// JobHistory lists completed backtests, most recent first
func JobHistory(svc *jobs.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := svc.History(c.Context())
		if err != nil {
			log.Error().Err(err).Msg("could not list job history")
			return detail(c, fiber.StatusInternalServerError, "could not list job history")
		}
		return c.JSON(entries)
	}
}
