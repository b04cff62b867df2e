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

package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/init-51/FinInsight/data"
	"github.com/init-51/FinInsight/handler"
	"github.com/init-51/FinInsight/jobs"
)

// SetupRoutes registers the API surface on the fiber app
func SetupRoutes(app *fiber.App, svc *jobs.Service, provider data.Provider, queue jobs.Queue) {
	app.Get("/health", handler.Health(queue))

	api := app.Group("/v1")

	jobGroup := api.Group("/jobs")
	jobGroup.Post("/backtest", handler.SubmitBacktest(svc))
	jobGroup.Get("/status/:id", handler.JobStatus(svc))
	jobGroup.Get("/results/:id", handler.JobResults(svc))
	jobGroup.Get("/history", handler.JobHistory(svc))

	dataGroup := api.Group("/data")
	dataGroup.Get("/validate/:ticker", handler.ValidateTicker(provider))
	dataGroup.Get("/price/:ticker", handler.PriceHistory(provider))
}
