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
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/init-51/FinInsight/database"
	"github.com/init-51/FinInsight/jobs"
)

type healthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Database string `json:"database,omitempty"`
	Queue    string `json:"queue,omitempty"`
}

// queuePinger is implemented by queue backends with a remote connection
// worth probing; the in-process queue is not one of them
type queuePinger interface {
	Ping(ctx context.Context) error
}

// Health is the liveness probe. Configured components (database, remote
// queue) report their reachability without failing the probe; the process
// itself is alive either way.
func Health(queue jobs.Queue) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := healthResponse{
			Status: "ok",
			Time:   time.Now().UTC().Format(time.RFC3339),
		}

		if pool := database.Pool(); pool != nil {
			resp.Database = "ok"
			if err := pool.Ping(c.Context()); err != nil {
				resp.Database = "unreachable"
			}
		}

		if pinger, ok := queue.(queuePinger); ok {
			resp.Queue = "ok"
			if err := pinger.Ping(c.Context()); err != nil {
				resp.Queue = "unreachable"
			}
		}

		return c.JSON(resp)
	}
}
