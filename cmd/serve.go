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

package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/init-51/FinInsight/backtest"
	"github.com/init-51/FinInsight/common"
	"github.com/init-51/FinInsight/data"
	"github.com/init-51/FinInsight/database"
	"github.com/init-51/FinInsight/jobs"
	"github.com/init-51/FinInsight/middleware"
	"github.com/init-51/FinInsight/observability/opentelemetry"
	"github.com/init-51/FinInsight/router"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	if err := viper.BindEnv("server.port", "PORT"); err != nil {
		panic(err)
	}
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	if err := viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port")); err != nil {
		panic(err)
	}

	serveCmd.Flags().IntP("workers", "w", 4, "Number of backtest workers")
	if err := viper.BindPFlag("jobs.workers", serveCmd.Flags().Lookup("workers")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the FinInsight API server",
	Long:  `Run the HTTP server together with the backtest worker pool`,
	Run: func(_ *cobra.Command, _ []string) {
		common.SetupLogging()
		common.SetupCache()

		ctx, cancelWorkers := context.WithCancel(context.Background())
		defer cancelWorkers()

		if viper.GetString("otlp.endpoint") != "" {
			shutdown, err := opentelemetry.Setup()
			if err != nil {
				log.Fatal().Err(err).Msg("could not initialize tracing")
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Error().Err(err).Msg("could not flush traces")
				}
			}()
		}

		store := buildStore(ctx)
		queue := buildQueue()
		defer queue.Close()

		provider := data.NewTiingo()
		engine := backtest.NewEngine(provider)
		svc := jobs.NewService(store, queue)

		pool := jobs.NewPool(store, queue, engine, viper.GetInt("jobs.workers"))
		pool.Start(ctx)

		// reap expired jobs once a day
		scheduler := gocron.NewScheduler(time.UTC)
		if _, err := scheduler.Every(1).Day().Do(func() {
			cutoff := time.Now().AddDate(0, 0, -viper.GetInt("jobs.retention_days"))
			removed, err := store.Purge(context.Background(), cutoff)
			if err != nil {
				log.Error().Err(err).Msg("scheduled purge failed")
				return
			}
			log.Info().Int64("NumRemoved", removed).Msg("purged expired jobs")
		}); err != nil {
			log.Error().Err(err).Msg("could not schedule job purge")
		}
		scheduler.StartAsync()
		defer scheduler.Stop()

		app := fiber.New(fiber.Config{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		})

		app.Use(recover.New())
		app.Use(cors.New(cors.Config{
			AllowOrigins: viper.GetString("server.cors_origins"),
			AllowHeaders: "*",
			AllowMethods: "GET,POST,HEAD",
		}))
		app.Use(middleware.NewLogger())

		router.SetupRoutes(app, svc, provider, queue)

		// shutdown cleanly on interrupt
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			sig := <-c
			log.Info().Str("Signal", sig.String()).Msg("shutting down")
			cancelWorkers()
			if err := app.Shutdown(); err != nil {
				log.Error().Err(err).Msg("could not shut down server")
			}
		}()

		if err := app.Listen(":" + viper.GetString("server.port")); err != nil {
			log.Fatal().Err(err).Msg("server exited with error")
		}
	},
}

// buildStore selects the Postgres store when database.url is configured
// and otherwise falls back to the in-memory store
func buildStore(ctx context.Context) jobs.Store {
	if viper.GetString("database.url") == "" {
		log.Warn().Msg("no database configured; jobs will not survive a restart")
		return jobs.NewMemoryStore()
	}

	if err := database.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
	store := jobs.NewPgStore()
	if err := store.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("could not migrate job store")
	}
	return store
}

// buildQueue selects the Redis queue when queue.redis_url is configured
// and otherwise falls back to the in-memory queue
func buildQueue() jobs.Queue {
	if viper.GetString("queue.redis_url") == "" {
		log.Warn().Msg("no redis configured; using in-process job queue")
		return jobs.NewMemoryQueue(viper.GetInt("jobs.queue_size"))
	}

	queue, err := jobs.NewRedisQueue()
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to job queue")
	}
	return queue
}
