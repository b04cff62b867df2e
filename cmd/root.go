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
	"fmt"
	"os"

	"github.com/init-51/FinInsight/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cobra.OnInitialize(setDefaults)

	// Database
	if err := viper.BindEnv("database.url", "DATABASE_URL"); err != nil {
		panic(err)
	}
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string (in-memory store when empty)")
	if err := viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database-url")); err != nil {
		panic(err)
	}

	// Queue
	if err := viper.BindEnv("queue.redis_url", "REDIS_URL"); err != nil {
		panic(err)
	}
	rootCmd.PersistentFlags().String("queue-redis-url", "", "Redis connection string for the job queue (in-memory queue when empty)")
	if err := viper.BindPFlag("queue.redis_url", rootCmd.PersistentFlags().Lookup("queue-redis-url")); err != nil {
		panic(err)
	}

	// Market data
	if err := viper.BindEnv("data.tiingo_token", "TIINGO_TOKEN"); err != nil {
		panic(err)
	}
	rootCmd.PersistentFlags().String("tiingo-token", "", "Tiingo API token")
	if err := viper.BindPFlag("data.tiingo_token", rootCmd.PersistentFlags().Lookup("tiingo-token")); err != nil {
		panic(err)
	}

	// Logging
	if err := viper.BindEnv("log.level", "FININSIGHT_LOG_LEVEL"); err != nil {
		panic(err)
	}
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level")
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		panic(err)
	}

	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to file path, `stdout`, or `stderr`")
	if err := viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output")); err != nil {
		panic(err)
	}

	rootCmd.PersistentFlags().Bool("log-pretty", false, "Use human-friendly console log output")
	if err := viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty")); err != nil {
		panic(err)
	}
}

// setDefaults fixes configuration values not commonly overridden
func setDefaults() {
	viper.SetDefault("data.tiingo_url", "https://api.tiingo.com")
	viper.SetDefault("backtest.risk_free_rate", 0.02)
	viper.SetDefault("backtest.max_range_years", 30)
	viper.SetDefault("jobs.history_limit", 50)
	viper.SetDefault("jobs.queue_size", 256)
	viper.SetDefault("jobs.retention_days", 30)
	viper.SetDefault("cache.local_size", 1024)
	viper.SetDefault("cache.ttl_secs", 86400)
}

var rootCmd = &cobra.Command{
	Use:     "fininsight",
	Version: common.CurrentVersion.String(),
	Short:   "FinInsight is a portfolio backtesting service",
	Long: `FinInsight runs historical portfolio backtests as asynchronous jobs.
Clients submit a portfolio over HTTP, poll for completion, and retrieve a
daily value series with risk/return metrics.`,
}

// Execute runs the selected subcommand
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
