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
	"time"

	"github.com/init-51/FinInsight/common"
	"github.com/init-51/FinInsight/database"
	"github.com/init-51/FinInsight/jobs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	purgeCmd.Flags().IntP("retention-days", "r", 30, "Delete finished jobs older than this many days")
	if err := viper.BindPFlag("jobs.retention_days", purgeCmd.Flags().Lookup("retention-days")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(purgeCmd)
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete finished jobs older than the retention window",
	Run: func(_ *cobra.Command, _ []string) {
		common.SetupLogging()

		ctx := context.Background()
		if err := database.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}

		store := jobs.NewPgStore()
		cutoff := time.Now().AddDate(0, 0, -viper.GetInt("jobs.retention_days"))

		removed, err := store.Purge(ctx, cutoff)
		if err != nil {
			log.Fatal().Err(err).Msg("purge failed")
		}
		log.Info().Int64("NumRemoved", removed).Time("Cutoff", cutoff).Msg("purged expired jobs")
	},
}
