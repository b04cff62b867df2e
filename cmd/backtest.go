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
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/init-51/FinInsight/backtest"
	"github.com/init-51/FinInsight/common"
	"github.com/init-51/FinInsight/data"
	"github.com/init-51/FinInsight/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(backtestCmd)
}

var backtestCmd = &cobra.Command{
	Use:   "backtest portfolio.json",
	Short: "Run a single backtest synchronously",
	Long:  `Run a backtest for the portfolio described in a JSON file and print the result`,
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		common.SetupLogging()
		common.SetupCache()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("File", args[0]).Msg("could not read portfolio file")
		}

		p := &portfolio.Portfolio{}
		if err := json.Unmarshal(raw, p); err != nil {
			log.Fatal().Err(err).Msg("could not unmarshal portfolio json")
		}

		if err := p.Validate(); err != nil {
			log.Fatal().Err(err).Msg("portfolio rejected")
		}

		engine := backtest.NewEngine(data.NewTiingo())
		result, err := engine.Run(context.Background(), p)
		if err != nil {
			log.Fatal().Err(err).Msg("backtest failed")
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal result")
		}
		fmt.Println(string(out))
	},
}
