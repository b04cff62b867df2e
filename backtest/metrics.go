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

package backtest

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization convention for daily returns
const TradingDaysPerYear = 252

// annualizedVolatility is the sample standard deviation of daily returns
// scaled by sqrt(252). Fewer than two returns have no spread; report 0.
func annualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(TradingDaysPerYear)
}

// sharpeRatio computes the annualized Sharpe ratio of daily returns in
// excess of the annual risk-free rate. When volatility is zero the ratio is
// undefined; the second return value is false and the caller must surface
// the sentinel instead of a division-by-zero artifact.
func sharpeRatio(returns []float64, annualRiskFree float64) (float64, bool) {
	if len(returns) < 2 {
		return 0, false
	}
	stdev := stat.StdDev(returns, nil)
	if stdev <= 0 || math.IsNaN(stdev) {
		return 0, false
	}
	dailyRiskFree := annualRiskFree / TradingDaysPerYear
	excess := stat.Mean(returns, nil) - dailyRiskFree
	return excess / stdev * math.Sqrt(TradingDaysPerYear), true
}
