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
	"time"

	"github.com/goccy/go-json"
	"github.com/init-51/FinInsight/portfolio"
)

// ValuePoint is the portfolio value on a single trading day
type ValuePoint struct {
	Date  time.Time
	Value float64
}

type valuePointJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

func (v ValuePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(valuePointJSON{
		Date:  v.Date.Format(portfolio.DateFormat),
		Value: v.Value,
	})
}

func (v *ValuePoint) UnmarshalJSON(raw []byte) error {
	var wire valuePointJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	date, err := time.Parse(portfolio.DateFormat, wire.Date)
	if err != nil {
		return err
	}
	v.Date = date
	v.Value = wire.Value
	return nil
}

// Result is the terminal output of a successful backtest. Metric fields are
// rounded to 6 decimal places and portfolio values to 2, so a marshaled
// Result is byte-stable across runs over identical inputs.
type Result struct {
	Portfolio        string       `json:"portfolio"`
	FinalValue       float64      `json:"final_value"`
	CumulativeReturn float64      `json:"cumulative_return"`
	Volatility       float64      `json:"volatility"`
	SharpeRatio      float64      `json:"sharpe_ratio"`
	SharpeUndefined  bool         `json:"sharpe_undefined,omitempty"`
	TimeSeries       []ValuePoint `json:"timeseries"`
}

func roundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}
