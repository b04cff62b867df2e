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

package portfolio

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DateFormat is the wire format for all calendar dates
	DateFormat = "2006-01-02"

	// WeightTolerance is the maximum absolute deviation of the weight sum from 1.0
	WeightTolerance = 0.001
)

// Asset is a single position in a portfolio
type Asset struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// Portfolio describes a fixed-weight portfolio over a historical date range.
// A portfolio is immutable once it has been accepted for backtesting.
type Portfolio struct {
	Name         string  `json:"name"`
	InitialValue float64 `json:"initial_value"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Assets       []Asset `json:"assets"`
}

// ValidationError is a user-facing rejection reason; it is returned by
// Validate and surfaced verbatim to the submitting client
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func rejected(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// DateRange returns the parsed start and end dates. Call Validate first;
// DateRange on an unvalidated portfolio may return an error.
func (p *Portfolio) DateRange() (time.Time, time.Time, error) {
	begin, err := time.Parse(DateFormat, p.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(DateFormat, p.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return begin, end, nil
}

// Validate checks the portfolio for structural and numeric validity. Checks
// run in a fixed order and short-circuit on the first failure; the returned
// *ValidationError carries a reason identifying the rule that failed.
// Tickers are normalized to uppercase as a side effect of acceptance.
//
// Validate performs no I/O.
func (p *Portfolio) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return rejected("portfolio name must not be empty")
	}

	if p.InitialValue <= 0 {
		return rejected("initial_value must be a positive number")
	}

	begin, err := time.Parse(DateFormat, p.StartDate)
	if err != nil {
		return rejected("start_date %q is not a valid date (expected YYYY-MM-DD)", p.StartDate)
	}
	end, err := time.Parse(DateFormat, p.EndDate)
	if err != nil {
		return rejected("end_date %q is not a valid date (expected YYYY-MM-DD)", p.EndDate)
	}
	if !begin.Before(end) {
		return rejected("start_date must be before end_date")
	}

	// bound engine runtime at admission; the engine has no natural
	// suspension points so over-long ranges are rejected here
	if maxYears := viper.GetInt("backtest.max_range_years"); maxYears > 0 {
		if end.After(begin.AddDate(maxYears, 0, 0)) {
			return rejected("date range exceeds maximum of %d years", maxYears)
		}
	}

	if len(p.Assets) == 0 {
		return rejected("portfolio must contain at least one asset")
	}

	seen := make(map[string]bool, len(p.Assets))
	for ii := range p.Assets {
		ticker := strings.ToUpper(strings.TrimSpace(p.Assets[ii].Ticker))
		if ticker == "" {
			return rejected("asset %d has an empty ticker", ii)
		}
		if seen[ticker] {
			return rejected("duplicate ticker %s", ticker)
		}
		seen[ticker] = true
		p.Assets[ii].Ticker = ticker
	}

	var sum float64
	for _, asset := range p.Assets {
		if asset.Weight < 0 || asset.Weight > 1 {
			return rejected("weight for %s must be between 0 and 1", asset.Ticker)
		}
		sum += asset.Weight
	}

	if math.Abs(sum-1.0) > WeightTolerance {
		return rejected("asset weights must sum to 1.0 (got %.4f)", sum)
	}

	return nil
}
