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

package data

import (
	"context"
	"time"
)

// EOD is a single end-of-day observation for a ticker. Close is the
// split- and dividend-adjusted closing price.
type EOD struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Provider retrieves daily closing-price series for a ticker over a date
// range. Implementations must return observations in ascending date order
// with no duplicate dates.
type Provider interface {
	// GetEOD returns daily closes for ticker over [begin, end], inclusive.
	// Returns ErrUnknownTicker if the provider has never heard of the
	// ticker and ErrNoData if it has no observations in the range.
	GetEOD(ctx context.Context, ticker string, begin, end time.Time) ([]EOD, error)
}
