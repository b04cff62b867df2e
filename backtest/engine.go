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
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/init-51/FinInsight/data"
	"github.com/init-51/FinInsight/observability/opentelemetry"
	"github.com/init-51/FinInsight/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	// ErrInsufficientData indicates fewer than two trading dates are
	// shared by every asset in the portfolio
	ErrInsufficientData = errors.New("insufficient data: need at least 2 common trading dates")

	// ErrInvalidPrice indicates a non-positive or NaN price in an asset's
	// series. Such a value would poison every downstream return with
	// NaN/Inf, so the run is rejected before any arithmetic happens.
	ErrInvalidPrice = errors.New("series contains an invalid price")
)

// Engine computes a backtest for a validated portfolio. It is stateless
// and safe for concurrent use; every Run is a pure function of the
// portfolio and the price data returned by the provider.
type Engine struct {
	provider     data.Provider
	riskFreeRate float64
}

// NewEngine creates an Engine using the given price provider. The annual
// risk-free rate used in the Sharpe ratio comes from
// backtest.risk_free_rate; zero disables the excess-return adjustment.
func NewEngine(provider data.Provider) *Engine {
	return &Engine{
		provider:     provider,
		riskFreeRate: viper.GetFloat64("backtest.risk_free_rate"),
	}
}

// Run simulates the portfolio over its date range and derives risk/return
// metrics.
//
// Dates are aligned on the intersection of trading dates present in every
// asset's series. The intersection is chosen over a forward-filled union so
// the simulation never fabricates a price that was not observed; it is also
// deterministic, as the intersection is sorted ascending before use.
func (e *Engine) Run(ctx context.Context, p *portfolio.Portfolio) (*Result, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "engine.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("Portfolio", p.Name),
		attribute.Int("NumAssets", len(p.Assets)),
	)

	begin, end, err := p.DateRange()
	if err != nil {
		return nil, err
	}

	subLog := log.With().Str("Portfolio", p.Name).Time("Begin", begin).Time("End", end).Logger()

	series := make([][]data.EOD, len(p.Assets))
	for ii, asset := range p.Assets {
		eod, err := e.provider.GetEOD(ctx, asset.Ticker, begin, end)
		if err != nil {
			span.SetStatus(codes.Error, "data unavailable")
			subLog.Warn().Err(err).Str("Ticker", asset.Ticker).Msg("could not fetch price series")
			return nil, fmt.Errorf("data unavailable for %s: %w", asset.Ticker, err)
		}
		series[ii] = eod
	}

	dates, prices := alignSeries(series)
	if len(dates) < 2 {
		span.SetStatus(codes.Error, ErrInsufficientData.Error())
		return nil, ErrInsufficientData
	}

	for ii, asset := range p.Assets {
		for _, price := range prices[ii] {
			if price <= 0 || math.IsNaN(price) {
				span.SetStatus(codes.Error, ErrInvalidPrice.Error())
				subLog.Warn().Str("Ticker", asset.Ticker).Float64("Price", price).Msg("rejecting invalid price")
				return nil, fmt.Errorf("data unavailable for %s: %w", asset.Ticker, ErrInvalidPrice)
			}
		}
	}

	// weighted daily portfolio returns; returns[t-1] covers dates[t-1] -> dates[t]
	returns := make([]float64, len(dates)-1)
	for tt := 1; tt < len(dates); tt++ {
		var dayReturn float64
		for ii, asset := range p.Assets {
			dayReturn += asset.Weight * (prices[ii][tt]/prices[ii][tt-1] - 1)
		}
		returns[tt-1] = dayReturn
	}

	values := make([]ValuePoint, len(dates))
	value := p.InitialValue
	values[0] = ValuePoint{Date: dates[0], Value: roundTo(value, 2)}
	for tt := 1; tt < len(dates); tt++ {
		value *= 1 + returns[tt-1]
		values[tt] = ValuePoint{Date: dates[tt], Value: roundTo(value, 2)}
	}

	volatility := annualizedVolatility(returns)
	sharpe, sharpeDefined := sharpeRatio(returns, e.riskFreeRate)

	result := &Result{
		Portfolio:        p.Name,
		FinalValue:       roundTo(value, 2),
		CumulativeReturn: roundTo(value/p.InitialValue-1, 6),
		Volatility:       roundTo(volatility, 6),
		SharpeRatio:      roundTo(sharpe, 6),
		SharpeUndefined:  !sharpeDefined,
		TimeSeries:       values,
	}

	subLog.Info().
		Int("TradingDays", len(dates)).
		Float64("FinalValue", result.FinalValue).
		Float64("Volatility", result.Volatility).
		Msg("backtest complete")

	return result, nil
}

// alignSeries reduces the per-asset series to their common trading dates,
// sorted ascending, and returns the per-asset price matrix over those
// dates. Duplicate dates within a single series collapse to the last
// observation.
func alignSeries(series [][]data.EOD) ([]time.Time, [][]float64) {
	counts := make(map[time.Time]int)
	closes := make([]map[time.Time]float64, len(series))
	for ii, s := range series {
		closes[ii] = make(map[time.Time]float64, len(s))
		for _, quote := range s {
			if _, dup := closes[ii][quote.Date]; !dup {
				counts[quote.Date]++
			}
			closes[ii][quote.Date] = quote.Close
		}
	}

	dates := make([]time.Time, 0, len(counts))
	for date, cnt := range counts {
		if cnt == len(series) {
			dates = append(dates, date)
		}
	}
	sort.Slice(dates, func(a, b int) bool { return dates[a].Before(dates[b]) })

	prices := make([][]float64, len(series))
	for ii := range series {
		prices[ii] = make([]float64, len(dates))
		for tt, date := range dates {
			prices[ii][tt] = closes[ii][date]
		}
	}

	return dates, prices
}
