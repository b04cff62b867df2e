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
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/init-51/FinInsight/data"
	"github.com/init-51/FinInsight/portfolio"
	"github.com/rs/zerolog/log"
)

type tickerResponse struct {
	Ticker string `json:"ticker"`
	Valid  bool   `json:"valid"`
}

type pricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// ValidateTicker probes the market data provider for recent price history,
// letting the submission form flag unknown tickers before a job is created
func ValidateTicker(provider data.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ticker := strings.ToUpper(c.Params("ticker"))
		if ticker == "" {
			return detail(c, fiber.StatusBadRequest, "ticker must not be empty")
		}

		end := time.Now().UTC().Truncate(24 * time.Hour)
		begin := end.AddDate(0, -1, 0)

		_, err := provider.GetEOD(c.Context(), ticker, begin, end)
		if err != nil {
			if errors.Is(err, data.ErrUnknownTicker) || errors.Is(err, data.ErrNoData) {
				return c.JSON(tickerResponse{Ticker: ticker, Valid: false})
			}
			log.Error().Err(err).Str("Ticker", ticker).Msg("could not validate ticker")
			return detail(c, fiber.StatusServiceUnavailable, "market data provider unavailable")
		}

		return c.JSON(tickerResponse{Ticker: ticker, Valid: true})
	}
}

// PriceHistory returns the daily closing-price series for a ticker,
// rounded to cents. Without start_date/end_date query parameters the
// window is the last 90 days.
func PriceHistory(provider data.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ticker := strings.ToUpper(c.Params("ticker"))
		if ticker == "" {
			return detail(c, fiber.StatusBadRequest, "ticker must not be empty")
		}

		end := time.Now().UTC().Truncate(24 * time.Hour)
		begin := end.AddDate(0, 0, -90)

		if raw := c.Query("start_date"); raw != "" {
			parsed, err := time.Parse(portfolio.DateFormat, raw)
			if err != nil {
				return detail(c, fiber.StatusBadRequest, fmt.Sprintf("start_date %q is not a valid date (expected YYYY-MM-DD)", raw))
			}
			begin = parsed
		}
		if raw := c.Query("end_date"); raw != "" {
			parsed, err := time.Parse(portfolio.DateFormat, raw)
			if err != nil {
				return detail(c, fiber.StatusBadRequest, fmt.Sprintf("end_date %q is not a valid date (expected YYYY-MM-DD)", raw))
			}
			end = parsed
		}
		if !begin.Before(end) {
			return detail(c, fiber.StatusBadRequest, "start_date must be before end_date")
		}

		eod, err := provider.GetEOD(c.Context(), ticker, begin, end)
		if err != nil {
			if errors.Is(err, data.ErrUnknownTicker) || errors.Is(err, data.ErrNoData) {
				return detail(c, fiber.StatusBadRequest, fmt.Sprintf("no data available for ticker %s", ticker))
			}
			log.Error().Err(err).Str("Ticker", ticker).Msg("could not fetch price history")
			return detail(c, fiber.StatusServiceUnavailable, "market data provider unavailable")
		}

		prices := make([]pricePoint, 0, len(eod))
		for _, quote := range eod {
			prices = append(prices, pricePoint{
				Date:  quote.Date.Format(portfolio.DateFormat),
				Close: math.Round(quote.Close*100) / 100,
			})
		}
		return c.JSON(prices)
	}
}
