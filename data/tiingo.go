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
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"context"

	"github.com/goccy/go-json"
	"github.com/init-51/FinInsight/common"
	"github.com/init-51/FinInsight/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Tiingo retrieves adjusted end-of-day prices from the Tiingo REST API.
// Responses are memoized in the shared cache; the cache key covers ticker
// and date range so repeated backtests over the same window do not hit the
// network a second time.
type Tiingo struct {
	apikey  string
	baseURL string
}

type tiingoEODResponse struct {
	Date     string  `json:"date"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjClose"`
}

// NewTiingo creates a Tiingo data provider using the API token and base
// URL from configuration
func NewTiingo() *Tiingo {
	return &Tiingo{
		apikey:  viper.GetString("data.tiingo_token"),
		baseURL: viper.GetString("data.tiingo_url"),
	}
}

// GetEOD implements Provider
func (t *Tiingo) GetEOD(ctx context.Context, ticker string, begin, end time.Time) ([]EOD, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "tiingo.GetEOD")
	defer span.End()

	if !begin.Before(end) {
		return nil, ErrInvalidTimeRange
	}

	subLog := log.With().Str("Ticker", ticker).Time("Begin", begin).Time("End", end).Logger()

	cacheKey := fmt.Sprintf("eod:%s:%s:%s", ticker, begin.Format("2006-01-02"), end.Format("2006-01-02"))
	if raw, err := common.CacheGet(cacheKey); err == nil && len(raw) > 0 {
		var eod []EOD
		if err := json.Unmarshal(raw, &eod); err == nil {
			return eod, nil
		}
		subLog.Warn().Str("CacheKey", cacheKey).Msg("discarding unreadable cache entry")
	}

	url := fmt.Sprintf("%s/tiingo/daily/%s/prices?startDate=%s&endDate=%s&resampleFreq=daily&token=%s",
		t.baseURL, ticker, begin.Format("2006-01-02"), end.Format("2006-01-02"), t.apikey)

	span.SetAttributes(
		attribute.String("Ticker", ticker),
		attribute.String("Begin", begin.Format("2006-01-02")),
		attribute.String("End", end.Format("2006-01-02")),
	)

	resp, err := http.Get(url)
	if err != nil {
		span.RecordError(err)
		msg := "tiingo http request failed"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		span.SetStatus(codes.Error, "ticker not found")
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	if resp.StatusCode >= 400 {
		msg := "tiingo returned invalid response code"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Int("StatusCode", resp.StatusCode).Msg(msg)
		return nil, fmt.Errorf("%w: %d", ErrProviderStatus, resp.StatusCode)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		subLog.Error().Err(err).Msg("could not read tiingo body")
		return nil, err
	}

	jsonResp := []tiingoEODResponse{}
	if err := json.Unmarshal(body, &jsonResp); err != nil {
		span.RecordError(err)
		subLog.Error().Err(err).Bytes("Body", body).Msg("could not unmarshal tiingo json")
		return nil, err
	}

	if len(jsonResp) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	eod := make([]EOD, 0, len(jsonResp))
	for _, quote := range jsonResp {
		// tiingo dates carry a time component; only the calendar day matters
		date, err := time.Parse(time.RFC3339, quote.Date)
		if err != nil {
			if date, err = time.Parse("2006-01-02", quote.Date); err != nil {
				subLog.Error().Err(err).Str("Date", quote.Date).Msg("could not parse quote date")
				return nil, err
			}
		}
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

		// some payloads omit adjClose, which decodes as 0; fall back to
		// the raw close rather than emit an unusable price
		close := quote.AdjClose
		if close == 0 {
			close = quote.Close
		}
		eod = append(eod, EOD{Date: date, Close: close})
	}

	if raw, err := json.Marshal(eod); err == nil {
		if err := common.CacheSet(cacheKey, raw); err != nil {
			subLog.Warn().Err(err).Msg("could not cache eod series")
		}
	}

	return eod, nil
}
