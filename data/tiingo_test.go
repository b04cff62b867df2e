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

package data_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/init-51/FinInsight/data"
)

func tiingoURL(ticker string) string {
	return fmt.Sprintf("https://api.tiingo.com/tiingo/daily/%s/prices?startDate=2024-01-01&endDate=2024-01-31&resampleFreq=daily&token=TEST", ticker)
}

var _ = Describe("Tiingo", func() {
	var (
		ctx        context.Context
		provider   *data.Tiingo
		begin, end time.Time
	)

	BeforeEach(func() {
		viper.Set("data.tiingo_token", "TEST")
		viper.Set("data.tiingo_url", "https://api.tiingo.com")

		ctx = context.Background()
		provider = data.NewTiingo()
		begin = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	})

	AfterEach(func() {
		httpmock.Reset()
	})

	It("parses quotes and keeps the adjusted close", func() {
		httpmock.RegisterResponder("GET", tiingoURL("AAPL"),
			httpmock.NewStringResponder(200, `[
				{"date":"2024-01-02T00:00:00.000Z","close":185.64,"adjClose":184.90},
				{"date":"2024-01-03T00:00:00.000Z","close":184.25,"adjClose":183.52}
			]`))

		eod, err := provider.GetEOD(ctx, "AAPL", begin, end)
		Expect(err).To(BeNil())
		Expect(eod).To(HaveLen(2))
		Expect(eod[0].Date).To(Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
		Expect(eod[0].Close).To(Equal(184.90))
		Expect(eod[1].Close).To(Equal(183.52))
	})

	It("falls back to the raw close when adjClose is absent", func() {
		httpmock.RegisterResponder("GET", tiingoURL("NOADJ"),
			httpmock.NewStringResponder(200, `[
				{"date":"2024-01-02T00:00:00.000Z","close":52.25},
				{"date":"2024-01-03T00:00:00.000Z","close":53.10,"adjClose":52.80}
			]`))

		eod, err := provider.GetEOD(ctx, "NOADJ", begin, end)
		Expect(err).To(BeNil())
		Expect(eod[0].Close).To(Equal(52.25))
		Expect(eod[1].Close).To(Equal(52.80))
	})

	It("accepts dates without a time component", func() {
		httpmock.RegisterResponder("GET", tiingoURL("VTI"),
			httpmock.NewStringResponder(200, `[
				{"date":"2024-01-02","close":240.11,"adjClose":239.87},
				{"date":"2024-01-03","close":238.92,"adjClose":238.68}
			]`))

		eod, err := provider.GetEOD(ctx, "VTI", begin, end)
		Expect(err).To(BeNil())
		Expect(eod[1].Date).To(Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
	})

	It("serves a repeated range from cache without a second request", func() {
		httpmock.RegisterResponder("GET", tiingoURL("MSFT"),
			httpmock.NewStringResponder(200, `[
				{"date":"2024-01-02T00:00:00.000Z","close":370.87,"adjClose":369.95},
				{"date":"2024-01-03T00:00:00.000Z","close":372.52,"adjClose":371.60}
			]`))

		first, err := provider.GetEOD(ctx, "MSFT", begin, end)
		Expect(err).To(BeNil())

		callsAfterFirst := httpmock.GetTotalCallCount()
		second, err := provider.GetEOD(ctx, "MSFT", begin, end)
		Expect(err).To(BeNil())
		Expect(second).To(Equal(first))
		Expect(httpmock.GetTotalCallCount()).To(Equal(callsAfterFirst))
	})

	It("maps 404 to ErrUnknownTicker", func() {
		httpmock.RegisterResponder("GET", tiingoURL("ZZZZ"),
			httpmock.NewStringResponder(404, `{"detail":"Not found."}`))

		_, err := provider.GetEOD(ctx, "ZZZZ", begin, end)
		Expect(errors.Is(err, data.ErrUnknownTicker)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("ZZZZ"))
	})

	It("maps other error statuses to ErrProviderStatus", func() {
		httpmock.RegisterResponder("GET", tiingoURL("RATED"),
			httpmock.NewStringResponder(429, `{"detail":"Too many requests."}`))

		_, err := provider.GetEOD(ctx, "RATED", begin, end)
		Expect(errors.Is(err, data.ErrProviderStatus)).To(BeTrue())
	})

	It("maps an empty series to ErrNoData", func() {
		httpmock.RegisterResponder("GET", tiingoURL("EMPTY"),
			httpmock.NewStringResponder(200, `[]`))

		_, err := provider.GetEOD(ctx, "EMPTY", begin, end)
		Expect(errors.Is(err, data.ErrNoData)).To(BeTrue())
	})

	It("rejects an inverted time range without a request", func() {
		_, err := provider.GetEOD(ctx, "AAPL", end, begin)
		Expect(err).To(MatchError(data.ErrInvalidTimeRange))
	})
})
