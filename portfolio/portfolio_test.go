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

package portfolio_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/init-51/FinInsight/portfolio"
)

func validPortfolio() *portfolio.Portfolio {
	return &portfolio.Portfolio{
		Name:         "Test",
		InitialValue: 10000,
		StartDate:    "2024-01-01",
		EndDate:      "2024-12-31",
		Assets: []portfolio.Asset{
			{Ticker: "AAPL", Weight: 0.5},
			{Ticker: "MSFT", Weight: 0.5},
		},
	}
}

var _ = Describe("Validate", func() {
	BeforeEach(func() {
		viper.Set("backtest.max_range_years", 30)
	})

	Context("with a well-formed portfolio", func() {
		It("accepts it", func() {
			Expect(validPortfolio().Validate()).To(Succeed())
		})

		It("accepts weights summing to exactly 1.0", func() {
			p := validPortfolio()
			p.Assets = []portfolio.Asset{{Ticker: "VTI", Weight: 1.0}}
			Expect(p.Validate()).To(Succeed())
		})

		It("accepts weights within the 0.001 tolerance", func() {
			p := validPortfolio()
			p.Assets = []portfolio.Asset{
				{Ticker: "AAPL", Weight: 0.5},
				{Ticker: "MSFT", Weight: 0.5004},
			}
			Expect(p.Validate()).To(Succeed())
		})

		It("normalizes tickers to uppercase", func() {
			p := validPortfolio()
			p.Assets[0].Ticker = "aapl"
			Expect(p.Validate()).To(Succeed())
			Expect(p.Assets[0].Ticker).To(Equal("AAPL"))
		})
	})

	Context("with a malformed portfolio", func() {
		It("rejects an empty name", func() {
			p := validPortfolio()
			p.Name = "  "
			err := p.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("name"))
		})

		It("rejects a non-positive initial value", func() {
			p := validPortfolio()
			p.InitialValue = 0
			err := p.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("initial_value"))
		})

		It("rejects an unparseable start date", func() {
			p := validPortfolio()
			p.StartDate = "01/02/2024"
			err := p.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("start_date"))
		})

		It("rejects start on or after end", func() {
			p := validPortfolio()
			p.StartDate = "2024-12-31"
			err := p.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("before"))
		})

		It("rejects a range longer than the configured maximum", func() {
			p := validPortfolio()
			p.StartDate = "1960-01-01"
			err := p.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("maximum"))
		})

		It("rejects an empty asset list", func() {
			p := validPortfolio()
			p.Assets = nil
			err := p.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("at least one asset"))
		})

		It("rejects an empty ticker", func() {
			p := validPortfolio()
			p.Assets[1].Ticker = ""
			err := p.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("empty ticker"))
		})

		It("rejects duplicate tickers case-insensitively", func() {
			p := validPortfolio()
			p.Assets[1].Ticker = "aapl"
			err := p.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("duplicate ticker AAPL"))
		})

		It("rejects a weight outside [0, 1]", func() {
			p := validPortfolio()
			p.Assets[0].Weight = 1.5
			p.Assets[1].Weight = -0.5
			err := p.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("between 0 and 1"))
		})

		It("rejects weights summing to 0.8 with a weight-sum reason", func() {
			p := validPortfolio()
			p.Assets[1].Weight = 0.3
			err := p.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("weights must sum to 1.0"))
		})

		It("returns a *ValidationError", func() {
			p := validPortfolio()
			p.Name = ""
			var validationErr *portfolio.ValidationError
			Expect(p.Validate()).To(BeAssignableToTypeOf(validationErr))
		})
	})
})

var _ = Describe("DateRange", func() {
	It("parses both dates", func() {
		p := validPortfolio()
		begin, end, err := p.DateRange()
		Expect(err).To(BeNil())
		Expect(begin.Year()).To(Equal(2024))
		Expect(end.Month()).To(Equal(time.December))
	})
})
