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

package common_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/init-51/FinInsight/common"
)

var _ = Describe("Compress", func() {
	It("round-trips a byte slice through the lz4 frame", func() {
		in := []byte(strings.Repeat("daily closing prices ", 64))

		compressed, err := common.Compress(in)
		Expect(err).To(BeNil())
		Expect(len(compressed)).To(BeNumerically("<", len(in)))

		out, err := common.Decompress(compressed)
		Expect(err).To(BeNil())
		Expect(bytes.Equal(out, in)).To(BeTrue())
	})

	It("round-trips an empty slice", func() {
		compressed, err := common.Compress(nil)
		Expect(err).To(BeNil())

		out, err := common.Decompress(compressed)
		Expect(err).To(BeNil())
		Expect(out).To(BeEmpty())
	})
})

var _ = Describe("Cache", func() {
	BeforeEach(func() {
		common.SetupCache()
	})

	It("stores and retrieves a value", func() {
		Expect(common.CacheSet("eod:TEST", []byte(`[{"date":"2024-01-02","close":100}]`))).To(Succeed())

		val, err := common.CacheGet("eod:TEST")
		Expect(err).To(BeNil())
		Expect(string(val)).To(ContainSubstring("2024-01-02"))
	})

	It("misses on an unknown key", func() {
		_, err := common.CacheGet("eod:NEVER-SET")
		Expect(err).To(MatchError(common.ErrCacheMiss))
	})
})
