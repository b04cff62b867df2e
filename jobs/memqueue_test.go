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

package jobs_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/init-51/FinInsight/jobs"
)

var _ = Describe("MemoryQueue", func() {
	var (
		queue *jobs.MemoryQueue
		ctx   context.Context
	)

	BeforeEach(func() {
		queue = jobs.NewMemoryQueue(2)
		ctx = context.Background()
	})

	It("delivers ids in FIFO order", func() {
		first := uuid.New()
		second := uuid.New()
		Expect(queue.Enqueue(ctx, first)).To(Succeed())
		Expect(queue.Enqueue(ctx, second)).To(Succeed())

		id, err := queue.Dequeue(ctx)
		Expect(err).To(BeNil())
		Expect(id).To(Equal(first))

		id, err = queue.Dequeue(ctx)
		Expect(err).To(BeNil())
		Expect(id).To(Equal(second))
	})

	It("rejects enqueues past capacity without blocking", func() {
		Expect(queue.Enqueue(ctx, uuid.New())).To(Succeed())
		Expect(queue.Enqueue(ctx, uuid.New())).To(Succeed())
		Expect(queue.Enqueue(ctx, uuid.New())).To(MatchError(jobs.ErrQueueFull))
	})

	It("unblocks a waiting dequeue on context cancellation", func() {
		cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := queue.Dequeue(cancelCtx)
		Expect(err).To(MatchError(context.DeadlineExceeded))
	})

	It("reports ErrQueueClosed after Close", func() {
		Expect(queue.Close()).To(Succeed())
		Expect(queue.Enqueue(ctx, uuid.New())).To(MatchError(jobs.ErrQueueClosed))
		_, err := queue.Dequeue(ctx)
		Expect(err).To(MatchError(jobs.ErrQueueClosed))
	})

	It("tolerates a double Close", func() {
		Expect(queue.Close()).To(Succeed())
		Expect(queue.Close()).To(Succeed())
	})
})
