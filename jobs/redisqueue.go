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

package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// RedisQueue is a Queue backed by a Redis list: Enqueue LPUSHes the job id
// and consumers BRPOP it, giving FIFO delivery shared by every worker
// process pointed at the same key.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue connects a queue to the Redis instance at queue.redis_url,
// using queue.redis_key as the list key
func NewRedisQueue() (*RedisQueue, error) {
	opt, err := redis.ParseURL(viper.GetString("queue.redis_url"))
	if err != nil {
		log.Error().Err(err).Msg("could not parse queue redis URL")
		return nil, err
	}

	key := viper.GetString("queue.redis_key")
	if key == "" {
		key = "fininsight:jobs"
	}

	return &RedisQueue{
		client: redis.NewClient(opt),
		key:    key,
	}, nil
}

// Enqueue implements Queue
func (q *RedisQueue) Enqueue(ctx context.Context, id uuid.UUID) error {
	return q.client.LPush(ctx, q.key, id.String()).Err()
}

// Dequeue implements Queue. BRPOP is issued with a short timeout in a loop
// so context cancellation is honored within a second.
func (q *RedisQueue) Dequeue(ctx context.Context) (uuid.UUID, error) {
	for {
		vals, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timed out with an empty list; poll again
				if ctx.Err() != nil {
					return uuid.Nil, ctx.Err()
				}
				continue
			}
			return uuid.Nil, err
		}

		// BRPOP returns [key, value]
		id, err := uuid.Parse(vals[1])
		if err != nil {
			log.Warn().Str("Payload", vals[1]).Msg("discarding malformed job id from queue")
			continue
		}
		return id, nil
	}
}

// Ping reports whether the Redis backend is reachable
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close implements Queue
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
