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

package common

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Two-tier cache for market data: an in-process LRU backed by an optional
// shared Redis tier. Values are lz4 compressed in both tiers.

var (
	ErrCacheMiss = errors.New("key not found in cache")

	cacheCtx = context.Background()
	rdb      *redis.Client
	cache    *lru.Cache
)

// SetupCache initializes the local LRU and, when cache.redis is set,
// connects the Redis tier
func SetupCache() {
	size := viper.GetInt("cache.local_size")
	if size <= 0 {
		size = 1024
	}

	var err error
	cache, err = lru.New(size)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create LRU cache")
	}

	if viper.GetBool("cache.redis") {
		opt, err := redis.ParseURL(viper.GetString("cache.redis_url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not parse redis URL")
		}
		rdb = redis.NewClient(opt)
	}
}

// CacheSet compresses bytes and stores them in every configured tier
func CacheSet(key string, bytes []byte) error {
	compressed, err := Compress(bytes)
	if err != nil {
		return err
	}
	cache.Add(key, compressed)

	if rdb != nil {
		expires := time.Duration(viper.GetInt("cache.ttl_secs")) * time.Second
		return rdb.Set(cacheCtx, key, compressed, expires).Err()
	}
	return nil
}

// CacheGet retrieves a key, checking the local tier before Redis. Returns
// ErrCacheMiss when the key is in neither tier.
func CacheGet(key string) ([]byte, error) {
	if val, ok := cache.Get(key); ok {
		return Decompress(val.([]byte))
	}

	if rdb != nil {
		expires := time.Duration(viper.GetInt("cache.ttl_secs")) * time.Second
		val, err := rdb.GetEx(cacheCtx, key, expires).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, ErrCacheMiss
			}
			return nil, err
		}
		// promote to the local tier
		cache.Add(key, val)
		return Decompress(val)
	}

	return nil, ErrCacheMiss
}
