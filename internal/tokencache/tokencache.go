// Copyright (c) 2026 John Earle
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

// Package tokencache caches freshly minted Gmail access tokens in Redis
// with a TTL, so back-to-back harvests do not burn a refresh-token
// round trip to Google each time.
package tokencache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL keeps cached tokens comfortably inside Google's
	// one-hour access token lifetime.
	DefaultTTL = 45 * time.Minute

	// keyPrefix namespaces token keys in Redis.
	keyPrefix = "invozip:gtoken:"
)

// Cache stores access tokens keyed by Gmail connection ID.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a token cache backed by Redis.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb, ttl: DefaultTTL}
}

// Get returns the cached access token for a connection, or "" on miss.
// Redis errors degrade to a miss; the caller just refreshes.
func (c *Cache) Get(ctx context.Context, connID string) string {
	val, err := c.rdb.Get(ctx, keyPrefix+connID).Result()
	if err != nil {
		return ""
	}
	return val
}

// Put stores an access token for a connection.
func (c *Cache) Put(ctx context.Context, connID, token string) error {
	if err := c.rdb.Set(ctx, keyPrefix+connID, token, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache token: %w", err)
	}
	return nil
}

// Forget drops a connection's cached token, used when the connection is
// removed or Google rejects the token.
func (c *Cache) Forget(ctx context.Context, connID string) {
	c.rdb.Del(ctx, keyPrefix+connID)
}
