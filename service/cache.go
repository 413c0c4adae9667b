// file: service/cache.go

package service

import (
	"context"
	"time"

	"go-wallet-ledger/model"

	"github.com/redis/go-redis/v9"
)

// ICacheClient is the subset of the Redis client used for profile caching.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const profileCacheTTL = 10 * time.Minute

func profileCacheKey(accountID string) string {
	return "profile:" + accountID
}

// profileCacheEntry pins a cached profile to the account version it was built
// from. An entry whose version no longer matches the store is ignored.
type profileCacheEntry struct {
	Version int64         `json:"version"`
	Profile model.Profile `json:"profile"`
}
