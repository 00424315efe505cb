package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dine-server/db"
	"dine-server/logger"
	"dine-server/models"

	"go.uber.org/zap"
)

const SEARCH_CACHE_KEY_FORMAT_V1 = "search_cache_v1:%s"
const NO_LOCATION_KEY_PART = "anywhere"

// ErrCacheMiss is returned when no fresh response is cached for a search.
var ErrCacheMiss = errors.New("cache miss")

// RedisSearchCacheDAO caches raw grounding responses. Restaurants are not cached:
// they are rebuilt by the normalizer on every search.
type RedisSearchCacheDAO struct {
	client db.RedisClient
	ttl    time.Duration
}

// NewRedisSearchCacheDAO initializes a RedisSearchCacheDAO with the Redis client.
func NewRedisSearchCacheDAO(client db.RedisClient, ttl time.Duration) *RedisSearchCacheDAO {
	return &RedisSearchCacheDAO{client: client, ttl: ttl}
}

// SearchKey identifies a search by its normalized query and a location rounded to
// roughly 100m, so nearby repeats share an entry.
func SearchKey(query string, location *models.UserLocation) string {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	loc := NO_LOCATION_KEY_PART
	if location != nil {
		loc = fmt.Sprintf("%.3f,%.3f", location.Latitude, location.Longitude)
	}
	return q + "|" + loc
}

func (dao *RedisSearchCacheDAO) GetResponse(ctx context.Context, searchKey string) (*models.GroundingResponse, error) {
	key := fmt.Sprintf(SEARCH_CACHE_KEY_FORMAT_V1, searchKey)
	str, err := dao.client.Get(ctx, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search response from redis: %w", err)
	}

	var resp models.GroundingResponse
	if err := json.Unmarshal([]byte(str), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search response JSON: %w", err)
	}
	return &resp, nil
}

func (dao *RedisSearchCacheDAO) SetResponse(ctx context.Context, searchKey string, resp *models.GroundingResponse) error {
	key := fmt.Sprintf(SEARCH_CACHE_KEY_FORMAT_V1, searchKey)
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal search response for %q: %w", searchKey, err)
	}
	if err := dao.client.Set(ctx, key, string(data), dao.ttl); err != nil {
		return fmt.Errorf("failed to set search response in redis: %w", err)
	}
	return nil
}

func (dao *RedisSearchCacheDAO) DeleteResponse(ctx context.Context, searchKey string) error {
	key := fmt.Sprintf(SEARCH_CACHE_KEY_FORMAT_V1, searchKey)
	if err := dao.client.Del(ctx, key); err != nil {
		return fmt.Errorf("failed to delete search response key %s: %w", key, err)
	}
	logger.Component("RedisSearchCacheDAO").Debug("deleted cached search", zap.String("key", key))
	return nil
}

// ListCachedSearchKeys returns the search keys of all cached responses.
func (dao *RedisSearchCacheDAO) ListCachedSearchKeys(ctx context.Context) ([]string, error) {
	keys, err := dao.client.Keys(ctx, fmt.Sprintf(SEARCH_CACHE_KEY_FORMAT_V1, "*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list search cache keys: %w", err)
	}

	prefix := fmt.Sprintf(SEARCH_CACHE_KEY_FORMAT_V1, "")
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, prefix))
	}
	return out, nil
}

// Purge drops every cached response and reports how many were removed.
func (dao *RedisSearchCacheDAO) Purge(ctx context.Context) (int, error) {
	keys, err := dao.ListCachedSearchKeys(ctx)
	if err != nil {
		return 0, err
	}
	for i, k := range keys {
		if err := dao.DeleteResponse(ctx, k); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}
