package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"dine-server/db"
	"dine-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResponse() *models.GroundingResponse {
	return &models.GroundingResponse{
		Text: "Try these.",
		Chunks: []models.GroundingChunk{
			{Maps: &models.MapsPlace{Title: "Test Venue", URI: "https://maps.example/1"}},
			{Web: &models.WebSource{URI: "https://example.com"}},
		},
	}
}

func TestSearchKey(t *testing.T) {
	loc := &models.UserLocation{Latitude: 45.52040, Longitude: -73.55408}

	assert.Equal(t, "best sushi|anywhere", SearchKey("  Best   SUSHI ", nil))
	assert.Equal(t, "best sushi|45.520,-73.554", SearchKey("best sushi", loc))
	assert.Equal(t,
		SearchKey("tacos", &models.UserLocation{Latitude: 45.52041, Longitude: -73.55409}),
		SearchKey("tacos", loc))
}

func TestRedisSearchCacheDAO_SetAndGet(t *testing.T) {
	mockClient := db.NewMockRedisClient()
	dao := NewRedisSearchCacheDAO(mockClient, time.Minute)
	ctx := context.Background()

	require.NoError(t, dao.SetResponse(ctx, "tacos|anywhere", sampleResponse()))

	stored, err := mockClient.Get(ctx, "search_cache_v1:tacos|anywhere")
	require.NoError(t, err)
	assert.Contains(t, stored, "Test Venue")

	got, err := dao.GetResponse(ctx, "tacos|anywhere")
	require.NoError(t, err)
	assert.Equal(t, sampleResponse(), got)
}

func TestRedisSearchCacheDAO_Miss(t *testing.T) {
	dao := NewRedisSearchCacheDAO(db.NewMockRedisClient(), time.Minute)

	_, err := dao.GetResponse(context.Background(), "nothing")

	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisSearchCacheDAO_Expires(t *testing.T) {
	mockClient := db.NewMockRedisClient()
	now := time.Now()
	mockClient.SetClock(func() time.Time { return now })
	dao := NewRedisSearchCacheDAO(mockClient, time.Minute)
	ctx := context.Background()

	require.NoError(t, dao.SetResponse(ctx, "k", sampleResponse()))
	now = now.Add(2 * time.Minute)

	_, err := dao.GetResponse(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisSearchCacheDAO_ClientError(t *testing.T) {
	mockClient := db.NewMockRedisClient()
	mockClient.Err = errors.New("redis down")
	dao := NewRedisSearchCacheDAO(mockClient, time.Minute)

	_, err := dao.GetResponse(context.Background(), "k")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisSearchCacheDAO_CorruptEntry(t *testing.T) {
	mockClient := db.NewMockRedisClient()
	ctx := context.Background()
	require.NoError(t, mockClient.Set(ctx, "search_cache_v1:bad", "{not json", 0))
	dao := NewRedisSearchCacheDAO(mockClient, time.Minute)

	_, err := dao.GetResponse(ctx, "bad")

	assert.ErrorContains(t, err, "failed to unmarshal")
}

func TestRedisSearchCacheDAO_ListAndPurge(t *testing.T) {
	mockClient := db.NewMockRedisClient()
	dao := NewRedisSearchCacheDAO(mockClient, time.Minute)
	ctx := context.Background()
	require.NoError(t, dao.SetResponse(ctx, "a|anywhere", sampleResponse()))
	require.NoError(t, dao.SetResponse(ctx, "b|anywhere", sampleResponse()))
	require.NoError(t, mockClient.Set(ctx, "unrelated", "x", 0))

	keys, err := dao.ListCachedSearchKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a|anywhere", "b|anywhere"}, keys)

	n, err := dao.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err = dao.ListCachedSearchKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = mockClient.Get(ctx, "unrelated")
	assert.NoError(t, err)
}
