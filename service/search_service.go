package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dine-server/api/gemini"
	redisdao "dine-server/dao/redis"
	"dine-server/logger"
	"dine-server/models"
	"dine-server/normalizer"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrSearchService wraps every failure of the grounding call: transport, status,
// decoding, or an open breaker.
var ErrSearchService = errors.New("search service error")

// ResponseCache stores raw grounding responses by search key.
type ResponseCache interface {
	GetResponse(ctx context.Context, searchKey string) (*models.GroundingResponse, error)
	SetResponse(ctx context.Context, searchKey string, resp *models.GroundingResponse) error
}

const DEFAULT_CACHE_TIMEOUT = 250 * time.Millisecond

type SearchService struct {
	groundingAPI gemini.GroundingAPI
	cache        ResponseCache
	cacheTimeout time.Duration
	normalizer   *normalizer.Normalizer
	breaker      *gobreaker.CircuitBreaker[*models.GroundingResponse]
	sfg          singleflight.Group
	log          *zap.Logger
}

type SearchServiceOption func(*searchServiceSettings)

type searchServiceSettings struct {
	breakerFailures uint32
	breakerTimeout  time.Duration
	cacheTimeout    time.Duration
}

// WithBreaker sets how many consecutive failures open the breaker and how long it stays open.
func WithBreaker(consecutiveFailures uint32, openFor time.Duration) SearchServiceOption {
	return func(s *searchServiceSettings) {
		s.breakerFailures = consecutiveFailures
		s.breakerTimeout = openFor
	}
}

// WithCacheTimeout bounds each cache read and write. A cache that does not
// answer in time counts as a miss.
func WithCacheTimeout(d time.Duration) SearchServiceOption {
	return func(s *searchServiceSettings) {
		s.cacheTimeout = d
	}
}

// NewSearchService wires the grounding client, an optional cache and the normalizer.
func NewSearchService(
	groundingAPI gemini.GroundingAPI,
	cache ResponseCache,
	n *normalizer.Normalizer,
	opts ...SearchServiceOption) *SearchService {

	settings := searchServiceSettings{
		breakerFailures: 5,
		breakerTimeout:  30 * time.Second,
		cacheTimeout:    DEFAULT_CACHE_TIMEOUT,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	log := logger.Component("SearchService")
	breaker := gobreaker.NewCircuitBreaker[*models.GroundingResponse](gobreaker.Settings{
		Name:        "grounding-api",
		MaxRequests: 1,
		Timeout:     settings.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &SearchService{
		groundingAPI: groundingAPI,
		cache:        cache,
		cacheTimeout: settings.cacheTimeout,
		normalizer:   n,
		breaker:      breaker,
		log:          log,
	}
}

// Search fetches a grounding response (cached or live) and normalizes it. The
// restaurants are rebuilt on every call, cached or not.
func (ss *SearchService) Search(ctx context.Context, query string, location *models.UserLocation) (models.SearchResult, error) {
	resp, err := ss.fetch(ctx, query, location)
	if err != nil {
		return models.SearchResult{}, err
	}
	return ss.normalizer.Normalize(resp.Chunks, resp.Text), nil
}

func (ss *SearchService) fetch(ctx context.Context, query string, location *models.UserLocation) (*models.GroundingResponse, error) {
	key := redisdao.SearchKey(query, location)

	// Coalesce identical in-flight searches into one upstream call.
	v, err, _ := ss.sfg.Do(key, func() (interface{}, error) {
		if cached, ok := ss.fromCache(ctx, key); ok {
			return cached, nil
		}

		resp, err := ss.breaker.Execute(func() (*models.GroundingResponse, error) {
			return ss.groundingAPI.Search(ctx, gemini.BuildPrompt(query), location)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSearchService, err)
		}

		ss.toCache(ctx, key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.GroundingResponse), nil
}

func (ss *SearchService) fromCache(ctx context.Context, key string) (*models.GroundingResponse, bool) {
	if ss.cache == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, ss.cacheTimeout)
	defer cancel()

	resp, err := ss.cache.GetResponse(ctx, key)
	if err == nil {
		ss.log.Debug("search served from cache", zap.String("key", key))
		return resp, true
	}
	if !errors.Is(err, redisdao.ErrCacheMiss) {
		ss.log.Warn("cache get error", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}

func (ss *SearchService) toCache(ctx context.Context, key string, resp *models.GroundingResponse) {
	if ss.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, ss.cacheTimeout)
	defer cancel()

	if err := ss.cache.SetResponse(ctx, key, resp); err != nil {
		ss.log.Warn("cache set error", zap.String("key", key), zap.Error(err))
	}
}
