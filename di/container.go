package di

import (
	"context"
	"time"

	"dine-server/api"
	"dine-server/api/gemini"
	"dine-server/cart"
	"dine-server/config"
	"dine-server/dao/redis"
	"dine-server/db"
	"dine-server/logger"
	"dine-server/normalizer"
	"dine-server/server"
	"dine-server/server/handlers"
	services "dine-server/service"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Redis only backs the search cache; calls to it fail fast.
const (
	REDIS_DIAL_TIMEOUT = 500 * time.Millisecond
	REDIS_IO_TIMEOUT   = 300 * time.Millisecond
)

// Container holds all application dependencies.
type Container struct {
	Config               config.Config
	RedisClient          *db.GoRedisClient
	SearchCacheDao       *redis.RedisSearchCacheDAO
	GroundingAPI         gemini.GroundingAPI
	Normalizer           *normalizer.Normalizer
	SearchService        *services.SearchService
	SessionRegistry      *services.SessionRegistry
	SessionReaperService *services.SessionReaperService
	SessionHandler       *handlers.SessionHandler
	CacheHandler         *handlers.CacheHandler
	HealthHandler        *handlers.HealthHandler
	MuxRouter            *mux.Router
	Router               *server.Router
	DineHttpServer       *server.DineHttpServer
}

// NewContainer initializes and wires up all dependencies.
func NewContainer(cfg config.Config) *Container {
	log := logger.Component("Container")
	log.Info("initializing container", zap.String("env", cfg.Env))

	redisInternalClient := goredis.NewClient(&goredis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  REDIS_DIAL_TIMEOUT,
		ReadTimeout:  REDIS_IO_TIMEOUT,
		WriteTimeout: REDIS_IO_TIMEOUT,
		MaxRetries:   1,
	})
	redisClient := db.NewGoRedisClient(redisInternalClient)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx); err != nil {
		log.Warn("redis unreachable, searches will bypass the cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	searchCacheDao := redis.NewRedisSearchCacheDAO(redisClient, cfg.SearchCacheTTL)

	var groundingAPI gemini.GroundingAPI
	if !cfg.IsProd() {
		groundingAPI = gemini.NewGeminiApiClientMock(config.GetResourcePath(config.GROUNDING_RESPONSE_RESOURCE))
		log.Info("using mock grounding api")
	} else {
		log.Info("using prod grounding api", zap.String("model", cfg.GeminiModel))
		httpClient := api.NewHTTPClient(cfg.GeminiEndpointBase)

		groundingAPI = gemini.NewGeminiApiClient(httpClient, cfg.GeminiModel)
		groundingAPI.SetCredentials(cfg.GeminiAPIKey)
	}

	searchNormalizer := normalizer.NewNormalizer()
	searchService := services.NewSearchService(groundingAPI, searchCacheDao, searchNormalizer)

	sessionRegistry := services.NewSessionRegistry(searchService,
		cart.WithLineItemPolicy(cart.RestaurantToDefaultLineItem))
	sessionReaperService := services.NewSessionReaperService(sessionRegistry, cfg.SessionIdleTTL)

	searchLimiter := handlers.NewRateLimiter(cfg.SearchRatePerSecond, cfg.SearchRateBurst)
	sessionReaperService.OnTick(func(now time.Time) {
		if n := searchLimiter.Prune(now.Add(-cfg.SessionIdleTTL)); n > 0 {
			log.Debug("pruned idle rate limiters", zap.Int("pruned", n))
		}
	})
	sessionHandler := handlers.NewSessionHandler(sessionRegistry, searchLimiter)
	cacheHandler := handlers.NewCacheHandler(searchCacheDao)
	healthHandler := handlers.NewHealthHandler(redisClient)

	muxRouter := mux.NewRouter()
	router := server.NewRouter(sessionHandler, cacheHandler, healthHandler, muxRouter)

	dineHttpServer := server.NewDineHttpServer(router, muxRouter, cfg.Port, cfg.CORSAllowedOrigins)
	dineHttpServer.OnShutdown(sessionRegistry.CloseAll)

	return &Container{
		Config:               cfg,
		RedisClient:          redisClient,
		SearchCacheDao:       searchCacheDao,
		GroundingAPI:         groundingAPI,
		Normalizer:           searchNormalizer,
		SearchService:        searchService,
		SessionRegistry:      sessionRegistry,
		SessionReaperService: sessionReaperService,
		SessionHandler:       sessionHandler,
		CacheHandler:         cacheHandler,
		HealthHandler:        healthHandler,
		MuxRouter:            muxRouter,
		Router:               router,
		DineHttpServer:       dineHttpServer,
	}
}

// Close releases the connections the container opened.
func (c *Container) Close() {
	if err := c.RedisClient.Close(); err != nil {
		logger.Component("Container").Warn("closing redis client failed", zap.Error(err))
	}
}
