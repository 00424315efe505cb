package handlers

import (
	"context"
	"net/http"

	"dine-server/logger"

	"go.uber.org/zap"
)

// SearchCacheAdmin is the maintenance side of the search cache DAO.
type SearchCacheAdmin interface {
	ListCachedSearchKeys(ctx context.Context) ([]string, error)
	Purge(ctx context.Context) (int, error)
}

type CacheHandler struct {
	cache SearchCacheAdmin
	log   *zap.Logger
}

func NewCacheHandler(cache SearchCacheAdmin) *CacheHandler {
	return &CacheHandler{cache: cache, log: logger.Component("CacheHandler")}
}

// ListSearchCache handles GET /v1/cache/searches
func (h *CacheHandler) ListSearchCache(w http.ResponseWriter, r *http.Request) {
	keys, err := h.cache.ListCachedSearchKeys(r.Context())
	if err != nil {
		h.log.Error("listing cached searches failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, CODE_INTERNAL_ERROR, "could not list cached searches")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"keys": keys, "count": len(keys)})
}

// PurgeSearchCache handles DELETE /v1/cache/searches
func (h *CacheHandler) PurgeSearchCache(w http.ResponseWriter, r *http.Request) {
	n, err := h.cache.Purge(r.Context())
	if err != nil {
		h.log.Error("purging search cache failed", zap.Int("purged", n), zap.Error(err))
		respondError(w, http.StatusInternalServerError, CODE_INTERNAL_ERROR, "could not purge search cache")
		return
	}
	h.log.Info("search cache purged", zap.Int("purged", n))
	respondJSON(w, http.StatusOK, map[string]int{"purged": n})
}
