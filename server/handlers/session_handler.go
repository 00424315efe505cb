package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dine-server/geolocation"
	"dine-server/logger"
	services "dine-server/service"
	"dine-server/util"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	SESSION_ID_VAR = "id"
	ITEM_ID_VAR    = "item_id"

	SSE_EVENT_SNAPSHOT = "snapshot"
	SSE_KEEPALIVE      = 15 * time.Second
)

type CreateSessionRequestDTO struct {
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	LocationDenied bool     `json:"location_denied"`
}

type SearchRequestDTO struct {
	Query string `json:"query"`
}

type AddCartItemRequestDTO struct {
	RestaurantID string `json:"restaurant_id"`
}

type UpdateCartItemRequestDTO struct {
	Delta *int `json:"delta"`
}

type SessionHandler struct {
	registry      *services.SessionRegistry
	searchLimiter *RateLimiter
	log           *zap.Logger
}

func NewSessionHandler(registry *services.SessionRegistry, searchLimiter *RateLimiter) *SessionHandler {
	return &SessionHandler{
		registry:      registry,
		searchLimiter: searchLimiter,
		log:           logger.Component("SessionHandler"),
	}
}

// CreateSession handles POST /v1/sessions. The browser reports the coordinates
// it obtained, or that it could not obtain any; the initial search runs before
// the response is written.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, CODE_INVALID_REQUEST, "invalid JSON body")
		return
	}

	s := h.registry.Create()
	snap := s.Start(r.Context(), locatorFor(req))
	respondJSON(w, http.StatusCreated, snap)
}

func locatorFor(req CreateSessionRequestDTO) geolocation.Locator {
	if req.LocationDenied || req.Latitude == nil || req.Longitude == nil {
		return geolocation.UnavailableLocator{}
	}
	return geolocation.NewStaticLocator(*req.Latitude, *req.Longitude)
}

// GetSession handles GET /v1/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Touch()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// DeleteSession handles DELETE /v1/sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.registry.Remove(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

// Search handles POST /v1/sessions/{id}/search
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !h.searchLimiter.Allow(r) {
		respondError(w, http.StatusTooManyRequests, CODE_RATE_LIMITED, "too many searches, slow down")
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req SearchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CODE_INVALID_REQUEST, "invalid JSON body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		respondError(w, http.StatusBadRequest, CODE_INVALID_QUERY, "query must not be blank")
		return
	}

	respondJSON(w, http.StatusOK, s.Search(r.Context(), query))
}

// AddCartItem handles POST /v1/sessions/{id}/cart/items
func (h *SessionHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddCartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RestaurantID == "" {
		respondError(w, http.StatusBadRequest, CODE_INVALID_REQUEST, "restaurant_id is required")
		return
	}
	if err := s.AddRestaurant(req.RestaurantID); err != nil {
		respondError(w, http.StatusNotFound, CODE_NOT_FOUND, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// UpdateCartItem handles PATCH /v1/sessions/{id}/cart/items/{item_id}
func (h *SessionHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req UpdateCartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Delta == nil {
		respondError(w, http.StatusBadRequest, CODE_INVALID_REQUEST, "delta is required")
		return
	}
	s.UpdateQuantity(mux.Vars(r)[ITEM_ID_VAR], *req.Delta)
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// RemoveCartItem handles DELETE /v1/sessions/{id}/cart/items/{item_id}
func (h *SessionHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.RemoveItem(mux.Vars(r)[ITEM_ID_VAR])
	respondJSON(w, http.StatusOK, s.Snapshot())
}

func (h *SessionHandler) OpenCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.OpenCart()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

func (h *SessionHandler) CloseCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.CloseCart()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// Checkout handles POST /v1/sessions/{id}/checkout
func (h *SessionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Checkout()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// RatingsChart handles GET /v1/sessions/{id}/chart
func (h *SessionHandler) RatingsChart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := util.RenderRatingsChart(w, s.Snapshot().Restaurants); err != nil {
		h.log.Error("rendering ratings chart failed", zap.String("session_id", s.ID), zap.Error(err))
	}
}

// StreamEvents handles GET /v1/sessions/{id}/events. It writes the current
// snapshot, then one event per change until the client leaves or the session
// is dropped.
func (h *SessionHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, CODE_INTERNAL_ERROR, "streaming unsupported")
		return
	}

	updates, cancel := s.Subscribe()
	defer func() {
		cancel()
		s.Touch()
	}()
	s.Touch()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeSnapshotEvent(w, s.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(SSE_KEEPALIVE)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case snap, open := <-updates:
			if !open {
				return
			}
			if err := writeSnapshotEvent(w, snap); err != nil {
				h.log.Debug("event stream closed", zap.String("session_id", s.ID), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeSnapshotEvent(w io.Writer, snap services.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", SSE_EVENT_SNAPSHOT, data)
	return err
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	s, err := h.registry.Get(mux.Vars(r)[SESSION_ID_VAR])
	if err != nil {
		respondError(w, http.StatusNotFound, CODE_SESSION_NOT_FOUND, err.Error())
		return nil, false
	}
	return s, true
}
