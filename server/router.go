package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SessionRoutes is implemented by handlers.SessionHandler.
type SessionRoutes interface {
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	DeleteSession(w http.ResponseWriter, r *http.Request)
	StreamEvents(w http.ResponseWriter, r *http.Request)
	Search(w http.ResponseWriter, r *http.Request)
	AddCartItem(w http.ResponseWriter, r *http.Request)
	UpdateCartItem(w http.ResponseWriter, r *http.Request)
	RemoveCartItem(w http.ResponseWriter, r *http.Request)
	OpenCart(w http.ResponseWriter, r *http.Request)
	CloseCart(w http.ResponseWriter, r *http.Request)
	Checkout(w http.ResponseWriter, r *http.Request)
	RatingsChart(w http.ResponseWriter, r *http.Request)
}

// CacheRoutes is implemented by handlers.CacheHandler.
type CacheRoutes interface {
	ListSearchCache(w http.ResponseWriter, r *http.Request)
	PurgeSearchCache(w http.ResponseWriter, r *http.Request)
}

type HealthRoutes interface {
	Ping(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	sessionHandler SessionRoutes
	cacheHandler   CacheRoutes
	healthHandler  HealthRoutes
	router         *mux.Router
}

// NewRouter creates a router with the app's routes.
func NewRouter(
	sessionHandler SessionRoutes,
	cacheHandler CacheRoutes,
	healthHandler HealthRoutes,
	router *mux.Router) *Router {
	return &Router{
		sessionHandler: sessionHandler,
		cacheHandler:   cacheHandler,
		healthHandler:  healthHandler,
		router:         router,
	}
}

func (r *Router) RegisterRoutes() {
	// expects {"latitude"?, "longitude"?, "location_denied"?}
	r.router.HandleFunc("/v1/sessions", r.sessionHandler.CreateSession).Methods("POST")
	r.router.HandleFunc("/v1/sessions/{id}", r.sessionHandler.GetSession).Methods("GET")
	r.router.HandleFunc("/v1/sessions/{id}", r.sessionHandler.DeleteSession).Methods("DELETE")
	r.router.HandleFunc("/v1/sessions/{id}/events", r.sessionHandler.StreamEvents).Methods("GET")
	r.router.HandleFunc("/v1/sessions/{id}/chart", r.sessionHandler.RatingsChart).Methods("GET")

	// expects {"query": "..."}
	r.router.HandleFunc("/v1/sessions/{id}/search", r.sessionHandler.Search).Methods("POST")

	r.router.HandleFunc("/v1/sessions/{id}/cart/items", r.sessionHandler.AddCartItem).Methods("POST")
	r.router.HandleFunc("/v1/sessions/{id}/cart/items/{item_id}", r.sessionHandler.UpdateCartItem).Methods("PATCH")
	r.router.HandleFunc("/v1/sessions/{id}/cart/items/{item_id}", r.sessionHandler.RemoveCartItem).Methods("DELETE")
	r.router.HandleFunc("/v1/sessions/{id}/cart/open", r.sessionHandler.OpenCart).Methods("POST")
	r.router.HandleFunc("/v1/sessions/{id}/cart/close", r.sessionHandler.CloseCart).Methods("POST")
	r.router.HandleFunc("/v1/sessions/{id}/checkout", r.sessionHandler.Checkout).Methods("POST")

	r.router.HandleFunc("/v1/cache/searches", r.cacheHandler.ListSearchCache).Methods("GET")
	r.router.HandleFunc("/v1/cache/searches", r.cacheHandler.PurgeSearchCache).Methods("DELETE")

	r.router.HandleFunc("/ping", r.healthHandler.Ping).Methods("GET")
}
