package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

// echoHandler answers every route with the name of the method that served it.
type echoHandler struct{}

func echo(name string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(name + " " + mux.Vars(r)["id"] + mux.Vars(r)["item_id"]))
	}
}

func (echoHandler) CreateSession(w http.ResponseWriter, r *http.Request) { echo("CreateSession")(w, r) }
func (echoHandler) GetSession(w http.ResponseWriter, r *http.Request)    { echo("GetSession")(w, r) }
func (echoHandler) DeleteSession(w http.ResponseWriter, r *http.Request) { echo("DeleteSession")(w, r) }
func (echoHandler) StreamEvents(w http.ResponseWriter, r *http.Request)  { echo("StreamEvents")(w, r) }
func (echoHandler) Search(w http.ResponseWriter, r *http.Request)        { echo("Search")(w, r) }
func (echoHandler) AddCartItem(w http.ResponseWriter, r *http.Request)   { echo("AddCartItem")(w, r) }
func (echoHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	echo("UpdateCartItem")(w, r)
}
func (echoHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	echo("RemoveCartItem")(w, r)
}
func (echoHandler) OpenCart(w http.ResponseWriter, r *http.Request)     { echo("OpenCart")(w, r) }
func (echoHandler) CloseCart(w http.ResponseWriter, r *http.Request)    { echo("CloseCart")(w, r) }
func (echoHandler) Checkout(w http.ResponseWriter, r *http.Request)     { echo("Checkout")(w, r) }
func (echoHandler) RatingsChart(w http.ResponseWriter, r *http.Request) { echo("RatingsChart")(w, r) }
func (echoHandler) ListSearchCache(w http.ResponseWriter, r *http.Request) {
	echo("ListSearchCache")(w, r)
}
func (echoHandler) PurgeSearchCache(w http.ResponseWriter, r *http.Request) {
	echo("PurgeSearchCache")(w, r)
}
func (echoHandler) Ping(w http.ResponseWriter, r *http.Request) { echo("Ping")(w, r) }

func TestRouter_RegisterRoutes(t *testing.T) {
	h := echoHandler{}
	router := mux.NewRouter()
	appRouter := NewRouter(h, h, h, router)
	appRouter.RegisterRoutes()

	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
		response   string
	}{
		{"Create Session", "POST", "/v1/sessions", http.StatusOK, "CreateSession "},
		{"Get Session", "GET", "/v1/sessions/abc", http.StatusOK, "GetSession abc"},
		{"Delete Session", "DELETE", "/v1/sessions/abc", http.StatusOK, "DeleteSession abc"},
		{"Events", "GET", "/v1/sessions/abc/events", http.StatusOK, "StreamEvents abc"},
		{"Chart", "GET", "/v1/sessions/abc/chart", http.StatusOK, "RatingsChart abc"},
		{"Search", "POST", "/v1/sessions/abc/search", http.StatusOK, "Search abc"},
		{"Add Item", "POST", "/v1/sessions/abc/cart/items", http.StatusOK, "AddCartItem abc"},
		{"Update Item", "PATCH", "/v1/sessions/abc/cart/items/res-0-special", http.StatusOK, "UpdateCartItem abcres-0-special"},
		{"Remove Item", "DELETE", "/v1/sessions/abc/cart/items/res-0-special", http.StatusOK, "RemoveCartItem abcres-0-special"},
		{"Open Cart", "POST", "/v1/sessions/abc/cart/open", http.StatusOK, "OpenCart abc"},
		{"Close Cart", "POST", "/v1/sessions/abc/cart/close", http.StatusOK, "CloseCart abc"},
		{"Checkout", "POST", "/v1/sessions/abc/checkout", http.StatusOK, "Checkout abc"},
		{"List Cache", "GET", "/v1/cache/searches", http.StatusOK, "ListSearchCache "},
		{"Purge Cache", "DELETE", "/v1/cache/searches", http.StatusOK, "PurgeSearchCache "},
		{"Ping Route", "GET", "/ping", http.StatusOK, "Ping "},
		{"Wrong Method", "GET", "/v1/sessions/abc/search", http.StatusMethodNotAllowed, ""},
		{"Invalid Route", "GET", "/invalid", http.StatusNotFound, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(test.method, test.path, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, test.statusCode, rr.Code)
			if test.response != "" {
				assert.Equal(t, test.response, rr.Body.String())
			}
		})
	}
}
