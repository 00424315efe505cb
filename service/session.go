package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"dine-server/cart"
	"dine-server/config"
	"dine-server/geolocation"
	"dine-server/logger"
	"dine-server/models"
	"dine-server/util"

	"go.uber.org/zap"
)

type Phase string

const (
	PhaseAwaitingLocation    Phase = "awaiting_location"
	PhaseLocationResolved    Phase = "location_resolved"
	PhaseLocationUnavailable Phase = "location_unavailable"
	PhaseSearching           Phase = "searching"
	PhaseIdle                Phase = "idle"
)

const subscriberBuffer = 8

var ErrRestaurantNotFound = errors.New("restaurant not in current results")

// Searcher is the part of SearchService a session needs.
type Searcher interface {
	Search(ctx context.Context, query string, location *models.UserLocation) (models.SearchResult, error)
}

type CartSnapshot struct {
	Items       []models.CartItem `json:"items"`
	Open        bool              `json:"open"`
	Subtotal    float64           `json:"subtotal"`
	DeliveryFee float64           `json:"delivery_fee"`
	Total       float64           `json:"total"`
	Count       int               `json:"count"`
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	SessionID       string               `json:"session_id"`
	Phase           Phase                `json:"phase"`
	Location        *models.UserLocation `json:"location,omitempty"`
	Query           string               `json:"query"`
	Restaurants     []models.Restaurant  `json:"restaurants"`
	Insight         string               `json:"insight"`
	InsightHeadline string               `json:"insight_headline"`
	Loading         bool                 `json:"loading"`
	Cart            CartSnapshot         `json:"cart"`
}

// Session is the state of one browser tab: results, location and cart. All
// mutation goes through its methods; observers use Subscribe.
type Session struct {
	ID string

	searcher Searcher
	cart     *cart.Store
	now      func() time.Time
	log      *zap.Logger

	mu          sync.Mutex
	started     bool
	phase       Phase
	location    *models.UserLocation
	query       string
	restaurants []models.Restaurant
	insight     string
	loading     bool
	issued      uint64
	lastActive  time.Time

	subMu       sync.Mutex
	subscribers map[int]chan Snapshot
	nextSub     int
	closed      bool
}

type SessionOption func(*Session)

func WithCartStore(store *cart.Store) SessionOption {
	return func(s *Session) {
		s.cart = store
	}
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

func NewSession(id string, searcher Searcher, opts ...SessionOption) *Session {
	s := &Session{
		ID:          id,
		searcher:    searcher,
		now:         time.Now,
		phase:       PhaseAwaitingLocation,
		restaurants: []models.Restaurant{},
		subscribers: make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cart == nil {
		s.cart = cart.NewStore()
	}
	s.lastActive = s.now()
	s.log = logger.Component("Session").With(zap.String("session_id", id))
	s.cart.Subscribe(s.publish)
	return s
}

// Start runs the location fallback chain once and fires the initial search.
// Later calls do nothing. Location failures are never surfaced.
func (s *Session) Start(ctx context.Context, locator geolocation.Locator) Snapshot {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return s.Snapshot()
	}
	s.started = true
	s.phase = PhaseAwaitingLocation
	s.mu.Unlock()

	loc, err := geolocation.Resolve(ctx, locator)

	s.mu.Lock()
	query := config.NEARBY_QUERY
	if err != nil {
		s.log.Info("location unavailable, falling back", zap.Error(err))
		s.phase = PhaseLocationUnavailable
		query = config.FALLBACK_QUERY
	} else {
		s.location = loc
		s.phase = PhaseLocationResolved
	}
	s.mu.Unlock()
	s.publish()

	return s.search(ctx, query, loc)
}

// Search runs a user query with whatever location Start resolved.
func (s *Session) Search(ctx context.Context, query string) Snapshot {
	s.mu.Lock()
	loc := s.location
	s.mu.Unlock()

	return s.search(ctx, query, loc)
}

// search applies the response only when no newer search was issued meanwhile.
// Errors end the search with an empty list; they are not returned.
func (s *Session) search(ctx context.Context, query string, loc *models.UserLocation) Snapshot {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.query = query
	s.loading = true
	s.phase = PhaseSearching
	s.lastActive = s.now()
	s.mu.Unlock()
	s.publish()

	// The upstream call is not abandoned when the caller goes away; a late
	// answer is dropped below if it is stale.
	result, err := s.searcher.Search(context.WithoutCancel(ctx), query, loc)

	s.mu.Lock()
	if seq != s.issued {
		s.mu.Unlock()
		s.log.Info("discarding stale search response",
			zap.Uint64("seq", seq), zap.String("query", query))
		return s.Snapshot()
	}
	if err != nil {
		s.log.Error("search failed", zap.String("query", query), zap.Error(err))
		s.restaurants = []models.Restaurant{}
		s.insight = ""
	} else {
		s.restaurants = result.Restaurants
		s.insight = result.Insight
	}
	s.loading = false
	s.phase = PhaseIdle
	s.mu.Unlock()
	s.publish()

	return s.Snapshot()
}

// Restaurant looks up a restaurant in the current result set.
func (s *Session) Restaurant(id string) (models.Restaurant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.restaurants {
		if r.ID == id {
			return r, true
		}
	}
	return models.Restaurant{}, false
}

// AddRestaurant puts the current result with the given id into the cart.
func (s *Session) AddRestaurant(id string) error {
	r, ok := s.Restaurant(id)
	if !ok {
		return ErrRestaurantNotFound
	}
	s.touch()
	s.cart.AddRestaurant(r)
	return nil
}

func (s *Session) UpdateQuantity(itemID string, delta int) {
	s.touch()
	s.cart.UpdateQuantity(itemID, delta)
}

func (s *Session) RemoveItem(itemID string) {
	s.touch()
	s.cart.Remove(itemID)
}

func (s *Session) Checkout() {
	s.touch()
	s.cart.Checkout()
}

func (s *Session) OpenCart() {
	s.touch()
	s.cart.Open()
}

func (s *Session) CloseCart() {
	s.touch()
	s.cart.Close()
}

func (s *Session) Cart() *cart.Store {
	return s.cart
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Touch marks the session as in use without changing its state.
func (s *Session) Touch() {
	s.touch()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

// HasSubscribers reports whether anything is still watching the session.
func (s *Session) HasSubscribers() bool {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subscribers) > 0
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		SessionID:       s.ID,
		Phase:           s.phase,
		Location:        s.location,
		Query:           s.query,
		Restaurants:     append([]models.Restaurant(nil), s.restaurants...),
		Insight:         s.insight,
		InsightHeadline: util.FirstLine(s.insight),
		Loading:         s.loading,
	}
	s.mu.Unlock()

	if snap.Restaurants == nil {
		snap.Restaurants = []models.Restaurant{}
	}
	snap.Cart = CartSnapshot{
		Items:       s.cart.Items(),
		Open:        s.cart.IsOpen(),
		Subtotal:    s.cart.Subtotal(),
		DeliveryFee: s.cart.DeliveryFee(),
		Total:       s.cart.Total(),
		Count:       s.cart.Count(),
	}
	return snap
}

// Subscribe returns a channel of snapshots published after each change and a
// func to stop. Slow readers only miss intermediate snapshots.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan Snapshot, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(c)
		}
	}
}

// Close ends every subscription.
func (s *Session) Close() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.closed = true
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

func (s *Session) publish() {
	snap := s.Snapshot()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest pending snapshot to make room for the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
