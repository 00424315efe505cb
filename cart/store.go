// Package cart holds the in-memory basket of a single session.
//
// Every operation is total: unknown ids are ignored and quantities are clamped, so
// nothing here returns an error. Totals are derived on each read.
package cart

import (
	"math"
	"sync"

	"dine-server/logger"
	"dine-server/models"

	"go.uber.org/zap"
)

const (
	DefaultItemSuffix      = "-special"
	DefaultItemNameFormat  = "%s Special Platter"
	DefaultItemPrice       = 18.99
	DefaultItemDescription = "A chef-selected assortment of the finest dishes."
	DefaultItemCategory    = "Main"

	DeliveryFee = 3.99
)

// LineItemPolicy decides which menu item a restaurant contributes when it is added.
type LineItemPolicy func(r models.Restaurant) models.MenuItem

// CheckoutHook receives the lines being checked out. It stands in for a real order
// submission service and must not block.
type CheckoutHook func(items []models.CartItem)

// Listener is called after every mutation, outside the store lock.
type Listener func()

type Store struct {
	mu         sync.RWMutex
	items      []models.CartItem
	open       bool
	policy     LineItemPolicy
	onCheckout CheckoutHook

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

type Option func(*Store)

func WithLineItemPolicy(p LineItemPolicy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

func WithCheckoutHook(h CheckoutHook) Option {
	return func(s *Store) {
		s.onCheckout = h
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		policy:     RestaurantToDefaultLineItem,
		onCheckout: logCheckout,
		listeners:  make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRestaurant merges the restaurant's line into the cart and opens the cart view.
func (s *Store) AddRestaurant(r models.Restaurant) {
	item := s.policy(r)

	s.mu.Lock()
	if i := s.indexOf(item.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, models.CartItem{
			MenuItem:       item,
			Quantity:       1,
			RestaurantID:   r.ID,
			RestaurantName: r.Name,
		})
	}
	s.open = true
	s.mu.Unlock()

	s.notify()
}

// UpdateQuantity applies delta with a floor of 1. Unknown ids are ignored.
func (s *Store) UpdateQuantity(id string, delta int) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	q := s.items[i].Quantity + delta
	if q < 1 {
		q = 1
	}
	s.items[i].Quantity = q
	s.mu.Unlock()

	s.notify()
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.mu.Unlock()

	s.notify()
}

// Checkout hands the lines to the checkout hook, empties the cart and closes the view.
func (s *Store) Checkout() {
	s.mu.Lock()
	lines := s.items
	s.items = nil
	s.open = false
	s.mu.Unlock()

	s.onCheckout(lines)
	s.notify()
}

func (s *Store) Open() {
	s.setOpen(true)
}

func (s *Store) Close() {
	s.setOpen(false)
}

func (s *Store) setOpen(open bool) {
	s.mu.Lock()
	changed := s.open != open
	s.open = open
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) Subtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return roundCents(s.subtotal())
}

func (s *Store) DeliveryFee() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deliveryFee()
}

func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return roundCents(s.subtotal() + s.deliveryFee())
}

// Count is the badge number: the sum of all quantities.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Subscribe registers l and returns a func that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store) notify() {
	s.listenersMu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.listenersMu.Unlock()

	for _, l := range ls {
		l()
	}
}

func (s *Store) subtotal() float64 {
	var sum float64
	for _, item := range s.items {
		sum += item.LineTotal()
	}
	return sum
}

func (s *Store) deliveryFee() float64 {
	if len(s.items) == 0 {
		return 0
	}
	return DeliveryFee
}

func (s *Store) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func logCheckout(items []models.CartItem) {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	logger.Log.Info("order placed",
		zap.String("component", "CartStore"),
		zap.Int("lines", len(items)),
		zap.Int("units", count),
	)
}
