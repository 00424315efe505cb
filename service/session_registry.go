package services

import (
	"errors"
	"sync"
	"time"

	"dine-server/cart"
	"dine-server/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRegistry keeps the live sessions by id.
type SessionRegistry struct {
	searcher    Searcher
	cartOptions []cart.Option
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	log      *zap.Logger
}

func NewSessionRegistry(searcher Searcher, cartOptions ...cart.Option) *SessionRegistry {
	return &SessionRegistry{
		searcher:    searcher,
		cartOptions: cartOptions,
		now:         time.Now,
		sessions:    make(map[string]*Session),
		log:         logger.Component("SessionRegistry"),
	}
}

// Create registers a new session with a fresh cart.
func (sr *SessionRegistry) Create() *Session {
	sr.mu.RLock()
	now := sr.now
	sr.mu.RUnlock()

	id := uuid.NewString()
	s := NewSession(id, sr.searcher,
		WithCartStore(cart.NewStore(sr.cartOptions...)),
		WithClock(now))

	sr.mu.Lock()
	sr.sessions[id] = s
	sr.mu.Unlock()

	sr.log.Info("session created", zap.String("session_id", id))
	return s
}

func (sr *SessionRegistry) Get(id string) (*Session, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	s, ok := sr.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (sr *SessionRegistry) Remove(id string) {
	sr.mu.Lock()
	s, ok := sr.sessions[id]
	delete(sr.sessions, id)
	sr.mu.Unlock()

	if ok {
		s.Close()
	}
}

// ReapIdle drops sessions whose last activity is older than idleTTL and
// returns how many were removed. Sessions with an open subscription are kept.
func (sr *SessionRegistry) ReapIdle(now time.Time, idleTTL time.Duration) int {
	var idle []*Session

	sr.mu.Lock()
	for id, s := range sr.sessions {
		if s.HasSubscribers() {
			continue
		}
		if now.Sub(s.LastActive()) > idleTTL {
			idle = append(idle, s)
			delete(sr.sessions, id)
		}
	}
	sr.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

func (sr *SessionRegistry) Len() int {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return len(sr.sessions)
}

// SetClock replaces the clock used for new sessions.
func (sr *SessionRegistry) SetClock(now func() time.Time) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.now = now
}

// CloseAll ends every session's subscriptions and empties the registry.
func (sr *SessionRegistry) CloseAll() {
	sr.mu.Lock()
	sessions := sr.sessions
	sr.sessions = make(map[string]*Session)
	sr.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	sr.log.Info("closed all sessions", zap.Int("count", len(sessions)))
}
