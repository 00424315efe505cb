package services

import (
	"context"
	"time"

	"dine-server/logger"

	"go.uber.org/zap"
)

// SessionReaperService periodically drops sessions nobody has touched for a while.
type SessionReaperService struct {
	registry *SessionRegistry
	idleTTL  time.Duration
	now      func() time.Time
	onTick   []func(now time.Time)
	log      *zap.Logger
}

// NewSessionReaperService constructs a new reaper with dependencies.
func NewSessionReaperService(registry *SessionRegistry, idleTTL time.Duration) *SessionReaperService {
	return &SessionReaperService{
		registry: registry,
		idleTTL:  idleTTL,
		now:      time.Now,
		log:      logger.Component("SessionReaperService"),
	}
}

// OnTick registers f to run after every reaping pass, for other per-client
// state that should expire with idle sessions.
func (sr *SessionReaperService) OnTick(f func(now time.Time)) {
	sr.onTick = append(sr.onTick, f)
}

// StartPeriodicJob launches the background loop at the given interval. It
// stops when ctx is done.
func (sr *SessionReaperService) StartPeriodicJob(ctx context.Context, interval time.Duration) {
	go sr.startPeriodicJob(ctx, interval)
}

func (sr *SessionReaperService) startPeriodicJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sr.log.Info("stopping periodic session reaper job")
			return
		case <-ticker.C:
			sr.log.Debug("running periodic session reaper job")
			sr.ReapIdleSessions()
		}
	}
}

// ReapIdleSessions runs one pass and returns how many sessions were dropped.
func (sr *SessionReaperService) ReapIdleSessions() int {
	now := sr.now()
	n := sr.registry.ReapIdle(now, sr.idleTTL)
	if n > 0 {
		sr.log.Info("reaped idle sessions",
			zap.Int("reaped", n),
			zap.Int("remaining", sr.registry.Len()))
	}
	for _, f := range sr.onTick {
		f(now)
	}
	return n
}
