package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)

	a := httptest.NewRequest("POST", "/", nil)
	a.RemoteAddr = "10.0.0.1:5000"
	b := httptest.NewRequest("POST", "/", nil)
	b.RemoteAddr = "10.0.0.2:5000"

	assert.True(t, rl.Allow(a))
	assert.False(t, rl.Allow(a))
	assert.True(t, rl.Allow(b))
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_PruneForgetsIdleClients(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(0.001, 1)
	rl.now = func() time.Time { return now }

	stale := httptest.NewRequest("POST", "/", nil)
	stale.RemoteAddr = "10.0.0.1:5000"
	rl.Allow(stale)

	now = now.Add(30 * time.Minute)
	fresh := httptest.NewRequest("POST", "/", nil)
	fresh.RemoteAddr = "10.0.0.2:5000"
	rl.Allow(fresh)

	assert.Equal(t, 1, rl.Prune(now.Add(-10*time.Minute)))
	assert.Equal(t, 1, rl.Len())

	// the forgotten client starts over with a full bucket
	assert.True(t, rl.Allow(stale))
	assert.False(t, rl.Allow(fresh))
}

func TestRateLimiter_NilAllowsEverything(t *testing.T) {
	var rl *RateLimiter

	assert.True(t, rl.Allow(httptest.NewRequest("POST", "/", nil)))
}
