package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RateLimitStore counts hits in process memory. It serves single-instance
// deployments and the no-Redis development setup; counts reset on restart and
// are never shared across instances.
type RateLimitStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{
		cache: gocache.New(gocache.NoExpiration, 5*time.Minute),
	}
}

func (s *RateLimitStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if v, expires, ok := s.cache.GetWithExpiration(key); ok && expires.After(now) {
		count := v.(int64) + 1
		// The window keeps its original expiry; only the count moves.
		s.cache.Set(key, count, expires.Sub(now))
		return count, nil
	}

	s.cache.Set(key, int64(1), window)
	return 1, nil
}
