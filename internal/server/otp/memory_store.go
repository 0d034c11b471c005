package otp

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps challenges in a go-cache table. Entries without a ttl
// stay until Resolve consumes them; the cache janitor only drops capped
// entries.
type MemoryStore struct {
	mu sync.Mutex
	c  *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (s *MemoryStore) Put(ctx context.Context, c *models.Challenge, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	cp := *c
	s.mu.Lock()
	s.c.Set(c.UserName, &cp, ttl)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Resolve(ctx context.Context, userName string, fn ResolveFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.c.Get(userName)
	if !ok {
		return common.ErrNoActiveChallenge
	}

	c := *v.(*models.Challenge)
	consume, err := fn(&c)
	if consume {
		s.c.Delete(userName)
	}
	return err
}
