package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RistrettoStore is an in-process byte store with per-entry TTL.
type RistrettoStore struct {
	cache *ristretto.Cache
}

func NewRistrettoStore(maxItems int64) (*RistrettoStore, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create rate cache failed: %w", err)
	}
	return &RistrettoStore{cache: c}, nil
}

func (s *RistrettoStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		b, ok := v.([]byte)
		return b, ok, nil
	}
	return nil, false, nil
}

func (s *RistrettoStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.cache.SetWithTTL(key, value, 1, ttl)
	return nil
}

// Wait flushes buffered writes so subsequent gets observe them.
func (s *RistrettoStore) Wait() { s.cache.Wait() }

func (s *RistrettoStore) Close() { s.cache.Close() }
