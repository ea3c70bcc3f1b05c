package adapters

import (
	"context"
	"time"

	"currencyconverter/internal/domain"

	"github.com/shopspring/decimal"
)

// RateProvider is the outbound contract to the upstream rate service.
type RateProvider interface {
	Latest(ctx context.Context, base string) (domain.RateSet, error)
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (domain.RateSet, error)
	Range(ctx context.Context, base, start, end string) (domain.HistoricalSeries, error)
}

// Store is a keyed byte store with per-entry TTL. Implementations own their
// internal synchronization; callers assume nothing stronger than get/set.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
