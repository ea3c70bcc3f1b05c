package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"currencyconverter/internal/adapters"
	"currencyconverter/internal/domain"
	"currencyconverter/internal/metrics"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	msgConversionNotAllowed = "Conversion between the specified currencies is not allowed."
	msgConversionFailed     = "Error fetching conversion rates."
	msgHistoricalFailed     = "Error fetching historical rates."
)

const (
	opLatest     = "latest"
	opConvert    = "convert"
	opHistorical = "historical"
)

// Config carries the orchestrator's policy knobs.
type Config struct {
	// ExcludedCurrencies are codes conversions must never touch, e.g. for
	// upstream licensing reasons. Checked before cache and provider.
	ExcludedCurrencies []string
	// HistoricalTTL bounds how long one historical page stays cached.
	HistoricalTTL time.Duration
}

// Service orchestrates rate queries: cache-aside reads, single-flight
// upstream fetches with retry, publication-aligned expiry, conversion
// arithmetic and pagination of historical series.
type Service struct {
	provider      adapters.RateProvider
	store         adapters.Store
	retry         Retryer
	expiry        ExpiryCalculator
	metrics       *metrics.Metrics
	excluded      map[string]struct{}
	historicalTTL time.Duration

	flight singleflight.Group
	now    func() time.Time
}

func NewService(provider adapters.RateProvider, store adapters.Store, retryer Retryer, expiry ExpiryCalculator, m *metrics.Metrics, cfg Config) *Service {
	excluded := make(map[string]struct{}, len(cfg.ExcludedCurrencies))
	for _, code := range cfg.ExcludedCurrencies {
		excluded[normalizeCode(code)] = struct{}{}
	}

	historicalTTL := cfg.HistoricalTTL
	if historicalTTL <= 0 {
		historicalTTL = time.Hour
	}

	return &Service{
		provider:      provider,
		store:         store,
		retry:         retryer,
		expiry:        expiry,
		metrics:       m,
		excluded:      excluded,
		historicalTTL: historicalTTL,
		now:           time.Now,
	}
}

// GetLatestRates returns the current rate set for a base currency, from cache
// when possible. On a genuine miss exactly one upstream fetch runs per key,
// shared by all concurrent callers, and exactly one cache write follows a
// successful fetch. Fails with *domain.UpstreamError when the provider
// cannot be reached or answers non-2xx.
func (s *Service) GetLatestRates(ctx context.Context, base string) (domain.RateSet, error) {
	base = normalizeCode(base)
	if !validCode(base) {
		return domain.RateSet{}, domain.ErrInvalidCurrencyCode
	}

	key := latestKey(base)
	var cached domain.RateSet
	if s.lookup(ctx, opLatest, key, &cached) {
		return cached, nil
	}

	v, err := s.fetchShared(ctx, key, func(fctx context.Context) (any, time.Duration, error) {
		set, fetchErr := s.fetchUpstream(fctx, opLatest, func(actx context.Context) (domain.RateSet, error) {
			return s.provider.Latest(actx, base)
		})
		if fetchErr != nil {
			return nil, 0, fetchErr
		}
		return set, s.expiry.NextRefreshDelay(s.now().UTC()), nil
	})
	if err != nil {
		return domain.RateSet{}, err
	}
	return v.(domain.RateSet), nil
}

// Convert converts amount from one currency to another. It never fails:
// the outcome, including policy rejections and upstream trouble, is always
// a typed ConversionResult.
func (s *Service) Convert(ctx context.Context, from, to string, amount decimal.Decimal) domain.ConversionResult {
	from = normalizeCode(from)
	to = normalizeCode(to)

	if s.isExcluded(from) || s.isExcluded(to) {
		return domain.ConversionResult{
			Success:      false,
			From:         from,
			To:           to,
			Amount:       amount,
			StatusCode:   http.StatusBadRequest,
			ErrorMessage: msgConversionNotAllowed,
		}
	}

	key := conversionKey(from, to, amount)
	var cached domain.ConversionResult
	if s.lookup(ctx, opConvert, key, &cached) {
		return cached
	}

	v, err := s.fetchShared(ctx, key, func(fctx context.Context) (any, time.Duration, error) {
		set, fetchErr := s.fetchUpstream(fctx, opConvert, func(actx context.Context) (domain.RateSet, error) {
			return s.provider.Convert(actx, amount, from, to)
		})
		if fetchErr != nil {
			return nil, 0, fetchErr
		}

		converted, ok := set.Rates[to]
		if !ok {
			return nil, 0, fmt.Errorf("provider response missing rate for %q", to)
		}

		result := domain.ConversionResult{
			Success:         true,
			From:            from,
			To:              to,
			Amount:          amount,
			ConvertedAmount: converted,
			StatusCode:      http.StatusOK,
		}
		if amount.IsPositive() {
			result.Rate = converted.Div(amount)
		}
		return result, s.expiry.NextRefreshDelay(s.now().UTC()), nil
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"from": from, "to": to}).Error("conversion fetch failed")
		return domain.ConversionResult{
			Success:      false,
			From:         from,
			To:           to,
			Amount:       amount,
			StatusCode:   http.StatusInternalServerError,
			ErrorMessage: msgConversionFailed,
		}
	}
	return v.(domain.ConversionResult)
}

// GetHistoricalRates returns one page of the rate series for [start, end].
// The whole range is fetched in a single provider call, paginated, and the
// page cached under a bounded TTL. Like Convert, it never fails.
func (s *Service) GetHistoricalRates(ctx context.Context, base string, start, end time.Time, page, pageSize int) domain.PaginatedHistoricalResult {
	base = normalizeCode(base)
	startStr := start.Format(domain.DateLayout)
	endStr := end.Format(domain.DateLayout)

	failed := domain.PaginatedHistoricalResult{
		Success:    false,
		PageNumber: page,
		PageSize:   pageSize,
	}
	if page < 1 || pageSize < 1 {
		failed.ErrorMessage = domain.ErrInvalidPage.Error()
		return failed
	}
	if start.After(end) {
		failed.ErrorMessage = domain.ErrInvalidDateRange.Error()
		return failed
	}

	key := historicalKey(base, startStr, endStr, page, pageSize)
	var cached domain.PaginatedHistoricalResult
	if s.lookup(ctx, opHistorical, key, &cached) {
		return cached
	}

	v, err := s.fetchShared(ctx, key, func(fctx context.Context) (any, time.Duration, error) {
		series, fetchErr := s.fetchSeries(fctx, base, startStr, endStr)
		if fetchErr != nil {
			return nil, 0, fetchErr
		}
		return paginate(series, page, pageSize), s.historicalTTL, nil
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"base": base, "start": startStr, "end": endStr}).Error("historical fetch failed")
		failed.ErrorMessage = msgHistoricalFailed
		return failed
	}
	return v.(domain.PaginatedHistoricalResult)
}

// fetchShared coalesces concurrent misses for one key into a single upstream
// fetch. The fetch runs detached from any one caller's cancellation, so a
// caller giving up aborts only its own wait, not the shared flight. A
// successful fetch writes the cache once before waiters are released.
func (s *Service) fetchShared(ctx context.Context, key string, fetch func(ctx context.Context) (any, time.Duration, error)) (any, error) {
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		v, ttl, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.storeEntry(fetchCtx, key, v, ttl)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	}
}

// fetchUpstream runs one provider call under the retry policy and guarantees
// the returned error, if any, carries a *domain.UpstreamError in its chain.
func (s *Service) fetchUpstream(ctx context.Context, op string, call func(ctx context.Context) (domain.RateSet, error)) (domain.RateSet, error) {
	var set domain.RateSet
	err := s.retry(ctx, func(actx context.Context) error {
		start := s.now()
		var callErr error
		set, callErr = call(actx)
		s.observeUpstream(op, start, callErr)
		return callErr
	})
	if err != nil {
		var ue *domain.UpstreamError
		if !errors.As(err, &ue) {
			err = &domain.UpstreamError{Err: err}
		}
		return domain.RateSet{}, err
	}
	return set, nil
}

func (s *Service) fetchSeries(ctx context.Context, base, start, end string) (domain.HistoricalSeries, error) {
	var series domain.HistoricalSeries
	err := s.retry(ctx, func(actx context.Context) error {
		started := s.now()
		var callErr error
		series, callErr = s.provider.Range(actx, base, start, end)
		s.observeUpstream(opHistorical, started, callErr)
		return callErr
	})
	if err != nil {
		return domain.HistoricalSeries{}, err
	}
	return series, nil
}

// lookup reads and decodes a cached entry. A backend failure counts as a
// miss: a broken cache must degrade the service to always-fetch, not take
// requests down with it.
func (s *Service) lookup(ctx context.Context, op, key string, out any) bool {
	b, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.metrics.CacheErrorsTotal.WithLabelValues(op).Inc()
		logrus.WithError(err).WithField("key", key).Warn("cache read failed, treating as miss")
		return false
	}
	if !ok {
		s.metrics.CacheMissesTotal.WithLabelValues(op).Inc()
		return false
	}
	if err = json.Unmarshal(b, out); err != nil {
		s.metrics.CacheErrorsTotal.WithLabelValues(op).Inc()
		logrus.WithError(err).WithField("key", key).Warn("cache entry undecodable, treating as miss")
		return false
	}
	s.metrics.CacheHitsTotal.WithLabelValues(op).Inc()
	return true
}

func (s *Service) storeEntry(ctx context.Context, key string, v any, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("failed to encode cache entry")
		return
	}
	if err = s.store.Set(ctx, key, b, ttl); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func (s *Service) observeUpstream(op string, start time.Time, err error) {
	s.metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(s.now().Sub(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "transport_error"
		var ue *domain.UpstreamError
		if errors.As(err, &ue) && ue.StatusCode != 0 {
			outcome = "upstream_error"
		}
	}
	s.metrics.UpstreamRequestsTotal.WithLabelValues(op, outcome).Inc()
}

func (s *Service) isExcluded(code string) bool {
	_, ok := s.excluded[code]
	return ok
}
