package rates

import (
	"context"
	"testing"
	"time"

	"currencyconverter/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewWarmer_Constructs(t *testing.T) {
	w := NewWarmer(nil, []string{"EUR"}, 10*time.Second)
	require.NotNil(t, w)
	require.Nil(t, w.sched)
}

func TestNewWarmer_DefaultsIntervalWhenInvalid(t *testing.T) {
	w := NewWarmer(nil, []string{"EUR"}, 0)
	require.Equal(t, 30*time.Second, w.interval)
}

func TestWarmer_Start_NoBases_StaysInert(t *testing.T) {
	w := NewWarmer(nil, nil, 10*time.Second)

	require.NoError(t, w.Start(context.Background()))
	require.Nil(t, w.sched)
	require.NoError(t, w.Shutdown())
}

func TestWarmer_Shutdown_NoScheduler_ReturnsNil(t *testing.T) {
	w := NewWarmer(nil, []string{"EUR"}, 10*time.Second)
	require.NoError(t, w.Shutdown())
	require.Nil(t, w.sched)
}

func TestWarmer_Start_And_ContextCancel_ShutsDown(t *testing.T) {
	mockProvider := new(MockRateProvider)
	svc := newTestService(t, mockProvider, newFakeStore())
	w := NewWarmer(svc, []string{"EUR"}, 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, w.Start(ctx))
	require.NotNil(t, w.sched)

	cancel()

	// Wait until w.sched becomes nil (Shutdown sets it to nil)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.sched == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	require.Nil(t, w.sched, "expected warmer to be shutdown after ctx cancel")
}

func TestWarmer_Shutdown_AfterStart_Idempotent(t *testing.T) {
	mockProvider := new(MockRateProvider)
	svc := newTestService(t, mockProvider, newFakeStore())
	w := NewWarmer(svc, []string{"EUR"}, 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	require.NotNil(t, w.sched)

	require.NoError(t, w.Shutdown())
	require.Nil(t, w.sched)

	require.NoError(t, w.Shutdown())
}

func TestWarmer_WarmPopulatesCache(t *testing.T) {
	mockProvider := new(MockRateProvider)
	store := newFakeStore()
	svc := newTestService(t, mockProvider, store)
	w := NewWarmer(svc, []string{"EUR", "USD"}, 10*time.Second)

	mockProvider.On("Latest", mock.Anything, "EUR").
		Return(domain.RateSet{Base: "EUR", Rates: map[string]decimal.Decimal{"USD": decimal.NewFromFloat(1.1)}}, nil).Once()
	mockProvider.On("Latest", mock.Anything, "USD").
		Return(domain.RateSet{Base: "USD", Rates: map[string]decimal.Decimal{"EUR": decimal.NewFromFloat(0.91)}}, nil).Once()

	w.warm(context.Background(), "test-exec")

	_, ok, err := store.Get(context.Background(), "rates:EUR")
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = store.Get(context.Background(), "rates:USD")
	require.NoError(t, err)
	require.True(t, ok)
	mockProvider.AssertExpectations(t)
}

func TestWarmer_WarmKeepsGoingAfterFailure(t *testing.T) {
	mockProvider := new(MockRateProvider)
	store := newFakeStore()
	svc := newTestService(t, mockProvider, store)
	w := NewWarmer(svc, []string{"EUR", "USD"}, 10*time.Second)

	mockProvider.On("Latest", mock.Anything, "EUR").
		Return(domain.RateSet{}, &domain.UpstreamError{StatusCode: 503}).Once()
	mockProvider.On("Latest", mock.Anything, "USD").
		Return(domain.RateSet{Base: "USD", Rates: map[string]decimal.Decimal{"EUR": decimal.NewFromFloat(0.91)}}, nil).Once()

	w.warm(context.Background(), "test-exec")

	_, ok, err := store.Get(context.Background(), "rates:USD")
	require.NoError(t, err)
	require.True(t, ok)
	mockProvider.AssertExpectations(t)
}
