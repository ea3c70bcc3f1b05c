package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"currencyconverter/internal/adapters"
	"currencyconverter/internal/adapters/cache"
	"currencyconverter/internal/adapters/frankfurter"
	"currencyconverter/internal/api"
	"currencyconverter/internal/config"
	"currencyconverter/internal/metrics"
	httpserver "currencyconverter/internal/platform/http"
	"currencyconverter/internal/rates"
	"currencyconverter/internal/rates/handler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and the warm-up
// scheduler.
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	cfgLevel := appCfg.Logging.Level
	if parsedLvl, parseErr := logrus.ParseLevel(cfgLevel); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (cache backend connect)
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Cache store
	store, closeStore, err := newStore(startupCtx, appCfg)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to cache backend")
		return err
	}
	defer closeStore()
	logrus.Infof("✅ Cache backend ready (%s)", appCfg.Cache.Backend)

	// Provider client (configurable per-attempt timeout)
	httpTimeout := time.Duration(appCfg.Provider.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	providerClient := frankfurter.NewClient(&http.Client{Timeout: httpTimeout}, appCfg.Provider.BaseURL)

	// Expiry aligned to the provider's publication schedule
	loc, err := time.LoadLocation(appCfg.Refresh.Timezone)
	if err != nil {
		return fmt.Errorf("invalid refresh timezone %q: %w", appCfg.Refresh.Timezone, err)
	}
	expiry := rates.NewExpiryCalculator(loc, appCfg.Refresh.Hour)

	// Retry policy
	retryer := rates.NoRetry
	if appCfg.Retry.Enabled {
		retryer = rates.NewBackoffRetryer(appCfg.Retry.MaxRetries, rates.ExponentialBackoff, rates.TransientUpstream)
	}

	// Services
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	rateService := rates.NewService(providerClient, store, retryer, expiry, m, rates.Config{
		ExcludedCurrencies: appCfg.Rates.ExcludedCurrencies,
		HistoricalTTL:      time.Duration(appCfg.Cache.HistoricalTTLMinutes) * time.Minute,
	})

	// Warm-up scheduler
	warmer := rates.NewWarmer(rateService, appCfg.Warmup.Bases, time.Duration(appCfg.Warmup.IntervalMinutes)*time.Minute)
	defer func() {
		if shutDownErr := warmer.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Warmer shutdown error: %v", shutDownErr)
		}
	}()
	if startErr := warmer.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start warm-up scheduler")
		return startErr
	}
	logrus.Info("✅ Warm-up scheduler activation successful")

	// Handlers and router
	rateHandler := handler.NewRateHandler(rateService)
	router := api.NewRouter(rateHandler)

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop the warmer and in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

// newStore picks the cache backend from config: in-process ristretto by
// default, redis for shared multi-instance deployments.
func newStore(ctx context.Context, cfg *config.AppConfig) (adapters.Store, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		store, err := cache.NewRedisStore(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Pass,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "", "memory":
		store, err := cache.NewRistrettoStore(cfg.Cache.MaxItems)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
