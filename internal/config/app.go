package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type Provider struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type Cache struct {
	Backend              string `mapstructure:"backend"` // "memory" or "redis"
	MaxItems             int64  `mapstructure:"max_items"`
	HistoricalTTLMinutes int    `mapstructure:"historical_ttl_minutes"`
}

type Redis struct {
	Addr string `mapstructure:"addr"`
	Pass string `mapstructure:"pass"`
	DB   int    `mapstructure:"db"`
}

type Retry struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxRetries int  `mapstructure:"max_retries"`
}

type Rates struct {
	ExcludedCurrencies []string `mapstructure:"excluded_currencies"`
}

type Refresh struct {
	Timezone string `mapstructure:"timezone"`
	Hour     int    `mapstructure:"hour"`
}

type Warmup struct {
	Bases           []string `mapstructure:"bases"`
	IntervalMinutes int      `mapstructure:"interval_minutes"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	Provider   Provider   `mapstructure:"provider"`
	Cache      Cache      `mapstructure:"cache"`
	Redis      Redis      `mapstructure:"redis"`
	Retry      Retry      `mapstructure:"retry"`
	Rates      Rates      `mapstructure:"rates"`
	Refresh    Refresh    `mapstructure:"refresh"`
	Warmup     Warmup     `mapstructure:"warmup"`
	Logging    Logging    `mapstructure:"logging"`
}

func Init() (*AppConfig, error) {
	var cfg AppConfig

	// .env is optional outside local development
	_ = godotenv.Load()

	viper.SetConfigFile("config.yaml")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	viper.SetDefault("http_server.port", "8080")
	viper.SetDefault("provider.base_url", "https://api.frankfurter.app")
	viper.SetDefault("provider.timeout_seconds", 10)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.max_items", 4096)
	viper.SetDefault("cache.historical_ttl_minutes", 60)
	viper.SetDefault("retry.enabled", true)
	viper.SetDefault("retry.max_retries", 3)
	viper.SetDefault("rates.excluded_currencies", []string{"TRY", "PLN", "THB", "MXN"})
	viper.SetDefault("refresh.timezone", "Europe/Paris")
	viper.SetDefault("refresh.hour", 16)
	viper.SetDefault("warmup.interval_minutes", 30)
	viper.SetDefault("logging.level", "info")

	// http server env vars
	_ = viper.BindEnv("http_server.port", "HTTP_PORT")

	// provider env vars
	_ = viper.BindEnv("provider.base_url", "PROVIDER_BASE_URL")
	_ = viper.BindEnv("provider.timeout_seconds", "PROVIDER_TIMEOUT_SECONDS")

	// cache env vars
	_ = viper.BindEnv("cache.backend", "CACHE_BACKEND")
	_ = viper.BindEnv("cache.max_items", "CACHE_MAX_ITEMS")
	_ = viper.BindEnv("cache.historical_ttl_minutes", "CACHE_HISTORICAL_TTL_MINUTES")

	// redis env vars
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.pass", "REDIS_PASS")
	_ = viper.BindEnv("redis.db", "REDIS_DB")

	// retry env vars
	_ = viper.BindEnv("retry.enabled", "RETRY_ENABLED")
	_ = viper.BindEnv("retry.max_retries", "RETRY_MAX_RETRIES")

	// logging env vars
	_ = viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}
