package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultAppName           = "RupeeLink"
	defaultAppEnv            = "development"
	defaultPort              = "8080"
	defaultLogLevel          = "info"
	defaultShutdownDelay     = 10 * time.Second
	defaultIdempotencyTTL    = 24 * time.Hour
	defaultStoreTimeout      = 5 * time.Second
	defaultTransferWindow    = 10 * time.Minute
	defaultTransferThreshold = 3
	defaultTransferRate      = 30
	defaultReportInterval    = 24 * time.Hour

	// ReferenceCurrency is the common basis for cross-currency fraud limits.
	ReferenceCurrency = "INR"
)

// defaultWithdrawalLimit is 10 lakh INR.
var defaultWithdrawalLimit = decimal.New(1_000_000, 0)

// Config captures the immutable runtime configuration loaded from the
// environment at process start. Currency rates and fraud thresholds never
// change at runtime; adjusting them requires a redeploy.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
	StoreTimeout   time.Duration

	JWTSecret    string
	AdminKeyHash string

	// Rates maps each supported currency code to its conversion rate into
	// the reference currency.
	Rates map[string]decimal.Decimal

	LargeWithdrawalLimit decimal.Decimal
	TransferWindow       time.Duration
	TransferThreshold    int
	TransferRatePerMin   int

	ReportInterval time.Duration
}

// Load reads configuration values from the environment and populates a Config.
func Load() (Config, error) {
	cfg := Config{
		AppName:              getEnv("APP_NAME", defaultAppName),
		AppEnv:               getEnv("APP_ENV", defaultAppEnv),
		Port:                 getEnv("PORT", defaultPort),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AdminKeyHash:         os.Getenv("ADMIN_KEY_HASH"),
		ShutdownPeriod:       defaultShutdownDelay,
		IdempotencyTTL:       defaultIdempotencyTTL,
		StoreTimeout:         defaultStoreTimeout,
		LargeWithdrawalLimit: defaultWithdrawalLimit,
		TransferWindow:       defaultTransferWindow,
		TransferThreshold:    defaultTransferThreshold,
		TransferRatePerMin:   defaultTransferRate,
		ReportInterval:       defaultReportInterval,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.StoreTimeout, err = durationEnv("STORE_TIMEOUT", cfg.StoreTimeout); err != nil {
		return Config{}, err
	}
	if cfg.TransferWindow, err = durationEnv("TRANSFER_WINDOW", cfg.TransferWindow); err != nil {
		return Config{}, err
	}
	if cfg.ReportInterval, err = durationEnv("REPORT_INTERVAL", cfg.ReportInterval); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("TRANSFER_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid TRANSFER_THRESHOLD: %q", v)
		}
		cfg.TransferThreshold = n
	}
	if v := os.Getenv("TRANSFER_RATE_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid TRANSFER_RATE_PER_MIN: %q", v)
		}
		cfg.TransferRatePerMin = n
	}
	if v := os.Getenv("LARGE_WITHDRAWAL_LIMIT_INR"); v != "" {
		limit, err := decimal.NewFromString(v)
		if err != nil || limit.Sign() <= 0 {
			return Config{}, fmt.Errorf("invalid LARGE_WITHDRAWAL_LIMIT_INR: %q", v)
		}
		cfg.LargeWithdrawalLimit = limit
	}

	cfg.Rates, err = parseRates(os.Getenv("CURRENCY_RATES"))
	if err != nil {
		return Config{}, err
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.JWTSecret == "" {
			return Config{}, fmt.Errorf("JWT_SECRET must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// DefaultRates returns the supported currencies and their conversion rates
// into INR. Rates are deployment configuration, not live market data.
func DefaultRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"INR": decimal.New(1, 0),
		"USD": decimal.New(85, 0),
		"EUR": decimal.New(95, 0),
		"GBP": decimal.New(108, 0),
	}
}

// parseRates accepts overrides in the form "USD=85,EUR=95.5". An empty value
// yields the defaults.
func parseRates(raw string) (map[string]decimal.Decimal, error) {
	rates := DefaultRates()
	if raw == "" {
		return rates, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		code, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			return nil, fmt.Errorf("invalid CURRENCY_RATES entry: %q", pair)
		}
		code = strings.ToUpper(strings.TrimSpace(code))
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || rate.Sign() <= 0 {
			return nil, fmt.Errorf("invalid rate for %s: %q", code, value)
		}
		rates[code] = rate
	}
	if _, ok := rates[ReferenceCurrency]; !ok {
		return nil, fmt.Errorf("CURRENCY_RATES must include %s", ReferenceCurrency)
	}
	return rates, nil
}

// IsDev reports whether the process runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
