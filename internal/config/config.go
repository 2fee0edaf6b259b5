package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	infraconfig "price-registry/internal/infrastructure/config"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port            string
	Storage         string
	DatabaseURL     string
	FreshnessPolicy string
	WriteRateRPS    int
	WriteRateBurst  int
	// Authorization
	AllowedProviders []string
	NonceBackend     string
	NonceTTL         time.Duration
	// Redis (storage and/or nonces)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Publisher
	PublisherSource  string
	DexScreenerBase  string
	PublisherSymbols []string
	PublisherQuote   string
	PriceDecimals    int
	PublisherPoll    time.Duration
	PublisherSeed    string
	MinLiquidityUSD  float64
	FakePrice        float64
	RequestTimeout   time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func floatDef(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func msDef(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, ""), defMS)) * time.Millisecond
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:              getEnv("ENV", "local"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnv("PORT", infraconfig.DefaultHTTPPort),
		Storage:          getEnv("STORAGE", "memory"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		FreshnessPolicy:  getEnv("FRESHNESS_POLICY", "clamp"),
		WriteRateRPS:     atoiDef(getEnv("WRITE_RATE_LIMIT_RPS", "20"), 20),
		WriteRateBurst:   atoiDef(getEnv("WRITE_RATE_BURST", "40"), 40),
		AllowedProviders: splitList(getEnv("ALLOWED_PROVIDERS", "")),
		NonceBackend:     getEnv("NONCE_BACKEND", "memory"),
		NonceTTL:         msDef("NONCE_TTL_MS", int(infraconfig.DefaultNonceTTL/time.Millisecond)),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          atoiDef(getEnv("REDIS_DB", "0"), 0),
		PublisherSource:  getEnv("PUBLISHER_SOURCE", "fake"),
		DexScreenerBase:  getEnv("DEXSCREENER_BASE", "https://api.dexscreener.com"),
		PublisherSymbols: splitList(getEnv("PUBLISHER_SYMBOLS", "BTC,ETH,SOL,XLM")),
		PublisherQuote:   getEnv("PUBLISHER_QUOTE", "USD"),
		PriceDecimals:    atoiDef(getEnv("PRICE_DECIMALS", ""), infraconfig.DefaultPriceDecimals),
		PublisherPoll:    msDef("PUBLISHER_POLL_MS", int(infraconfig.DefaultPublisherPoll/time.Millisecond)),
		PublisherSeed:    getEnv("PUBLISHER_SEED", ""),
		MinLiquidityUSD:  floatDef(getEnv("MIN_LIQUIDITY_USD", "50000"), 50000),
		FakePrice:        floatDef(getEnv("FAKE_PRICE", "6.5"), 6.5),
		RequestTimeout:   msDef("REQUEST_TIMEOUT_MS", 10000),
	}
}

// NeedsRedis reports whether any configured backend talks to Redis.
func (c Config) NeedsRedis() bool {
	return c.Storage == "redis" || c.NonceBackend == "redis"
}
