package config

import "time"

const (
	DefaultHTTPPort          = "8080"
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxBodyBytes      = 4 << 10
	DefaultNonceTTL          = 24 * time.Hour
	DefaultProofClockSkew    = time.Minute
	DefaultPublisherPoll     = 30 * time.Second
	DefaultPriceDecimals     = 6
	DefaultFetchConcurrency  = 4
	DefaultUpstreamInterval  = 250 * time.Millisecond
	DefaultPGMaxConns        = 5
	DefaultPGMinConns        = 1
)
