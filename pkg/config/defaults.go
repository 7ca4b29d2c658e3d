package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "cloudbase"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisDB          = 0
	DefaultRedisConnTimeout = 5 * time.Second

	DefaultPort = "8080"

	DefaultPaymentCurrency = "inr"
	DefaultPaymentTimeout  = 15 * time.Second

	DefaultRoutingEngineTimeout = 10 * time.Second

	DefaultTokenTTL = 24 * time.Hour

	DefaultOTPTTL         = 10 * time.Minute
	DefaultFlightCacheTTL = 30 * time.Second

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
