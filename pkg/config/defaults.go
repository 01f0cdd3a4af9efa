package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "sisvida_agenda"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDefaultSlotIntervalMin = 30
	DefaultDefaultSlotCapacity    = 1
	DefaultDefaultStartOfDay      = "08:00"
	DefaultDefaultEndOfDay        = "18:00"

	DefaultSlotLockTTL    = 10 * time.Second
	DefaultFlowSessionTTL = 30 * time.Minute
	DefaultNotifyTimeout  = 5 * time.Second

	DefaultPaginationLimit = 100
)
