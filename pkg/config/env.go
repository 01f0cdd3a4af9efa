package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultSlotIntervalMin = "DEFAULT_SLOT_INTERVAL_MIN"
	EnvDefaultSlotCapacity    = "DEFAULT_SLOT_CAPACITY"
	EnvDefaultStartOfDay      = "DEFAULT_START_OF_DAY"
	EnvDefaultEndOfDay        = "DEFAULT_END_OF_DAY"

	EnvSlotLockTTL    = "SLOT_LOCK_TTL"
	EnvFlowSessionTTL = "FLOW_SESSION_TTL"
	EnvNotifyTimeout  = "NOTIFY_TIMEOUT"
)
