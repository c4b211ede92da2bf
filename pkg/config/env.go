package config

const (
	EnvPrefix = "CARTRESERVE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "CARTRESERVE_APP_ENV"
	EnvPort     = "CARTRESERVE_APP_PORT"
	EnvLogLevel = "CARTRESERVE_LOG_LEVEL"
	EnvCORS     = "CARTRESERVE_CORS_ORIGINS"

	EnvDBDSN  = "CARTRESERVE_DB_DSN"
	EnvDBHost = "CARTRESERVE_DB_HOST"
	EnvDBPort = "CARTRESERVE_DB_PORT"
	EnvDBUser = "CARTRESERVE_DB_USER"
	EnvDBPass = "CARTRESERVE_DB_PASSWORD"
	EnvDBName = "CARTRESERVE_DB_NAME"

	EnvRedisURL = "CARTRESERVE_REDIS_URL"

	EnvJWTSecret     = "CARTRESERVE_JWT_SECRET"
	EnvSessionTTLMin = "CARTRESERVE_SESSION_TTL_MINUTES"

	EnvCartHoldWindow     = "CARTRESERVE_CART_HOLD_WINDOW"
	EnvCartCheckoutWindow = "CARTRESERVE_CART_CHECKOUT_WINDOW"
	EnvCartMaxLineQty     = "CARTRESERVE_CART_MAX_LINE_QUANTITY"

	EnvSweepInterval = "CARTRESERVE_SWEEP_INTERVAL"
	EnvSweepLockTTL  = "CARTRESERVE_SWEEP_LOCK_TTL"

	EnvUseSQLite = "CARTRESERVE_USE_SQLITE"

	EnvPubSubCartTopic = "CARTRESERVE_PUBSUB_CART_TOPIC"
)

var hostDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
