package config

// EnvPrefix is intentionally empty: every variable carries the full
// FIDGETCLICKS_ prefix in its envconfig tag so grep finds them verbatim.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "FIDGETCLICKS_APP_ENV"
	EnvPort     = "FIDGETCLICKS_APP_PORT"
	EnvDBDSN    = "FIDGETCLICKS_DB_DSN"
	EnvDBHost   = "FIDGETCLICKS_DB_HOST"
	EnvDBUser   = "FIDGETCLICKS_DB_USER"
	EnvDBName   = "FIDGETCLICKS_DB_NAME"
	EnvRedisURL = "FIDGETCLICKS_REDIS_URL"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
