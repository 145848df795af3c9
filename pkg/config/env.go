package config

// EnvPrefix is handed to envconfig; every tag below carries the full name.
const EnvPrefix = "PHARMACY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv          = "PHARMACY_APP_ENV"
	EnvPort            = "PHARMACY_APP_PORT"
	EnvDBDSN           = "PHARMACY_DB_DSN"
	EnvDBHost          = "PHARMACY_DB_HOST"
	EnvDBUser          = "PHARMACY_DB_USER"
	EnvDBName          = "PHARMACY_DB_NAME"
	EnvDBPassword      = "PHARMACY_DB_PASSWORD"
	EnvUseSQLite       = "PHARMACY_USE_SQLITE"
	EnvRedisURL        = "PHARMACY_REDIS_URL"
	EnvJWTSecret       = "PHARMACY_JWT_SECRET"
	EnvStripeEnv       = "PHARMACY_STRIPE_ENV"
	EnvFirebaseProject = "PHARMACY_FIREBASE_PROJECT_ID"
	EnvPubSubProject   = "PHARMACY_GCP_PROJECT_ID"
	EnvPubSubTopic     = "PHARMACY_PUBSUB_DOMAIN_TOPIC"
	EnvCORSOrigins     = "PHARMACY_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
