package config

// EnvPrefix is the envconfig prefix shared by every service binary.
const EnvPrefix = "FRAMEWELL"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names, kept in one place so tests and deploy tooling
// reference the same strings.
const (
	EnvAppEnv                 = "FRAMEWELL_APP_ENV"
	EnvPort                   = "FRAMEWELL_APP_PORT"
	EnvDBDSN                  = "FRAMEWELL_DB_DSN"
	EnvDBHost                 = "FRAMEWELL_DB_HOST"
	EnvDBUser                 = "FRAMEWELL_DB_USER"
	EnvDBName                 = "FRAMEWELL_DB_NAME"
	EnvRedisURL               = "FRAMEWELL_REDIS_URL"
	EnvJWTSecret              = "FRAMEWELL_JWT_SECRET"
	EnvJWTIssuer              = "FRAMEWELL_JWT_ISSUER"
	EnvJWTExpMins             = "FRAMEWELL_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "FRAMEWELL_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "FRAMEWELL_GCP_PROJECT_ID"
	EnvGCSBucket              = "FRAMEWELL_GCS_BUCKET_NAME"
	EnvGCSUploadExpiry        = "FRAMEWELL_GCS_UPLOAD_URL_EXPIRY"
	EnvGCSDownloadExpiry      = "FRAMEWELL_GCS_DOWNLOAD_URL_EXPIRY"
	EnvPubSubPhotosTopic      = "FRAMEWELL_PUBSUB_PHOTOS_TOPIC"
	EnvPubSubPhotosSub        = "FRAMEWELL_PUBSUB_PHOTOS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
