package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "IMAGEVAULT"

// EnvConfig maps IMAGEVAULT_* environment variables onto Config fields.
type EnvConfig struct {
	HTTPAddr                     string        `envconfig:"HTTP_ADDR"`
	DatabaseDSN                  string        `envconfig:"DATABASE_DSN"`
	AccessTokenSecret            string        `envconfig:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret           string        `envconfig:"REFRESH_TOKEN_SECRET"`
	AccessTokenValidityDuration  time.Duration `envconfig:"ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration time.Duration `envconfig:"REFRESH_TOKEN_TTL"`
	S3RootUser                   string        `envconfig:"S3_ROOT_USER"`
	S3RootPassword               string        `envconfig:"S3_ROOT_PASSWORD"`
	S3Bucket                     string        `envconfig:"S3_BUCKET"`
	S3Region                     string        `envconfig:"S3_REGION"`
	S3BaseEndpoint               string        `envconfig:"S3_BASE_ENDPOINT"`
	RedisURL                     string        `envconfig:"REDIS_URL"`
	LoginRateLimit               int           `envconfig:"LOGIN_RATE_LIMIT"`
	CookieSecure                 bool          `envconfig:"COOKIE_SECURE"`
	SpoolDir                     string        `envconfig:"SPOOL_DIR"`
	MaxUploadSize                int64         `envconfig:"MAX_UPLOAD_SIZE"`
	LogLevel                     string        `envconfig:"LOG_LEVEL"`
}

// parseEnv overlays values from the environment. envconfig leaves a field
// untouched when its variable is unset, so the struct is seeded with the
// current config first. Unparsable values panic.
func parseEnv(config *Config) {
	e := EnvConfig(*config)

	if err := envconfig.Process(envPrefix, &e); err != nil {
		panic(err)
	}

	*config = Config(e)
}
