package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/flagx"
)

var serverFlags = []string{
	"a", "d", "s", "k", "t", "r", "u", "p", "b", "g", "e",
	"redis", "rate", "spool", "max-upload", "log-level",
}

var serverBoolFlags = []string{"cookie-secure"}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string         HTTP bind address (e.g., ":8080")
//	-d string         PostgreSQL DSN
//	-s string         access token HMAC secret
//	-k string         refresh token HMAC secret
//	-t int            access token validity, minutes
//	-r int            refresh token validity, minutes
//	-u string         S3 root user
//	-p string         S3 root password
//	-b string         S3 bucket name
//	-g string         S3 region
//	-e string         S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-redis string     Redis URL for the login rate limiter
//	-rate int         login attempts per IP per minute
//	-cookie-secure    Secure attribute on session cookies (use -cookie-secure=false)
//	-spool string     upload spool directory
//	-max-upload int   upload size limit, bytes
//	-log-level string log level
//
// os.Args is first filtered with flagx.FilterArgs so flags owned by other
// components (such as -c) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags, serverBoolFlags...)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "k", config.RefreshTokenSecret, "refresh token secret")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.RedisURL, "redis", config.RedisURL, "redis URL")
	fs.IntVar(&config.LoginRateLimit, "rate", config.LoginRateLimit, "login attempts per minute per IP")
	fs.BoolVar(&config.CookieSecure, "cookie-secure", config.CookieSecure, "secure session cookies")
	fs.StringVar(&config.SpoolDir, "spool", config.SpoolDir, "upload spool directory")
	fs.Int64Var(&config.MaxUploadSize, "max-upload", config.MaxUploadSize, "max upload size in bytes")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}
