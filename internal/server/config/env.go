package config

import (
	"os"
	"time"
)

// parseEnv overlays Config with environment variables. Variables are
// typically sourced from a .env file loaded with godotenv before
// LoadConfig runs. Duration variables use time.ParseDuration syntax
// ("15m"); unparseable values are ignored.
func parseEnv(config *Config) {
	if v := os.Getenv("GRPC_ADDR"); v != "" {
		config.EndpointAddrGRPC = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("SESSION_TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionTokenValidityDuration = d
		}
	}
	if v := os.Getenv("CHALLENGE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.ChallengeTTL = d
		}
	}
	if v := os.Getenv("S3_ROOT_USER"); v != "" {
		config.S3RootUser = v
	}
	if v := os.Getenv("S3_ROOT_PASSWORD"); v != "" {
		config.S3RootPassword = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		config.S3Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		config.S3Region = v
	}
	if v := os.Getenv("S3_BASE_ENDPOINT"); v != "" {
		config.S3BaseEndpoint = v
	}
}
