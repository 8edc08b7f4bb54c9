// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"employee-directory/backend/internal/security"
)

// Refresh token store backends.
const (
	RefreshStorePostgres = "postgres"
	RefreshStoreRedis    = "redis"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. The password part may be in the encrypted "iv:ciphertext" form.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// JWTIssuer is the iss claim.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTExpiresAt is the access token lifetime in whole days, as a numeric string.
	JWTExpiresAt string `mapstructure:"JWT_EXPIRES_AT"`
	// JWTSecretKey is the HMAC signing key, plain or encrypted. Any value containing ":" is
	// treated as encrypted, so a plain key must not contain a colon or DecryptSecrets fails.
	JWTSecretKey string `mapstructure:"JWT_SECRET_KEY"`
	// DecryptKey is the 16-byte pre-shared AES key for client and config secrets.
	DecryptKey string `mapstructure:"DECRYPT_KEY"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// RefreshStore selects where refresh tokens live: "postgres" (default) or "redis".
	RefreshStore  string `mapstructure:"REFRESH_STORE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// CookieTTL is how long session cookies live on the client (e.g. "15m").
	CookieTTL string `mapstructure:"COOKIE_TTL"`

	// OTLPEndpoint is the collector address; empty disables export.
	OTLPEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure    bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	OTELServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	// Env is the application environment (e.g. "development", "production"). Cookies are Secure in production.
	Env string `mapstructure:"APP_ENV"`

	// Seed-only: credentials of the initial Director account.
	SeedDirectorEmail    string `mapstructure:"SEED_DIRECTOR_EMAIL"`
	SeedDirectorPassword string `mapstructure:"SEED_DIRECTOR_PASSWORD"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "employee-directory")
	v.SetDefault("JWT_AUDIENCE", "employee-directory-api")
	v.SetDefault("JWT_EXPIRES_AT", "1")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("DECRYPT_KEY", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("REFRESH_STORE", RefreshStorePostgres)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("COOKIE_TTL", "15m")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", true)
	v.SetDefault("OTEL_SERVICE_NAME", "employee-directory")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("SEED_DIRECTOR_EMAIL", "")
	v.SetDefault("SEED_DIRECTOR_PASSWORD", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	cfg.RefreshStore = strings.ToLower(strings.TrimSpace(cfg.RefreshStore))
	switch cfg.RefreshStore {
	case RefreshStorePostgres, RefreshStoreRedis:
	default:
		return nil, fmt.Errorf("config: REFRESH_STORE must be %q or %q", RefreshStorePostgres, RefreshStoreRedis)
	}

	if _, err := cfg.ExpiresAtDays(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ExpiresAtDays parses JWTExpiresAt as a positive whole number of days.
// Fractional, zero, negative and non-numeric values are a *security.ConfigError.
func (c *Config) ExpiresAtDays() (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(c.JWTExpiresAt))
	if err != nil || days <= 0 {
		return 0, &security.ConfigError{Setting: "JWT_EXPIRES_AT", Reason: "must be a positive whole number of days"}
	}
	return days, nil
}

// AccessTTL is the access token lifetime. Only valid after Load succeeded.
func (c *Config) AccessTTL() time.Duration {
	days, err := c.ExpiresAtDays()
	if err != nil {
		return 24 * time.Hour
	}
	return time.Duration(days) * 24 * time.Hour
}

// SessionCookieTTL parses CookieTTL. Returns 15m if unset or invalid.
func (c *Config) SessionCookieTTL() time.Duration {
	d, err := time.ParseDuration(c.CookieTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// SecureCookies reports whether cookies should carry the Secure attribute.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}

// Decrypter decrypts a value in the "iv:ciphertext" wire format.
type Decrypter interface {
	Decrypt(payload string) (string, error)
}

// DecryptSecrets replaces encrypted sensitive settings with their plaintext. It runs once at
// startup, before any other component reads the settings. Values that do not look encrypted
// are left unchanged.
func (c *Config) DecryptSecrets(d Decrypter) error {
	if security.LooksEncrypted(c.JWTSecretKey) {
		plain, err := d.Decrypt(c.JWTSecretKey)
		if err != nil {
			return fmt.Errorf("config: JWT_SECRET_KEY: %w", err)
		}
		c.JWTSecretKey = plain
	}
	if c.DatabaseURL != "" {
		dsn, err := decryptDSNPassword(c.DatabaseURL, d)
		if err != nil {
			return fmt.Errorf("config: DATABASE_URL: %w", err)
		}
		c.DatabaseURL = dsn
	}
	if security.LooksEncrypted(c.SeedDirectorPassword) {
		plain, err := d.Decrypt(c.SeedDirectorPassword)
		if err != nil {
			return fmt.Errorf("config: SEED_DIRECTOR_PASSWORD: %w", err)
		}
		c.SeedDirectorPassword = plain
	}
	return nil
}

// decryptDSNPassword decrypts the password of a postgres:// URL. The encrypted value must be
// percent-encoded in the URL (":" becomes %3A, "/" %2F, "+" %2B).
func decryptDSNPassword(dsn string, d Decrypter) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn, nil
	}
	pass, ok := u.User.Password()
	if !ok || !security.LooksEncrypted(pass) {
		return dsn, nil
	}
	plain, err := d.Decrypt(pass)
	if err != nil {
		return "", err
	}
	u.User = url.UserPassword(u.User.Username(), plain)
	return u.String(), nil
}
