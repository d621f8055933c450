// Package config defines the top-level configuration for the skin arbitrage
// aggregator and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SKINARB_* environment variables.
type Config struct {
	Steam    SteamConfig    `toml:"steam"`
	DMarket  DMarketConfig  `toml:"dmarket"`
	Skinport SkinportConfig `toml:"skinport"`
	Throttle ThrottleConfig `toml:"throttle"`
	Scan     ScanConfig     `toml:"scan"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// SteamConfig holds Steam Community Market scraping parameters. Steam needs
// no credentials; the venue is always available.
type SteamConfig struct {
	BaseURL       string `toml:"base_url"`
	IconBaseURL   string `toml:"icon_base_url"`
	UserAgent     string `toml:"user_agent"`
	LocalCurrency string `toml:"local_currency"`
	FeeBps        int64  `toml:"fee_bps"`
}

// DMarketConfig holds DMarket API credentials. The secret key may be given
// inline or as an encrypted key file plus password.
type DMarketConfig struct {
	BaseURL             string `toml:"base_url"`
	PublicKey           string `toml:"public_key"`
	SecretKey           string `toml:"secret_key"`
	EncryptedSecretPath string `toml:"encrypted_secret_path"`
	SecretPassword      string `toml:"secret_password"`
	FeeBps              int64  `toml:"fee_bps"`
}

// SkinportConfig holds Skinport API credentials.
type SkinportConfig struct {
	BaseURL      string `toml:"base_url"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	FeeBps       int64  `toml:"fee_bps"`
}

// ThrottleConfig holds outbound pacing and retry parameters.
type ThrottleConfig struct {
	MinSpacing duration `toml:"min_spacing"`
	MaxRetries int      `toml:"max_retries"`
	Backoff    duration `toml:"backoff"`
}

// ScanConfig holds parameters for the periodic cross-venue scan.
type ScanConfig struct {
	Enabled         bool     `toml:"enabled"`
	Source          string   `toml:"source"`
	Destination     string   `toml:"destination"`
	Game            string   `toml:"game"`
	Query           string   `toml:"query"`
	Limit           int      `toml:"limit"`
	Currency        string   `toml:"currency"`
	Interval        duration `toml:"interval"`
	DropNonPositive bool     `toml:"drop_non_positive"`
	SortBySpread    bool     `toml:"sort_by_spread"`
	ArchiveEnabled  bool     `toml:"archive_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for scan report
// archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	APIToken    string   `toml:"api_token"`
	CORSOrigins []string `toml:"cors_origins"`
	// RateLimitPerMin caps inbound requests per client IP per minute. Zero
	// disables inbound rate limiting.
	RateLimitPerMin int `toml:"rate_limit_per_min"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Steam: SteamConfig{
			BaseURL:       "https://steamcommunity.com",
			IconBaseURL:   "https://steamcommunity-a.akamaihd.net/economy/image/",
			LocalCurrency: "USD",
			FeeBps:        1500,
		},
		DMarket: DMarketConfig{
			BaseURL: "https://api.dmarket.com",
			FeeBps:  700,
		},
		Skinport: SkinportConfig{
			BaseURL: "https://api.skinport.com/v1",
			FeeBps:  1200,
		},
		Throttle: ThrottleConfig{
			MinSpacing: duration{300 * time.Millisecond},
			MaxRetries: 3,
			Backoff:    duration{500 * time.Millisecond},
		},
		Scan: ScanConfig{
			Enabled:         false,
			Source:          "steam",
			Destination:     "dmarket",
			Game:            "cs2",
			Query:           "",
			Limit:           50,
			Currency:        "USD",
			Interval:        duration{10 * time.Minute},
			DropNonPositive: false,
			SortBySpread:    true,
			ArchiveEnabled:  false,
		},
		Postgres: PostgresConfig{
			DSN:           "",
			Host:          "localhost",
			Port:          5432,
			Database:      "skinarb",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "skinarb-reports",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:         true,
			Port:            8080,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimitPerMin: 120,
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server": true,
	"scan":   true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validVenues enumerates venue names accepted in scan config.
var validVenues = map[string]bool{
	"steam":    true,
	"dmarket":  true,
	"skinport": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, scan, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Steam
	if c.Steam.BaseURL == "" {
		errs = append(errs, "steam: base_url must not be empty")
	}
	if c.Steam.FeeBps < 0 || c.Steam.FeeBps > 10_000 {
		errs = append(errs, fmt.Sprintf("steam: fee_bps must be 0-10000, got %d", c.Steam.FeeBps))
	}

	// DMarket — credentials are optional (venue is skipped without them), but
	// an encrypted key file needs its password.
	if c.DMarket.BaseURL == "" {
		errs = append(errs, "dmarket: base_url must not be empty")
	}
	if c.DMarket.EncryptedSecretPath != "" && c.DMarket.SecretPassword == "" {
		errs = append(errs, "dmarket: secret_password is required when encrypted_secret_path is set")
	}
	if c.DMarket.FeeBps < 0 || c.DMarket.FeeBps > 10_000 {
		errs = append(errs, fmt.Sprintf("dmarket: fee_bps must be 0-10000, got %d", c.DMarket.FeeBps))
	}

	// Skinport — client_id and client_secret must be set together, or both
	// empty (venue skipped).
	if c.Skinport.BaseURL == "" {
		errs = append(errs, "skinport: base_url must not be empty")
	}
	si := c.Skinport.ClientID != ""
	ss := c.Skinport.ClientSecret != ""
	if si != ss {
		errs = append(errs, "skinport: client_id and client_secret must be set together")
	}
	if c.Skinport.FeeBps < 0 || c.Skinport.FeeBps > 10_000 {
		errs = append(errs, fmt.Sprintf("skinport: fee_bps must be 0-10000, got %d", c.Skinport.FeeBps))
	}

	// Throttle
	if c.Throttle.MinSpacing.Duration <= 0 {
		errs = append(errs, "throttle: min_spacing must be > 0")
	}
	if c.Throttle.MaxRetries < 0 {
		errs = append(errs, "throttle: max_retries must be >= 0")
	}

	// Scan
	if c.Scan.Enabled || c.Mode == "scan" {
		if !validVenues[strings.ToLower(c.Scan.Source)] {
			errs = append(errs, fmt.Sprintf("scan: unknown source venue %q", c.Scan.Source))
		}
		if !validVenues[strings.ToLower(c.Scan.Destination)] {
			errs = append(errs, fmt.Sprintf("scan: unknown destination venue %q", c.Scan.Destination))
		}
		if strings.EqualFold(c.Scan.Source, c.Scan.Destination) {
			errs = append(errs, "scan: source and destination must differ")
		}
		if c.Scan.Limit < 1 {
			errs = append(errs, "scan: limit must be >= 1")
		}
		if c.Scan.Interval.Duration <= 0 {
			errs = append(errs, "scan: interval must be > 0")
		}
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 — required only when archiving is on.
	if c.Scan.ArchiveEnabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when scan.archive_enabled is set")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when scan.archive_enabled is set")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimitPerMin < 0 {
			errs = append(errs, "server: rate_limit_per_min must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
