package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SKINARB_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SKINARB_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Steam ──
	setStr(&cfg.Steam.BaseURL, "SKINARB_STEAM_BASE_URL")
	setStr(&cfg.Steam.IconBaseURL, "SKINARB_STEAM_ICON_BASE_URL")
	setStr(&cfg.Steam.UserAgent, "SKINARB_STEAM_USER_AGENT")
	setStr(&cfg.Steam.LocalCurrency, "SKINARB_STEAM_LOCAL_CURRENCY")
	setInt64(&cfg.Steam.FeeBps, "SKINARB_STEAM_FEE_BPS")

	// ── DMarket ──
	setStr(&cfg.DMarket.BaseURL, "SKINARB_DMARKET_BASE_URL")
	setStr(&cfg.DMarket.PublicKey, "SKINARB_DMARKET_PUBLIC_KEY")
	setStr(&cfg.DMarket.SecretKey, "SKINARB_DMARKET_SECRET_KEY")
	setStr(&cfg.DMarket.EncryptedSecretPath, "SKINARB_DMARKET_ENCRYPTED_SECRET_PATH")
	setStr(&cfg.DMarket.SecretPassword, "SKINARB_DMARKET_SECRET_PASSWORD")
	setInt64(&cfg.DMarket.FeeBps, "SKINARB_DMARKET_FEE_BPS")

	// ── Skinport ──
	setStr(&cfg.Skinport.BaseURL, "SKINARB_SKINPORT_BASE_URL")
	setStr(&cfg.Skinport.ClientID, "SKINARB_SKINPORT_CLIENT_ID")
	setStr(&cfg.Skinport.ClientSecret, "SKINARB_SKINPORT_CLIENT_SECRET")
	setInt64(&cfg.Skinport.FeeBps, "SKINARB_SKINPORT_FEE_BPS")

	// ── Throttle ──
	setDuration(&cfg.Throttle.MinSpacing, "SKINARB_THROTTLE_MIN_SPACING")
	setInt(&cfg.Throttle.MaxRetries, "SKINARB_THROTTLE_MAX_RETRIES")
	setDuration(&cfg.Throttle.Backoff, "SKINARB_THROTTLE_BACKOFF")

	// ── Scan ──
	setBool(&cfg.Scan.Enabled, "SKINARB_SCAN_ENABLED")
	setStr(&cfg.Scan.Source, "SKINARB_SCAN_SOURCE")
	setStr(&cfg.Scan.Destination, "SKINARB_SCAN_DESTINATION")
	setStr(&cfg.Scan.Game, "SKINARB_SCAN_GAME")
	setStr(&cfg.Scan.Query, "SKINARB_SCAN_QUERY")
	setInt(&cfg.Scan.Limit, "SKINARB_SCAN_LIMIT")
	setStr(&cfg.Scan.Currency, "SKINARB_SCAN_CURRENCY")
	setDuration(&cfg.Scan.Interval, "SKINARB_SCAN_INTERVAL")
	setBool(&cfg.Scan.DropNonPositive, "SKINARB_SCAN_DROP_NON_POSITIVE")
	setBool(&cfg.Scan.SortBySpread, "SKINARB_SCAN_SORT_BY_SPREAD")
	setBool(&cfg.Scan.ArchiveEnabled, "SKINARB_SCAN_ARCHIVE_ENABLED")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "SKINARB_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SKINARB_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SKINARB_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SKINARB_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SKINARB_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SKINARB_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SKINARB_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SKINARB_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SKINARB_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SKINARB_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "SKINARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SKINARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SKINARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SKINARB_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SKINARB_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SKINARB_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "SKINARB_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SKINARB_S3_REGION")
	setStr(&cfg.S3.Bucket, "SKINARB_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SKINARB_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SKINARB_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SKINARB_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SKINARB_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SKINARB_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SKINARB_SERVER_PORT")
	setStr(&cfg.Server.APIToken, "SKINARB_SERVER_API_TOKEN")
	setStringSlice(&cfg.Server.CORSOrigins, "SKINARB_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimitPerMin, "SKINARB_SERVER_RATE_LIMIT_PER_MIN")

	// ── Top-level ──
	setStr(&cfg.Mode, "SKINARB_MODE")
	setStr(&cfg.LogLevel, "SKINARB_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
