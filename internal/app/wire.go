package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	s3blob "github.com/opavlenko/skinarb/internal/blob/s3"
	"github.com/opavlenko/skinarb/internal/cache/redis"
	"github.com/opavlenko/skinarb/internal/config"
	"github.com/opavlenko/skinarb/internal/crypto"
	"github.com/opavlenko/skinarb/internal/domain"
	"github.com/opavlenko/skinarb/internal/platform/dmarket"
	"github.com/opavlenko/skinarb/internal/platform/skinport"
	"github.com/opavlenko/skinarb/internal/platform/steam"
	"github.com/opavlenko/skinarb/internal/store/postgres"
	"github.com/opavlenko/skinarb/internal/throttle"
)

// dmarketGameIDs maps supported games to DMarket catalog identifiers. PUBG
// items no longer trade on DMarket, so lookups for it answer the sentinel.
var dmarketGameIDs = map[domain.Game]string{
	domain.GameCS2:   "a8db",
	domain.GameDota2: "9a92",
}

// Dependencies bundles every domain-level dependency that the application
// modes need. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	// Venues holds the marketplace adapters that came up with credentials.
	Venues map[domain.Venue]domain.Marketplace

	// Pacer throttles all outbound marketplace calls.
	Pacer *throttle.Controller

	// Stores
	InvestmentStore domain.InvestmentStore

	// Caches and coordination
	QuoteCache  domain.QuoteCache
	RateLimiter domain.RateLimiter
	LockManager domain.LockManager
	SignalBus   domain.SignalBus

	// Archiver uploads scan reports to object storage. Nil unless
	// scan.archive_enabled is set.
	Archiver *s3blob.Archiver
}

// needsPostgres returns true for modes that require a database connection.
func needsPostgres(mode string) bool {
	switch mode {
	case "server", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Pacer: throttle.New(throttle.Config{
			MinSpacing: cfg.Throttle.MinSpacing.Duration,
			MaxRetries: cfg.Throttle.MaxRetries,
			Backoff:    cfg.Throttle.Backoff.Duration,
		}, logger),
	}

	venues, err := buildVenues(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	deps.Venues = venues

	// --- PostgreSQL (only for modes that serve the investments API) ---
	if needsPostgres(cfg.Mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.InvestmentStore = postgres.NewInvestmentStore(pgClient.Pool())
	}

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.QuoteCache = redis.NewQuoteCache(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- S3 blob storage (only when scan report archival is enabled) ---
	if cfg.Scan.ArchiveEnabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client))
	}

	return deps, cleanup, nil
}

// buildVenues constructs one adapter per marketplace whose credentials are
// present. Steam needs none and is always configured; a credentialed venue
// with missing keys is skipped with a warning rather than failing startup.
func buildVenues(cfg *config.Config, logger *slog.Logger) (map[domain.Venue]domain.Marketplace, error) {
	venues := make(map[domain.Venue]domain.Marketplace, 3)

	venues[domain.VenueSteam] = steam.New(steam.Config{
		BaseURL:       cfg.Steam.BaseURL,
		IconBaseURL:   cfg.Steam.IconBaseURL,
		UserAgent:     cfg.Steam.UserAgent,
		LocalCurrency: domain.Currency(cfg.Steam.LocalCurrency),
		FeeBps:        cfg.Steam.FeeBps,
	})

	hasDMarketSecret := cfg.DMarket.SecretKey != "" || cfg.DMarket.EncryptedSecretPath != ""
	if cfg.DMarket.PublicKey == "" || !hasDMarketSecret {
		logger.Warn("dmarket credentials absent, venue disabled")
	} else {
		secret, err := crypto.LoadSecret(crypto.SecretConfig{
			Raw:           cfg.DMarket.SecretKey,
			EncryptedPath: cfg.DMarket.EncryptedSecretPath,
			Password:      cfg.DMarket.SecretPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("wire: dmarket secret: %w", err)
		}
		dm, err := dmarket.New(dmarket.Config{
			BaseURL: cfg.DMarket.BaseURL,
			Auth: crypto.HMACAuth{
				PublicKey: cfg.DMarket.PublicKey,
				SecretKey: secret,
			},
			GameIDs: dmarketGameIDs,
			FeeBps:  cfg.DMarket.FeeBps,
		})
		if err != nil {
			return nil, fmt.Errorf("wire: dmarket: %w", err)
		}
		venues[domain.VenueDMarket] = dm
	}

	sp, err := skinport.New(skinport.Config{
		BaseURL:      cfg.Skinport.BaseURL,
		ClientID:     cfg.Skinport.ClientID,
		ClientSecret: cfg.Skinport.ClientSecret,
		AppIDs: map[domain.Game]string{
			domain.GameCS2:   domain.GameCS2.SteamAppID(),
			domain.GameDota2: domain.GameDota2.SteamAppID(),
			domain.GamePUBG:  domain.GamePUBG.SteamAppID(),
		},
		FeeBps: cfg.Skinport.FeeBps,
	})
	switch {
	case errors.Is(err, domain.ErrConfigMissing):
		logger.Warn("skinport credentials absent, venue disabled")
	case err != nil:
		return nil, fmt.Errorf("wire: skinport: %w", err)
	default:
		venues[domain.VenueSkinport] = sp
	}

	return venues, nil
}
