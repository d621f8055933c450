package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opavlenko/skinarb/internal/arbitrage"
	"github.com/opavlenko/skinarb/internal/domain"
)

// OpportunitiesChannel is the pub/sub channel scan reports are published on.
const OpportunitiesChannel = "opportunities"

// scanLockTTL bounds how long a scan lock can outlive a crashed holder.
const scanLockTTL = 5 * time.Minute

// ReportArchiver stores a completed scan report and returns its storage key.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, report domain.ScanReport) (string, error)
}

// ScanParams describes one cross-venue arbitrage scan.
type ScanParams struct {
	Source      string
	Destination string
	Query       string
	Game        domain.Game
	Limit       int
	Currency    domain.Currency
	Policy      arbitrage.Policy
}

// ScanService runs arbitrage scans: it resolves venues, drives the engine,
// publishes each report on the signal bus, and optionally archives it. The
// bus, locks, and archiver are all optional; a nil dependency disables that
// step.
type ScanService struct {
	markets  *MarketService
	engine   *arbitrage.Engine
	bus      domain.SignalBus
	locks    domain.LockManager
	archiver ReportArchiver
	logger   *slog.Logger
}

// NewScanService creates a ScanService.
func NewScanService(
	markets *MarketService,
	engine *arbitrage.Engine,
	bus domain.SignalBus,
	locks domain.LockManager,
	archiver ReportArchiver,
	logger *slog.Logger,
) *ScanService {
	return &ScanService{
		markets:  markets,
		engine:   engine,
		bus:      bus,
		locks:    locks,
		archiver: archiver,
		logger:   logger.With(slog.String("component", "scan_service")),
	}
}

// Scan runs one scan synchronously and returns the opportunities. This is
// the path behind the HTTP opportunities endpoint; it does not publish or
// archive.
func (s *ScanService) Scan(ctx context.Context, p ScanParams) ([]domain.ArbitrageOpportunity, error) {
	source, dest, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	return s.engine.Scan(ctx, source, dest, p.Query, p.Game, p.Limit, p.Currency, p.Policy)
}

// RunOnce runs one scan under a distributed lock, publishes the report, and
// archives it when an archiver is configured. A scan skipped because another
// instance holds the lock is not an error.
func (s *ScanService) RunOnce(ctx context.Context, p ScanParams) (domain.ScanReport, error) {
	source, dest, err := s.resolve(p)
	if err != nil {
		return domain.ScanReport{}, err
	}

	if s.locks != nil {
		lockName := fmt.Sprintf("scan:%s-%s", source.Venue(), dest.Venue())
		unlock, err := s.locks.Acquire(ctx, lockName, scanLockTTL)
		if errors.Is(err, domain.ErrLockHeld) {
			s.logger.InfoContext(ctx, "scan skipped, lock held elsewhere",
				slog.String("lock", lockName),
			)
			return domain.ScanReport{}, nil
		}
		if err != nil {
			return domain.ScanReport{}, fmt.Errorf("scan_service: lock: %w", err)
		}
		defer unlock()
	}

	report, _, err := s.engine.Report(ctx, source, dest, p.Query, p.Game, p.Limit, p.Currency, p.Policy)
	if err != nil {
		return domain.ScanReport{}, fmt.Errorf("scan_service: scan: %w", err)
	}
	report.ID = uuid.New().String()

	s.publish(ctx, report)

	if s.archiver != nil {
		key, err := s.archiver.ArchiveReport(ctx, report)
		if err != nil {
			s.logger.WarnContext(ctx, "scan report archive failed",
				slog.String("report_id", report.ID),
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.InfoContext(ctx, "scan report archived",
				slog.String("report_id", report.ID),
				slog.String("key", key),
			)
		}
	}

	return report, nil
}

// RunLoop runs RunOnce on a fixed interval until the context is cancelled.
// Individual scan failures are logged and the loop continues.
func (s *ScanService) RunLoop(ctx context.Context, p ScanParams, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "scan loop started",
		slog.String("source", p.Source),
		slog.String("destination", p.Destination),
		slog.Duration("interval", interval),
	)

	for {
		if _, err := s.RunOnce(ctx, p); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.ErrorContext(ctx, "scan run failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// publish sends the report to the opportunities channel; failures are logged
// and otherwise ignored, live delivery is best-effort.
func (s *ScanService) publish(ctx context.Context, report domain.ScanReport) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.WarnContext(ctx, "scan report marshal failed", slog.String("error", err.Error()))
		return
	}
	if err := s.bus.Publish(ctx, OpportunitiesChannel, payload); err != nil {
		s.logger.WarnContext(ctx, "scan report publish failed",
			slog.String("report_id", report.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ScanService) resolve(p ScanParams) (source, dest domain.Marketplace, err error) {
	source, err = s.markets.Venue(p.Source)
	if err != nil {
		return nil, nil, err
	}
	dest, err = s.markets.Venue(p.Destination)
	if err != nil {
		return nil, nil, err
	}
	if source.Venue() == dest.Venue() {
		return nil, nil, fmt.Errorf("%w: source and destination must differ", domain.ErrInvalidRequest)
	}
	return source, dest, nil
}
