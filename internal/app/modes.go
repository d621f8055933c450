package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opavlenko/skinarb/internal/arbitrage"
	"github.com/opavlenko/skinarb/internal/config"
	"github.com/opavlenko/skinarb/internal/domain"
	"github.com/opavlenko/skinarb/internal/server"
	"github.com/opavlenko/skinarb/internal/server/handler"
	"github.com/opavlenko/skinarb/internal/server/ws"
	"github.com/opavlenko/skinarb/internal/service"
)

// shutdownGrace bounds how long in-flight HTTP requests get on shutdown.
const shutdownGrace = 10 * time.Second

// services bundles the domain services the modes share.
type services struct {
	markets     *service.MarketService
	investments *service.InvestmentService
	scans       *service.ScanService
}

// buildServices composes the domain services from wired dependencies.
func (a *App) buildServices(deps *Dependencies) services {
	markets := service.NewMarketService(deps.Venues, deps.Pacer, deps.QuoteCache, a.logger)
	engine := arbitrage.NewEngine(deps.Pacer, a.logger)

	var archiver service.ReportArchiver
	if deps.Archiver != nil {
		archiver = deps.Archiver
	}
	scans := service.NewScanService(markets, engine, deps.SignalBus, deps.LockManager, archiver, a.logger)

	var investments *service.InvestmentService
	if deps.InvestmentStore != nil {
		investments = service.NewInvestmentService(deps.InvestmentStore)
	}

	return services{markets: markets, investments: investments, scans: scans}
}

// ServerMode runs the HTTP + WebSocket API. When the periodic scan is enabled
// in config it also runs the scan loop alongside the server.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	return a.serve(ctx, deps, a.cfg.Scan.Enabled)
}

// ScanMode runs a single scan and prints the resulting report as JSON.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	svcs := a.buildServices(deps)

	params, err := scanParamsFromConfig(a.cfg)
	if err != nil {
		return err
	}

	report, err := svcs.scans.RunOnce(ctx, params)
	if err != nil {
		return fmt.Errorf("app: scan: %w", err)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("app: encode report: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}

// FullMode runs the API server and the periodic scan loop together regardless
// of the scan.enabled flag.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	return a.serve(ctx, deps, true)
}

// serve runs the HTTP server, the WebSocket hub, and optionally the scan loop
// under one errgroup. The first failure (or context cancellation) stops all.
func (a *App) serve(ctx context.Context, deps *Dependencies, runScanLoop bool) error {
	svcs := a.buildServices(deps)

	venueNames := make([]string, 0, len(deps.Venues))
	for v := range deps.Venues {
		venueNames = append(venueNames, string(v))
	}
	sort.Strings(venueNames)

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Venues:    venueNames,
		StartedAt: time.Now().UTC(),
	})

	srvCfg := server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIToken:    a.cfg.Server.APIToken,
	}
	if a.cfg.Server.RateLimitPerMin > 0 {
		srvCfg.Limiter = deps.RateLimiter
		srvCfg.RateLimitPerMin = a.cfg.Server.RateLimitPerMin
	}

	srv := server.NewServer(srvCfg, server.Handlers{
		Health:      handler.NewHealthHandler(svcs.markets, a.logger),
		Markets:     handler.NewMarketHandler(svcs.markets, a.logger),
		Arb:         handler.NewArbHandler(svcs.scans, a.logger),
		Investments: handler.NewInvestmentHandler(svcs.investments, a.logger),
		Rates:       handler.NewRatesHandler(svcs.markets, a.logger),
	}, hub, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := hub.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if runScanLoop {
		params, err := scanParamsFromConfig(a.cfg)
		if err != nil {
			return err
		}
		g.Go(func() error {
			err := svcs.scans.RunLoop(ctx, params, a.cfg.Scan.Interval.Duration)
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

// scanParamsFromConfig translates the scan section of the config into engine
// parameters.
func scanParamsFromConfig(cfg *config.Config) (service.ScanParams, error) {
	game, err := domain.ParseGame(cfg.Scan.Game)
	if err != nil {
		return service.ScanParams{}, fmt.Errorf("app: scan game: %w", err)
	}
	cur, err := domain.ParseCurrency(cfg.Scan.Currency)
	if err != nil {
		return service.ScanParams{}, fmt.Errorf("app: scan currency: %w", err)
	}
	return service.ScanParams{
		Source:      cfg.Scan.Source,
		Destination: cfg.Scan.Destination,
		Query:       cfg.Scan.Query,
		Game:        game,
		Limit:       cfg.Scan.Limit,
		Currency:    cur,
		Policy: arbitrage.Policy{
			DropNonPositive: cfg.Scan.DropNonPositive,
			SortBySpread:    cfg.Scan.SortBySpread,
		},
	}, nil
}
