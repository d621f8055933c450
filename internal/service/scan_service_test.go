package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/opavlenko/skinarb/internal/arbitrage"
	"github.com/opavlenko/skinarb/internal/domain"
	"github.com/opavlenko/skinarb/internal/throttle"
)

type scanStubMarket struct {
	venue    domain.Venue
	feeBps   int64
	listings []domain.Listing
	quotes   map[string]int64
}

func (s *scanStubMarket) Venue() domain.Venue { return s.venue }
func (s *scanStubMarket) FeeBps() int64       { return s.feeBps }

func (s *scanStubMarket) Search(ctx context.Context, query string, game domain.Game, limit int, cur domain.Currency) ([]domain.Listing, error) {
	return s.listings, nil
}

func (s *scanStubMarket) PriceLookup(ctx context.Context, marketKey string, game domain.Game, cur domain.Currency) (domain.PriceQuote, error) {
	return domain.PriceQuote{
		MarketKey:  marketKey,
		PriceMinor: s.quotes[marketKey],
		Currency:   cur,
		ObservedAt: time.Now().UTC(),
	}, nil
}

type memBus struct {
	channel  string
	payloads [][]byte
}

func (b *memBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.channel = channel
	b.payloads = append(b.payloads, payload)
	return nil
}

func (b *memBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

type heldLocks struct{ held bool }

func (l *heldLocks) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l.held {
		return nil, domain.ErrLockHeld
	}
	return func() {}, nil
}

func newScanFixture(t *testing.T, bus domain.SignalBus, locks domain.LockManager, archiver ReportArchiver) *ScanService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pacer := throttle.New(throttle.Config{MinSpacing: time.Microsecond, MaxRetries: 1, Backoff: time.Microsecond}, logger)

	venues := map[domain.Venue]domain.Marketplace{
		domain.VenueSteam: &scanStubMarket{
			venue: domain.VenueSteam,
			listings: []domain.Listing{
				{Name: "AWP | Asiimov", MarketKey: "AWP | Asiimov", PriceMinor: 4000, Currency: domain.CurrencyUSD},
			},
		},
		domain.VenueDMarket: &scanStubMarket{
			venue:  domain.VenueDMarket,
			feeBps: 700,
			quotes: map[string]int64{"AWP | Asiimov": 5000},
		},
	}

	markets := NewMarketService(venues, pacer, nil, logger)
	engine := arbitrage.NewEngine(pacer, logger)
	return NewScanService(markets, engine, bus, locks, archiver, logger)
}

func scanParams() ScanParams {
	return ScanParams{
		Source:      "steam",
		Destination: "dmarket",
		Game:        domain.GameCS2,
		Limit:       10,
		Currency:    domain.CurrencyUSD,
	}
}

func TestRunOncePublishesReport(t *testing.T) {
	bus := &memBus{}
	svc := newScanFixture(t, bus, nil, nil)

	report, err := svc.RunOnce(context.Background(), scanParams())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if report.ID == "" {
		t.Error("report ID not assigned")
	}
	if len(report.Opportunities) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(report.Opportunities))
	}
	if got := report.Opportunities[0].NetSpreadMinor; got != 5000-4000-350 {
		t.Errorf("NetSpreadMinor = %d, want %d", got, 5000-4000-350)
	}

	if bus.channel != OpportunitiesChannel {
		t.Errorf("published on %q, want %q", bus.channel, OpportunitiesChannel)
	}
	if len(bus.payloads) != 1 {
		t.Fatalf("payloads = %d, want 1", len(bus.payloads))
	}
	var decoded domain.ScanReport
	if err := json.Unmarshal(bus.payloads[0], &decoded); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if decoded.ID != report.ID {
		t.Errorf("payload ID = %q, want %q", decoded.ID, report.ID)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	bus := &memBus{}
	svc := newScanFixture(t, bus, &heldLocks{held: true}, nil)

	report, err := svc.RunOnce(context.Background(), scanParams())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if report.ID != "" {
		t.Errorf("report = %+v, want zero value when lock held", report)
	}
	if len(bus.payloads) != 0 {
		t.Error("nothing should be published for a skipped scan")
	}
}

func TestScanRejectsSameVenue(t *testing.T) {
	svc := newScanFixture(t, nil, nil, nil)
	p := scanParams()
	p.Destination = "steam"
	if _, err := svc.Scan(context.Background(), p); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestScanUnconfiguredVenue(t *testing.T) {
	svc := newScanFixture(t, nil, nil, nil)
	p := scanParams()
	p.Destination = "skinport"
	if _, err := svc.Scan(context.Background(), p); !errors.Is(err, domain.ErrConfigMissing) {
		t.Fatalf("err = %v, want ErrConfigMissing", err)
	}
}
