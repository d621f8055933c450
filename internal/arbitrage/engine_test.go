package arbitrage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/opavlenko/skinarb/internal/domain"
	"github.com/opavlenko/skinarb/internal/throttle"
)

type stubMarket struct {
	venue  domain.Venue
	feeBps int64

	listings  []domain.Listing
	searchErr error

	quotes    map[string]int64 // marketKey -> minor price; missing key means sentinel
	quoteErrs map[string]error
}

func (s *stubMarket) Venue() domain.Venue { return s.venue }
func (s *stubMarket) FeeBps() int64       { return s.feeBps }

func (s *stubMarket) Search(ctx context.Context, query string, game domain.Game, limit int, cur domain.Currency) ([]domain.Listing, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.listings, nil
}

func (s *stubMarket) PriceLookup(ctx context.Context, marketKey string, game domain.Game, cur domain.Currency) (domain.PriceQuote, error) {
	if err := s.quoteErrs[marketKey]; err != nil {
		return domain.PriceQuote{}, err
	}
	return domain.PriceQuote{
		MarketKey:  marketKey,
		PriceMinor: s.quotes[marketKey],
		Currency:   cur,
		ObservedAt: time.Now().UTC(),
	}, nil
}

func newTestEngine() *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pacer := throttle.New(throttle.Config{MinSpacing: time.Microsecond, MaxRetries: 1, Backoff: time.Microsecond}, logger)
	return NewEngine(pacer, logger)
}

func listing(key string, minor int64) domain.Listing {
	return domain.Listing{Name: key, MarketKey: key, PriceMinor: minor, Currency: domain.CurrencyUSD}
}

func TestScanScoresSpreadWithFee(t *testing.T) {
	source := &stubMarket{
		venue:    domain.VenueSteam,
		listings: []domain.Listing{listing("AK-47 | Redline", 1234)},
	}
	dest := &stubMarket{
		venue:  domain.VenueDMarket,
		feeBps: 700,
		quotes: map[string]int64{"AK-47 | Redline": 1500},
	}

	opportunities, err := newTestEngine().Scan(context.Background(), source, dest, "redline", domain.GameCS2, 10, domain.CurrencyUSD, Policy{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(opportunities) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(opportunities))
	}
	got := opportunities[0]
	if got.FeeMinor != 105 {
		t.Errorf("FeeMinor = %d, want 105", got.FeeMinor)
	}
	if got.NetSpreadMinor != 161 {
		t.Errorf("NetSpreadMinor = %d, want 161", got.NetSpreadMinor)
	}
	if got.SourceMarket != domain.VenueSteam || got.DestMarket != domain.VenueDMarket {
		t.Errorf("markets = %s -> %s", got.SourceMarket, got.DestMarket)
	}
}

func TestScanDropsSentinelPricedItems(t *testing.T) {
	source := &stubMarket{
		venue: domain.VenueSteam,
		listings: []domain.Listing{
			listing("priced-both", 1000),
			listing("unlisted-source", 0),
			listing("unlisted-dest", 2000),
		},
	}
	dest := &stubMarket{
		venue:  domain.VenueSkinport,
		feeBps: 1200,
		quotes: map[string]int64{
			"priced-both":     1400,
			"unlisted-source": 900,
			// unlisted-dest absent: zero-price sentinel.
		},
	}

	opportunities, err := newTestEngine().Scan(context.Background(), source, dest, "", domain.GameCS2, 10, domain.CurrencyUSD, Policy{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(opportunities) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(opportunities))
	}
	if opportunities[0].MarketKey != "priced-both" {
		t.Errorf("kept %q, want priced-both", opportunities[0].MarketKey)
	}
}

func TestScanKeepsNegativeSpreadByDefault(t *testing.T) {
	source := &stubMarket{
		venue:    domain.VenueDMarket,
		listings: []domain.Listing{listing("overpriced", 5000)},
	}
	dest := &stubMarket{
		venue:  domain.VenueSteam,
		feeBps: 1500,
		quotes: map[string]int64{"overpriced": 4000},
	}

	engine := newTestEngine()
	opportunities, err := engine.Scan(context.Background(), source, dest, "", domain.GameDota2, 10, domain.CurrencyUSD, Policy{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(opportunities) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(opportunities))
	}
	if got := opportunities[0].NetSpreadMinor; got != 4000-5000-600 {
		t.Errorf("NetSpreadMinor = %d, want %d", got, 4000-5000-600)
	}

	filtered, err := engine.Scan(context.Background(), source, dest, "", domain.GameDota2, 10, domain.CurrencyUSD, Policy{DropNonPositive: true})
	if err != nil {
		t.Fatalf("Scan with DropNonPositive: %v", err)
	}
	if len(filtered) != 0 {
		t.Errorf("filtered = %d, want 0", len(filtered))
	}
}

func TestScanPreservesSourceOrder(t *testing.T) {
	source := &stubMarket{
		venue: domain.VenueSteam,
		listings: []domain.Listing{
			listing("first", 100),
			listing("second", 200),
			listing("third", 300),
			listing("fourth", 400),
		},
	}
	dest := &stubMarket{
		venue:  domain.VenueDMarket,
		feeBps: 0,
		quotes: map[string]int64{"first": 110, "second": 900, "third": 310, "fourth": 450},
	}

	opportunities, err := newTestEngine().Scan(context.Background(), source, dest, "", domain.GameCS2, 10, domain.CurrencyUSD, Policy{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"first", "second", "third", "fourth"}
	for i, opp := range opportunities {
		if opp.MarketKey != want[i] {
			t.Errorf("position %d = %q, want %q", i, opp.MarketKey, want[i])
		}
	}

	sorted, err := newTestEngine().Scan(context.Background(), source, dest, "", domain.GameCS2, 10, domain.CurrencyUSD, Policy{SortBySpread: true})
	if err != nil {
		t.Fatalf("Scan sorted: %v", err)
	}
	if sorted[0].MarketKey != "second" {
		t.Errorf("top spread = %q, want second", sorted[0].MarketKey)
	}
}

func TestScanFailedLookupDropsItemOnly(t *testing.T) {
	source := &stubMarket{
		venue: domain.VenueSteam,
		listings: []domain.Listing{
			listing("healthy", 1000),
			listing("broken", 1000),
		},
	}
	dest := &stubMarket{
		venue:     domain.VenueDMarket,
		feeBps:    700,
		quotes:    map[string]int64{"healthy": 1300},
		quoteErrs: map[string]error{"broken": domain.ErrMalformedResponse},
	}

	opportunities, err := newTestEngine().Scan(context.Background(), source, dest, "", domain.GameCS2, 10, domain.CurrencyUSD, Policy{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(opportunities) != 1 || opportunities[0].MarketKey != "healthy" {
		t.Fatalf("opportunities = %+v, want only healthy", opportunities)
	}
}

func TestScanSearchFailurePropagates(t *testing.T) {
	source := &stubMarket{venue: domain.VenueSteam, searchErr: domain.ErrUpstreamUnavailable}
	dest := &stubMarket{venue: domain.VenueDMarket}

	_, err := newTestEngine().Scan(context.Background(), source, dest, "", domain.GameCS2, 10, domain.CurrencyUSD, Policy{})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestReportCountsListedAndFound(t *testing.T) {
	source := &stubMarket{
		venue: domain.VenueSteam,
		listings: []domain.Listing{
			listing("a", 100),
			listing("b", 0),
		},
	}
	dest := &stubMarket{
		venue:  domain.VenueDMarket,
		feeBps: 700,
		quotes: map[string]int64{"a": 200},
	}

	report, opportunities, err := newTestEngine().Report(context.Background(), source, dest, "", domain.GameCS2, 5, domain.CurrencyUSD, Policy{})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.Listed != 2 {
		t.Errorf("Listed = %d, want 2", report.Listed)
	}
	if len(report.Opportunities) != len(opportunities) || len(report.Opportunities) != 1 {
		t.Errorf("Opportunities = %d, want 1", len(report.Opportunities))
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Errorf("FinishedAt %v before StartedAt %v", report.FinishedAt, report.StartedAt)
	}
}
