package dmarket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opavlenko/skinarb/internal/crypto"
	"github.com/opavlenko/skinarb/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		BaseURL: srv.URL,
		Auth:    crypto.HMACAuth{PublicKey: "pub", SecretKey: "secret"},
		GameIDs: map[domain.Game]string{
			domain.GameCS2:   "a8db",
			domain.GameDota2: "9a92",
		},
		FeeBps: 700,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	client.now = func() int64 { return 1700000000 }
	return client
}

func TestNew_MissingKeysIsConfigError(t *testing.T) {
	_, err := New(Config{BaseURL: "https://api.example.com"})
	if !errors.Is(err, domain.ErrConfigMissing) {
		t.Errorf("error = %v, want ErrConfigMissing", err)
	}
}

func TestSearch_SignsAndCapsLimit(t *testing.T) {
	auth := crypto.HMACAuth{PublicKey: "pub", SecretKey: "secret"}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		// A requested limit of 500 must be capped to the upstream maximum.
		if got := q.Get("limit"); got != "100" {
			t.Errorf("limit = %q, want 100", got)
		}
		if got := q.Get("gameId"); got != "a8db" {
			t.Errorf("gameId = %q", got)
		}

		// The signature headers must match what the signer produces for this
		// exact request at the pinned timestamp.
		wantSign := "dmar ed25519 " + auth.Sign(http.MethodGet, "/exchange/v1/market/items", r.URL.RawQuery, "", 1700000000)
		if got := r.Header.Get("X-Request-Sign"); got != wantSign {
			t.Errorf("X-Request-Sign = %q, want %q", got, wantSign)
		}
		if got := r.Header.Get("X-Api-Key"); got != "pub" {
			t.Errorf("X-Api-Key = %q", got)
		}
		if got := r.Header.Get("X-Sign-Date"); got != "1700000000" {
			t.Errorf("X-Sign-Date = %q", got)
		}

		w.Write([]byte(`{
			"objects": [
				{"title":"AK-47 | Redline (Field-Tested)","image":"https://cdn.example/ak.png","price":{"USD":"2350"},"extra":{"floatValue":0.21}}
			],
			"total": "1"
		}`))
	})

	listings, err := client.Search(context.Background(), "ak-47", domain.GameCS2, 500, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}
	l := listings[0]
	if l.PriceMinor != 2350 {
		t.Errorf("PriceMinor = %d, want 2350", l.PriceMinor)
	}
	if l.FloatValue == nil || *l.FloatValue != 0.21 {
		t.Errorf("FloatValue = %v", l.FloatValue)
	}
}

func TestSearch_UnknownGame(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called for an unknown game")
	})
	_, err := client.Search(context.Background(), "ak", domain.GamePUBG, 10, domain.CurrencyUSD)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestPriceLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/price-aggregator/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"AggregatedTitles":[{"MarketHashName":"AK-47 | Redline (Field-Tested)","Offers":{"BestPrice":"15.00","Count":12}}]}`))
	})

	quote, err := client.PriceLookup(context.Background(), "AK-47 | Redline (Field-Tested)", domain.GameCS2, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("PriceLookup failed: %v", err)
	}
	if quote.PriceMinor != 1500 {
		t.Errorf("PriceMinor = %d, want 1500", quote.PriceMinor)
	}
}

func TestPriceLookup_NoOffersIsSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"AggregatedTitles":[]}`))
	})

	quote, err := client.PriceLookup(context.Background(), "Obscure Item", domain.GameCS2, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("PriceLookup failed: %v", err)
	}
	if quote.Available() {
		t.Errorf("quote without offers must be the zero sentinel, got %d", quote.PriceMinor)
	}
}

func TestPriceLookup_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.PriceLookup(context.Background(), "AK-47", domain.GameCS2, domain.CurrencyUSD)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
}

func TestSearch_RejectedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"BadRequest","message":"unknown game"}`))
	})

	_, err := client.Search(context.Background(), "ak", domain.GameCS2, 10, domain.CurrencyUSD)
	if !errors.Is(err, domain.ErrUpstreamRejected) {
		t.Errorf("error = %v, want ErrUpstreamRejected", err)
	}
}
