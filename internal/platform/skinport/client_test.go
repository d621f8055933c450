package skinport

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opavlenko/skinarb/internal/domain"
)

const catalogBody = `[
	{"market_hash_name":"AK-47 | Redline (Field-Tested)","currency":"USD","min_price":23.50,"max_price":30.00,"quantity":12},
	{"market_hash_name":"AK-47 | Redline (Minimal Wear)","currency":"USD","min_price":41.00,"max_price":55.00,"quantity":3},
	{"market_hash_name":"AWP | Asiimov (Field-Tested)","currency":"USD","min_price":62.10,"max_price":80.00,"quantity":7},
	{"market_hash_name":"Sold Out Item","currency":"USD","min_price":null,"max_price":null,"quantity":0}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		BaseURL:      srv.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AppIDs: map[domain.Game]string{
			domain.GameCS2: "730",
		},
		FeeBps: 1200,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestNew_MissingCredentialsIsConfigError(t *testing.T) {
	_, err := New(Config{BaseURL: "https://api.example.com", ClientID: "only-id"})
	if !errors.Is(err, domain.ErrConfigMissing) {
		t.Errorf("error = %v, want ErrConfigMissing", err)
	}
}

func TestSearch_BasicAuthAndClientSideLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("client-id:client-secret"))
		if got := r.Header.Get("Authorization"); got != want {
			t.Errorf("Authorization = %q, want %q", got, want)
		}
		if got := r.URL.Query().Get("app_id"); got != "730" {
			t.Errorf("app_id = %q, want 730", got)
		}
		// The endpoint has no limit/sort parameters; the client must not
		// send any.
		if r.URL.Query().Get("limit") != "" {
			t.Error("limit parameter sent to an endpoint that does not support it")
		}
		w.Write([]byte(catalogBody))
	})

	listings, err := client.Search(context.Background(), "ak-47", domain.GameCS2, 1, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// Two catalog rows match "ak-47" but the caller asked for one.
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1 (client-side truncation)", len(listings))
	}
	if listings[0].PriceMinor != 2350 {
		t.Errorf("PriceMinor = %d, want 2350", listings[0].PriceMinor)
	}
}

func TestPriceLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(catalogBody))
	})

	quote, err := client.PriceLookup(context.Background(), "AWP | Asiimov (Field-Tested)", domain.GameCS2, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("PriceLookup failed: %v", err)
	}
	if quote.PriceMinor != 6210 {
		t.Errorf("PriceMinor = %d, want 6210", quote.PriceMinor)
	}
}

func TestPriceLookup_AbsentOrUnlistedIsSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(catalogBody))
	})

	for _, key := range []string{"Sold Out Item", "Item Nobody Has"} {
		quote, err := client.PriceLookup(context.Background(), key, domain.GameCS2, domain.CurrencyUSD)
		if err != nil {
			t.Fatalf("PriceLookup(%q) failed: %v", key, err)
		}
		if quote.Available() {
			t.Errorf("PriceLookup(%q) = %d, want zero sentinel", key, quote.PriceMinor)
		}
	}
}

func TestSearch_UnknownGame(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called for an unknown game")
	})
	_, err := client.Search(context.Background(), "ak", domain.GameDota2, 10, domain.CurrencyUSD)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestFetch_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), "ak", domain.GameCS2, 10, domain.CurrencyUSD)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
}

func TestFetch_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	})

	_, err := client.Search(context.Background(), "ak", domain.GameCS2, 10, domain.CurrencyUSD)
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
}
