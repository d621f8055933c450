package steam

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opavlenko/skinarb/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:       srv.URL,
		LocalCurrency: domain.CurrencyUSD,
		FeeBps:        1500,
	})
}

func TestSearch(t *testing.T) {
	var gotUA string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path != "/market/search/render/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("appid") != "730" || q.Get("norender") != "1" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{
			"success": true,
			"total_count": 2,
			"results": [
				{"name":"AK-47 | Redline","hash_name":"AK-47 | Redline (Field-Tested)","sell_price":1234,"sell_price_text":"$12.34","asset_description":{"icon_url":"abc123"}},
				{"name":"No Price","hash_name":"No Price","sell_price":0,"sell_price_text":"","asset_description":{}}
			]
		}`))
	})

	listings, err := client.Search(context.Background(), "ak-47", domain.GameCS2, 20, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !strings.Contains(gotUA, "Mozilla") {
		t.Errorf("User-Agent = %q, want a browser agent", gotUA)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}

	first := listings[0]
	if first.MarketKey != "AK-47 | Redline (Field-Tested)" {
		t.Errorf("MarketKey = %q", first.MarketKey)
	}
	if first.PriceMinor != 1234 {
		t.Errorf("PriceMinor = %d, want 1234", first.PriceMinor)
	}
	if !strings.HasSuffix(first.IconRef, "/economy/image/abc123") {
		t.Errorf("IconRef = %q", first.IconRef)
	}

	// Item without a price keeps the zero sentinel, not an error.
	if listings[1].PriceMinor != 0 {
		t.Errorf("unpriced listing PriceMinor = %d, want 0", listings[1].PriceMinor)
	}
}

func TestSearch_UnknownGame(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called for an unknown game")
	})
	_, err := client.Search(context.Background(), "ak", domain.Game("quake"), 20, domain.CurrencyUSD)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestPriceLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market/priceoverview/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("currency"); got != "1" {
			t.Errorf("currency code = %q, want 1 (USD)", got)
		}
		w.Write([]byte(`{"success":true,"lowest_price":"$15.00","volume":"328"}`))
	})

	quote, err := client.PriceLookup(context.Background(), "AK-47 | Redline (Field-Tested)", domain.GameCS2, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("PriceLookup failed: %v", err)
	}
	if quote.PriceMinor != 1500 {
		t.Errorf("PriceMinor = %d, want 1500", quote.PriceMinor)
	}
	if quote.Currency != domain.CurrencyUSD {
		t.Errorf("Currency = %q", quote.Currency)
	}
}

func TestPriceLookup_MissingPriceIsSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"volume":"0"}`))
	})

	quote, err := client.PriceLookup(context.Background(), "Obscure Item", domain.GameDota2, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("PriceLookup failed: %v", err)
	}
	if quote.Available() {
		t.Errorf("quote without price fields must be the zero sentinel, got %d", quote.PriceMinor)
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

func TestPriceHistory_StripsBOM(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("\xEF\xBB\xBF{\"success\":true,\"prices\":[[\"Jan 01 2026 01: +0\",12.5,\"42\"]]}"))
	})

	history, err := client.PriceHistory(context.Background(), "AK-47", domain.GameCS2)
	if err != nil {
		t.Fatalf("PriceHistory failed: %v", err)
	}
	if !history.Success {
		t.Error("Success = false, want true")
	}
	if len(history.Points) != 1 {
		t.Fatalf("got %d points, want 1", len(history.Points))
	}
	p := history.Points[0]
	if p.Price != 12.5 || p.Volume != "42" {
		t.Errorf("point = %+v", p)
	}
}

func TestPriceHistory_EmptyBOMBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\xef\xbb\xbf{\"success\":true,\"prices\":[]}"))
	})

	history, err := client.PriceHistory(context.Background(), "AK-47", domain.GameCS2)
	if err != nil {
		t.Fatalf("PriceHistory failed: %v", err)
	}
	if !history.Success || len(history.Points) != 0 {
		t.Errorf("history = %+v, want success with no points", history)
	}
}

func TestPriceHistory_MalformedBodyIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>please log in</html>"))
	})

	_, err := client.PriceHistory(context.Background(), "AK-47", domain.GameCS2)
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestPriceHistory_RejectedStatusIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.PriceHistory(context.Background(), "AK-47", domain.GameCS2)
	if !errors.Is(err, domain.ErrUpstreamRejected) {
		t.Errorf("error = %v, want ErrUpstreamRejected", err)
	}
}
