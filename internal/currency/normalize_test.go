package currency

import (
	"errors"
	"testing"

	"github.com/opavlenko/skinarb/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "dollar prefix", input: "$12.34", want: 1234},
		{name: "comma decimal locale", input: "12,34", want: 1234},
		{name: "space thousands", input: "1 234.56", want: 123456},
		{name: "comma thousands", input: "1,234.56", want: 123456},
		{name: "period thousands comma decimal", input: "1.234,56", want: 123456},
		{name: "usd suffix", input: "12.34 USD", want: 1234},
		{name: "hryvnia suffix", input: "543,21₴", want: 54321},
		{name: "bare integer", input: "12", want: 1200},
		{name: "single fractional digit", input: "12.5", want: 1250},
		{name: "three digit group is thousands", input: "1.234", want: 123400},
		{name: "sub cent rounds up", input: "0.955", want: 96},
		{name: "sub cent rounds down", input: "0.954", want: 95},
		{name: "empty", input: "", wantErr: true},
		{name: "no digits", input: "sold out", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrParse) {
					t.Errorf("Normalize(%q) error = %v, want ErrParse", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_SameAmountDifferentLocales(t *testing.T) {
	// The same amount in different upstream formats must normalize
	// identically.
	inputs := []string{"$12.34", "12,34", "12.34 USD", "12.34"}
	for _, in := range inputs {
		got, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", in, err)
		}
		if got != 1234 {
			t.Errorf("Normalize(%q) = %d, want 1234", in, got)
		}
	}
}

func TestFromMinor_Idempotent(t *testing.T) {
	// Structured minor-unit fields pass through unchanged.
	for _, v := range []int64{0, 1, 1234, 999999} {
		got, err := FromMinor(v)
		if err != nil {
			t.Fatalf("FromMinor(%d) failed: %v", v, err)
		}
		if got != v {
			t.Errorf("FromMinor(%d) = %d, want identity", v, got)
		}
	}

	if _, err := FromMinor(-1); !errors.Is(err, ErrParse) {
		t.Errorf("FromMinor(-1) error = %v, want ErrParse", err)
	}
}

func TestFromMajor(t *testing.T) {
	got, err := FromMajor(12.34)
	if err != nil {
		t.Fatalf("FromMajor failed: %v", err)
	}
	if got != 1234 {
		t.Errorf("FromMajor(12.34) = %d, want 1234", got)
	}

	if _, err := FromMajor(-0.01); !errors.Is(err, ErrParse) {
		t.Errorf("FromMajor(-0.01) error = %v, want ErrParse", err)
	}
}

func TestConvert(t *testing.T) {
	// Identity conversion.
	got, err := Convert(1234, domain.CurrencyUSD, domain.CurrencyUSD)
	if err != nil || got != 1234 {
		t.Errorf("Convert identity = %d, %v", got, err)
	}

	// Sentinel zero survives conversion.
	got, err = Convert(0, domain.CurrencyUSD, domain.CurrencyEUR)
	if err != nil || got != 0 {
		t.Errorf("Convert zero sentinel = %d, %v", got, err)
	}

	// Round-trip stays close (rates are static, rounding is to minor units).
	eur, err := Convert(10000, domain.CurrencyUSD, domain.CurrencyEUR)
	if err != nil {
		t.Fatalf("Convert USD->EUR failed: %v", err)
	}
	if eur != 9200 {
		t.Errorf("Convert(10000 USD->EUR) = %d, want 9200", eur)
	}

	if _, err := Convert(100, domain.Currency("XXX"), domain.CurrencyUSD); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("Convert unknown currency error = %v, want ErrInvalidRequest", err)
	}
}
