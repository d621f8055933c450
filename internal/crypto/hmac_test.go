package crypto

import (
	"strings"
	"testing"
)

func TestSign_Deterministic(t *testing.T) {
	auth := &HMACAuth{PublicKey: "pub", SecretKey: "topsecret"}

	a := auth.Sign("GET", "/exchange/v1/market/items", "gameId=a8db&limit=100", "", 1700000000)
	b := auth.Sign("GET", "/exchange/v1/market/items", "gameId=a8db&limit=100", "", 1700000000)
	if a != b {
		t.Fatalf("same inputs produced different signatures: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("signature length = %d, want 64 hex chars", len(a))
	}
	if strings.ToLower(a) != a {
		t.Errorf("signature %q is not lowercase hex", a)
	}
}

func TestSign_InputSensitivity(t *testing.T) {
	auth := &HMACAuth{PublicKey: "pub", SecretKey: "topsecret"}
	base := auth.Sign("GET", "/path", "q=1", "", 1700000000)

	variants := []struct {
		name                       string
		method, path, query, body  string
		ts                         int64
	}{
		{"method", "POST", "/path", "q=1", "", 1700000000},
		{"path", "GET", "/other", "q=1", "", 1700000000},
		{"query", "GET", "/path", "q=2", "", 1700000000},
		{"body", "GET", "/path", "q=1", "{}", 1700000000},
		{"adjacent timestamp", "GET", "/path", "q=1", "", 1700000001},
	}
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			got := auth.Sign(v.method, v.path, v.query, v.body, v.ts)
			if got == base {
				t.Errorf("changing %s did not change the signature", v.name)
			}
		})
	}

	other := &HMACAuth{PublicKey: "pub", SecretKey: "othersecret"}
	if other.Sign("GET", "/path", "q=1", "", 1700000000) == base {
		t.Error("changing the secret key did not change the signature")
	}
}

func TestRequestHeaders(t *testing.T) {
	auth := &HMACAuth{PublicKey: "public-key-id", SecretKey: "topsecret"}
	headers := auth.RequestHeaders("GET", "/exchange/v1/market/items", "gameId=a8db", "", 1700000000)

	if headers["X-Api-Key"] != "public-key-id" {
		t.Errorf("X-Api-Key = %q", headers["X-Api-Key"])
	}
	if headers["X-Sign-Date"] != "1700000000" {
		t.Errorf("X-Sign-Date = %q", headers["X-Sign-Date"])
	}
	sign := headers["X-Request-Sign"]
	if !strings.HasPrefix(sign, "dmar ed25519 ") {
		t.Fatalf("X-Request-Sign = %q, want dmar ed25519 prefix", sign)
	}
	if want := auth.Sign("GET", "/exchange/v1/market/items", "gameId=a8db", "", 1700000000); sign != "dmar ed25519 "+want {
		t.Errorf("X-Request-Sign does not carry the canonical signature")
	}
}

func TestHMACAuth_StringRedacts(t *testing.T) {
	auth := &HMACAuth{PublicKey: "public-key-id", SecretKey: "supersecretvalue"}
	s := auth.String()
	if strings.Contains(s, "supersecretvalue") || strings.Contains(s, "secretvalue") {
		t.Errorf("String() leaks the secret: %s", s)
	}
}

func TestEncryptDecryptSecret_RoundTrip(t *testing.T) {
	blob, err := EncryptSecret("marketplace-api-secret", "correct horse")
	if err != nil {
		t.Fatalf("EncryptSecret failed: %v", err)
	}

	got, err := DecryptSecret(blob, "correct horse")
	if err != nil {
		t.Fatalf("DecryptSecret failed: %v", err)
	}
	if got != "marketplace-api-secret" {
		t.Errorf("round trip = %q", got)
	}

	if _, err := DecryptSecret(blob, "wrong password"); err == nil {
		t.Error("DecryptSecret with wrong password succeeded")
	}
}
