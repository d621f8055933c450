// Package crypto provides request signing and secret management for the
// authenticated marketplaces.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// HMACAuth holds the key pair for a signature-authenticated marketplace
// (DMarket-style: public API key plus keyed-hash secret).
type HMACAuth struct {
	PublicKey string // sent verbatim in X-Api-Key
	SecretKey string // HMAC key, never sent or logged
}

// Sign computes the hex-encoded HMAC-SHA256 signature over the canonical
// request string: method, path, "?"+query (omitted when the query is empty),
// body (empty for GET), and the Unix-seconds timestamp. The timestamp is
// caller-supplied so the function is pure and signatures are reproducible.
func (h *HMACAuth) Sign(method, path, query, body string, unixTS int64) string {
	canonical := method + path
	if query != "" {
		canonical += "?" + query
	}
	canonical += body + strconv.FormatInt(unixTS, 10)

	mac := hmac.New(sha256.New, []byte(h.SecretKey))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// RequestHeaders returns the authentication headers for one request.
//
// Returned header keys:
//   - X-Api-Key
//   - X-Request-Sign (prefixed "dmar ed25519 " per the upstream protocol)
//   - X-Sign-Date
func (h *HMACAuth) RequestHeaders(method, path, query, body string, unixTS int64) map[string]string {
	sig := h.Sign(method, path, query, body, unixTS)
	return map[string]string{
		"X-Api-Key":      h.PublicKey,
		"X-Request-Sign": "dmar ed25519 " + sig,
		"X-Sign-Date":    strconv.FormatInt(unixTS, 10),
	}
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("HMACAuth{public=%s, secret=%s}", redact(h.PublicKey), redact(h.SecretKey))
}
