package domain

import "errors"

var (
	// ErrInvalidRequest means the caller supplied a missing or unknown
	// parameter (e.g. an unrecognized game or venue). No upstream call is
	// attempted.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUpstreamUnavailable is a transport-level failure talking to a
	// marketplace (DNS, connection reset, timeout).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrRateLimited means a marketplace returned a rate-limit signal
	// (HTTP 429). The throttle controller retries these up to a bound.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformedResponse means an upstream body could not be parsed into
	// the expected shape.
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrUpstreamRejected means a marketplace returned a definite non-success
	// status unrelated to rate limiting.
	ErrUpstreamRejected = errors.New("upstream rejected request")

	// ErrConfigMissing means required credentials for a venue are absent at
	// startup. Fatal for that venue only, not for the process.
	ErrConfigMissing = errors.New("configuration missing")

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned by stores on unique-constraint conflicts.
	ErrAlreadyExists = errors.New("already exists")

	// ErrLockHeld means a distributed lock is already held by another party.
	ErrLockHeld = errors.New("lock already held")
)
