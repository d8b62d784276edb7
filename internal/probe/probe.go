package probe

import (
	"context"
	"time"
)

// CheckResult is the outcome of a single probe.
//
// Fields:
//   - Success: the request completed with a non-error status.
//   - Message: failure reason; empty on success.
//   - StatusCode: HTTP status code when available; 0 for transport/DNS errors.
type CheckResult struct {
	Success    bool
	Message    string
	StatusCode int
	LatencyMS  float64
}

// Checker performs a single reachability check for a given target URL.
// Implementations must capture every failure in the result.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}

// ClientConfig is shared read-only by every probe.
type ClientConfig struct {
	UserAgent string
	Timeout   time.Duration
}

const defaultTimeout = 5 * time.Second
