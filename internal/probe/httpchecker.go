package probe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"
)

// drainLimit bounds how much of a response body is read so the
// connection can be reused.
const drainLimit = 64 << 10

type HTTPChecker struct {
	Client    *http.Client
	UserAgent string
}

func NewHTTPChecker(cfg ClientConfig) *HTTPChecker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPChecker{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: cfg.UserAgent,
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return CheckResult{Success: false, Message: err.Error()}
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		return CheckResult{Success: false, Message: reason(err), LatencyMS: latency}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	if resp.StatusCode >= 400 {
		return CheckResult{
			Success:    false,
			Message:    resp.Status,
			StatusCode: resp.StatusCode,
			LatencyMS:  latency,
		}
	}
	return CheckResult{
		Success:    true,
		StatusCode: resp.StatusCode,
		LatencyMS:  latency,
	}
}

// reason strips the "Get <url>:" prefix net/http adds to transport errors.
func reason(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}
