package probe

import (
	"context"
	"net"
	"net/url"
	"time"
)

var (
	_ Checker = (*HTTPChecker)(nil)
	_ Checker = (*DNSDiagnoser)(nil)
)

// DNSDiagnoser wraps a Checker and, when a probe fails, annotates the
// failure message with the DNS class of the target host.
type DNSDiagnoser struct {
	Inner    Checker
	Resolver Resolver
	Budget   time.Duration
}

func NewDNSDiagnoser(inner Checker) *DNSDiagnoser {
	return &DNSDiagnoser{
		Inner:    inner,
		Resolver: net.DefaultResolver,
		Budget:   defaultDNSBudget,
	}
}

func (d *DNSDiagnoser) Check(ctx context.Context, target string) CheckResult {
	out := d.Inner.Check(ctx, target)
	if out.Success || out.StatusCode != 0 {
		// got an HTTP answer, so the name resolved
		return out
	}

	budget := d.Budget
	if budget <= 0 {
		budget = defaultDNSBudget
	}
	dctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	dns := ClassifyHost(dctx, d.Resolver, extractHost(target))
	out.Message = out.Message + " dns=" + dns.Class
	return out
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
