package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/notify"
	"github.com/hamed0406/sitewatch/internal/probe"
)

// Watcher polls one Site forever: check, notify if down, sleep, repeat.
// It is the only writer of its Site.
type Watcher struct {
	site     *domain.Site
	checker  probe.Checker
	notifier notify.Notifier
	log      *zap.Logger
}

func NewWatcher(log *zap.Logger, site *domain.Site, checker probe.Checker, notifier notify.Notifier) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		site:     site,
		checker:  checker,
		notifier: notifier,
		log: log.With(
			zap.String("site", site.Name),
			zap.String("url", site.URL),
		),
	}
}

func (w *Watcher) Site() *domain.Site { return w.site }

// DownSubject is the subject line of a down alert.
func DownSubject(site *domain.Site) string {
	return fmt.Sprintf("Site <%s> down", site.Name)
}

// Run loops until ctx is cancelled. The sleep between checks is always the
// site's interval; failures never shorten or stretch it.
func (w *Watcher) Run(ctx context.Context) {
	w.log.Info("watcher_started", zap.Duration("interval", w.site.Interval))
	for {
		if ctx.Err() != nil {
			w.log.Info("watcher_stopped")
			return
		}
		w.cycle(ctx)

		t := time.NewTimer(w.site.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			w.log.Info("watcher_stopped")
			return
		case <-t.C:
		}
	}
}

// cycle runs one check and keeps a panic in the checker or notifier from
// ending the loop.
func (w *Watcher) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("watcher_panic",
				zap.String("correlation_id", uuid.NewString()),
				zap.String("panic", fmt.Sprintf("%v", r)),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	w.RunCheck(ctx)
}

// RunCheck probes the site once, records the outcome and alerts the admin
// when the site is down. Every failing check sends a fresh alert.
func (w *Watcher) RunCheck(ctx context.Context) probe.CheckResult {
	res := w.checker.Check(ctx, w.site.URL)
	w.site.Record(res.Success, res.Message)

	if !w.site.Up {
		w.log.Info("site_down",
			zap.String("admin", w.site.AdminEmail),
			zap.Int("status", res.StatusCode),
			zap.String("reason", w.site.LastError),
		)
		w.notifier.Notify(ctx, w.site.AdminEmail, DownSubject(w.site), w.site.LastError)
		return res
	}

	w.log.Debug("site_up",
		zap.Int("status", res.StatusCode),
		zap.Float64("latency_ms", res.LatencyMS),
	)
	return res
}
