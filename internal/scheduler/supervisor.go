package scheduler

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
	"github.com/hamed0406/sitewatch/internal/notify"
	"github.com/hamed0406/sitewatch/internal/probe"
)

// Supervisor owns one Watcher per Site. The checker and notifier are
// shared by all watchers.
type Supervisor struct {
	Logger   *zap.Logger
	Watchers []*Watcher
}

func NewSupervisor(
	logger *zap.Logger,
	checker probe.Checker,
	notifier notify.Notifier,
	sites []*domain.Site,
) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	ws := make([]*Watcher, 0, len(sites))
	for _, s := range sites {
		ws = append(ws, NewWatcher(logger, s, checker, notifier))
	}
	return &Supervisor{Logger: logger, Watchers: ws}
}

// Run starts every watcher in its own goroutine and blocks until all of
// them have returned, which only happens once ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, w := range s.Watchers {
		wg.Add(1)
		go func(w *Watcher) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}
	s.Logger.Info("supervisor_started", zap.Int("sites", len(s.Watchers)))

	wg.Wait()
	s.Logger.Info("supervisor_stopped")
}
