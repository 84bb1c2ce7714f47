// Package connectivity tracks whether the remote store is reachable.
package connectivity

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/logging"
)

// Gate answers whether remote-bound work may start.
type Gate interface {
	Online() bool
}

// Pinger probes the remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type static bool

func (s static) Online() bool { return bool(s) }

// Static returns a Gate with a fixed answer.
func Static(online bool) Gate { return static(online) }

// Watcher caches the result of periodic pings.
type Watcher struct {
	pinger      Pinger
	logger      logging.Logger
	online      atomic.Bool
	pingTimeout time.Duration
}

func NewWatcher(p Pinger, logger logging.Logger) *Watcher {
	return &Watcher{pinger: p, logger: logger.With("module", "connectivity"), pingTimeout: 3 * time.Second}
}

// Online returns the last observed status without blocking.
func (w *Watcher) Online() bool {
	return w.online.Load()
}

// Check pings once and records the result. It reports the new status.
func (w *Watcher) Check(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, w.pingTimeout)
	err := w.pinger.Ping(pctx)
	cancel()

	online := err == nil
	if prev := w.online.Swap(online); prev != online {
		mode := "offline"
		if online {
			mode = "online"
		}
		w.logger.Info(ctx, "switched to "+mode+" mode")
	}
	if err != nil {
		w.logger.Debug(ctx, "ping failed", "error", err)
	}
	return online
}

// Run checks immediately and then on every tick until ctx is done.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	w.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
