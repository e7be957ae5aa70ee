package watcher

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/sirupsen/logrus"

	"github.com/keene2/meme-server/internal/metrics"
)

const (
	initialReconnectDelay = time.Second
	maxReconnectDelay     = 30 * time.Second
)

// Watcher subscribes to slot updates over the Solana websocket RPC and
// keeps a running count. It supervises its own connection: on any
// subscription error it reconnects with exponential backoff until the
// context is cancelled.
type Watcher struct {
	wsURL   string
	logger  *logrus.Logger
	running atomic.Bool
	slots   atomic.Uint64
	done    chan struct{}
}

func New(wsURL string, logger *logrus.Logger) *Watcher {
	return &Watcher{
		wsURL:  wsURL,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the watch loop. It returns immediately; the loop stops
// when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	if !w.running.CompareAndSwap(false, true) {
		w.logger.Warn("slot watcher already running")
		return
	}
	go w.run(ctx)
	w.logger.Info("slot watcher started")
}

// Running reports whether the watch loop is alive.
func (w *Watcher) Running() bool {
	return w.running.Load()
}

// Slots returns the number of slot updates processed since start.
func (w *Watcher) Slots() uint64 {
	return w.slots.Load()
}

// Wait blocks until the watch loop has exited.
func (w *Watcher) Wait() {
	<-w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer func() {
		w.running.Store(false)
		close(w.done)
	}()

	delay := initialReconnectDelay
	for {
		if ctx.Err() != nil {
			return
		}

		err := w.watch(ctx)
		if ctx.Err() != nil {
			return
		}
		w.logger.WithError(err).Warnf("slot subscription lost, reconnecting in %s", delay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = nextBackoff(delay)
	}
}

// watch runs one connect/subscribe/receive session and returns the
// error that ended it.
func (w *Watcher) watch(ctx context.Context) error {
	client, err := ws.Connect(ctx, w.wsURL)
	if err != nil {
		return err
	}
	defer client.Close()

	sub, err := client.SlotSubscribe()
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		result, err := sub.Recv(ctx)
		if err != nil {
			return err
		}
		w.slots.Add(1)
		metrics.WatcherSlotsTotal.Inc()
		w.logger.WithFields(logrus.Fields{
			"slot":   result.Slot,
			"parent": result.Parent,
			"root":   result.Root,
		}).Debug("new slot")
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxReconnectDelay {
		return maxReconnectDelay
	}
	return next
}
