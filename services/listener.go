package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/iotaledger/iota.go/trinary"

	"github.com/tanglekit/mamgo/mam"
	"github.com/tanglekit/mamgo/metrics"
)

// Listener drives subscription polling. Each subscription gets one loop
// goroutine; polls within a loop are serialized through the subscription's
// in-flight guard, so a round trip that outlives the poll interval causes
// skipped cycles rather than concurrent fetches for the same chain.
type Listener struct {
	ctrl *mam.Controller
	log  *slog.Logger
}

// NewListener creates a listener over the given controller.
func NewListener(ctrl *mam.Controller, log *slog.Logger) *Listener {
	if log == nil {
		log = slog.Default()
	}
	return &Listener{ctrl: ctrl, log: log}
}

// Listen starts the poll loop for a subscription. Each cycle runs one chain
// traversal from the subscription's current head and streams every decoded
// message to onMessage. The returned stop function cancels future polls;
// an in-flight traversal is aborted through its context.
func (l *Listener) Listen(ctx context.Context, sub *mam.Subscription, onMessage func(trinary.Trytes)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(sub.Interval())
		defer ticker.Stop()

		for {
			if !sub.Active() {
				return
			}
			l.poll(ctx, sub, onMessage)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return cancel
}

func (l *Listener) poll(ctx context.Context, sub *mam.Subscription, onMessage func(trinary.Trytes)) {
	if !sub.TryBeginPoll() {
		metrics.PollsSkipped.Inc()
		l.log.Debug("skipping poll, previous still in flight", "root", sub.Root())
		return
	}
	defer sub.EndPoll()

	root := sub.Root()
	result, err := l.ctrl.Fetch(ctx, root, sub.Mode(), sub.ChannelKey(), onMessage)
	if err != nil {
		// Possibly-partial result: deliver what arrived, resume from the
		// failed root next cycle.
		l.log.Error("subscription poll failed", "root", root, "err", err)
	}
	if result != nil {
		if n := len(result.Messages); n > 0 {
			metrics.MessagesFetched.Add(float64(n))
			l.log.Info("subscription delivered messages", "root", root, "count", n)
		}
		sub.AdvanceTo(result.LastRoot)
	}

	if swept := l.ctrl.SweepFragments(time.Now()); swept > 0 {
		l.log.Debug("abandoned stale bundles", "count", swept)
	}
}
