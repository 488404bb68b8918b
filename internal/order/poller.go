package order

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Poller keeps an order's status fresh without a push channel: a fixed
// interval, no backoff, no jitter. A watch never starts for an order that is
// already terminal, and stops itself on the first terminal observation.
type Poller struct {
	svc      *Service
	interval time.Duration
}

func NewPoller(svc *Service, interval time.Duration) *Poller {
	return &Poller{svc: svc, interval: interval}
}

// Watch polls orderID until the status turns terminal, ctx is cancelled or
// the returned stop function is called. onChange fires on every observed
// status change. Poll errors are skipped; the next tick retries.
func (p *Poller) Watch(ctx context.Context, orderID int64, initial Status, onChange func(Status)) (stop func()) {
	if initial.Terminal() {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer cancel()

		last := initial
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			status, err := p.svc.GetStatus(ctx, orderID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Debug().Err(err).Int64("order_id", orderID).Msg("order: status poll failed")
				continue
			}

			if status != last {
				last = status
				if onChange != nil {
					onChange(status)
				}
			}

			if status.Terminal() {
				log.Info().Int64("order_id", orderID).Str("status", status.String()).Msg("order: terminal status observed, polling stopped")
				return
			}
		}
	}()

	return cancel
}
