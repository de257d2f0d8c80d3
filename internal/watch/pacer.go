package watch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer gates successive outbound calls to a fixed minimum interval. It is
// how the watcher stays under the chat API's rate limit and avoids upstream
// search bursts that trip anti-automation defenses.
type Pacer interface {
	// Wait blocks until the next call is allowed or ctx is done.
	Wait(ctx context.Context) error
}

// NewPacer returns a fixed-interval gate. The underlying token bucket starts
// full, so the first Wait passes immediately and each subsequent Wait is
// spaced at least `every` apart.
func NewPacer(every time.Duration) Pacer {
	if every <= 0 {
		return nopPacer{}
	}
	return intervalPacer{lim: rate.NewLimiter(rate.Every(every), 1)}
}

type intervalPacer struct{ lim *rate.Limiter }

func (p intervalPacer) Wait(ctx context.Context) error { return p.lim.Wait(ctx) }

type nopPacer struct{}

func (nopPacer) Wait(ctx context.Context) error { return ctx.Err() }
