// Package watch runs the poll cycle: for each active subscription it fetches
// the current search results, diffs them against the known-set, notifies new
// listings, and persists the updated known-set. Subscriptions are processed
// strictly sequentially with explicit pacing between outbound calls.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"staywatch/internal/airbnb"
	"staywatch/internal/store"
	logx "staywatch/pkg/logx"
)

type Config struct {
	// ListingPause spaces successive notifications within one subscription's
	// batch.
	ListingPause time.Duration
	// SubscriptionPause spaces successive subscriptions within one cycle.
	SubscriptionPause time.Duration
}

// Searcher performs one upstream search per subscription.
type Searcher interface {
	Search(ctx context.Context, req airbnb.SearchRequest) ([]airbnb.Listing, error)
}

// Notifier delivers exactly one message per new listing.
type Notifier interface {
	Notify(ctx context.Context, l airbnb.Listing, sub store.Subscription) error
}

type Watcher struct {
	mu  sync.Mutex
	cfg Config

	store  store.Store
	search Searcher
	notify Notifier
	log    logx.Logger

	// newPacer is swappable so tests can observe pacing without real time.
	newPacer func(time.Duration) Pacer
}

func New(cfg Config, st store.Store, search Searcher, notify Notifier, log logx.Logger) *Watcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Watcher{
		cfg:      cfg,
		store:    st,
		search:   search,
		notify:   notify,
		log:      log,
		newPacer: NewPacer,
	}
}

// Apply updates pacing at runtime (config hot-reload). Takes effect on the
// next Run.
func (w *Watcher) Apply(cfg Config) {
	w.mu.Lock()
	w.cfg = cfg
	w.mu.Unlock()
}

func (w *Watcher) config() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// Run executes one full poll cycle over all active subscriptions.
//
// Error boundaries: a failing subscription is logged and skipped, leaving its
// known-set untouched; only a failure to load the subscription list (or ctx
// expiry, the scheduler's hard run timeout) fails the run. Recovery is always
// "try again next scheduled run".
func (w *Watcher) Run(ctx context.Context) error {
	cfg := w.config()

	subs, err := w.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active subscriptions: %w", err)
	}
	w.log.Info("poll cycle started", logx.Int("subscriptions", len(subs)))

	subPacer := w.newPacer(cfg.SubscriptionPause)
	for _, sub := range subs {
		if err := subPacer.Wait(ctx); err != nil {
			return err
		}
		if err := w.processOne(ctx, sub, cfg); err != nil {
			if ctx.Err() != nil {
				// Hard run timeout: whatever wasn't reached is picked up next
				// cycle. A subscription whose persist step didn't complete
				// will be redelivered (at-least-once semantics).
				return ctx.Err()
			}
			// Silence towards the destination channel; operators watch logs.
			w.log.Error("subscription poll failed",
				logx.String("subscription", sub.ID), logx.Err(err))
		}
	}
	return nil
}

func (w *Watcher) processOne(ctx context.Context, sub store.Subscription, cfg Config) error {
	listings, err := w.search.Search(ctx, airbnb.SearchRequest{
		Currency: sub.Currency,
		Filters:  sub.Filters,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	fresh := NewListings(listings, sub.KnownListings)
	w.log.Info("search complete",
		logx.String("subscription", sub.ID),
		logx.Int("total", len(listings)),
		logx.Int("new", len(fresh)))

	pacer := w.newPacer(cfg.ListingPause)
	for _, l := range fresh {
		if err := pacer.Wait(ctx); err != nil {
			return err
		}
		// A delivery failure aborts the rest of the batch and skips the
		// known-set update, so the failed and following listings are retried
		// next cycle. Already-sent ones will be re-sent then too;
		// delivery is at-least-once.
		if err := w.notify.Notify(ctx, l, sub); err != nil {
			return err
		}
	}

	// Known-set policy: replace with the full fetched id set. This keeps the
	// persisted state eventually consistent with upstream: an id that left
	// the results is forgotten, and treated as new again if it reappears.
	if err := w.store.UpdateKnownListings(ctx, sub.ID, IDs(listings)); err != nil {
		return fmt.Errorf("persist known-set: %w", err)
	}
	return nil
}
