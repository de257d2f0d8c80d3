// Package store persists subscriptions and their known-sets.
//
// The watcher depends only on three operations: list the active
// subscriptions, replace one subscription's known-set, close.
package store

import (
	"context"
	"errors"
	"strings"

	logx "staywatch/pkg/logx"
)

// ErrNotFound is returned when an update targets an unknown subscription.
var ErrNotFound = errors.New("subscription not found")

// Store is the minimal persistence API used by the watcher.
type Store interface {
	ListActive(ctx context.Context) ([]Subscription, error)
	UpdateKnownListings(ctx context.Context, id string, listingIDs []string) error
	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + cfg.Driver)
	}
}
