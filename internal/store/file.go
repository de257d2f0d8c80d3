package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "staywatch/pkg/logx"
)

// fileStore keeps subscriptions in a single JSON document on disk. The file
// is meant to be hand-edited by the operator; known-set updates rewrite it
// atomically (tmp + rename) preserving subscription order.
type fileStore struct {
	log  logx.Logger
	path string

	mu   sync.Mutex
	subs []Subscription
}

type fileDoc struct {
	Subscriptions []Subscription `json:"subscriptions"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc fileDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for _, sub := range doc.Subscriptions {
		if err := sub.Validate(); err != nil {
			return nil, err
		}
	}

	return &fileStore{log: log, path: path, subs: doc.Subscriptions}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) ListActive(ctx context.Context) ([]Subscription, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if !sub.Active {
			continue
		}
		cp := sub
		cp.KnownListings = append([]string(nil), sub.KnownListings...)
		out = append(out, cp)
	}
	return out, nil
}

func (s *fileStore) UpdateKnownListings(ctx context.Context, id string, listingIDs []string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.subs {
		if s.subs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.subs[idx].KnownListings = append([]string(nil), listingIDs...)
	return s.rewriteLocked()
}

func (s *fileStore) rewriteLocked() error {
	b, err := json.MarshalIndent(fileDoc{Subscriptions: s.subs}, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	tmp := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp")
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
