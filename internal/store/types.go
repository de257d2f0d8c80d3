package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Subscription is one monitored search and where to send its notifications.
//
// ChatID is an opaque destination reference: a numeric Telegram chat id or a
// public @handle, both accepted by the delivery API as-is.
type Subscription struct {
	ID            string         `json:"id"`
	ChatID        string         `json:"chat_id"`
	Currency      string         `json:"currency"`
	Filters       map[string]any `json:"filters"`
	Active        bool           `json:"active"`
	KnownListings []string       `json:"known_listings,omitempty"`
}

// Required filter keys: stay dates and guest count.
const (
	FilterCheckin  = "checkin"
	FilterCheckout = "checkout"
	FilterAdults   = "adults"
)

func (s Subscription) Checkin() string  { return filterString(s.Filters, FilterCheckin) }
func (s Subscription) Checkout() string { return filterString(s.Filters, FilterCheckout) }
func (s Subscription) Adults() string   { return filterString(s.Filters, FilterAdults) }

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("subscription id is empty")
	}
	if strings.TrimSpace(s.ChatID) == "" {
		return fmt.Errorf("subscription %s: chat_id is empty", s.ID)
	}
	if strings.TrimSpace(s.Currency) == "" {
		return fmt.Errorf("subscription %s: currency is empty", s.ID)
	}
	for _, k := range []string{FilterCheckin, FilterCheckout, FilterAdults} {
		if filterString(s.Filters, k) == "" {
			return fmt.Errorf("subscription %s: missing filter %q", s.ID, k)
		}
	}
	return nil
}

// filterString renders a filter value for URL building. Guest counts arrive
// as JSON numbers, dates as strings.
func filterString(filters map[string]any, key string) string {
	switch v := filters[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// Config selects and configures the store backend.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}
