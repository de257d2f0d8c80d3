package config

import (
	"fmt"
	"strings"
	"time"
)

// The timing knobs (watch.interval, watch.listing_pause, airbnb.timeout, ...)
// are Go duration strings in the config file. They stay strings in Config and
// are parsed here at the point of use, so a bad value names its field.

// ParseDurationField parses one duration field. Empty or blank means unset
// and parses to 0; negative values are rejected, since no pause or timeout
// here can meaningfully run backwards.
func ParseDurationField(field, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %q", field, raw)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with a fallback for unset
// fields, used for the knobs that carry reference-deployment defaults
// (5m interval, 540s run timeout, 3s/15s pacing).
func ParseDurationOrDefault(field, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(field, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}
