// Package airbnb implements the upstream search client: one ExploreSections
// request per subscription, plus normalization of the loosely-typed response
// into Listing records.
package airbnb

import "errors"

var (
	// ErrMalformedItem marks a search-result item whose required fields
	// (identity, name, pricing display strings) are missing or unusable.
	ErrMalformedItem = errors.New("malformed upstream item")

	// ErrListingsSectionNotFound marks a response in which no section carries
	// the listings type tag. Fatal for that subscription's poll this cycle.
	ErrListingsSectionNotFound = errors.New("listings section not found")
)

// Price carries pre-formatted display strings, not numeric amounts.
type Price struct {
	Total   string
	Nightly string
}

// Listing is the normalized representation of one search result. Instances
// are owned by a single poll cycle; only the ID survives into a
// subscription's known-set.
type Listing struct {
	ID       string
	Name     string
	ImageURL string // empty when the item has no contextual picture
	Rating   string // empty means "no rating"; display fallback is the notifier's job
	Price    Price

	// Raw is the original upstream item, kept for debugging and
	// forward-compatibility. Never used for diffing.
	Raw map[string]any
}
