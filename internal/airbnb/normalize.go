package airbnb

import (
	"fmt"
	"strconv"
)

// Normalize converts one raw search-result item into a Listing.
//
// Field selection:
//   - imageUrl: first contextual picture, else absent
//   - rating: localized rating, else numeric rating, else absent (no fallback
//     string is synthesized here)
func Normalize(raw map[string]any) (Listing, error) {
	listing, ok := childMap(raw, "listing")
	if !ok {
		return Listing{}, fmt.Errorf("%w: missing listing", ErrMalformedItem)
	}

	id := scalarString(listing["id"])
	if id == "" {
		return Listing{}, fmt.Errorf("%w: missing listing id", ErrMalformedItem)
	}
	name := scalarString(listing["name"])
	if name == "" {
		return Listing{}, fmt.Errorf("%w: listing %s has no name", ErrMalformedItem, id)
	}

	display, ok := childMap(raw, "pricingQuote", "structuredStayDisplayPrice")
	if !ok {
		return Listing{}, fmt.Errorf("%w: listing %s has no display price", ErrMalformedItem, id)
	}
	primary, _ := childMap(display, "primaryLine")
	secondary, _ := childMap(display, "secondaryLine")
	price := Price{
		Nightly: scalarString(primary["accessibilityLabel"]),
		Total:   scalarString(secondary["accessibilityLabel"]),
	}
	if price.Nightly == "" || price.Total == "" {
		return Listing{}, fmt.Errorf("%w: listing %s has no price labels", ErrMalformedItem, id)
	}

	return Listing{
		ID:       id,
		Name:     name,
		ImageURL: firstPicture(listing),
		Rating:   rating(listing),
		Price:    price,
		Raw:      raw,
	}, nil
}

func firstPicture(listing map[string]any) string {
	pics, ok := listing["contextualPictures"].([]any)
	if !ok {
		return ""
	}
	for _, p := range pics {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if u := scalarString(pm["picture"]); u != "" {
			return u
		}
	}
	return ""
}

func rating(listing map[string]any) string {
	if r := scalarString(listing["avgRatingLocalized"]); r != "" {
		return r
	}
	return scalarString(listing["avgRating"])
}

// childMap walks nested map keys, returning the innermost map.
func childMap(m map[string]any, keys ...string) (map[string]any, bool) {
	cur := m
	for _, k := range keys {
		next, ok := cur[k].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// scalarString renders a JSON scalar as a display string. Numbers come out of
// encoding/json as float64; ratings like 4.85 must not grow a mantissa.
func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return ""
	}
}
