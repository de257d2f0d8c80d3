package watch

import "staywatch/internal/airbnb"

// NewListings returns the fetched listings whose id is not in the known-set,
// preserving fetch order. Pure function; equality is exact id string match.
func NewListings(fetched []airbnb.Listing, known []string) []airbnb.Listing {
	if len(fetched) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(known))
	for _, id := range known {
		seen[id] = struct{}{}
	}

	var fresh []airbnb.Listing
	for _, l := range fetched {
		if _, ok := seen[l.ID]; ok {
			continue
		}
		fresh = append(fresh, l)
	}
	return fresh
}

// IDs projects listings onto their ids, preserving order.
func IDs(listings []airbnb.Listing) []string {
	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	return ids
}
