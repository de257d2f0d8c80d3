package airbnb

// The ExploreSections response nests its result sections inside generic
// containers whose shape drifts between API versions. Rather than chasing a
// fixed field path, we search the document for the node whose type tag marks
// it as the listings section and read its items.

const listingsSectionType = "ExploreListingsSection"

// maxSectionDepth bounds the recursive search; the real documents nest a
// handful of levels deep.
const maxSectionDepth = 32

// extractItems returns the raw item list of the listings section, or
// ErrListingsSectionNotFound when no section in the document carries the tag.
func extractItems(doc map[string]any) ([]map[string]any, error) {
	section, ok := findListingsSection(doc, 0)
	if !ok {
		return nil, ErrListingsSectionNotFound
	}

	rawItems, _ := section["items"].([]any)
	items := make([]map[string]any, 0, len(rawItems))
	for _, it := range rawItems {
		if m, ok := it.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items, nil
}

func findListingsSection(v any, depth int) (map[string]any, bool) {
	if depth > maxSectionDepth {
		return nil, false
	}
	switch x := v.(type) {
	case map[string]any:
		if tag, _ := x["__typename"].(string); tag == listingsSectionType {
			return x, true
		}
		for _, child := range x {
			if m, ok := findListingsSection(child, depth+1); ok {
				return m, true
			}
		}
	case []any:
		for _, child := range x {
			if m, ok := findListingsSection(child, depth+1); ok {
				return m, true
			}
		}
	}
	return nil, false
}
