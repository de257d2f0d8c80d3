package airbnb

import (
	"encoding/json"
	"errors"
	"testing"
)

func itemJSON(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("bad test item: %v", err)
	}
	return m
}

const fullItem = `{
	"listing": {
		"id": "53452264",
		"name": "Cosy loft near the canal",
		"avgRatingLocalized": "4.85 (120)",
		"avgRating": 4.85,
		"contextualPictures": [
			{"picture": "https://img.example/1.jpg"},
			{"picture": "https://img.example/2.jpg"}
		]
	},
	"pricingQuote": {
		"structuredStayDisplayPrice": {
			"primaryLine": {"accessibilityLabel": "€120 per night"},
			"secondaryLine": {"accessibilityLabel": "€840 total"}
		}
	}
}`

func TestNormalize(t *testing.T) {
	t.Parallel()
	l, err := Normalize(itemJSON(t, fullItem))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.ID != "53452264" {
		t.Fatalf("ID = %q", l.ID)
	}
	if l.Name != "Cosy loft near the canal" {
		t.Fatalf("Name = %q", l.Name)
	}
	if l.ImageURL != "https://img.example/1.jpg" {
		t.Fatalf("ImageURL = %q, want first contextual picture", l.ImageURL)
	}
	if l.Rating != "4.85 (120)" {
		t.Fatalf("Rating = %q, want localized rating", l.Rating)
	}
	if l.Price.Total != "€840 total" || l.Price.Nightly != "€120 per night" {
		t.Fatalf("Price = %+v", l.Price)
	}
	if l.Raw == nil {
		t.Fatal("Raw must carry the original item")
	}
}

func TestNormalizeRatingFallbacks(t *testing.T) {
	t.Parallel()
	item := itemJSON(t, fullItem)
	listing := item["listing"].(map[string]any)

	delete(listing, "avgRatingLocalized")
	l, err := Normalize(item)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.Rating != "4.85" {
		t.Fatalf("Rating = %q, want numeric fallback without mantissa noise", l.Rating)
	}

	delete(listing, "avgRating")
	l, err = Normalize(item)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.Rating != "" {
		t.Fatalf("Rating = %q, want absent (no synthesized fallback)", l.Rating)
	}
}

func TestNormalizeNoPicture(t *testing.T) {
	t.Parallel()
	item := itemJSON(t, fullItem)
	delete(item["listing"].(map[string]any), "contextualPictures")

	l, err := Normalize(item)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.ImageURL != "" {
		t.Fatalf("ImageURL = %q, want absent", l.ImageURL)
	}
}

func TestNormalizeMalformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(item map[string]any)
	}{
		{"no listing", func(m map[string]any) { delete(m, "listing") }},
		{"no id", func(m map[string]any) { delete(m["listing"].(map[string]any), "id") }},
		{"no name", func(m map[string]any) { delete(m["listing"].(map[string]any), "name") }},
		{"no pricing", func(m map[string]any) { delete(m, "pricingQuote") }},
		{"no price labels", func(m map[string]any) {
			m["pricingQuote"] = map[string]any{"structuredStayDisplayPrice": map[string]any{}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := itemJSON(t, fullItem)
			tt.mutate(item)
			if _, err := Normalize(item); !errors.Is(err, ErrMalformedItem) {
				t.Fatalf("err = %v, want ErrMalformedItem", err)
			}
		})
	}
}

func TestNormalizeNumericID(t *testing.T) {
	t.Parallel()
	item := itemJSON(t, fullItem)
	item["listing"].(map[string]any)["id"] = float64(53452264)

	l, err := Normalize(item)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if l.ID != "53452264" {
		t.Fatalf("ID = %q, want flat decimal rendering", l.ID)
	}
}
