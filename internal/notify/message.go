package notify

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"staywatch/internal/airbnb"
	"staywatch/internal/store"
)

// noRatingFallback is the display placeholder for listings without a rating.
const noRatingFallback = "No rating"

// RoomURL builds the listing's detail-page link, carrying the subscription's
// currency, stay dates and guest count so the page opens pre-configured.
func RoomURL(baseURL, listingID string, sub store.Subscription) string {
	q := url.Values{}
	q.Set("currency", sub.Currency)
	q.Set("check_in", sub.Checkin())
	q.Set("check_out", sub.Checkout())
	q.Set("adults", sub.Adults())
	return fmt.Sprintf("%s/rooms/%s?%s",
		strings.TrimRight(baseURL, "/"), url.PathEscape(listingID), q.Encode())
}

// Render produces the HTML message body for one listing:
// bold linked title, price line (total + nightly), rating line with a
// fallback placeholder, and the raw id for operator traceability.
func Render(l airbnb.Listing, roomURL string) string {
	rating := l.Rating
	if strings.TrimSpace(rating) == "" {
		rating = noRatingFallback
	}

	lines := []string{
		fmt.Sprintf(`<b><a href="%s">%s</a></b>`, esc(roomURL), esc(l.Name)),
		"",
		fmt.Sprintf("\U0001F4B0 <b>%s</b> (%s)", esc(l.Price.Total), esc(l.Price.Nightly)),
		fmt.Sprintf("⭐️ %s", esc(rating)),
		"",
		"ID: " + esc(l.ID),
	}
	return strings.Join(lines, "\n")
}

// esc escapes text for Telegram HTML parse mode. html.EscapeString also
// escapes quotes, so it is safe in attribute position.
func esc(s string) string { return html.EscapeString(s) }
