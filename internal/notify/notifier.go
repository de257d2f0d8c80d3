// Package notify formats and delivers one Telegram message per new listing.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"staywatch/internal/airbnb"
	"staywatch/internal/store"
	"staywatch/internal/telegram"
	logx "staywatch/pkg/logx"
)

// ErrDeliveryFailed marks a rejected delivery (bad destination, transport
// error). Not retried here; the watcher aborts the rest of the batch.
var ErrDeliveryFailed = errors.New("notification delivery failed")

const buttonLabel = "Open on Airbnb"

// Sender is the pair of chat delivery primitives the notifier depends on.
type Sender interface {
	SendText(ctx context.Context, chat, html string, btn *telegram.Button) error
	SendPhoto(ctx context.Context, chat, photoURL, caption string, btn *telegram.Button) error
}

type Notifier struct {
	sender  Sender
	baseURL string
	log     logx.Logger
}

func New(sender Sender, baseURL string, log logx.Logger) *Notifier {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://www.airbnb.com"
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{sender: sender, baseURL: baseURL, log: log}
}

// Notify delivers exactly one message for the listing to the subscription's
// destination: a photo with caption when the listing has an image, plain text
// otherwise. Both carry one inline button opening the detail page.
func (n *Notifier) Notify(ctx context.Context, l airbnb.Listing, sub store.Subscription) error {
	roomURL := RoomURL(n.baseURL, l.ID, sub)
	body := Render(l, roomURL)
	btn := &telegram.Button{Text: buttonLabel, URL: roomURL}

	var err error
	if l.ImageURL != "" {
		err = n.sender.SendPhoto(ctx, sub.ChatID, l.ImageURL, body, btn)
	} else {
		err = n.sender.SendText(ctx, sub.ChatID, body, btn)
	}
	if err != nil {
		return fmt.Errorf("%w: listing %s to %s: %v", ErrDeliveryFailed, l.ID, sub.ChatID, err)
	}

	n.log.Debug("notification sent",
		logx.String("listing", l.ID),
		logx.String("chat", sub.ChatID),
		logx.Bool("photo", l.ImageURL != ""))
	return nil
}
