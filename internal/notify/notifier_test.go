package notify

import (
	"context"
	"errors"
	"testing"

	"staywatch/internal/airbnb"
	"staywatch/internal/telegram"
	logx "staywatch/pkg/logx"
)

type sentCall struct {
	kind     string // "text" or "photo"
	chat     string
	photoURL string
	body     string
	btn      *telegram.Button
}

type fakeSender struct {
	calls []sentCall
	err   error
}

func (f *fakeSender) SendText(ctx context.Context, chat, html string, btn *telegram.Button) error {
	f.calls = append(f.calls, sentCall{kind: "text", chat: chat, body: html, btn: btn})
	return f.err
}

func (f *fakeSender) SendPhoto(ctx context.Context, chat, photoURL, caption string, btn *telegram.Button) error {
	f.calls = append(f.calls, sentCall{kind: "photo", chat: chat, photoURL: photoURL, body: caption, btn: btn})
	return f.err
}

func testListing(imageURL string) airbnb.Listing {
	return airbnb.Listing{
		ID:       "53452264",
		Name:     "Cosy loft",
		ImageURL: imageURL,
		Price:    airbnb.Price{Total: "€840 total", Nightly: "€120 per night"},
	}
}

func TestNotifyPhotoWhenImagePresent(t *testing.T) {
	t.Parallel()
	s := &fakeSender{}
	n := New(s, "https://www.airbnb.com", logx.Nop())

	if err := n.Notify(context.Background(), testListing("https://img.example/1.jpg"), testSub()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(s.calls) != 1 {
		t.Fatalf("calls = %d, want exactly one message", len(s.calls))
	}
	c := s.calls[0]
	if c.kind != "photo" || c.photoURL != "https://img.example/1.jpg" {
		t.Fatalf("call = %+v, want photo send", c)
	}
	if c.chat != "12345" {
		t.Fatalf("chat = %q", c.chat)
	}
	if c.btn == nil || c.btn.Text != "Open on Airbnb" {
		t.Fatalf("button = %+v", c.btn)
	}
}

func TestNotifyTextWhenNoImage(t *testing.T) {
	t.Parallel()
	s := &fakeSender{}
	n := New(s, "https://www.airbnb.com", logx.Nop())

	if err := n.Notify(context.Background(), testListing(""), testSub()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(s.calls) != 1 || s.calls[0].kind != "text" {
		t.Fatalf("calls = %+v, want one text send", s.calls)
	}
}

func TestNotifySameBodyForPhotoAndText(t *testing.T) {
	t.Parallel()
	s := &fakeSender{}
	n := New(s, "https://www.airbnb.com", logx.Nop())

	_ = n.Notify(context.Background(), testListing("https://img.example/1.jpg"), testSub())
	_ = n.Notify(context.Background(), testListing(""), testSub())

	if len(s.calls) != 2 || s.calls[0].body != s.calls[1].body {
		t.Fatal("caption and text body must be identical")
	}
}

func TestNotifyDeliveryFailure(t *testing.T) {
	t.Parallel()
	s := &fakeSender{err: errors.New("chat not found")}
	n := New(s, "https://www.airbnb.com", logx.Nop())

	err := n.Notify(context.Background(), testListing(""), testSub())
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("err = %v, want ErrDeliveryFailed", err)
	}
}

func TestNotifyButtonTargetsRoomURL(t *testing.T) {
	t.Parallel()
	s := &fakeSender{}
	n := New(s, "https://www.airbnb.com", logx.Nop())

	_ = n.Notify(context.Background(), testListing(""), testSub())
	want := RoomURL("https://www.airbnb.com", "53452264", testSub())
	if got := s.calls[0].btn.URL; got != want {
		t.Fatalf("button url = %q, want %q", got, want)
	}
}
