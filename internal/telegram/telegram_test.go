package telegram

import (
	"context"
	"testing"

	tele "gopkg.in/telebot.v4"

	logx "staywatch/pkg/logx"
)

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestNewOffline(t *testing.T) {
	t.Parallel()
	a, err := New(Config{Token: "123:abc", Offline: true}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.bot == nil {
		t.Fatal("bot not initialized")
	}
}

func TestSendHonorsCancelledContext(t *testing.T) {
	t.Parallel()
	a, err := New(Config{Token: "123:abc", Offline: true}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.SendText(ctx, "1", "hi", nil); err != context.Canceled {
		t.Fatalf("SendText err = %v, want context.Canceled", err)
	}
	if err := a.SendPhoto(ctx, "1", "https://img.example/1.jpg", "hi", nil); err != context.Canceled {
		t.Fatalf("SendPhoto err = %v, want context.Canceled", err)
	}
}

func TestChatRef(t *testing.T) {
	t.Parallel()
	tests := []string{"12345", "-1001234567890", "@channel"}
	for _, ref := range tests {
		if got := chatRef(ref).Recipient(); got != ref {
			t.Fatalf("Recipient() = %q, want %q", got, ref)
		}
	}
}

func TestSendOptions(t *testing.T) {
	t.Parallel()
	opt := sendOptions(&Button{Text: "Open", URL: "https://example.com"})
	if opt.ParseMode != tele.ModeHTML || !opt.DisableWebPagePreview {
		t.Fatalf("options = %+v", opt)
	}
	rows := opt.ReplyMarkup.InlineKeyboard
	if len(rows) != 1 || len(rows[0]) != 1 || rows[0][0].URL != "https://example.com" {
		t.Fatalf("keyboard = %+v", rows)
	}

	if sendOptions(nil).ReplyMarkup != nil {
		t.Fatal("no button must mean no keyboard")
	}
}
