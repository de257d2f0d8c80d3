// Package telegram adapts the chat delivery API. The bot only sends; there
// is no update polling and no command surface.
package telegram

import (
	"context"
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"

	logx "staywatch/pkg/logx"
)

type Config struct {
	Token string

	// Offline skips the token check on startup (used by tests).
	Offline bool
}

// Button is a single inline URL button attached under a message.
type Button struct {
	Text string
	URL  string
}

type Adapter struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		Offline: cfg.Offline,
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{cfg: cfg, log: log, bot: b}, nil
}

// SendText delivers an HTML-formatted text message.
func (a *Adapter) SendText(ctx context.Context, chat, html string, btn *Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := a.bot.Send(chatRef(chat), html, sendOptions(btn))
	return err
}

// SendPhoto delivers an image by URL with an HTML-formatted caption.
func (a *Adapter) SendPhoto(ctx context.Context, chat, photoURL, caption string, btn *Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	photo := &tele.Photo{File: tele.FromURL(photoURL), Caption: caption}
	_, err := a.bot.Send(chatRef(chat), photo, sendOptions(btn))
	return err
}

func sendOptions(btn *Button) *tele.SendOptions {
	opt := &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	}
	if btn != nil {
		opt.ReplyMarkup = &tele.ReplyMarkup{
			InlineKeyboard: [][]tele.InlineButton{{{Text: btn.Text, URL: btn.URL}}},
		}
	}
	return opt
}

// chatRef addresses a chat by whatever reference the subscription carries:
// a numeric id ("-100123...") or a public handle ("@channel"). Telegram's
// send methods accept both verbatim.
type chatRef string

func (r chatRef) Recipient() string { return string(r) }
