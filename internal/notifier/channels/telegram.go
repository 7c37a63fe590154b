package channels

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"checkinbot/internal/notifier"
	"checkinbot/internal/notifier/format"
	logx "checkinbot/pkg/logx"
)

// ChunkInterval spaces consecutive Telegram chunks.
const ChunkInterval = 500 * time.Millisecond

// chatRecipient lets chat ids like "-100123" or "@channel" pass through as-is.
type chatRecipient string

func (c chatRecipient) Recipient() string { return string(c) }

// Telegram sends HTML-formatted reports through the Bot API, splitting long
// reports into ordered chunks.
//
// Options: api_url (host or URL, default api.telegram.org), bot_token,
// chat_id, http_proxy.
type Telegram struct {
	session   *Session
	formatter format.Formatter
	interval  time.Duration
}

func NewTelegram(s *Session) *Telegram {
	return &Telegram{session: s, interval: ChunkInterval}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, cfg *notifier.Config, msg notifier.Message) error {
	sec := cfg.Section(t.Name())
	token, err := sec.Require("bot_token")
	if err != nil {
		return err
	}
	chat, err := sec.Require("chat_id")
	if err != nil {
		return err
	}
	client, err := t.session.Client(sec)
	if err != nil {
		return err
	}

	bot, err := tele.NewBot(tele.Settings{
		URL:     apiURL(sec.StringOr("api_url", "api.telegram.org")),
		Token:   token,
		Client:  client,
		Offline: true,
	})
	if err != nil {
		return fmt.Errorf("telegram bot: %w", err)
	}

	out, err := t.formatter.Format(msg.Status, msg.Text, format.KindTelegramHTML)
	if err != nil {
		return err
	}

	log := t.session.logger(t.Name())
	lim := rate.NewLimiter(rate.Every(t.interval), 1)
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
	for i, part := range out.Parts {
		if err := lim.Wait(ctx); err != nil {
			return err
		}
		if _, err := bot.Send(chatRecipient(chat), part, opts); err != nil {
			return fmt.Errorf("telegram chunk %d/%d: %w", i+1, len(out.Parts), err)
		}
	}
	if len(out.Parts) > 1 {
		log.Debug("telegram message sent in chunks", logx.Int("chunks", len(out.Parts)))
	}
	return nil
}

// apiURL accepts a bare host as well as a full base URL.
func apiURL(v string) string {
	v = strings.TrimRight(strings.TrimSpace(v), "/")
	if strings.Contains(v, "://") {
		return v
	}
	return "https://" + v
}
