package adapter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type Config struct {
	Token string
	// URL overrides the Bot API base URL (tests, local Bot API servers).
	URL string
	// Timeout bounds a single Bot API request.
	Timeout time.Duration
}

// Adapter sends messages through the Telegram Bot API. It never polls for
// updates; the bot only talks, it does not listen.
type Adapter struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		URL:    cfg.URL,
		Token:  cfg.Token,
		Client: &http.Client{Timeout: timeout},
		// Skip getMe at startup: a Telegram outage must not stop the poll loop
		// from starting. Bad tokens surface as delivery failures instead.
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Adapter{cfg: cfg, log: log, bot: b}, nil
}

const telegramTextLimit = 4000

// splitTelegramText splits long messages into chunks that are safe to send to Telegram.
// It prefers newline boundaries near the end of each window.
func splitTelegramText(s string, limit int) []string {
	if limit <= 0 {
		limit = telegramTextLimit
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return []string{s}
	}

	out := make([]string, 0, (len(rs)+limit-1)/limit)
	start := 0
	for start < len(rs) {
		end := start + limit
		if end > len(rs) {
			end = len(rs)
		}
		if end < len(rs) {
			for i := end - 1; i > start; i-- {
				// Avoid extremely small chunks.
				if rs[i] == '\n' && i-start >= limit/3 {
					end = i + 1
					break
				}
			}
		}

		out = append(out, strings.TrimRight(string(rs[start:end]), "\n"))

		start = end
		for start < len(rs) && rs[start] == '\n' {
			start++
		}
	}
	return out
}

func (a *Adapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	chat := &tele.Chat{ID: to.ChatID}

	var first kit.MessageRef
	for i, chunk := range splitTelegramText(text, telegramTextLimit) {
		if err := ctx.Err(); err != nil {
			return first, err
		}
		msg, err := a.bot.Send(chat, chunk, &tele.SendOptions{
			ParseMode:             opt.ParseMode,
			DisableWebPagePreview: opt.DisablePreview,
			ThreadID:              to.ThreadID,
		})
		if err != nil {
			return first, err
		}
		if i == 0 {
			first = kit.MessageRef{ChatID: to.ChatID, ThreadID: to.ThreadID, MessageID: msg.ID}
		}
	}
	return first, nil
}

// SendLog lets the adapter act as the logx Telegram sink.
func (a *Adapter) SendLog(ctx context.Context, target logx.Target, text string) error {
	_, err := a.SendText(ctx, kit.ChatTarget{ChatID: target.ChatID, ThreadID: target.ThreadID}, text,
		&kit.SendOptions{DisablePreview: true})
	return err
}

// DescribeError maps well-known Bot API failures to an operator hint.
func (a *Adapter) DescribeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, tele.ErrUnauthorized):
		return "invalid TELEGRAM_TOKEN"
	case errors.Is(err, tele.ErrChatNotFound):
		return "invalid TELEGRAM_CHAT_ID"
	}
	var te *tele.Error
	if errors.As(err, &te) {
		switch te.Code {
		case http.StatusUnauthorized:
			return "invalid TELEGRAM_TOKEN"
		case http.StatusBadRequest:
			return "bad request, check TELEGRAM_CHAT_ID"
		}
	}
	return ""
}
