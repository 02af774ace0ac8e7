// Package notifier delivers bot messages to the configured chat.
//
// Delivery is best-effort: failures are logged as DeliveryFailed and never
// returned, so a broken chat channel cannot stop the poll loop.
package notifier

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"hwbot/internal/homework"
	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type Config struct {
	Target kit.ChatTarget
	// RatePerSec paces consecutive sends (token bucket, burst = rate).
	RatePerSec int
	// SendTimeout bounds a single send.
	SendTimeout time.Duration
}

type Notifier struct {
	cfg     Config
	sender  kit.Sender
	log     logx.Logger
	limiter *rate.Limiter
}

func New(cfg Config, sender kit.Sender, log logx.Logger) *Notifier {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 3
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{
		cfg:     cfg,
		sender:  sender,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// Deliver sends text to the configured chat.
func (n *Notifier) Deliver(ctx context.Context, text string) {
	if err := n.limiter.Wait(ctx); err != nil {
		n.log.Warn("delivery skipped", logx.String("kind", string(homework.KindDeliveryFailed)), logx.Err(err))
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.SendTimeout)
	defer cancel()

	ref, err := n.sender.SendText(sendCtx, n.cfg.Target, text, &kit.SendOptions{DisablePreview: true})
	if err != nil {
		fields := []logx.Field{
			logx.String("kind", string(homework.KindDeliveryFailed)),
			logx.Int64("chat_id", n.cfg.Target.ChatID),
			logx.Err(err),
		}
		if d, ok := n.sender.(kit.ErrorDescriber); ok {
			if hint := d.DescribeError(err); hint != "" {
				fields = append(fields, logx.String("hint", hint))
			}
		}
		n.log.Error("failed to send message to chat", fields...)
		return
	}
	n.log.Debug("message sent", logx.Int64("chat_id", ref.ChatID), logx.Int("message_id", ref.MessageID))
}
