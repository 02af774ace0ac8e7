package transport

import "context"

type ChatTarget struct {
	ChatID   int64
	ThreadID int // telegram forum topic thread id (0 if none)
}

type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender delivers text to a chat. It is the only capability the bot needs
// from a chat platform.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}

// ErrorDescriber is an optional interface senders can implement to turn a
// platform error into an operator hint (e.g. "check TELEGRAM_TOKEN").
type ErrorDescriber interface {
	DescribeError(err error) string
}
