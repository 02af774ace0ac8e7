package notifier

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kit "hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type fakeSender struct {
	err  error
	hint string
	sent []string
	to   []kit.ChatTarget
}

func (f *fakeSender) SendText(_ context.Context, to kit.ChatTarget, text string, _ *kit.SendOptions) (kit.MessageRef, error) {
	f.to = append(f.to, to)
	if f.err != nil {
		return kit.MessageRef{}, f.err
	}
	f.sent = append(f.sent, text)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(f.sent)}, nil
}

func (f *fakeSender) DescribeError(error) string { return f.hint }

func TestDeliverSendsToConfiguredTarget(t *testing.T) {
	s := &fakeSender{}
	n := New(Config{Target: kit.ChatTarget{ChatID: 77, ThreadID: 3}, RatePerSec: 100}, s, logx.Nop())

	n.Deliver(context.Background(), "hello")
	n.Deliver(context.Background(), "again")

	assert.Equal(t, []string{"hello", "again"}, s.sent)
	require.Len(t, s.to, 2)
	assert.Equal(t, kit.ChatTarget{ChatID: 77, ThreadID: 3}, s.to[0])
}

func TestDeliverAbsorbsFailure(t *testing.T) {
	var buf bytes.Buffer
	s := &fakeSender{err: errors.New("telegram: Unauthorized (401)"), hint: "invalid TELEGRAM_TOKEN"}
	n := New(Config{Target: kit.ChatTarget{ChatID: 1}, RatePerSec: 100}, s, logx.NewWriter(&buf, "DEBUG"))

	assert.NotPanics(t, func() { n.Deliver(context.Background(), "hello") })
	assert.Len(t, s.to, 1)
	assert.Empty(t, s.sent)
	assert.Contains(t, buf.String(), `"kind":"DeliveryFailed"`)
	assert.Contains(t, buf.String(), `"hint":"invalid TELEGRAM_TOKEN"`)
}

func TestDeliverCanceledContextSkipsSend(t *testing.T) {
	s := &fakeSender{}
	n := New(Config{Target: kit.ChatTarget{ChatID: 1}, RatePerSec: 1}, s, logx.Nop())

	// Drain the single burst token so the next call has to wait.
	n.Deliver(context.Background(), "first")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	n.Deliver(ctx, "second")

	assert.Equal(t, []string{"first"}, s.sent)
}
