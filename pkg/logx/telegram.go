package logx

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Sender is the subset of the chat transport the Telegram sink needs.
type Sender interface {
	SendLog(ctx context.Context, target Target, text string) error
}

// Target identifies the chat (and optional forum thread) log lines go to.
type Target struct {
	ChatID   int64
	ThreadID int
}

type telegramSink struct {
	minLevel zerolog.Level
	limiter  *rate.Limiter

	mu     sync.Mutex
	sender Sender
	target Target
	queue  chan string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newTelegramSink(cfg TelegramConfig) *telegramSink {
	rps := cfg.RatePerSec
	if rps < 1 {
		rps = 1
	}
	return &telegramSink{
		minLevel: parseLevel(cfg.MinLevel, zerolog.WarnLevel),
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
		queue:    make(chan string, 64),
	}
}

func (t *telegramSink) start(sender Sender, target Target) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil || sender == nil || target.ChatID == 0 {
		return
	}
	t.sender = sender
	t.target = target

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-t.queue:
				_ = sender.SendLog(ctx, target, msg)
			}
		}
	}()
}

func (t *telegramSink) stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()
	if cancel != nil {
		cancel()
		t.wg.Wait()
	}
}

func (t *telegramSink) Write(p []byte) (int, error) {
	return t.WriteLevel(zerolog.InfoLevel, p)
}

func (t *telegramSink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	t.mu.Lock()
	running := t.cancel != nil
	t.mu.Unlock()

	if !running || level < t.minLevel || !t.limiter.Allow() {
		return len(p), nil
	}
	msg := formatTelegramJSON(p)
	if msg == "" {
		return len(p), nil
	}
	// Never block core logging.
	select {
	case t.queue <- msg:
	default:
	}
	return len(p), nil
}

func formatTelegramJSON(p []byte) string {
	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(p))), &m); err != nil {
		return truncate(strings.TrimSpace(string(p)), 3500)
	}

	lvl, _ := m["level"].(string)
	if lvl == zerolog.LevelFatalValue {
		lvl = "critical"
	}
	msg, _ := m["message"].(string)

	var b strings.Builder
	if lvl != "" {
		b.WriteString("[")
		b.WriteString(strings.ToUpper(lvl))
		b.WriteString("] ")
	}
	b.WriteString(msg)

	keys := make([]string, 0, len(m))
	for k := range m {
		switch k {
		case "time", "level", "message":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n- ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(truncate(fmt.Sprint(m[k]), 600))
	}
	return truncate(b.String(), 3500)
}

func truncate(s string, maxN int) string {
	if maxN <= 0 || len(s) <= maxN {
		return s
	}
	if maxN < 10 {
		return s[:maxN]
	}
	return s[:maxN-3] + "..."
}
