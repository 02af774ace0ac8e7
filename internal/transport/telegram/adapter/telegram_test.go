package adapter

import (
	"errors"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"

	logx "hwbot/pkg/logx"
)

func TestSplitTelegramTextShortPassthrough(t *testing.T) {
	got := splitTelegramText("hello", 10)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("split = %q, want single chunk", got)
	}
}

func TestSplitTelegramTextPrefersNewlines(t *testing.T) {
	text := strings.Repeat("a", 6) + "\n" + strings.Repeat("b", 6)
	got := splitTelegramText(text, 10)
	if len(got) != 2 {
		t.Fatalf("chunks = %d (%q), want 2", len(got), got)
	}
	if got[0] != "aaaaaa" || got[1] != "bbbbbb" {
		t.Fatalf("split = %q", got)
	}
}

func TestSplitTelegramTextCountsRunes(t *testing.T) {
	text := strings.Repeat("ж", 25)
	got := splitTelegramText(text, 10)
	if len(got) != 3 {
		t.Fatalf("chunks = %d, want 3", len(got))
	}
	for _, c := range got {
		if n := len([]rune(c)); n > 10 {
			t.Fatalf("chunk has %d runes, limit is 10", n)
		}
	}
	if strings.Join(got, "") != text {
		t.Fatalf("chunks lost data")
	}
}

func TestNewRejectsEmptyToken(t *testing.T) {
	if _, err := New(Config{Token: "  "}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestDescribeError(t *testing.T) {
	a := &Adapter{}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "unauthorized", err: tele.ErrUnauthorized, want: "invalid TELEGRAM_TOKEN"},
		{name: "chat not found", err: tele.ErrChatNotFound, want: "invalid TELEGRAM_CHAT_ID"},
		{name: "other", err: errors.New("dial tcp: timeout"), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.DescribeError(tt.err); got != tt.want {
				t.Fatalf("DescribeError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
