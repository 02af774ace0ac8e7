package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwbot/internal/config"
	logx "hwbot/pkg/logx"
)

type botAPI struct {
	mu   sync.Mutex
	sent []map[string]any
	got  chan struct{}
}

func (b *botAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	if strings.HasSuffix(r.URL.Path, "/sendMessage") {
		var m map[string]any
		_ = json.Unmarshal(body, &m)
		b.mu.Lock()
		b.sent = append(b.sent, m)
		b.mu.Unlock()
		select {
		case b.got <- struct{}{}:
		default:
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
}

func testConfig(t *testing.T, apiURL, botURL string) *config.Config {
	t.Helper()
	env := map[string]string{
		config.EnvPracticumToken: "p-token",
		config.EnvTelegramToken:  "123:abc",
		config.EnvTelegramChatID: "42",
	}
	cfg, err := config.Load(config.LoadOptions{LookupEnv: func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}})
	require.NoError(t, err)
	cfg.Practicum.Endpoint = apiURL
	cfg.Telegram.APIURL = botURL
	cfg.Notifier.RatePerSec = 100
	cfg.Logging.File.Path = filepath.Join(t.TempDir(), "main.log")
	return cfg
}

func TestAppDeliversStatusChange(t *testing.T) {
	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"homeworks":[{"homework_name":"hw1","status":"approved"}],"current_date":1000}`))
	}))
	defer api.Close()

	bot := &botAPI{got: make(chan struct{}, 1)}
	tg := httptest.NewServer(bot)
	defer tg.Close()

	a, err := New(testConfig(t, api.URL, tg.URL), nil, logx.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case <-bot.got:
	case <-time.After(5 * time.Second):
		t.Fatal("no message reached the bot API")
	}
	cancel()
	require.NoError(t, <-done)

	bot.mu.Lock()
	defer bot.mu.Unlock()
	require.Len(t, bot.sent, 1)
	assert.Equal(t, "OAuth p-token", gotAuth)
	assert.Contains(t, bot.sent[0]["text"], "hw1")
	assert.Contains(t, bot.sent[0]["text"], "ревьюеру всё понравилось")
}

func TestNewRejectsMissingCredentials(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1", "http://127.0.0.1:1")
	cfg.Telegram.Token = ""

	_, err := New(cfg, nil, logx.Nop())
	var mv *config.MissingValueError
	require.ErrorAs(t, err, &mv)
	assert.Equal(t, config.EnvTelegramToken, mv.Name)
}

func TestNewRejectsBadInterval(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1", "http://127.0.0.1:1")
	cfg.Poll.Interval = "whenever"

	_, err := New(cfg, nil, logx.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll.interval")
}
