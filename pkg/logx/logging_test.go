package logx

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCriticalDoesNotExitAndUsesFatalLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "INFO").With(String("comp", "test"))

	log.Critical("missing value", String("name", "PRACTICUM_TOKEN"))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if m["level"] != "fatal" {
		t.Fatalf("level = %v, want fatal", m["level"])
	}
	if m["name"] != "PRACTICUM_TOKEN" || m["comp"] != "test" {
		t.Fatalf("unexpected fields: %v", m)
	}
	if c, _ := m["caller"].(string); !strings.HasPrefix(c, "logging_test.go:") {
		t.Fatalf("caller = %q, want short caller", c)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")
	log.Info("dropped")
	log.Warn("kept")
	if strings.Contains(buf.String(), "dropped") {
		t.Fatalf("info line written at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn line missing: %q", buf.String())
	}
	if !log.Enabled(LevelError) || log.Enabled(LevelDebug) {
		t.Fatalf("Enabled() disagrees with configured level")
	}
}

func TestZeroLoggerIsNoop(t *testing.T) {
	var l Logger
	if !l.IsZero() {
		t.Fatalf("zero logger should report IsZero")
	}
	l.Error("nothing happens")
	Nop().Critical("still nothing")
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.log")
	if err := os.WriteFile(path, []byte(`{"message":"previous run"}`+"\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc, log := New(Config{Level: "DEBUG", File: FileConfig{Enabled: true, Path: path}})
	log.Debug("first")
	log.Info("second", Int("n", 2))
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var msgs []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line is not JSON: %q", sc.Text())
		}
		msgs = append(msgs, m["message"].(string))
	}
	want := []string{"previous run", "first", "second"}
	if strings.Join(msgs, ",") != strings.Join(want, ",") {
		t.Fatalf("messages = %v, want %v", msgs, want)
	}
}

type captureSender struct{ ch chan string }

func (c *captureSender) SendLog(_ context.Context, _ Target, text string) error {
	c.ch <- text
	return nil
}

func TestTelegramSinkRespectsMinLevel(t *testing.T) {
	svc, log := New(Config{
		Level:    "DEBUG",
		Telegram: TelegramConfig{Enabled: true, MinLevel: "ERROR", RatePerSec: 10},
	})
	defer svc.Close()

	sender := &captureSender{ch: make(chan string, 4)}
	svc.SetSender(sender, Target{ChatID: 42})

	log.Warn("not forwarded")
	log.Error("forwarded", String("kind", "RequestFailed"))

	select {
	case got := <-sender.ch:
		if !strings.HasPrefix(got, "[ERROR] forwarded") || !strings.Contains(got, "- kind=RequestFailed") {
			t.Fatalf("unexpected telegram text: %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error line was not forwarded")
	}
	select {
	case got := <-sender.ch:
		t.Fatalf("unexpected extra message: %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}
