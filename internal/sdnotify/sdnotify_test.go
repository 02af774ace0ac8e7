package sdnotify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "hwbot/pkg/logx"
)

type recorder struct {
	mu     sync.Mutex
	states []string
}

func (r *recorder) notify(state string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	return true, nil
}

func (r *recorder) count(state string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.states {
		if s == state {
			n++
		}
	}
	return n
}

func TestWatchdogDisabledIsNoop(t *testing.T) {
	rec := &recorder{}
	n := &Notifier{log: logx.Nop(), notify: rec.notify}
	n.Ready()
	n.Watchdog()
	n.Stopping()
	if got := rec.count(daemon.SdNotifyWatchdog); got != 0 {
		t.Fatalf("watchdog pings = %d, want 0", got)
	}
	if rec.count(daemon.SdNotifyReady) != 1 || rec.count(daemon.SdNotifyStopping) != 1 {
		t.Fatalf("unexpected states: %v", rec.states)
	}
}

func TestSleepPingsWatchdogInSlices(t *testing.T) {
	rec := &recorder{}
	n := &Notifier{log: logx.Nop(), notify: rec.notify, watchdog: 40 * time.Millisecond}

	start := time.Now()
	if err := n.Sleep(context.Background(), 100*time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if el := time.Since(start); el < 100*time.Millisecond {
		t.Fatalf("Sleep returned after %v, want >= 100ms", el)
	}
	if got := rec.count(daemon.SdNotifyWatchdog); got < 4 {
		t.Fatalf("watchdog pings = %d, want >= 4", got)
	}
}

func TestSleepStopsOnCancel(t *testing.T) {
	n := &Notifier{log: logx.Nop(), notify: (&recorder{}).notify}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep error = %v, want context.Canceled", err)
	}
}
