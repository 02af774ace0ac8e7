// Package sdnotify reports service state to systemd (Type=notify units).
// Outside systemd every call is a no-op.
package sdnotify

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "hwbot/pkg/logx"
)

type Notifier struct {
	log      logx.Logger
	watchdog time.Duration
	notify   func(state string) (bool, error)
}

func New(log logx.Logger) *Notifier {
	if log.IsZero() {
		log = logx.Nop()
	}
	n := &Notifier{
		log:    log,
		notify: func(state string) (bool, error) { return daemon.SdNotify(false, state) },
	}
	if d, err := daemon.SdWatchdogEnabled(false); err != nil {
		log.Warn("systemd watchdog config invalid", logx.Err(err))
	} else if d > 0 {
		n.watchdog = d
		log.Info("systemd watchdog enabled", logx.Duration("interval", d))
	}
	return n
}

func (n *Notifier) send(state string) {
	if ok, err := n.notify(state); err != nil {
		n.log.Debug("sd_notify failed", logx.String("state", state), logx.Err(err))
	} else if ok {
		n.log.Trace("sd_notify sent", logx.String("state", state))
	}
}

func (n *Notifier) Ready()    { n.send(daemon.SdNotifyReady) }
func (n *Notifier) Stopping() { n.send(daemon.SdNotifyStopping) }

// Watchdog pings the systemd watchdog. It is a no-op when the unit has no
// WatchdogSec.
func (n *Notifier) Watchdog() {
	if n.watchdog > 0 {
		n.send(daemon.SdNotifyWatchdog)
	}
}

// Sleep blocks for d or until ctx is done. When the watchdog is enabled the
// wait is split into slices of half the watchdog interval, pinging between
// them, so a long poll interval does not trip the watchdog.
func (n *Notifier) Sleep(ctx context.Context, d time.Duration) error {
	slice := d
	if n.watchdog > 0 && n.watchdog/2 < slice {
		slice = n.watchdog / 2
	}
	deadline := time.Now().Add(d)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return nil
		}
		if left < slice {
			slice = left
		}
		t := time.NewTimer(slice)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		n.Watchdog()
	}
}
