// Package systemd integrates the daemon with the service manager:
// readiness notification and watchdog keepalives. Every function is a
// no-op outside a systemd unit.
package systemd

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// NotifyReady tells systemd the service is up. Returns false when not
// running under systemd.
func NotifyReady() bool {
	sent, _ := daemon.SdNotify(false, daemon.SdNotifyReady)
	return sent
}

// NotifyStopping tells systemd a shutdown is in progress.
func NotifyStopping() bool {
	sent, _ := daemon.SdNotify(false, daemon.SdNotifyStopping)
	return sent
}

// RunWatchdog sends keepalives at half the interval configured in the
// unit file, blocking until the context is cancelled. Returns
// immediately when no watchdog is configured.
func RunWatchdog(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}
