package debug

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// SentinelFileName is the marker file the tracker touches under
// <logRoot>/host.
const SentinelFileName = "debug_sentinel"

// DefaultWindow is how long debug mode stays active after the last
// notification.
const DefaultWindow = 15 * time.Minute

// sentinelContent is fixed so out-of-process tooling can recognize the
// marker.
const sentinelContent = "This is a system managed marker file used to track when the host is in debug mode."

// Tracker maintains the decaying debug-mode signal for one host. Debug
// mode is active for a fixed window after the most recent notification
// and lapses silently once the window passes; there is no explicit
// deactivation.
type Tracker struct {
	sentinelPath string
	window       time.Duration

	// lastNotify holds the Unix nanoseconds of the most recent
	// notification; zero means none was ever observed.
	lastNotify atomic.Int64

	now func() time.Time
}

// NewTracker creates a tracker for the sentinel at sentinelPath. An
// existing sentinel seeds the last-notification time from its
// modification time, so an active window survives a host restart.
func NewTracker(sentinelPath string) *Tracker {
	t := &Tracker{
		sentinelPath: sentinelPath,
		window:       DefaultWindow,
		now:          time.Now,
	}
	if info, err := os.Stat(sentinelPath); err == nil {
		t.lastNotify.Store(info.ModTime().UnixNano())
	}
	return t
}

// SentinelPath returns the path of the sentinel file.
func (t *Tracker) SentinelPath() string {
	return t.sentinelPath
}

// InDebugMode reports whether the host is inside the debug window.
func (t *Tracker) InDebugMode() bool {
	last := t.lastNotify.Load()
	if last == 0 {
		return false
	}
	return t.now().Sub(time.Unix(0, last)) < t.window
}

// LastNotification returns the time of the most recent debug
// notification, or the zero time when none was observed.
func (t *Tracker) LastNotification() time.Time {
	last := t.lastNotify.Load()
	if last == 0 {
		return time.Time{}
	}
	return time.Unix(0, last)
}

// NotifyDebug records a debug notification and touches the sentinel so
// other host instances observe the transition. The in-memory state is
// updated first; sentinel I/O failures are swallowed and the next
// notification simply retries the touch.
func (t *Tracker) NotifyDebug() {
	t.lastNotify.Store(t.now().UnixNano())

	if err := os.MkdirAll(filepath.Dir(t.sentinelPath), 0755); err != nil {
		return
	}
	_ = os.WriteFile(t.sentinelPath, []byte(sentinelContent), 0644)
}

// HandleSentinelChange records a debug notification observed through
// the sentinel file watcher, without re-touching the file. Re-writing
// here would ping-pong touches between instances watching the same
// sentinel.
func (t *Tracker) HandleSentinelChange() {
	t.lastNotify.Store(t.now().UnixNano())
}
