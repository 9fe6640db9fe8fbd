package services

import (
	"sync"
	"time"
)

// spamWindow is the trailing interval over which message counts are evaluated
const spamWindow = 60 * time.Second

type windowKey struct {
	guildID int64
	userID  int64
}

// userWindow serializes prune-and-append sequences for a single user
type userWindow struct {
	mu     sync.Mutex
	events []time.Time
}

// SpamTracker keeps per (guild, user) sliding windows of message
// timestamps. State lives in process memory only and is lost on
// restart; spam detection is best-effort, not an audit log.
type SpamTracker struct {
	mu      sync.Mutex
	windows map[windowKey]*userWindow
}

// NewSpamTracker creates an empty spam tracker
func NewSpamTracker() *SpamTracker {
	return &SpamTracker{
		windows: make(map[windowKey]*userWindow),
	}
}

func (t *SpamTracker) window(guildID, userID int64) *userWindow {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := windowKey{guildID: guildID, userID: userID}
	w, ok := t.windows[key]
	if !ok {
		w = &userWindow{}
		t.windows[key] = w
	}
	return w
}

// RecordAndCheck records a message timestamp and reports whether the
// user should be muted. Entries older than the trailing window are
// pruned before the new event is appended. When the count exceeds
// maxMsgs for a non-privileged user the window is reset so a muted
// user starts fresh on unmute. Privileged users are tracked but never
// signalled for mute.
func (t *SpamTracker) RecordAndCheck(guildID, userID int64, ts time.Time, maxMsgs int, privileged bool) bool {
	w := t.window(guildID, userID)
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.events[:0]
	for _, ev := range w.events {
		if ts.Sub(ev) < spamWindow {
			kept = append(kept, ev)
		}
	}
	w.events = append(kept, ts)

	if privileged {
		return false
	}

	if len(w.events) > maxMsgs {
		w.events = w.events[:0]
		return true
	}
	return false
}

// WindowCount returns the number of events currently tracked for a user
func (t *SpamTracker) WindowCount(guildID, userID int64) int {
	w := t.window(guildID, userID)
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.events)
}
