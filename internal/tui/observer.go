package tui

import "github.com/mmcdole/marquee/internal/session"

// SessionObserver adapts session.Sync change notifications to a channel
// for Bubble Tea. Only the latest snapshot matters, so a pending one is
// replaced instead of blocking the notifier.
type SessionObserver struct {
	ch chan session.Snapshot
}

// NewSessionObserver creates an observer with a one-slot channel
func NewSessionObserver() *SessionObserver {
	return &SessionObserver{ch: make(chan session.Snapshot, 1)}
}

// OnChange sends the snapshot, replacing one the UI has not read yet
func (o *SessionObserver) OnChange(snap session.Snapshot) {
	for {
		select {
		case o.ch <- snap:
			return
		default:
		}
		select {
		case <-o.ch:
		default:
		}
	}
}

// Events is read by WaitForSessionCmd
func (o *SessionObserver) Events() <-chan session.Snapshot {
	return o.ch
}
