package tui

import (
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/session"
)

// Message types for the TUI. Results of catalog commands carry the page
// sequence number current when the command was issued.

// ErrMsg represents an error with no more specific home
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// SessionStartedMsg signals that the initial session query resolved
type SessionStartedMsg struct {
	Err error
}

// SessionChangedMsg carries a session snapshot from the observer
type SessionChangedMsg struct {
	Snapshot session.Snapshot
}

// SignInResultMsg reports the outcome of a sign-in attempt
type SignInResultMsg struct {
	Seq uint64
	Err error
}

// SignOutResultMsg reports the outcome of a sign-out attempt
type SignOutResultMsg struct {
	Err error
}

// CatalogLoadedMsg signals that the item list was fetched (or failed)
type CatalogLoadedMsg struct {
	Seq   uint64
	Items []domain.Item
	Err   error
}

// ItemLoadedMsg carries the item shown by the detail page
type ItemLoadedMsg struct {
	Seq  uint64
	ID   string
	Item *domain.Item
	Err  error
}

// ItemSavedMsg reports a create or update
type ItemSavedMsg struct {
	Seq     uint64
	Item    *domain.Item
	Created bool
	Err     error
}

// ItemDeletedMsg reports a delete
type ItemDeletedMsg struct {
	Seq   uint64
	ID    string
	Title string
	Err   error
}

// PlaybackStartedMsg signals that the player was launched
type PlaybackStartedMsg struct {
	Title string
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct {
	ID int
}
