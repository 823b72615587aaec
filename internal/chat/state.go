// Package chat holds the chat session store: the session collection, the
// current-session pointer, the global response configuration and UI flags.
//
// State is an immutable value. Transition functions build a new State from
// an old one without mutating it, and Store swaps the new value in and
// writes the persisted subset to durable storage.
package chat

import (
	"github.com/rcliao/sheria/internal/model"
)

// Title constants.
const (
	DefaultTitle  = "New Chat"
	UntitledTitle = "Untitled Chat"

	titleMaxRunes = 50
	titleEllipsis = "..."
)

// State is one snapshot of the chat store.
type State struct {
	Sessions         []model.Session  `json:"sessions"`
	CurrentSessionID string           `json:"currentSessionId,omitempty"`
	Config           model.ChatConfig `json:"config"`

	// UI flags, never persisted.
	IsLoading    bool   `json:"isLoading"`
	ShowSettings bool   `json:"showSettings"`
	SearchQuery  string `json:"searchQuery"`
}

// InitialState is the state of a fresh install.
func InitialState() State {
	return State{
		Sessions: []model.Session{},
		Config:   model.DefaultConfig(),
	}
}

// Clone returns a copy of st that shares no slices with it.
func (st State) Clone() State {
	out := st
	out.Sessions = make([]model.Session, len(st.Sessions))
	for i, s := range st.Sessions {
		out.Sessions[i] = s.Clone()
	}
	return out
}

func (st State) indexOf(sessionID string) int {
	for i := range st.Sessions {
		if st.Sessions[i].ID == sessionID {
			return i
		}
	}
	return -1
}
