package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcliao/sheria/internal/model"
	"github.com/rcliao/sheria/internal/store"
)

// Store owns the chat state. Every mutator is synchronous and never fails:
// it computes the next State, swaps it in, and rewrites the durable blob.
// Lookups by an unknown session or message id are silent no-ops.
type Store struct {
	mu     sync.RWMutex
	state  State
	blobs  store.Store
	logger zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewStore creates a store holding InitialState. blobs may be nil, in which
// case nothing is persisted.
func NewStore(blobs store.Store, logger zerolog.Logger) *Store {
	return &Store{
		state:  InitialState(),
		blobs:  blobs,
		logger: logger,
		now:    time.Now,
		newID:  model.NewID,
	}
}

// Load replaces the in-memory state with the durable blob. A missing blob
// leaves the initial state; a corrupt blob is logged and ignored.
func (s *Store) Load(ctx context.Context) error {
	if s.blobs == nil {
		return nil
	}
	data, err := s.blobs.Load(ctx, store.ChatStateKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	st, report, err := DecodeState(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("discarding unreadable chat state")
		return nil
	}
	if report.Repaired() {
		s.logger.Warn().
			Int("bad_timestamps", report.BadTimestamps).
			Int("bad_configs", report.BadConfigs).
			Int("bad_roles", report.BadRoles).
			Msg("repaired chat state on load")
	}

	s.mu.Lock()
	st.IsLoading = s.state.IsLoading
	st.ShowSettings = s.state.ShowSettings
	st.SearchQuery = s.state.SearchQuery
	s.state = st
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// apply swaps in fn's result. persist is false for UI-only flags.
func (s *Store) apply(persist bool, fn func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	if persist {
		s.persistLocked()
	}
}

func (s *Store) persistLocked() {
	if s.blobs == nil {
		return
	}
	data, err := EncodeState(s.state)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode chat state")
		return
	}
	if err := s.blobs.Save(context.Background(), store.ChatStateKey, data); err != nil {
		s.logger.Warn().Err(err).Msg("persist chat state")
	}
}

// CreateSession starts a new session at the head of the collection, makes
// it current and returns its id.
func (s *Store) CreateSession() string {
	id := s.newID()
	now := s.now()
	s.apply(true, func(st State) State {
		return createSession(st, id, now)
	})
	s.logger.Debug().Str("session_id", id).Msg("session created")
	return id
}

// SetCurrent points the store at id. The id is not checked; an empty id
// clears the pointer.
func (s *Store) SetCurrent(id string) {
	s.apply(true, func(st State) State {
		return setCurrent(st, id)
	})
}

// AppendMessage adds msg to the end of a session. The first user message
// of a session also becomes its title.
func (s *Store) AppendMessage(sessionID string, msg model.Message) {
	now := s.now()
	s.apply(true, func(st State) State {
		next, ok := appendMessage(st, sessionID, msg, now)
		if !ok {
			s.logger.Debug().Str("session_id", sessionID).Msg("append to unknown session ignored")
		}
		return next
	})
}

// ClearSession empties a session's history but keeps the session.
func (s *Store) ClearSession(sessionID string) {
	now := s.now()
	s.apply(true, func(st State) State {
		next, _ := clearSession(st, sessionID, now)
		return next
	})
}

// DeleteSession removes a session. If it was current, the first remaining
// session becomes current, or none.
func (s *Store) DeleteSession(sessionID string) {
	s.apply(true, func(st State) State {
		next, _ := deleteSession(st, sessionID)
		return next
	})
}

// RenameSession sets a trimmed title, falling back to UntitledTitle.
func (s *Store) RenameSession(sessionID, title string) {
	now := s.now()
	s.apply(true, func(st State) State {
		next, _ := renameSession(st, sessionID, title, now)
		return next
	})
}

// UpdateSessionTitle sets title verbatim.
func (s *Store) UpdateSessionTitle(sessionID, title string) {
	now := s.now()
	s.apply(true, func(st State) State {
		next, _ := setSessionTitle(st, sessionID, title, now)
		return next
	})
}

// UpdateConfig merges patch into the global configuration. Sessions keep
// the configuration they were created with.
func (s *Store) UpdateConfig(patch model.ConfigPatch) {
	s.apply(true, func(st State) State {
		return updateConfig(st, patch)
	})
}

// ResetConfig restores the default global configuration.
func (s *Store) ResetConfig() {
	s.apply(true, resetConfig)
}

// ToggleSettings flips the settings panel flag.
func (s *Store) ToggleSettings() {
	s.apply(false, func(st State) State {
		st.ShowSettings = !st.ShowSettings
		return st
	})
}

// SetSearchQuery stores the session filter text.
func (s *Store) SetSearchQuery(query string) {
	s.apply(false, func(st State) State {
		st.SearchQuery = query
		return st
	})
}

// SetLoading records whether a completion is in flight.
func (s *Store) SetLoading(loading bool) {
	s.apply(false, func(st State) State {
		st.IsLoading = loading
		return st
	})
}

// AddAttachment appends att to a message.
func (s *Store) AddAttachment(sessionID, messageID string, att model.Attachment) {
	s.apply(true, func(st State) State {
		next, _ := addAttachment(st, sessionID, messageID, att)
		return next
	})
}

// RemoveAttachment drops an attachment from a message.
func (s *Store) RemoveAttachment(sessionID, messageID, attachmentID string) {
	s.apply(true, func(st State) State {
		next, _ := removeAttachment(st, sessionID, messageID, attachmentID)
		return next
	})
}

// FilteredSessions applies the stored search query.
func (s *Store) FilteredSessions() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilteredSessions(s.state.Sessions, s.state.SearchQuery)
}

// CurrentSession returns the session the pointer refers to, if any.
func (s *Store) CurrentSession() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CurrentSession(s.state.Sessions, s.state.CurrentSessionID)
}

// Session looks up a session by id.
func (s *Store) Session(id string) (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CurrentSession(s.state.Sessions, id)
}
