// Package auth holds the authentication store: the signed-in identity and
// its bearer and refresh tokens.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcliao/sheria/internal/api"
	"github.com/rcliao/sheria/internal/model"
	"github.com/rcliao/sheria/internal/store"
)

// Authenticator is the remote collaborator that checks credentials.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, firstName, lastName, email, password string) (*api.AuthResponse, error)
}

// State is one snapshot of the auth store.
type State struct {
	User            *model.User `json:"user"`
	AccessToken     string      `json:"accessToken,omitempty"`
	RefreshToken    string      `json:"refreshToken,omitempty"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	IsLoading       bool        `json:"isLoading"`
	Error           string      `json:"error,omitempty"`
}

// persistedState is the durable subset. Passwords never reach it.
type persistedState struct {
	User            *wireUser `json:"user"`
	AccessToken     *string   `json:"accessToken"`
	RefreshToken    *string   `json:"refreshToken"`
	IsAuthenticated bool      `json:"isAuthenticated"`
}

// wireUser carries CreatedAt as text so a bad date cannot fail the decode.
type wireUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	IsVerified bool   `json:"isVerified"`
	Role       string `json:"role"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

func encodeUser(u *model.User) *wireUser {
	if u == nil {
		return nil
	}
	w := &wireUser{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsVerified: u.IsVerified,
		Role:       u.Role,
	}
	if u.CreatedAt != nil {
		w.CreatedAt = model.FormatTime(*u.CreatedAt)
	}
	return w
}

// decodeUser maps w back to a User. An unparseable CreatedAt becomes the
// zero time and badDate is set.
func decodeUser(w *wireUser) (u *model.User, badDate bool) {
	if w == nil {
		return nil, false
	}
	u = &model.User{
		ID:         w.ID,
		Email:      w.Email,
		Name:       w.Name,
		FirstName:  w.FirstName,
		LastName:   w.LastName,
		IsVerified: w.IsVerified,
		Role:       w.Role,
	}
	if w.CreatedAt != "" {
		t, ok := model.ParseTime(w.CreatedAt)
		u.CreatedAt = &t
		badDate = !ok
	}
	return u, badDate
}

// Store owns the auth state. Overlapping Login/Register calls are not
// serialized: whichever finishes last decides the final state.
type Store struct {
	mu     sync.RWMutex
	state  State
	auth   Authenticator
	blobs  store.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewStore creates a signed-out store. blobs may be nil.
func NewStore(auth Authenticator, blobs store.Store, logger zerolog.Logger) *Store {
	return &Store{
		auth:   auth,
		blobs:  blobs,
		logger: logger,
		now:    time.Now,
	}
}

// Load restores the persisted identity and tokens.
func (s *Store) Load(ctx context.Context) error {
	if s.blobs == nil {
		return nil
	}
	data, err := s.blobs.Load(ctx, store.AuthStateKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var p persistedState
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn().Err(err).Msg("discarding unreadable auth state")
		return nil
	}

	user, badDate := decodeUser(p.User)
	if badDate {
		s.logger.Warn().Str("created_at", p.User.CreatedAt).Msg("repaired unreadable user timestamp")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = user
	s.state.AccessToken = deref(p.AccessToken)
	s.state.RefreshToken = deref(p.RefreshToken)
	s.state.IsAuthenticated = p.IsAuthenticated
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// AccessToken returns the current bearer token, or "".
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// RefreshToken returns the current refresh token, or "".
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

func (s *Store) apply(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	fn(&next)
	s.state = next
	s.persistLocked()
}

func (s *Store) persistLocked() {
	if s.blobs == nil {
		return
	}
	data, err := json.Marshal(persistedState{
		User:            encodeUser(s.state.User),
		AccessToken:     optional(s.state.AccessToken),
		RefreshToken:    optional(s.state.RefreshToken),
		IsAuthenticated: s.state.IsAuthenticated,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("encode auth state")
		return
	}
	if err := s.blobs.Save(context.Background(), store.AuthStateKey, data); err != nil {
		s.logger.Warn().Err(err).Msg("persist auth state")
	}
}

// Login signs in with email and password. On failure the identity is
// cleared, Error holds the failure message, and the error is returned.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.begin()
	resp, err := s.auth.Login(ctx, email, password)
	return s.finish(resp, err, "Login failed")
}

// Register creates an account from a single display name and signs in.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	first, last := SplitName(name)
	s.begin()
	resp, err := s.auth.Register(ctx, first, last, email, password)
	return s.finish(resp, err, "Registration failed")
}

func (s *Store) begin() {
	s.apply(func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})
}

func (s *Store) finish(resp *api.AuthResponse, err error, fallback string) error {
	if err == nil && resp == nil {
		err = errors.New(fallback)
	}
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = fallback
		}
		s.apply(func(st *State) {
			*st = State{Error: msg}
		})
		s.logger.Debug().Err(err).Msg("authentication failed")
		return err
	}

	user := resp.User(s.now())
	s.apply(func(st *State) {
		*st = State{
			User:            &user,
			AccessToken:     resp.Access,
			RefreshToken:    resp.Refresh,
			IsAuthenticated: true,
		}
	})
	s.logger.Info().Str("user_id", user.ID).Msg("signed in")
	return nil
}

// Logout clears identity, tokens, loading and error. It never calls the
// network.
func (s *Store) Logout() {
	s.apply(func(st *State) {
		*st = State{}
	})
}

// Clear drops the session after the server rejected the token. Same effect
// as Logout.
func (s *Store) Clear() {
	s.Logout()
}

// SetAccessToken stores a refreshed access token.
func (s *Store) SetAccessToken(token string) {
	s.apply(func(st *State) {
		st.AccessToken = token
	})
}

// SetLoading sets the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.apply(func(st *State) {
		st.IsLoading = loading
	})
}

// SetError records a human-readable error.
func (s *Store) SetError(msg string) {
	s.apply(func(st *State) {
		st.Error = msg
	})
}

// ClearError removes the recorded error.
func (s *Store) ClearError() {
	s.SetError("")
}

// UpdateUser merges patch into the signed-in user. No-op when signed out.
func (s *Store) UpdateUser(patch model.UserPatch) {
	s.apply(func(st *State) {
		if st.User == nil {
			return
		}
		u := patch.Apply(*st.User)
		st.User = &u
	})
}

// SplitName splits a display name into its first whitespace-delimited
// token and the remainder.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
