package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/sheria/internal/api"
	"github.com/rcliao/sheria/internal/model"
	"github.com/rcliao/sheria/internal/store"
)

type fakeAuth struct {
	resp *api.AuthResponse
	err  error

	gotFirst, gotLast, gotEmail, gotPassword string
	loadingDuringCall                        bool
	store                                    *Store
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*api.AuthResponse, error) {
	f.gotEmail, f.gotPassword = email, password
	if f.store != nil {
		f.loadingDuringCall = f.store.Snapshot().IsLoading
	}
	return f.resp, f.err
}

func (f *fakeAuth) Register(_ context.Context, first, last, email, password string) (*api.AuthResponse, error) {
	f.gotFirst, f.gotLast = first, last
	return f.Login(context.Background(), email, password)
}

func okResponse() *api.AuthResponse {
	return &api.AuthResponse{
		Access: "acc", Refresh: "ref", ID: "u1", Email: "amina@example.com",
		FirstName: "Amina", LastName: "Odhiambo", IsVerified: true, UserRole: "advocate",
	}
}

func newTestStore(t *testing.T, fa *fakeAuth) (*Store, *store.MemoryStore) {
	t.Helper()
	blobs := store.NewMemoryStore()
	s := NewStore(fa, blobs, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	fa.store = s
	return s, blobs
}

func TestLoginSuccess(t *testing.T) {
	fa := &fakeAuth{resp: okResponse()}
	s, blobs := newTestStore(t, fa)

	require.NoError(t, s.Login(context.Background(), "amina@example.com", "pw"))
	assert.True(t, fa.loadingDuringCall)

	st := s.Snapshot()
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.Error)
	assert.Equal(t, "acc", st.AccessToken)
	assert.Equal(t, "ref", st.RefreshToken)
	require.NotNil(t, st.User)
	assert.Equal(t, "Amina Odhiambo", st.User.Name)
	assert.Equal(t, "acc", s.AccessToken())

	data, err := blobs.Load(context.Background(), store.AuthStateKey)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "pw")
	assert.NotContains(t, string(data), "isLoading")

	var persisted map[string]any
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "acc", persisted["accessToken"])
	assert.Equal(t, true, persisted["isAuthenticated"])
}

func TestLoginFailureClearsState(t *testing.T) {
	fa := &fakeAuth{resp: okResponse()}
	s, _ := newTestStore(t, fa)
	require.NoError(t, s.Login(context.Background(), "a", "b"))

	fa.resp, fa.err = nil, &api.Error{Status: 400, Message: "Invalid credentials"}
	err := s.Login(context.Background(), "a", "wrong")
	require.Error(t, err)

	var apiErr *api.Error
	assert.True(t, errors.As(err, &apiErr))

	st := s.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.False(t, st.IsLoading)
	assert.Nil(t, st.User)
	assert.Empty(t, st.AccessToken)
	assert.Empty(t, st.RefreshToken)
	assert.Equal(t, "Invalid credentials", st.Error)
}

func TestLoginNetworkFailureMessage(t *testing.T) {
	fa := &fakeAuth{err: api.ErrNetwork}
	s, _ := newTestStore(t, fa)

	require.ErrorIs(t, s.Login(context.Background(), "a", "b"), api.ErrNetwork)
	assert.Equal(t, api.ErrNetwork.Error(), s.Snapshot().Error)
}

func TestLoginEmptyErrorMessageFallsBack(t *testing.T) {
	fa := &fakeAuth{err: errors.New("")}
	s, _ := newTestStore(t, fa)
	s.Login(context.Background(), "a", "b")
	assert.Equal(t, "Login failed", s.Snapshot().Error)
}

func TestRegisterSplitsName(t *testing.T) {
	fa := &fakeAuth{resp: okResponse()}
	s, _ := newTestStore(t, fa)

	require.NoError(t, s.Register(context.Background(), "  Jane  Wanjiru Mwangi ", "j@w.ke", "pw"))
	assert.Equal(t, "Jane", fa.gotFirst)
	assert.Equal(t, "Wanjiru Mwangi", fa.gotLast)
	assert.True(t, s.Snapshot().IsAuthenticated)
}

func TestRegisterFailure(t *testing.T) {
	fa := &fakeAuth{err: errors.New("Already registered., Too short.")}
	s, _ := newTestStore(t, fa)

	require.Error(t, s.Register(context.Background(), "Jane", "j@w.ke", "pw"))
	st := s.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Equal(t, "Already registered., Too short.", st.Error)
}

func TestSplitName(t *testing.T) {
	tests := []struct{ in, first, last string }{
		{"Amina", "Amina", ""},
		{"Amina Odhiambo", "Amina", "Odhiambo"},
		{"Jane Wanjiru Mwangi", "Jane", "Wanjiru Mwangi"},
		{"   ", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	fa := &fakeAuth{resp: okResponse()}
	s, blobs := newTestStore(t, fa)
	require.NoError(t, s.Login(context.Background(), "a", "b"))
	s.SetError("stale")

	s.Logout()
	assert.Equal(t, State{}, s.Snapshot())

	data, err := blobs.Load(context.Background(), store.AuthStateKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":null,"accessToken":null,"refreshToken":null,"isAuthenticated":false}`, string(data))
}

func TestLoadRestoresPersistedSubset(t *testing.T) {
	fa := &fakeAuth{resp: okResponse()}
	s, blobs := newTestStore(t, fa)
	require.NoError(t, s.Login(context.Background(), "a", "b"))

	reloaded := NewStore(fa, blobs, zerolog.Nop())
	require.NoError(t, reloaded.Load(context.Background()))

	st := reloaded.Snapshot()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "acc", st.AccessToken)
	assert.Equal(t, "ref", reloaded.RefreshToken())
	require.NotNil(t, st.User)
	assert.Equal(t, "u1", st.User.ID)
	require.NotNil(t, st.User.CreatedAt)
	assert.True(t, st.User.CreatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLoadDegradesBadUserCreatedAt(t *testing.T) {
	blobs := store.NewMemoryStore()
	blob := `{"user":{"id":"u1","email":"amina@example.com","name":"Amina Odhiambo","firstName":"Amina","lastName":"Odhiambo","isVerified":true,"role":"advocate","createdAt":"not-a-date"},` +
		`"accessToken":"acc","refreshToken":"ref","isAuthenticated":true}`
	require.NoError(t, blobs.Save(context.Background(), store.AuthStateKey, []byte(blob)))

	s := NewStore(&fakeAuth{}, blobs, zerolog.Nop())
	require.NoError(t, s.Load(context.Background()))

	st := s.Snapshot()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "acc", st.AccessToken)
	require.NotNil(t, st.User)
	assert.Equal(t, "Amina Odhiambo", st.User.Name)
	require.NotNil(t, st.User.CreatedAt)
	assert.True(t, st.User.CreatedAt.IsZero())
}

func TestLoadWithoutUserCreatedAt(t *testing.T) {
	blobs := store.NewMemoryStore()
	blob := `{"user":{"id":"u1","email":"a@example.com","name":"A B","firstName":"A","lastName":"B","isVerified":false,"role":"user"},"accessToken":"acc","refreshToken":null,"isAuthenticated":true}`
	require.NoError(t, blobs.Save(context.Background(), store.AuthStateKey, []byte(blob)))

	s := NewStore(&fakeAuth{}, blobs, zerolog.Nop())
	require.NoError(t, s.Load(context.Background()))

	st := s.Snapshot()
	require.NotNil(t, st.User)
	assert.Nil(t, st.User.CreatedAt)
	assert.Empty(t, st.RefreshToken)
}

func TestLoadIgnoresCorruptBlob(t *testing.T) {
	blobs := store.NewMemoryStore()
	blobs.Save(context.Background(), store.AuthStateKey, []byte("garbage"))
	s := NewStore(&fakeAuth{}, blobs, zerolog.Nop())
	require.NoError(t, s.Load(context.Background()))
	assert.False(t, s.Snapshot().IsAuthenticated)
}

func TestUpdateUser(t *testing.T) {
	fa := &fakeAuth{resp: okResponse()}
	s, _ := newTestStore(t, fa)

	first := "Ignored"
	s.UpdateUser(model.UserPatch{FirstName: &first})
	assert.Nil(t, s.Snapshot().User, "update while signed out must be a no-op")

	require.NoError(t, s.Login(context.Background(), "a", "b"))
	first = "Achieng"
	s.UpdateUser(model.UserPatch{FirstName: &first})
	assert.Equal(t, "Achieng Odhiambo", s.Snapshot().User.Name)
}

func TestSnapshotUserIsCopy(t *testing.T) {
	fa := &fakeAuth{resp: okResponse()}
	s, _ := newTestStore(t, fa)
	require.NoError(t, s.Login(context.Background(), "a", "b"))

	snap := s.Snapshot()
	snap.User.Name = "mutated"
	assert.False(t, strings.Contains(s.Snapshot().User.Name, "mutated"))
}

func TestClearAndAccessTokenRefresh(t *testing.T) {
	fa := &fakeAuth{resp: okResponse()}
	s, _ := newTestStore(t, fa)
	require.NoError(t, s.Login(context.Background(), "a", "b"))

	s.SetAccessToken("fresh")
	assert.Equal(t, "fresh", s.AccessToken())

	s.Clear()
	assert.Empty(t, s.AccessToken())
	assert.False(t, s.Snapshot().IsAuthenticated)
}
