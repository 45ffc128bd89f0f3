package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/supertask/internal/api"
	"github.com/Joseda-hg/supertask/internal/model"
	"github.com/Joseda-hg/supertask/internal/session"
)

type fakeAPI struct {
	userStatus   int
	logoutStatus int
	logouts      atomic.Int32
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/user/":
		if f.userStatus != 0 {
			w.WriteHeader(f.userStatus)
			return
		}
		_, _ = io.WriteString(w, `{"id":1,"username":"ana"}`)
	case "/auth/login/", "/auth/register/":
		_, _ = io.WriteString(w, `{"user":{"id":1,"username":"ana"},"access":"A","refresh":"R"}`)
	case "/auth/logout/":
		f.logouts.Add(1)
		if f.logoutStatus != 0 {
			w.WriteHeader(f.logoutStatus)
			return
		}
		_, _ = io.WriteString(w, `{"message":"bye"}`)
	case "/auth/profile/":
		_, _ = io.WriteString(w, `{"id":1,"username":"ana","first_name":"Ana"}`)
	case api.RefreshPath:
		w.WriteHeader(http.StatusUnauthorized)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestSession(t *testing.T, fake *fakeAPI) (*Session, *session.MemoryStorage, *test.Hook) {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	storage := session.NewMemoryStorage()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	client := api.New(server.URL, session.NewTokenStore(storage))
	return NewSession(client, logger), storage, hook
}

func TestInitWithoutTokens(t *testing.T) {
	fake := &fakeAPI{}
	s, _, _ := newTestSession(t, fake)

	s.Init(context.Background())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestInitRestoresUser(t *testing.T) {
	fake := &fakeAPI{}
	s, _, _ := newTestSession(t, fake)
	require.NoError(t, s.Client().Tokens().Set("A", "R"))

	s.Init(context.Background())
	require.True(t, s.IsAuthenticated())
	assert.Equal(t, "ana", s.User().Username)
}

func TestInitLogsLogoutFailure(t *testing.T) {
	fake := &fakeAPI{userStatus: http.StatusInternalServerError, logoutStatus: http.StatusBadRequest}
	s, storage, hook := newTestSession(t, fake)
	require.NoError(t, s.Client().Tokens().Set("A", "R"))

	s.Init(context.Background())
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, int32(1), fake.logouts.Load())
	assert.Equal(t, 0, storage.Len())

	var messages []string
	for _, entry := range hook.AllEntries() {
		messages = append(messages, entry.Message)
	}
	assert.Contains(t, messages, "logout during init")
}

func TestLoginAndLogout(t *testing.T) {
	fake := &fakeAPI{}
	s, storage, _ := newTestSession(t, fake)

	require.NoError(t, s.Login(context.Background(), "ana", "pw"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, 2, storage.Len())

	require.NoError(t, s.Logout(context.Background()))
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 0, storage.Len())
}

func TestLogoutClearsStateOnFailure(t *testing.T) {
	fake := &fakeAPI{logoutStatus: http.StatusInternalServerError}
	s, storage, _ := newTestSession(t, fake)
	require.NoError(t, s.Register(context.Background(), model.RegisterInput{Username: "ana"}))

	err := s.Logout(context.Background())
	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 0, storage.Len())
}

func TestUpdateProfile(t *testing.T) {
	fake := &fakeAPI{}
	s, _, _ := newTestSession(t, fake)
	require.NoError(t, s.Login(context.Background(), "ana", "pw"))

	require.NoError(t, s.UpdateProfile(context.Background(), model.ProfileInput{FirstName: "Ana"}))
	assert.Equal(t, "Ana", s.User().FirstName)
}
