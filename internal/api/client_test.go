package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/supertask/internal/model"
	"github.com/Joseda-hg/supertask/internal/session"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.MemoryStorage) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	storage := session.NewMemoryStorage()
	return New(server.URL+"/", session.NewTokenStore(storage)), storage
}

func seedTokens(t *testing.T, c *Client, access, refresh string) {
	t.Helper()
	require.NoError(t, c.Tokens().Set(access, refresh))
}

func TestDoSendsBearerToken(t *testing.T) {
	var gotAuth, gotType string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		_, _ = io.WriteString(w, `{"quote":"q","author":"a"}`)
	}))
	seedTokens(t, c, "A1", "R1")

	quote, err := c.Dashboard.Quote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer A1", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, model.Quote{Quote: "q", Author: "a"}, quote)
}

func TestDoOmitsAuthorizationWithoutToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{}`)
	}))

	_, err := c.Dashboard.Stats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestDoRefreshesOnceAndRetries(t *testing.T) {
	var refreshes, taskCalls atomic.Int32
	var retryAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		assert.Empty(t, r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"refresh":"R1"}`, string(body))
		_, _ = io.WriteString(w, `{"access":"A2"}`)
	})
	mux.HandleFunc("/tasks/7/", func(w http.ResponseWriter, r *http.Request) {
		if taskCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		retryAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"id":7,"title":"retried","priority":"low","status":"pending"}`)
	})
	c, storage := newTestClient(t, mux)
	seedTokens(t, c, "A1", "R1")
	writesBefore := storage.Writes()

	task, err := c.Tasks.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "retried", task.Title)
	assert.Equal(t, int32(1), refreshes.Load())
	assert.Equal(t, int32(2), taskCalls.Load())
	assert.Equal(t, "Bearer A2", retryAuth)
	assert.Equal(t, 1, storage.Writes()-writesBefore)

	access, err := c.Tokens().Get(session.AccessToken)
	require.NoError(t, err)
	refresh, err := c.Tokens().Get(session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "A2", access)
	assert.Equal(t, "R1", refresh)
}

func TestDoRetryFailureReportsRetryStatus(t *testing.T) {
	var taskCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"access":"A2"}`)
	})
	mux.HandleFunc("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		if taskCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	})
	c, _ := newTestClient(t, mux)
	seedTokens(t, c, "A1", "R1")

	_, err := c.Tasks.List(context.Background(), TaskListOptions{})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusForbidden))
	assert.EqualError(t, err, "HTTP error! status: 403")
	assert.Equal(t, int32(2), taskCalls.Load())
}

func TestDoDoesNotRefreshWithoutToken(t *testing.T) {
	var refreshes, calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
	})
	mux.HandleFunc("/auth/user/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Authentication credentials were not provided."}`)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.Auth.User(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.False(t, errors.Is(err, ErrSessionExpired))
	assert.Equal(t, int32(0), refreshes.Load())
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoClearsSessionWhenRefreshTokenMissing(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
	})
	mux.HandleFunc("/dashboard/stats/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c, storage := newTestClient(t, mux)
	require.NoError(t, c.Tokens().SetAccess("A1"))

	_, err := c.Dashboard.Stats(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(0), refreshes.Load())
	assert.Equal(t, 0, storage.Len())
}

func TestDoClearsSessionWhenRefreshRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/categories/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c, storage := newTestClient(t, mux)
	seedTokens(t, c, "A1", "R1")

	_, err := c.Categories.List(context.Background(), CategoryListOptions{})
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, storage.Len())
	assert.False(t, c.Auth.IsAuthenticated())
}

func TestDoClearsSessionWhenRefreshHasNoAccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	mux.HandleFunc("/dashboard/quote/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c, storage := newTestClient(t, mux)
	seedTokens(t, c, "A1", "R1")

	_, err := c.Dashboard.Quote(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, storage.Len())
}

func TestDoErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "detail", status: http.StatusBadRequest, body: `{"detail":"Bad title","error":"ignored"}`, want: "Bad title"},
		{name: "error", status: http.StatusConflict, body: `{"error":"Duplicate"}`, want: "Duplicate"},
		{name: "generic", status: http.StatusInternalServerError, body: `{"other":"x"}`, want: "HTTP error! status: 500"},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, want: "HTTP error! status: 502"},
		{name: "empty", status: http.StatusNotFound, body: ``, want: "HTTP error! status: 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))

			_, err := c.Tasks.Get(context.Background(), 1)
			require.Error(t, err)
			assert.EqualError(t, err, tt.want)
			assert.True(t, IsStatus(err, tt.status))
		})
	}
}

func TestDoNoContent(t *testing.T) {
	var method string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.Tasks.Delete(context.Background(), 3))
	assert.Equal(t, http.MethodDelete, method)

	_, err := c.Tasks.Get(context.Background(), 3)
	require.NoError(t, err)
}

func TestDoMalformedSuccessBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":`)
	}))

	_, err := c.Tasks.Get(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestTaskListQueryOrder(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"count":0,"results":[]}`)
	}))

	_, err := c.Tasks.List(context.Background(), TaskListOptions{
		Page:     2,
		Ordering: "-created_at",
		Status:   "pending",
		Priority: "high",
		Category: 4,
		DueDate:  "2024-05-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "priority=high&status=pending&category=4&due_date=2024-05-01&ordering=-created_at&page=2", gotQuery)

	_, err = c.Tasks.List(context.Background(), TaskListOptions{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, "status=completed", gotQuery)

	_, err = c.Tasks.List(context.Background(), TaskListOptions{})
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestCategoryListQueryOrder(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"count":0,"results":[]}`)
	}))

	_, err := c.Categories.List(context.Background(), CategoryListOptions{Limit: 50, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, "page=1&limit=50", gotQuery)
}

func TestToggleStatusSendsNoBody(t *testing.T) {
	var method, path string
	var bodyLen int
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		bodyLen = len(body)
		_, _ = io.WriteString(w, `{"id":9,"status":"completed"}`)
	}))

	task, err := c.Tasks.ToggleStatus(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/tasks/9/toggle-status/", path)
	assert.Zero(t, bodyLen)
	assert.Equal(t, model.WireStatusCompleted, task.Status)
}

func TestLoginStoresTokens(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login/", r.URL.Path)
		_, _ = io.WriteString(w, `{"user":{"id":1,"username":"ana"},"access":"A","refresh":"R"}`)
	}))

	resp, err := c.Auth.Login(context.Background(), model.Credentials{Username: "ana", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "ana", resp.User.Username)
	assert.True(t, c.Auth.IsAuthenticated())

	refresh, err := c.Tokens().Get(session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "R", refresh)
}

func TestLoginFailureStoresNothing(t *testing.T) {
	c, storage := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"No active account found with the given credentials"}`)
	}))

	_, err := c.Auth.Login(context.Background(), model.Credentials{Username: "ana", Password: "bad"})
	require.EqualError(t, err, "No active account found with the given credentials")
	assert.Equal(t, 0, storage.Len())
}

func TestLogoutClearsTokensEvenOnFailure(t *testing.T) {
	var gotBody string
	c, storage := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Invalid token"}`)
	}))
	seedTokens(t, c, "A1", "R1")

	_, err := c.Auth.Logout(context.Background())
	require.EqualError(t, err, "Invalid token")
	assert.JSONEq(t, `{"refresh":"R1"}`, gotBody)
	assert.Equal(t, 0, storage.Len())
}

func TestWithTimeoutAppliesRegardlessOfOrder(t *testing.T) {
	tokens := session.NewTokenStore(session.NewMemoryStorage())

	owned := &http.Client{}
	before := New("http://api.test", tokens, WithTimeout(5*time.Second), WithHTTPClient(owned))
	assert.Equal(t, 5*time.Second, before.http.Timeout)
	assert.Zero(t, owned.Timeout)

	after := New("http://api.test", tokens, WithHTTPClient(owned), WithTimeout(3*time.Second))
	assert.Equal(t, 3*time.Second, after.http.Timeout)
	assert.Zero(t, owned.Timeout)

	untouched := New("http://api.test", tokens, WithHTTPClient(owned))
	assert.Same(t, owned, untouched.http)
}
