package authclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/repairdesk/dashboard-state/internal/api"
	"github.com/repairdesk/dashboard-state/internal/api/accounts"
	"github.com/repairdesk/dashboard-state/internal/core/domain"
	"github.com/repairdesk/dashboard-state/internal/core/ports"
)

func newDevServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := accounts.NewService(accounts.NewMemoryDirectory(), "test-secret", time.Hour)
	require.NoError(t, accounts.Seed(context.Background(), svc, []accounts.NewUserInput{
		{Username: "manager", Password: "manager", Role: domain.RoleManager, FullName: "Менеджер"},
	}))

	srv := httptest.NewServer(api.NewRouter(api.RouterDeps{Accounts: svc, Log: zerolog.Nop()}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoginAndFetchProfile(t *testing.T) {
	srv := newDevServer(t)
	c := New(srv.URL, time.Second, zerolog.Nop())
	ctx := context.Background()

	res, err := c.Login(ctx, domain.Credentials{Username: "manager", Password: "manager"})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.Equal(t, "bearer", res.TokenType)
	require.NotNil(t, res.User)
	require.Equal(t, domain.RoleManager, res.User.Role)

	user, err := c.FetchProfile(ctx, res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, user.ID)
	require.Equal(t, "Менеджер", user.FullName)
}

func TestClient_LoginRejectedCarriesServerDetail(t *testing.T) {
	srv := newDevServer(t)
	c := New(srv.URL, time.Second, zerolog.Nop())

	_, err := c.Login(context.Background(), domain.Credentials{Username: "manager", Password: "nope"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	require.Equal(t, "Неверное имя пользователя или пароль", ports.DisplayMessage(err))

	var be *ports.BoundaryError
	require.True(t, errors.As(err, &be))
	require.Equal(t, http.StatusUnauthorized, be.Status)
}

func TestClient_FetchProfileWithBadTokenDoesNotEmit(t *testing.T) {
	srv := newDevServer(t)
	c := New(srv.URL, time.Second, zerolog.Nop())

	var fired atomic.Int32
	c.OnUnauthorized(func() { fired.Add(1) })

	_, err := c.FetchProfile(context.Background(), "garbage")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Zero(t, fired.Load())
}

func TestClient_DoEmitsOnUnauthorized(t *testing.T) {
	srv := newDevServer(t)
	c := New(srv.URL, time.Second, zerolog.Nop())
	c.SetTokenSource(func() string { return "expired-token" })

	var fired atomic.Int32
	cancel := c.OnUnauthorized(func() { fired.Add(1) })

	_, err := c.Do(context.Background(), http.MethodGet, "/auth/users", nil)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Equal(t, int32(1), fired.Load())

	cancel()
	cancel()
	_, err = c.Do(context.Background(), http.MethodGet, "/auth/users", nil)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Equal(t, int32(1), fired.Load())
}

func TestClient_DoAttachesCurrentToken(t *testing.T) {
	srv := newDevServer(t)
	c := New(srv.URL, time.Second, zerolog.Nop())

	res, err := c.Login(context.Background(), domain.Credentials{Username: "manager", Password: "manager"})
	require.NoError(t, err)
	c.SetTokenSource(func() string { return res.AccessToken })

	resp, err := c.Do(context.Background(), http.MethodGet, "/auth/profile", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A manager is authenticated but not allowed to list users.
	resp, err = c.Do(context.Background(), http.MethodGet, "/auth/users", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zerolog.Nop())
	_, err := c.Login(context.Background(), domain.Credentials{Username: "a", Password: "b"})
	require.ErrorIs(t, err, errUnexpectedStatus)
	require.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	require.Equal(t, "upstream down", ports.DisplayMessage(err))
}

func TestClient_EmptyTokenIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"","token_type":"bearer","user":null}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zerolog.Nop())
	_, err := c.Login(context.Background(), domain.Credentials{Username: "a", Password: "b"})
	require.Error(t, err)
	require.Empty(t, ports.DisplayMessage(err))
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second, zerolog.Nop())
	_, err := c.FetchProfile(context.Background(), "t")

	var be *ports.BoundaryError
	require.True(t, errors.As(err, &be))
	require.Zero(t, be.Status)
	require.Empty(t, be.Message)
}

func TestClient_LoginSendsPasswordGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "password", r.PostForm.Get("grant_type"))
		require.Equal(t, "admin", r.PostForm.Get("username"))
		require.Equal(t, "s3cret", r.PostForm.Get("password"))
		require.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer","user":{"id":1,"username":"admin","role":"admin","is_active":true,"created_at":"2024-01-02T03:04:05Z"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second, zerolog.Nop())
	res, err := c.Login(context.Background(), domain.Credentials{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, "abc", res.AccessToken)
	require.Equal(t, int64(1), res.User.ID)
	require.Equal(t, domain.RoleAdmin, res.User.Role)
	require.Equal(t, 2024, res.User.CreatedAt.Year())
}

func TestClient_LoginWithoutUserLeavesItNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, time.Second, zerolog.Nop()).Login(context.Background(), domain.Credentials{Username: "a", Password: "b"})
	require.NoError(t, err)
	require.Nil(t, res.User)
}

func TestServerMessage(t *testing.T) {
	require.Equal(t, "boom", serverMessage([]byte(`{"detail":"boom"}`)))
	require.Equal(t, "bad", serverMessage([]byte(`{"error":"bad"}`)))
	require.Empty(t, serverMessage([]byte(`{"detail":[{"loc":["body","username"],"msg":"field required"}]}`)))
	require.Empty(t, serverMessage([]byte(`<html>`)))
}
