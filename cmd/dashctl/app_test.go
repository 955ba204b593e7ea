package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/repairdesk/dashboard-state/internal/api"
	"github.com/repairdesk/dashboard-state/internal/api/accounts"
	"github.com/repairdesk/dashboard-state/internal/core/domain"
	"github.com/repairdesk/dashboard-state/internal/infrastructure/config"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()

	svc := accounts.NewService(accounts.NewMemoryDirectory(), "secret", time.Hour)
	require.NoError(t, accounts.Seed(context.Background(), svc, []accounts.NewUserInput{
		{Username: "director", Password: "director", FullName: "Директор", Role: domain.RoleDirector},
	}))
	srv := httptest.NewServer(api.NewRouter(api.RouterDeps{Accounts: svc, Log: zerolog.Nop()}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		API:     config.APIConfig{BaseURL: srv.URL, Timeout: time.Second},
		Storage: config.StorageConfig{Backend: config.BackendMemory, Name: "auth-storage"},
		UI: config.UIConfig{
			LoginRoute:           "/login",
			NotificationDuration: time.Minute,
			LoadingText:          "Загрузка...",
			LoginErrorText:       "Ошибка входа в систему",
		},
	}

	var out bytes.Buffer
	a, err := newApp(context.Background(), cfg, zerolog.Nop(), &out)
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a, &out
}

func TestApp_LoginCheckLogout(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.session.Login(ctx, domain.Credentials{Username: "director", Password: "director"}))
	st := a.session.State()
	require.True(t, st.IsAuthenticated)
	require.Equal(t, "Директор", st.User.FullName)

	a.session.CheckAuth(ctx)
	require.True(t, a.session.State().IsAuthenticated)

	a.session.Logout(ctx)
	require.False(t, a.session.State().IsAuthenticated)
	require.Equal(t, "/login", a.nav.Current())
}

func TestApp_RejectedLoginKeepsServerMessage(t *testing.T) {
	a, _ := newTestApp(t)

	err := a.session.Login(context.Background(), domain.Credentials{Username: "director", Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, "Неверное имя пользователя или пароль", a.session.State().Error)
}

func TestApp_UnauthorizedResponseLogsOut(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.session.Login(ctx, domain.Credentials{Username: "director", Password: "director"}))

	// Swap the token for one the backend will reject.
	a.client.SetTokenSource(func() string { return "revoked" })
	_, err := a.client.Do(ctx, "GET", "/auth/profile", nil)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	require.False(t, a.session.State().IsAuthenticated)
	require.Equal(t, []string{"/login"}, a.nav.History())
}

func TestPrinter_RendersEachNotificationOnce(t *testing.T) {
	a, out := newTestApp(t)

	a.ui.SetGlobalLoading(true)
	a.ui.Success("Сохранено", "Клиент")
	a.ui.SetSidebarOpen(false)
	a.ui.Error("Не удалось")
	a.ui.SetGlobalLoading(false)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "Загрузка...")
	require.Contains(t, lines[1], "✓")
	require.Contains(t, lines[1], "Клиент:")
	require.Contains(t, lines[1], "Сохранено")
	require.Contains(t, lines[2], "✗")
	require.Contains(t, lines[2], "Не удалось")
}
