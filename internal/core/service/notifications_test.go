package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

func TestNotifications_DefaultDurationExpiresAfterFiveSeconds(t *testing.T) {
	store, clk := newInteractionFixture(t)

	id := store.AddNotification(domain.NotificationInput{Kind: domain.NotificationError, Message: "X"})

	st := store.State()
	require.Len(t, st.Notifications, 1)
	n := st.Notifications[0]
	require.Equal(t, id, n.ID)
	require.NotEmpty(t, n.ID)
	require.Equal(t, 5*time.Second, n.Duration)
	require.Equal(t, domain.NotificationError, n.Kind)
	require.Equal(t, testEpoch, n.CreatedAt)

	clk.Advance(4999 * time.Millisecond)
	require.Len(t, store.State().Notifications, 1)

	clk.Advance(time.Millisecond)
	requireNotificationCount(t, store, 0)
	require.Zero(t, pendingTimers(store))
}

func TestNotifications_ZeroDurationNeverExpires(t *testing.T) {
	store, clk := newInteractionFixture(t)

	store.AddNotification(domain.NotificationInput{Kind: domain.NotificationInfo, Message: "sticky", Duration: domain.Duration(0)})

	require.Zero(t, pendingTimers(store))
	clk.Advance(time.Hour)
	st := store.State()
	require.Len(t, st.Notifications, 1)
	require.True(t, st.Notifications[0].Sticky())
}

func TestNotifications_CustomDuration(t *testing.T) {
	store, clk := newInteractionFixture(t, WithNotificationDuration(time.Second))

	store.Success("saved")
	store.AddNotification(domain.NotificationInput{Kind: domain.NotificationWarning, Message: "slow", Duration: domain.Duration(3 * time.Second)})

	clk.Advance(time.Second)
	requireNotificationCount(t, store, 1)
	require.Equal(t, "slow", store.State().Notifications[0].Message)

	clk.Advance(2 * time.Second)
	requireNotificationCount(t, store, 0)
}

func TestNotifications_FIFOOrderAndUniqueIDs(t *testing.T) {
	store, _ := newInteractionFixture(t)

	ids := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := store.Info("msg")
		require.False(t, ids[id], "duplicate id %s", id)
		ids[id] = true
		_, err := uuid.Parse(id)
		require.NoError(t, err)
	}

	first := store.Success("first")
	last := store.Error("last")
	st := store.State()
	require.Equal(t, first, st.Notifications[50].ID)
	require.Equal(t, last, st.Notifications[51].ID)
}

func TestNotifications_RemoveIsIdempotent(t *testing.T) {
	store, _ := newInteractionFixture(t)
	calls := 0
	store.Subscribe(func(domain.InteractionState) { calls++ })

	id := store.Warning("careful")
	other := store.Info("keep")
	calls = 0

	store.RemoveNotification(id)
	require.Equal(t, 1, calls)
	store.RemoveNotification(id)
	require.Equal(t, 1, calls)

	st := store.State()
	require.Len(t, st.Notifications, 1)
	require.Equal(t, other, st.Notifications[0].ID)

	// Early removal stops the timer, so only the other one is still pending.
	require.Equal(t, 1, pendingTimers(store))
}

func TestNotifications_RemoveAfterTimerFired(t *testing.T) {
	store, clk := newInteractionFixture(t)

	id := store.Info("bye")
	clk.Advance(domain.DefaultNotificationDuration)
	requireNotificationCount(t, store, 0)

	require.NotPanics(t, func() { store.RemoveNotification(id) })
	require.Empty(t, store.State().Notifications)
}

func TestNotifications_TimerRemovesOnlyItsOwnID(t *testing.T) {
	store, clk := newInteractionFixture(t)

	store.Info("first")
	clk.Advance(2 * time.Second)
	second := store.Info("second")
	clk.Advance(3 * time.Second)

	requireNotificationCount(t, store, 1)
	require.Equal(t, second, store.State().Notifications[0].ID)

	clk.Advance(2 * time.Second)
	requireNotificationCount(t, store, 0)
}

func TestNotifications_ClearStopsTimers(t *testing.T) {
	store, clk := newInteractionFixture(t)

	store.Info("a")
	store.Error("b")
	require.Equal(t, 2, pendingTimers(store))

	store.ClearNotifications()
	require.Empty(t, store.State().Notifications)
	require.Zero(t, pendingTimers(store))

	// Ids queued after a clear are unaffected by the old timers.
	id := store.Info("c")
	clk.Advance(4 * time.Second)
	require.Equal(t, id, store.State().Notifications[0].ID)
}

func TestNotifications_ConvenienceConstructors(t *testing.T) {
	store, _ := newInteractionFixture(t)

	store.Success("ok", "Готово")
	store.Error("fail")
	store.Warning("warn")
	store.Info("info", "Справка")

	st := store.State()
	require.Len(t, st.Notifications, 4)
	require.Equal(t, domain.NotificationSuccess, st.Notifications[0].Kind)
	require.Equal(t, "Готово", st.Notifications[0].Title)
	require.Equal(t, domain.NotificationError, st.Notifications[1].Kind)
	require.Empty(t, st.Notifications[1].Title)
	require.Equal(t, domain.NotificationWarning, st.Notifications[2].Kind)
	require.Equal(t, domain.NotificationInfo, st.Notifications[3].Kind)
	require.Equal(t, "Справка", st.Notifications[3].Title)
}

func TestNotifications_ActionIsKept(t *testing.T) {
	store, _ := newInteractionFixture(t)
	clicked := false

	store.AddNotification(domain.NotificationInput{
		Kind:    domain.NotificationInfo,
		Message: "Заявка удалена",
		Action:  &domain.NotificationAction{Label: "Отменить", OnClick: func() { clicked = true }},
	})

	n := store.State().Notifications[0]
	require.NotNil(t, n.Action)
	require.Equal(t, "Отменить", n.Action.Label)
	n.Action.OnClick()
	require.True(t, clicked)
}

func TestNotifications_NegativeDurationRemovesImmediately(t *testing.T) {
	store, _ := newInteractionFixture(t)

	store.AddNotification(domain.NotificationInput{Kind: domain.NotificationInfo, Message: "gone", Duration: domain.Duration(-time.Second)})

	requireNotificationCount(t, store, 0)
	require.Zero(t, pendingTimers(store))
}

func TestNotifications_LookupByID(t *testing.T) {
	store, clk := newInteractionFixture(t)

	clicked := false
	id := store.AddNotification(domain.NotificationInput{
		Kind:    domain.NotificationWarning,
		Title:   "Заявка",
		Message: "Срок истекает",
		Action:  &domain.NotificationAction{Label: "Открыть", OnClick: func() { clicked = true }},
	})

	n, ok := store.Notification(id)
	require.True(t, ok)
	require.Equal(t, "Заявка", n.Title)
	require.NotNil(t, n.Action)
	require.False(t, clicked, "adding must not run the action")

	n.Action.OnClick()
	require.True(t, clicked)

	clk.Advance(5 * time.Second)
	require.Eventually(t, func() bool {
		_, ok := store.Notification(id)
		return !ok
	}, time.Second, time.Millisecond)
}
