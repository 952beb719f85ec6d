package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/domain"
	"github.com/spec-kit/attendance-agent/internal/events"
)

func TestNotifierAutoClears(t *testing.T) {
	n := NewNotifier(50*time.Millisecond, zap.NewNop())
	defer n.Close()

	n.Show("marked", KindSuccess)
	require.NotNil(t, n.Current())

	assert.Eventually(t, func() bool { return n.Current() == nil },
		time.Second, 5*time.Millisecond)
}

func TestNotifierShowReplacesAndResetsDeadline(t *testing.T) {
	n := NewNotifier(80*time.Millisecond, zap.NewNop())
	defer n.Close()

	n.Show("first", KindSuccess)
	time.Sleep(50 * time.Millisecond)
	n.Show("second", KindError)

	// past the first deadline; the second notification must still be live
	time.Sleep(50 * time.Millisecond)
	cur := n.Current()
	require.NotNil(t, cur, "second Show must restart the clear deadline")
	assert.Equal(t, "second", cur.Message)
	assert.Equal(t, KindError, cur.Kind)

	assert.Eventually(t, func() bool { return n.Current() == nil },
		time.Second, 5*time.Millisecond)
}

func TestNotifierCloseStopsPendingTimer(t *testing.T) {
	n := NewNotifier(30*time.Millisecond, zap.NewNop())

	n.Show("pending", KindSuccess)
	n.Close()
	assert.Nil(t, n.Current())

	// a Show after Close is a no-op rather than a resurrected timer
	n.Show("late", KindSuccess)
	assert.Nil(t, n.Current())
	time.Sleep(50 * time.Millisecond)
}

func TestNotifierSingleActiveNotification(t *testing.T) {
	n := NewNotifier(time.Minute, zap.NewNop())
	defer n.Close()

	n.Show("one", KindSuccess)
	n.Show("two", KindSuccess)

	cur := n.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "two", cur.Message)
}

func TestNotifierRendersAgentEvents(t *testing.T) {
	n := NewNotifier(time.Minute, zap.NewNop())
	defer n.Close()

	d := events.NewInMemoryDispatcher()
	n.RegisterHandlers(d)

	ctx := context.Background()

	_ = d.Publish(ctx, events.New(events.EventAttendanceMarked,
		events.AttendanceMarkedPayload{Date: "2026-08-28", Status: domain.AttendancePresent}))
	cur := n.Current()
	require.NotNil(t, cur)
	assert.Equal(t, KindSuccess, cur.Kind)
	assert.Contains(t, cur.Message, "2026-08-28")

	_ = d.Publish(ctx, events.New(events.EventAttendanceFailed,
		events.AttendanceFailedPayload{Code: "TIMEOUT", Message: "request timed out"}))
	cur = n.Current()
	require.NotNil(t, cur)
	assert.Equal(t, KindError, cur.Kind)

	_ = d.Publish(ctx, events.New(events.EventSessionExpired, events.SessionExpiredPayload{}))
	cur = n.Current()
	require.NotNil(t, cur)
	assert.Contains(t, cur.Message, "log in again")

	_ = d.Publish(ctx, events.New(events.EventEligibilityChanged,
		events.EligibilityChangedPayload{Eligible: false, DistanceMeters: 2000}))
	cur = n.Current()
	require.NotNil(t, cur)
	assert.Equal(t, KindError, cur.Kind)
}
