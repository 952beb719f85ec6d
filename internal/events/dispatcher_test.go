package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []string
	d.Subscribe(EventAttendanceMarked, func(_ context.Context, e Event) error {
		got = append(got, "first")
		return nil
	})
	d.Subscribe(EventAttendanceMarked, func(_ context.Context, e Event) error {
		got = append(got, "second")
		return nil
	})

	err := d.Publish(context.Background(), New(EventAttendanceMarked, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestDispatcherIgnoresUnrelatedEvents(t *testing.T) {
	d := NewInMemoryDispatcher()

	called := false
	d.Subscribe(EventSessionExpired, func(_ context.Context, e Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), New(EventLeaveSubmitted, nil))
	require.NoError(t, err)
	assert.False(t, called)
}

func TestDispatcherContinuesPastHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()

	var reached bool
	d.Subscribe(EventAttendanceFailed, func(_ context.Context, e Event) error {
		return assert.AnError
	})
	d.Subscribe(EventAttendanceFailed, func(_ context.Context, e Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), New(EventAttendanceFailed, nil))
	require.NoError(t, err)
	assert.True(t, reached)
}

func TestNewEventHasIdentityAndTimestamp(t *testing.T) {
	e := New(EventEligibilityChanged, EligibilityChangedPayload{Eligible: true})
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, EventEligibilityChanged, e.Type)
}
