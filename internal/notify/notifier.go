package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/events"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is the transient status message currently on display.
type Notification struct {
	Message string
	Kind    Kind
	ShownAt time.Time
}

// Notifier holds at most one active notification and clears it after a fixed
// duration. A new Show preempts the pending timer and restarts the deadline
// relative to its own call; nothing is queued.
type Notifier struct {
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	current *Notification
	timer   *time.Timer
	seq     uint64
	closed  bool
}

// NewNotifier builds a notifier with the given auto-clear duration.
func NewNotifier(ttl time.Duration, logger *zap.Logger) *Notifier {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Notifier{ttl: ttl, logger: logger}
}

// Show displays a message, replacing any active notification.
func (n *Notifier) Show(message string, kind Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	if n.timer != nil {
		n.timer.Stop()
	}

	n.seq++
	seq := n.seq
	n.current = &Notification{Message: message, Kind: kind, ShownAt: time.Now()}
	n.timer = time.AfterFunc(n.ttl, func() { n.clear(seq) })

	switch kind {
	case KindError:
		n.logger.Warn(message)
	default:
		n.logger.Info(message)
	}
}

// Current returns the active notification, or nil once it has auto-cleared.
func (n *Notifier) Current() *Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	copied := *n.current
	return &copied
}

// Close stops the pending dismiss timer so nothing fires after teardown.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
}

// clear removes the notification unless a newer Show superseded this timer.
func (n *Notifier) clear(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed || seq != n.seq {
		return
	}
	n.current = nil
	n.timer = nil
}

// RegisterHandlers subscribes the notifier to agent events.
func (n *Notifier) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventAttendanceMarked, n.handleAttendanceMarked)
	dispatcher.Subscribe(events.EventAttendanceFailed, n.handleAttendanceFailed)
	dispatcher.Subscribe(events.EventSessionExpired, n.handleSessionExpired)
	dispatcher.Subscribe(events.EventLeaveSubmitted, n.handleLeaveSubmitted)
	dispatcher.Subscribe(events.EventEligibilityChanged, n.handleEligibilityChanged)
}

func (n *Notifier) handleAttendanceMarked(_ context.Context, e events.Event) error {
	if p, ok := e.Payload.(events.AttendanceMarkedPayload); ok {
		n.Show(fmt.Sprintf("attendance marked %s for %s", p.Status, p.Date), KindSuccess)
	}
	return nil
}

func (n *Notifier) handleAttendanceFailed(_ context.Context, e events.Event) error {
	if p, ok := e.Payload.(events.AttendanceFailedPayload); ok {
		n.Show(p.Message, KindError)
	}
	return nil
}

func (n *Notifier) handleSessionExpired(_ context.Context, e events.Event) error {
	n.Show("session expired, please log in again", KindError)
	return nil
}

func (n *Notifier) handleLeaveSubmitted(_ context.Context, e events.Event) error {
	if p, ok := e.Payload.(events.LeaveSubmittedPayload); ok {
		n.Show(fmt.Sprintf("leave requested from %s to %s", p.StartDate, p.EndDate), KindSuccess)
	}
	return nil
}

func (n *Notifier) handleEligibilityChanged(_ context.Context, e events.Event) error {
	p, ok := e.Payload.(events.EligibilityChangedPayload)
	if !ok {
		return nil
	}
	if p.Eligible {
		n.Show("you are within the attendance location", KindSuccess)
	} else {
		n.Show("you must be within the designated location to mark attendance", KindError)
	}
	return nil
}
