package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/attendance-agent/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEligibilityChanged EventType = "eligibility_changed"
	EventAttendanceMarked   EventType = "attendance_marked"
	EventAttendanceFailed   EventType = "attendance_failed"
	EventSessionExpired     EventType = "session_expired"
	EventLeaveSubmitted     EventType = "leave_submitted"
)

// Event represents something the agent core reports to its observers.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New builds an event with a fresh id and timestamp.
func New(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// EligibilityChangedPayload payload.
type EligibilityChangedPayload struct {
	Eligible       bool    `json:"eligible"`
	DistanceMeters float64 `json:"distance_meters"`
}

// AttendanceMarkedPayload payload.
type AttendanceMarkedPayload struct {
	Date   string                  `json:"date"`
	Status domain.AttendanceStatus `json:"status"`
}

// AttendanceFailedPayload payload.
type AttendanceFailedPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionExpiredPayload payload.
type SessionExpiredPayload struct {
	UserID string `json:"user_id,omitempty"`
}

// LeaveSubmittedPayload payload.
type LeaveSubmittedPayload struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
