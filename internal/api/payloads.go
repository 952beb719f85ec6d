package api

import "github.com/spec-kit/attendance-agent/internal/domain"

// LoginRequest payload for /user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the identity envelope the service returns on login.
type LoginResponse struct {
	Token          string      `json:"token"`
	UserID         string      `json:"userId"`
	Name           string      `json:"name"`
	RegisterNumber string      `json:"RegisterNumber"`
	Department     string      `json:"department"`
	Role           domain.Role `json:"role"`
}

// SignupRequest payload for /user/signup.
type SignupRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RegisterNumber string `json:"RegisterNumber"`
	Department     string `json:"department,omitempty"`
}

// MarkAttendanceRequest payload for POST /attendance/. The server treats
// (userId, dateOnly) as the idempotency key.
type MarkAttendanceRequest struct {
	UserID             string                  `json:"userId"`
	Name               string                  `json:"name"`
	RegistrationNumber string                  `json:"registrationNumber"`
	DateOnly           string                  `json:"dateOnly"`
	AttendanceStatus   domain.AttendanceStatus `json:"attendanceStatus"`
	Department         string                  `json:"department"`
}

// CreateLeaveRequest payload for POST /user/leave.
type CreateLeaveRequest struct {
	UserID         string `json:"userId"`
	RegisterNumber string `json:"RegisterNumber"`
	StartDate      string `json:"StartDate"`
	EndDate        string `json:"EndDate"`
	Reason         string `json:"Reason"`
}

// ReviewLeaveRequest payload for PATCH /admin/leave/{id}.
type ReviewLeaveRequest struct {
	Status domain.LeaveStatus `json:"status"`
}

// PostMessageRequest payload for POST /admin/message.
type PostMessageRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// recentLeaveEnvelope wraps GET /attendance/leave/{userId}.
type recentLeaveEnvelope struct {
	RecentLeaveRequest *domain.LeaveRequest `json:"recentLeaveRequest"`
}

// apiError is the error body shape the service responds with.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
