package domain

// AttendanceStatus enumerates the states a daily record can carry.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLeave   AttendanceStatus = "leave"
)

// AttendanceRecord is one day's mark for a user. Records are created by the
// attendance service and read-only on this side; the agent only asks for new
// ones to be appended.
type AttendanceRecord struct {
	ID             string           `json:"id,omitempty"`
	UserID         string           `json:"userId"`
	Name           string           `json:"name,omitempty"`
	RegisterNumber string           `json:"registrationNumber,omitempty"`
	Department     string           `json:"department,omitempty"`
	DateOnly       string           `json:"dateOnly"`
	Status         AttendanceStatus `json:"attendanceStatus"`
}
