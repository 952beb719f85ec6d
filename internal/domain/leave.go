package domain

// LeaveStatus is the server-owned lifecycle state of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Approved"
	LeaveRejected LeaveStatus = "Rejected"
)

// LeaveRequest is created Pending by the agent; approval and rejection happen
// on the server side.
type LeaveRequest struct {
	ID             string      `json:"id,omitempty"`
	UserID         string      `json:"userId"`
	RegisterNumber string      `json:"RegisterNumber,omitempty"`
	StartDate      string      `json:"StartDate"`
	EndDate        string      `json:"EndDate"`
	Reason         string      `json:"Reason"`
	Status         LeaveStatus `json:"status"`
}
