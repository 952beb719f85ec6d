package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/api"
	"github.com/spec-kit/attendance-agent/internal/domain"
	"github.com/spec-kit/attendance-agent/internal/session"
	apperrors "github.com/spec-kit/attendance-agent/pkg/util/errorutil"
)

// AdminService exposes the reporting and review operations behind the admin
// role. Every call re-checks the session; an admin page must reject a valid
// user token.
type AdminService struct {
	client *api.Client
	guard  *session.Guard
	logger *zap.Logger
}

// NewAdminService builds the service.
func NewAdminService(client *api.Client, guard *session.Guard, logger *zap.Logger) *AdminService {
	return &AdminService{client: client, guard: guard, logger: logger}
}

func (s *AdminService) adminSession() (*domain.Session, error) {
	sess, ok := s.guard.Session(domain.RoleAdmin)
	if !ok {
		return nil, apperrors.NewForbidden("an admin session is required")
	}
	return sess, nil
}

// TodayReport lists every user's record for the current date.
func (s *AdminService) TodayReport(ctx context.Context) ([]domain.AttendanceRecord, error) {
	sess, err := s.adminSession()
	if err != nil {
		return nil, err
	}
	return s.client.TodayReport(ctx, sess.Token)
}

// StudentReport lists one student's records by register number.
func (s *AdminService) StudentReport(ctx context.Context, registerNumber string) ([]domain.AttendanceRecord, error) {
	if registerNumber == "" {
		return nil, apperrors.NewValidationError("register number is required", nil)
	}
	sess, err := s.adminSession()
	if err != nil {
		return nil, err
	}
	return s.client.StudentReport(ctx, sess.Token, registerNumber)
}

// DepartmentReport lists records for one department.
func (s *AdminService) DepartmentReport(ctx context.Context, department string) ([]domain.AttendanceRecord, error) {
	if department == "" {
		return nil, apperrors.NewValidationError("department is required", nil)
	}
	sess, err := s.adminSession()
	if err != nil {
		return nil, err
	}
	return s.client.DepartmentReport(ctx, sess.Token, department)
}

// AllAttendance fetches the full dataset.
func (s *AdminService) AllAttendance(ctx context.Context) ([]domain.AttendanceRecord, error) {
	sess, err := s.adminSession()
	if err != nil {
		return nil, err
	}
	return s.client.AllAttendance(ctx, sess.Token)
}

// PendingLeaves lists leave requests awaiting review.
func (s *AdminService) PendingLeaves(ctx context.Context) ([]domain.LeaveRequest, error) {
	sess, err := s.adminSession()
	if err != nil {
		return nil, err
	}
	return s.client.PendingLeaves(ctx, sess.Token)
}

// ReviewLeave approves or rejects a pending request.
func (s *AdminService) ReviewLeave(ctx context.Context, leaveID string, status domain.LeaveStatus) error {
	if leaveID == "" {
		return apperrors.NewValidationError("leave id is required", nil)
	}
	if status != domain.LeaveApproved && status != domain.LeaveRejected {
		return apperrors.NewValidationError("status must be Approved or Rejected", nil)
	}
	sess, err := s.adminSession()
	if err != nil {
		return err
	}
	s.logger.Info("reviewing leave request",
		zap.String("leave_id", leaveID), zap.String("status", string(status)))
	return s.client.ReviewLeave(ctx, sess.Token, leaveID, status)
}

// SendMessage delivers a note to a user.
func (s *AdminService) SendMessage(ctx context.Context, userID, text string) error {
	if userID == "" || text == "" {
		return apperrors.NewValidationError("user id and message text are required", nil)
	}
	sess, err := s.adminSession()
	if err != nil {
		return err
	}
	return s.client.PostMessage(ctx, sess.Token, api.PostMessageRequest{UserID: userID, Message: text})
}

// DeleteUser removes an account.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.NewValidationError("user id is required", nil)
	}
	sess, err := s.adminSession()
	if err != nil {
		return err
	}
	s.logger.Info("deleting user", zap.String("user_id", userID))
	return s.client.DeleteUser(ctx, sess.Token, userID)
}
