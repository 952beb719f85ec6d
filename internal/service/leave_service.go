package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/api"
	"github.com/spec-kit/attendance-agent/internal/domain"
	"github.com/spec-kit/attendance-agent/internal/events"
	"github.com/spec-kit/attendance-agent/internal/session"
	apperrors "github.com/spec-kit/attendance-agent/pkg/util/errorutil"
)

const leaveDateLayout = "2006-01-02"

// LeaveInput is the leave application form.
type LeaveInput struct {
	StartDate string `validate:"required"`
	EndDate   string `validate:"required"`
	Reason    string `validate:"required"`
}

// LeaveService creates leave requests and reads back their status. The
// request lifecycle is owned entirely by the remote service; this side only
// creates Pending requests and displays whatever state comes back.
type LeaveService struct {
	client     *api.Client
	guard      *session.Guard
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewLeaveService builds the service.
func NewLeaveService(client *api.Client, guard *session.Guard, dispatcher events.Dispatcher, logger *zap.Logger) *LeaveService {
	return &LeaveService{client: client, guard: guard, dispatcher: dispatcher, logger: logger}
}

// Request validates the form and submits a new leave request.
func (s *LeaveService) Request(ctx context.Context, input LeaveInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}

	start, err := time.Parse(leaveDateLayout, input.StartDate)
	if err != nil {
		return apperrors.NewValidationError("start date must be YYYY-MM-DD", nil)
	}
	end, err := time.Parse(leaveDateLayout, input.EndDate)
	if err != nil {
		return apperrors.NewValidationError("end date must be YYYY-MM-DD", nil)
	}
	if end.Before(start) {
		return apperrors.NewValidationError("end date must not be before start date", nil)
	}

	sess, ok := s.guard.Session(domain.RoleUser)
	if !ok {
		return apperrors.NewAuthMissing("a valid user session is required to request leave")
	}

	err = s.client.CreateLeave(ctx, sess.Token, api.CreateLeaveRequest{
		UserID:         sess.UserID,
		RegisterNumber: sess.RegisterNumber,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Reason:         input.Reason,
	})
	if err != nil {
		return err
	}

	s.logger.Info("leave requested",
		zap.String("start", input.StartDate), zap.String("end", input.EndDate))
	_ = s.dispatcher.Publish(ctx, events.New(events.EventLeaveSubmitted,
		events.LeaveSubmittedPayload{StartDate: input.StartDate, EndDate: input.EndDate}))
	return nil
}

// RecentStatus returns the most recent leave request, or nil when the user
// has never requested leave.
func (s *LeaveService) RecentStatus(ctx context.Context) (*domain.LeaveRequest, error) {
	sess, ok := s.guard.Session(domain.RoleUser)
	if !ok {
		return nil, apperrors.NewAuthMissing("a valid user session is required")
	}
	return s.client.RecentLeave(ctx, sess.Token, sess.UserID)
}
