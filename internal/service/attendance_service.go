package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/api"
	"github.com/spec-kit/attendance-agent/internal/domain"
	"github.com/spec-kit/attendance-agent/internal/events"
	"github.com/spec-kit/attendance-agent/internal/session"
	apperrors "github.com/spec-kit/attendance-agent/pkg/util/errorutil"
)

// AttendanceService performs the daily mark and owns the one client-held copy
// of the attendance history. The server's (userId, dateOnly) key is the real
// idempotency boundary; the in-flight flag here only stops a double click
// from producing two wire requests.
type AttendanceService struct {
	client     *api.Client
	guard      *session.Guard
	dispatcher events.Dispatcher
	logger     *zap.Logger

	submitTimeout time.Duration
	location      *time.Location

	inFlight atomic.Bool

	mu        sync.Mutex
	history   []domain.AttendanceRecord
	historyOK bool
}

// NewAttendanceService builds the service. location stamps the dateOnly field.
func NewAttendanceService(client *api.Client, guard *session.Guard, dispatcher events.Dispatcher,
	logger *zap.Logger, submitTimeout time.Duration, location *time.Location) *AttendanceService {
	if location == nil {
		location = time.UTC
	}
	if submitTimeout <= 0 {
		submitTimeout = 5 * time.Second
	}
	return &AttendanceService{
		client:        client,
		guard:         guard,
		dispatcher:    dispatcher,
		logger:        logger,
		submitTimeout: submitTimeout,
		location:      location,
	}
}

// StatusFor maps geofence eligibility to the mark that gets recorded.
func StatusFor(eligible bool) domain.AttendanceStatus {
	if eligible {
		return domain.AttendancePresent
	}
	return domain.AttendanceAbsent
}

// Submit marks attendance for today. It requires a valid user session, issues
// exactly one network write, and is rejected while a prior call is still in
// flight. A duplicate-day rejection from the server surfaces as
// CodeAlreadyMarked; a client-enforced timeout as CodeTimeout.
func (s *AttendanceService) Submit(ctx context.Context, eligible bool) (*domain.AttendanceRecord, error) {
	sess, ok := s.guard.Session(domain.RoleUser)
	if !ok {
		return nil, apperrors.NewAuthMissing("a valid user session is required to mark attendance")
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, apperrors.NewConflict("a submission is already in flight")
	}
	defer s.inFlight.Store(false)

	status := StatusFor(eligible)
	date := time.Now().In(s.location).Format("2006-01-02")

	ctx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	record, err := s.client.MarkAttendance(ctx, sess.Token, api.MarkAttendanceRequest{
		UserID:             sess.UserID,
		Name:               sess.Name,
		RegistrationNumber: sess.RegisterNumber,
		DateOnly:           date,
		AttendanceStatus:   status,
		Department:         sess.Department,
	})
	if err != nil {
		clientErr := apperrors.ToClientError(err)
		s.logger.Warn("attendance submission failed",
			zap.String("code", clientErr.Code), zap.Error(err))
		_ = s.dispatcher.Publish(ctx, events.New(events.EventAttendanceFailed,
			events.AttendanceFailedPayload{Code: clientErr.Code, Message: clientErr.Message}))
		return nil, err
	}

	s.logger.Info("attendance marked",
		zap.String("date", date), zap.String("status", string(status)))
	_ = s.dispatcher.Publish(ctx, events.New(events.EventAttendanceMarked,
		events.AttendanceMarkedPayload{Date: date, Status: status}))

	s.Invalidate()
	return record, nil
}

// History returns the cached record list, fetching it when the cache is cold.
func (s *AttendanceService) History(ctx context.Context) ([]domain.AttendanceRecord, error) {
	s.mu.Lock()
	if s.historyOK {
		cached := make([]domain.AttendanceRecord, len(s.history))
		copy(cached, s.history)
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Refresh refetches the history unconditionally and repopulates the cache.
func (s *AttendanceService) Refresh(ctx context.Context) ([]domain.AttendanceRecord, error) {
	sess, ok := s.guard.Session(domain.RoleUser)
	if !ok {
		return nil, apperrors.NewAuthMissing("a valid user session is required")
	}

	records, err := s.client.Attendance(ctx, sess.Token, sess.UserID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.history = records
	s.historyOK = true
	s.mu.Unlock()

	out := make([]domain.AttendanceRecord, len(records))
	copy(out, records)
	return out, nil
}

// Invalidate drops the cached history so the next read refetches.
func (s *AttendanceService) Invalidate() {
	s.mu.Lock()
	s.history = nil
	s.historyOK = false
	s.mu.Unlock()
}
