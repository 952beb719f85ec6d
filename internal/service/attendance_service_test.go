package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/api"
	"github.com/spec-kit/attendance-agent/internal/domain"
	"github.com/spec-kit/attendance-agent/internal/events"
	apperrors "github.com/spec-kit/attendance-agent/pkg/util/errorutil"
)

func newAttendanceService(t *testing.T, baseURL string, role domain.Role) (*AttendanceService, events.Dispatcher) {
	t.Helper()
	_, guard := testGuard(t, role)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewAttendanceService(testClient(baseURL), guard, dispatcher, zap.NewNop(), 2*time.Second, time.UTC)
	return svc, dispatcher
}

func TestSubmitMarksPresentWhenEligible(t *testing.T) {
	var got api.MarkAttendanceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(domain.AttendanceRecord{
			UserID: got.UserID, DateOnly: got.DateOnly, Status: got.AttendanceStatus,
		})
	}))
	defer srv.Close()

	svc, dispatcher := newAttendanceService(t, srv.URL, domain.RoleUser)

	var marked []events.AttendanceMarkedPayload
	dispatcher.Subscribe(events.EventAttendanceMarked, func(_ context.Context, e events.Event) error {
		marked = append(marked, e.Payload.(events.AttendanceMarkedPayload))
		return nil
	})

	rec, err := svc.Submit(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendancePresent, rec.Status)
	assert.Equal(t, domain.AttendancePresent, got.AttendanceStatus)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "9533001", got.RegistrationNumber)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), got.DateOnly)
	require.Len(t, marked, 1)
	assert.Equal(t, domain.AttendancePresent, marked[0].Status)
}

func TestSubmitMarksAbsentWhenIneligible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.MarkAttendanceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.AttendanceAbsent, req.AttendanceStatus)
		_ = json.NewEncoder(w).Encode(domain.AttendanceRecord{Status: req.AttendanceStatus, DateOnly: req.DateOnly})
	}))
	defer srv.Close()

	svc, _ := newAttendanceService(t, srv.URL, domain.RoleUser)
	rec, err := svc.Submit(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceAbsent, rec.Status)
}

func TestSubmitRequiresUserSession(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	// no session at all
	svc, _ := newAttendanceService(t, srv.URL, "")
	_, err := svc.Submit(context.Background(), true)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthMissing))

	// an admin session must not satisfy the user requirement
	svc, _ = newAttendanceService(t, srv.URL, domain.RoleAdmin)
	_, err = svc.Submit(context.Background(), true)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthMissing))

	assert.Zero(t, calls.Load(), "no network write may happen without a valid user session")
}

func TestSubmitSecondMarkSameDayIsAlreadyMarked(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_ = json.NewEncoder(w).Encode(domain.AttendanceRecord{Status: domain.AttendancePresent})
			return
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"attendance already marked for today"}`))
	}))
	defer srv.Close()

	svc, dispatcher := newAttendanceService(t, srv.URL, domain.RoleUser)

	var failed []events.AttendanceFailedPayload
	dispatcher.Subscribe(events.EventAttendanceFailed, func(_ context.Context, e events.Event) error {
		failed = append(failed, e.Payload.(events.AttendanceFailedPayload))
		return nil
	})

	_, err := svc.Submit(context.Background(), true)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), true)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAlreadyMarked), "got %v", err)
	require.Len(t, failed, 1)
	assert.Equal(t, apperrors.CodeAlreadyMarked, failed[0].Code)
}

func TestSubmitIsNotReentrant(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		_ = json.NewEncoder(w).Encode(domain.AttendanceRecord{Status: domain.AttendancePresent})
	}))
	defer srv.Close()

	svc, _ := newAttendanceService(t, srv.URL, domain.RoleUser)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Submit(context.Background(), true)
		assert.NoError(t, err)
	}()

	<-entered
	_, err := svc.Submit(context.Background(), true)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict), "got %v", err)

	close(release)
	wg.Wait()
}

func TestSubmitTimeoutResetsInFlight(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			time.Sleep(500 * time.Millisecond)
		}
		_ = json.NewEncoder(w).Encode(domain.AttendanceRecord{Status: domain.AttendancePresent})
	}))
	defer srv.Close()

	_, guard := testGuard(t, domain.RoleUser)
	svc := NewAttendanceService(testClient(srv.URL), guard, events.NewInMemoryDispatcher(),
		zap.NewNop(), 100*time.Millisecond, time.UTC)

	_, err := svc.Submit(context.Background(), true)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTimeout), "got %v", err)

	// the in-progress flag must be reset after failure
	_, err = svc.Submit(context.Background(), true)
	assert.NoError(t, err)
}

func TestHistoryCachesUntilInvalidated(t *testing.T) {
	var fetches, marks atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			marks.Add(1)
			_ = json.NewEncoder(w).Encode(domain.AttendanceRecord{Status: domain.AttendancePresent})
			return
		}
		fetches.Add(1)
		_ = json.NewEncoder(w).Encode([]domain.AttendanceRecord{
			{UserID: "u-1", DateOnly: "2026-08-27", Status: domain.AttendancePresent},
		})
	}))
	defer srv.Close()

	svc, _ := newAttendanceService(t, srv.URL, domain.RoleUser)

	_, err := svc.History(context.Background())
	require.NoError(t, err)
	_, err = svc.History(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetches.Load(), "second read must hit the cache")

	_, err = svc.Submit(context.Background(), true)
	require.NoError(t, err)

	_, err = svc.History(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load(), "a successful mark must invalidate the cache")
}
