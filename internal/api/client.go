package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/config"
	"github.com/spec-kit/attendance-agent/internal/domain"
	"github.com/spec-kit/attendance-agent/internal/observability"
	apperrors "github.com/spec-kit/attendance-agent/pkg/util/errorutil"
)

// Client talks to the remote attendance service. All status code branching
// happens here; callers receive tagged ClientErrors and never inspect raw
// codes themselves.
type Client struct {
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewClient builds a client for the configured deployment.
func NewClient(cfg config.APIConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout(),
		logger:  logger,
		metrics: metrics,
	}
}

// Login authenticates and returns the identity envelope.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, fiber.MethodPost, "/user/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return c.do(ctx, fiber.MethodPost, "/user/signup", "", req, nil)
}

// MarkAttendance appends today's record. The server rejects a second mark for
// the same (userId, dateOnly); that rejection surfaces as CodeAlreadyMarked.
func (c *Client) MarkAttendance(ctx context.Context, token string, req MarkAttendanceRequest) (*domain.AttendanceRecord, error) {
	var rec domain.AttendanceRecord
	if err := c.do(ctx, fiber.MethodPost, "/attendance/", token, req, &rec); err != nil {
		return nil, err
	}
	if rec.DateOnly == "" {
		// some deployments respond with a bare acknowledgement
		rec = domain.AttendanceRecord{
			UserID:         req.UserID,
			Name:           req.Name,
			RegisterNumber: req.RegistrationNumber,
			Department:     req.Department,
			DateOnly:       req.DateOnly,
			Status:         req.AttendanceStatus,
		}
	}
	return &rec, nil
}

// Attendance fetches the user's attendance history.
func (c *Client) Attendance(ctx context.Context, token, userID string) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	if err := c.do(ctx, fiber.MethodGet, "/attendance/"+userID, token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// RecentLeave fetches the most recent leave request, or nil when none exists.
func (c *Client) RecentLeave(ctx context.Context, token, userID string) (*domain.LeaveRequest, error) {
	var envelope recentLeaveEnvelope
	if err := c.do(ctx, fiber.MethodGet, "/attendance/leave/"+userID, token, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.RecentLeaveRequest, nil
}

// CreateLeave submits a new leave request; the server creates it Pending.
func (c *Client) CreateLeave(ctx context.Context, token string, req CreateLeaveRequest) error {
	return c.do(ctx, fiber.MethodPost, "/user/leave", token, req, nil)
}

// Messages fetches admin messages addressed to the user.
func (c *Client) Messages(ctx context.Context, token, userID string) ([]domain.Message, error) {
	var msgs []domain.Message
	if err := c.do(ctx, fiber.MethodGet, "/attendance/message/"+userID, token, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// TodayReport fetches every user's record for the current date.
func (c *Client) TodayReport(ctx context.Context, token string) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	if err := c.do(ctx, fiber.MethodGet, "/admin", token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// StudentReport fetches a single student's records by register number.
func (c *Client) StudentReport(ctx context.Context, token, registerNumber string) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	if err := c.do(ctx, fiber.MethodGet, "/admin/"+registerNumber, token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DepartmentReport fetches records for one department.
func (c *Client) DepartmentReport(ctx context.Context, token, department string) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	if err := c.do(ctx, fiber.MethodGet, "/admin/department/"+department, token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AllAttendance fetches the full attendance dataset.
func (c *Client) AllAttendance(ctx context.Context, token string) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	if err := c.do(ctx, fiber.MethodGet, "/admin/all", token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// PendingLeaves fetches every user's pending leave requests.
func (c *Client) PendingLeaves(ctx context.Context, token string) ([]domain.LeaveRequest, error) {
	var leaves []domain.LeaveRequest
	if err := c.do(ctx, fiber.MethodGet, "/admin/leave/pending", token, nil, &leaves); err != nil {
		return nil, err
	}
	return leaves, nil
}

// ReviewLeave approves or rejects a leave request.
func (c *Client) ReviewLeave(ctx context.Context, token, leaveID string, status domain.LeaveStatus) error {
	return c.do(ctx, fiber.MethodPatch, "/admin/leave/"+leaveID, token, ReviewLeaveRequest{Status: status}, nil)
}

// PostMessage sends an admin message to a user.
func (c *Client) PostMessage(ctx context.Context, token string, req PostMessageRequest) error {
	return c.do(ctx, fiber.MethodPost, "/admin/message", token, req, nil)
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, token, userID string) error {
	return c.do(ctx, fiber.MethodDelete, "/user/"+userID, token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewTimeout(err)
	}

	url := c.baseURL + path
	var agent *fiber.Agent
	switch method {
	case fiber.MethodGet:
		agent = fiber.Get(url)
	case fiber.MethodPost:
		agent = fiber.Post(url)
	case fiber.MethodPatch:
		agent = fiber.Patch(url)
	case fiber.MethodDelete:
		agent = fiber.Delete(url)
	default:
		return apperrors.NewServerError(fmt.Sprintf("unsupported method %s", method), nil)
	}

	agent.Timeout(c.timeoutFor(ctx))
	agent.Set(fiber.HeaderXRequestID, uuid.NewString())
	if token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		agent.JSON(body)
	}

	start := time.Now()
	status, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return c.transportError(method, path, errs[0])
	}
	c.metrics.RecordCall(path, method, status, time.Since(start))

	if status >= http.StatusBadRequest {
		err := c.translateStatus(status, respBody)
		c.metrics.RecordError(path, method, apperrors.ToClientError(err).Code)
		c.logger.Debug("api call rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status))
		return err
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return apperrors.NewServerError("unexpected response body", err)
		}
	}
	return nil
}

// timeoutFor honors a caller deadline when one is tighter than the default.
func (c *Client) timeoutFor(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < c.timeout {
			return remaining
		}
	}
	return c.timeout
}

func (c *Client) transportError(method, path string, err error) error {
	if errors.Is(err, fasthttp.ErrTimeout) {
		c.metrics.RecordError(path, method, apperrors.CodeTimeout)
		return apperrors.NewTimeout(err)
	}
	c.metrics.RecordError(path, method, apperrors.CodeNetwork)
	return apperrors.NewNetworkUnreachable(err)
}

// translateStatus is the single place raw status codes become tagged errors.
func (c *Client) translateStatus(status int, body []byte) error {
	var payload apiError
	_ = json.Unmarshal(body, &payload)
	message := payload.text()

	duplicate := strings.Contains(strings.ToLower(message), "already")

	switch {
	case status == http.StatusConflict || (status == http.StatusBadRequest && duplicate):
		return apperrors.NewAlreadyMarked(message)
	case status == http.StatusBadRequest:
		if message == "" {
			message = "invalid request, check your inputs"
		}
		return apperrors.NewValidationError(message, nil)
	case status == http.StatusUnauthorized:
		if message == "" {
			message = "invalid credentials or expired session"
		}
		return apperrors.NewAuthMissing(message)
	case status == http.StatusForbidden:
		if message == "" {
			message = "your account is not authorized for this action"
		}
		return apperrors.NewForbidden(message)
	case status == http.StatusNotFound:
		return apperrors.NewNotFound("resource")
	case status >= http.StatusInternalServerError:
		return apperrors.NewServerError(message, nil)
	default:
		return apperrors.NewServerError(fmt.Sprintf("unexpected status %d", status), nil)
	}
}
