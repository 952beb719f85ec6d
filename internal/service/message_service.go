package service

import (
	"context"

	"github.com/spec-kit/attendance-agent/internal/api"
	"github.com/spec-kit/attendance-agent/internal/domain"
	"github.com/spec-kit/attendance-agent/internal/session"
	apperrors "github.com/spec-kit/attendance-agent/pkg/util/errorutil"
)

// MessageService reads admin messages addressed to the logged-in user.
type MessageService struct {
	client *api.Client
	guard  *session.Guard
}

// NewMessageService builds the service.
func NewMessageService(client *api.Client, guard *session.Guard) *MessageService {
	return &MessageService{client: client, guard: guard}
}

// Inbox fetches the user's messages.
func (s *MessageService) Inbox(ctx context.Context) ([]domain.Message, error) {
	sess, ok := s.guard.Session(domain.RoleUser)
	if !ok {
		return nil, apperrors.NewAuthMissing("a valid user session is required")
	}
	return s.client.Messages(ctx, sess.Token, sess.UserID)
}
