package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/api"
	"github.com/spec-kit/attendance-agent/internal/domain"
	"github.com/spec-kit/attendance-agent/internal/session"
	apperrors "github.com/spec-kit/attendance-agent/pkg/util/errorutil"
)

// LoginInput is the login form.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// SignupInput is the registration form. Password rules mirror what the
// service enforces on its side.
type SignupInput struct {
	Name           string `validate:"required"`
	Email          string `validate:"required,email"`
	Password       string `validate:"required,min=8"`
	RegisterNumber string `validate:"required"`
	Department     string `validate:"required"`
}

// AuthService coordinates login, registration and logout against the remote
// service, persisting the resulting session locally.
type AuthService struct {
	client *api.Client
	store  *session.Store
	guard  *session.Guard
	logger *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(client *api.Client, store *session.Store, guard *session.Guard, logger *zap.Logger) *AuthService {
	return &AuthService{client: client, store: store, guard: guard, logger: logger}
}

// Login validates the form, authenticates remotely and persists the session.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.Session, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	resp, err := s.client.Login(ctx, api.LoginRequest{Email: input.Email, Password: input.Password})
	if err != nil {
		return nil, err
	}

	role := resp.Role
	if !role.Valid() {
		role = domain.RoleUser
	}

	sess := &domain.Session{
		Token:          resp.Token,
		UserID:         resp.UserID,
		Name:           resp.Name,
		RegisterNumber: resp.RegisterNumber,
		Department:     resp.Department,
		Role:           role,
		SavedAt:        time.Now(),
	}
	if err := s.store.Save(sess); err != nil {
		return nil, err
	}

	s.logger.Info("logged in", zap.String("user_id", sess.UserID), zap.String("role", string(sess.Role)))
	return sess, nil
}

// Register creates a new account. The caller logs in separately afterwards.
func (s *AuthService) Register(ctx context.Context, input SignupInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}
	return s.client.Signup(ctx, api.SignupRequest{
		Name:           input.Name,
		Email:          input.Email,
		Password:       input.Password,
		RegisterNumber: input.RegisterNumber,
		Department:     input.Department,
	})
}

// Logout clears the persisted session.
func (s *AuthService) Logout() error {
	s.logger.Info("logging out")
	return s.guard.Invalidate()
}

// CurrentSession returns the persisted session if it is still valid for any
// role.
func (s *AuthService) CurrentSession() (*domain.Session, error) {
	sess, ok := s.guard.Session("")
	if !ok {
		return nil, apperrors.NewAuthMissing("not logged in")
	}
	return sess, nil
}
