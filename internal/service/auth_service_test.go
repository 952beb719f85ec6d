package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/api"
	"github.com/spec-kit/attendance-agent/internal/domain"
	apperrors "github.com/spec-kit/attendance-agent/pkg/util/errorutil"
)

func TestLoginRejectsMissingFields(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	store, guard := testGuard(t, "")
	svc := NewAuthService(testClient(srv.URL), store, guard, zap.NewNop())

	_, err := svc.Login(context.Background(), LoginInput{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	clientErr := apperrors.ToClientError(err)
	assert.Contains(t, clientErr.Details, "Email")
	assert.Contains(t, clientErr.Details, "Password")

	_, err = svc.Login(context.Background(), LoginInput{Email: "not-an-email", Password: "pw"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	assert.Zero(t, calls.Load(), "validation failures are recovered locally, no request is sent")
}

func TestLoginPersistsSession(t *testing.T) {
	tok := testToken(t, domain.RoleUser)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.LoginResponse{
			Token:          tok,
			UserID:         "u-1",
			Name:           "Asha",
			RegisterNumber: "9533001",
			Department:     "CSE",
			Role:           domain.RoleUser,
		})
	}))
	defer srv.Close()

	store, guard := testGuard(t, "")
	svc := NewAuthService(testClient(srv.URL), store, guard, zap.NewNop())

	sess, err := svc.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, sess.Role)

	persisted, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, tok, persisted.Token)
	assert.Equal(t, "9533001", persisted.RegisterNumber)

	assert.True(t, guard.Valid(domain.RoleUser))
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	store, guard := testGuard(t, "")
	svc := NewAuthService(testClient(srv.URL), store, guard, zap.NewNop())

	_, err := svc.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthMissing))

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, persisted, "a failed login must not persist a session")
}

func TestRegisterValidation(t *testing.T) {
	store, guard := testGuard(t, "")
	svc := NewAuthService(testClient("http://127.0.0.1:0"), store, guard, zap.NewNop())

	err := svc.Register(context.Background(), SignupInput{
		Name: "Asha", Email: "asha@example.com", Password: "short", RegisterNumber: "9533001", Department: "CSE",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestLogoutClearsSession(t *testing.T) {
	store, guard := testGuard(t, domain.RoleUser)
	svc := NewAuthService(testClient("http://127.0.0.1:0"), store, guard, zap.NewNop())

	require.NoError(t, svc.Logout())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, persisted)

	_, err = svc.CurrentSession()
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuthMissing))
}
