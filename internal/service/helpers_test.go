package service

import (
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/api"
	"github.com/spec-kit/attendance-agent/internal/config"
	"github.com/spec-kit/attendance-agent/internal/domain"
	"github.com/spec-kit/attendance-agent/internal/observability"
	"github.com/spec-kit/attendance-agent/internal/session"
)

func testClient(baseURL string) *api.Client {
	cfg := config.APIConfig{BaseURL: baseURL, TimeoutSeconds: 2, SubmitTimeoutSeconds: 2}
	return api.NewClient(cfg, zap.NewNop(), observability.NewMetrics())
}

func testToken(t *testing.T, role domain.Role) string {
	t.Helper()
	claims := &session.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func testGuard(t *testing.T, role domain.Role) (*session.Store, *session.Guard) {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	if role != "" {
		require.NoError(t, store.Save(&domain.Session{
			Token:          testToken(t, role),
			UserID:         "u-1",
			Name:           "Asha",
			RegisterNumber: "9533001",
			Department:     "CSE",
			Role:           role,
		}))
	}
	return store, session.NewGuard(store, nil, zap.NewNop())
}
