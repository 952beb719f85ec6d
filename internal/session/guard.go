package session

import (
	"context"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/domain"
	"github.com/spec-kit/attendance-agent/internal/events"
)

// Claims describes the JWT payload the attendance service issues.
type Claims struct {
	Role domain.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Guard performs stateless local validity checks on the stored session. The
// signing secret lives on the server, so the guard decodes claims without
// verifying the signature; validity here means well-formed, unexpired and
// carrying the required role.
type Guard struct {
	store      *Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewGuard builds a guard over the given store. The dispatcher may be nil.
func NewGuard(store *Store, dispatcher events.Dispatcher, logger *zap.Logger) *Guard {
	return &Guard{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Valid reports whether a session is present, unexpired and matches the
// required role. Pass an empty role to accept any authenticated session.
// Detecting an expired token clears the stored session as a side effect.
func (g *Guard) Valid(required domain.Role) bool {
	sess, ok := g.Session(required)
	return ok && sess != nil
}

// Session returns the stored session when it passes the same checks as Valid.
func (g *Guard) Session(required domain.Role) (*domain.Session, bool) {
	sess, err := g.store.Load()
	if err != nil {
		g.logger.Warn("failed to load session", zap.Error(err))
		return nil, false
	}
	if sess == nil || sess.Token == "" {
		return nil, false
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(sess.Token, claims); err != nil {
		g.logger.Warn("stored token is not decodable", zap.Error(err))
		return nil, false
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(g.now()) {
		g.expire(sess)
		return nil, false
	}

	if required != "" {
		role := claims.Role
		if role == "" {
			role = sess.Role
		}
		if role != required {
			return nil, false
		}
	}
	return sess, true
}

// Invalidate clears all locally persisted session data unconditionally.
func (g *Guard) Invalidate() error {
	return g.store.Clear()
}

// expire clears stale session data so repeated checks do not keep tripping
// over an expired token.
func (g *Guard) expire(sess *domain.Session) {
	g.logger.Info("session expired, clearing stored credentials", zap.String("user_id", sess.UserID))
	if err := g.store.Clear(); err != nil {
		g.logger.Warn("failed to clear expired session", zap.Error(err))
	}
	if g.dispatcher != nil {
		_ = g.dispatcher.Publish(context.Background(),
			events.New(events.EventSessionExpired, events.SessionExpiredPayload{UserID: sess.UserID}))
	}
}
