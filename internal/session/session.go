// Package session models who is signed in. A Session is a plain value:
// Login and Logout return new sessions and never mutate their input.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/models"
)

const (
	StudentDashboard = "/student-dashboard"
	TutorDashboard   = "/tutor-dashboard"
	LoginRoute       = "/login"
	HomeRoute        = "/"
)

// Session is the signed-in state. The zero value has no user.
type Session struct {
	User     *models.User
	Token    string
	IssuedAt time.Time
}

// Login returns a session for user. The user is copied.
func Login(user models.User, token string, now time.Time) Session {
	return Session{User: &user, Token: token, IssuedAt: now}
}

// Logout returns the empty session.
func Logout(Session) Session {
	return Session{}
}

func (s Session) Authenticated() bool {
	return s.User != nil
}

func (s Session) HasRole(role models.Role) bool {
	return s.User != nil && s.User.Role == role
}

// UserID returns the signed-in user's id, or "".
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// InferRole is the demo-mode guess at a role for an unknown email: any
// address containing "tutor" is a tutor. It must never decide access for
// a stored user.
func InferRole(email string) models.Role {
	if strings.Contains(strings.ToLower(email), "tutor") {
		return models.RoleTutor
	}
	return models.RoleStudent
}

// DashboardRoute is where a user of role lands after signing in.
func DashboardRoute(role models.Role) string {
	if role == models.RoleTutor {
		return TutorDashboard
	}
	return StudentDashboard
}

type ctxKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or the empty session.
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(ctxKey{}).(Session); ok {
		return s
	}
	return Session{}
}
