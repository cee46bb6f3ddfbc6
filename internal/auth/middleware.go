package auth

import (
	"net/http"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/config"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"github.com/madhava-poojari/educonnect-api/internal/session"
	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// Redirect is the payload guards answer with so the client knows where
// to send the user.
type Redirect struct {
	Redirect string `json:"redirect"`
}

// GetUserFromCtx returns the signed-in user for the request, or nil.
func GetUserFromCtx(r *http.Request) *models.User {
	return session.FromContext(r.Context()).User
}

// Authenticate resolves a bearer token into a session on the request
// context. Requests without a usable token continue with the empty
// session; the guards below decide what that means.
func Authenticate(cfg *config.Config, users store.UserRepository, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := utils.BearerToken(r)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := ParseAndValidateToken(cfg, tok)
			if err != nil {
				log.WithError(err).Debug("rejected access token")
				next.ServeHTTP(w, r)
				return
			}
			u, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if !store.IsNotFound(err) {
					log.WithError(err).WithField("user_id", claims.UserID).Warn("load session user")
				}
				next.ServeHTTP(w, r)
				return
			}
			issued := time.Now()
			if claims.IssuedAt != nil {
				issued = claims.IssuedAt.Time
			}
			s := session.Login(*u, tok, issued)
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// RequireUser rejects requests without a signed-in user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).Authenticated() {
			utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "please log in to continue", Redirect{session.LoginRoute}, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole lets the request through only when the signed-in user has
// role. Missing users are sent to the login page, other roles home.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			if !s.Authenticated() {
				utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "please log in to continue", Redirect{session.LoginRoute}, nil)
				return
			}
			if !s.HasRole(role) {
				utils.WriteJSONResponse(w, http.StatusForbidden, false, "this page is only available to "+string(role)+"s", Redirect{session.HomeRoute}, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
