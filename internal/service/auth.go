package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/apperrors"
	"github.com/madhava-poojari/educonnect-api/internal/auth"
	"github.com/madhava-poojari/educonnect-api/internal/config"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"github.com/madhava-poojari/educonnect-api/internal/session"
	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// AuthStore is the storage AuthService needs.
type AuthStore interface {
	store.UserRepository
	store.TokenRepository
}

type AuthService struct {
	cfg    *config.Config
	users  *UserService
	store  AuthStore
	google GoogleAuthenticator
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewAuthService(cfg *config.Config, s AuthStore, google GoogleAuthenticator, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		cfg:    cfg,
		users:  NewUserService(s),
		store:  s,
		google: google,
		log:    log.WithField("component", "auth"),
		now:    time.Now,
	}
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,emailaddr"`
	Password string `json:"password" validate:"required,min=6"`
}

var loginMessages = messages{
	"email.required":    "Email is required",
	"email.emailaddr":   "Invalid email address",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 6 characters",
}

type RegisterInput struct {
	Name            string      `json:"name" validate:"required,min=2"`
	Email           string      `json:"email" validate:"required,emailaddr"`
	Phone           string      `json:"phone" validate:"required,phone"`
	Password        string      `json:"password" validate:"required,min=6"`
	ConfirmPassword string      `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            models.Role `json:"role" validate:"required,oneof=student tutor"`
}

var registerMessages = messages{
	"name.required":             "Name is required",
	"name.min":                  "Name must be at least 2 characters",
	"email.required":            "Email is required",
	"email.emailaddr":           "Invalid email address",
	"phone.required":            "Phone number is required",
	"phone.phone":               "Invalid phone number (10 digits required)",
	"password.required":         "Password is required",
	"password.min":              "Password must be at least 6 characters",
	"confirm_password.required": "Please confirm your password",
	"confirm_password.eqfield":  "Passwords do not match",
	"role":                      "Role must be student or tutor",
}

// AuthResult is a signed-in session plus the tokens that carry it.
type AuthResult struct {
	Session        session.Session
	AccessToken    string
	ExpiresIn      int64
	RefreshToken   string
	RefreshExpires time.Time
	Redirect       string
}

var errInvalidCredentials = apperrors.E(apperrors.KindUnauthorized, "Invalid email or password")

// Login signs a user in. In demo mode any credentials are accepted and an
// unknown email becomes a new account whose role is guessed from the
// address. In password mode the stored hash must match.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := check(in, loginMessages); err != nil {
		return nil, err
	}

	u, err := s.store.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
	case store.IsNotFound(err) && s.cfg.AuthMode == config.AuthModeDemo:
		u, err = s.users.CreateUser(ctx, NewUser{
			Email: in.Email,
			Name:  strings.SplitN(in.Email, "@", 2)[0],
			Role:  session.InferRole(in.Email),
		})
		if err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("demo user created")
	case store.IsNotFound(err):
		return nil, errInvalidCredentials
	default:
		return nil, err
	}

	if s.cfg.AuthMode == config.AuthModePassword {
		if u.PasswordHash == "" {
			return nil, errInvalidCredentials
		}
		ok, err := utils.ComparePasswordAndHash(in.Password, u.PasswordHash)
		if err != nil || !ok {
			return nil, errInvalidCredentials
		}
	}
	return s.signIn(ctx, u, "login")
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = models.Role(strings.ToLower(string(in.Role)))
	if err := check(in, registerMessages); err != nil {
		return nil, err
	}
	u, err := s.users.CreateUser(ctx, NewUser{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Phone:    in.Phone,
		Role:     in.Role,
	})
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, u, "register")
}

// Google signs in with a Google authorization code. New accounts are
// students.
func (s *AuthService) Google(ctx context.Context, code string) (*AuthResult, error) {
	if s.google == nil {
		return nil, apperrors.E(apperrors.KindUnavailable, "Google sign-in is not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.Invalid("missing code", map[string]string{"code": "Authorization code is required"})
	}
	id, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "Google sign-in failed", err)
	}
	u, err := s.store.GetUserByEmail(ctx, id.Email)
	if store.IsNotFound(err) {
		u, err = s.users.CreateUser(ctx, NewUser{
			Email:  id.Email,
			Name:   id.Name,
			Role:   models.RoleStudent,
			Avatar: id.Picture,
		})
	}
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, u, "google")
}

// Refresh rotates a refresh token and issues a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, apperrors.E(apperrors.KindUnauthorized, "missing refresh token")
	}
	newPlain := utils.RandomToken()
	expires := s.now().Add(s.cfg.RefreshTokenTTL)
	rt, err := s.store.RotateRefreshToken(ctx, refreshToken, newPlain, expires)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.E(apperrors.KindUnauthorized, "invalid refresh token")
		}
		return nil, err
	}
	u, err := s.store.GetUserByID(ctx, rt.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.E(apperrors.KindUnauthorized, "invalid refresh token")
		}
		return nil, err
	}
	access, err := auth.GenerateAccessToken(s.cfg, u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Session:        session.Login(*u, access, s.now()),
		AccessToken:    access,
		ExpiresIn:      int64(s.cfg.AccessTokenTTL.Seconds()),
		RefreshToken:   newPlain,
		RefreshExpires: expires,
		Redirect:       session.DashboardRoute(u.Role),
	}, nil
}

// Logout revokes the refresh token, if any, and returns the empty session.
func (s *AuthService) Logout(ctx context.Context, current session.Session, refreshToken string) (session.Session, error) {
	if refreshToken != "" {
		if err := s.store.RevokeRefreshToken(ctx, refreshToken); err != nil {
			return current, err
		}
	}
	if current.Authenticated() {
		s.log.WithField("user_id", current.UserID()).Info("logout")
	}
	return session.Logout(current), nil
}

// Me returns the user behind a session.
func (s *AuthService) Me(ctx context.Context, current session.Session) (*models.User, error) {
	if !current.Authenticated() {
		return nil, apperrors.E(apperrors.KindUnauthorized, "please log in to continue")
	}
	u, err := s.store.GetUserByID(ctx, current.UserID())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.E(apperrors.KindUnauthorized, "please log in to continue")
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) signIn(ctx context.Context, u *models.User, method string) (*AuthResult, error) {
	access, err := auth.GenerateAccessToken(s.cfg, u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	refresh := utils.RandomToken()
	expires := s.now().Add(s.cfg.RefreshTokenTTL)
	if err := s.store.SaveRefreshToken(ctx, u.ID, refresh, expires); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role, "method": method}).Info("signed in")
	return &AuthResult{
		Session:        session.Login(*u, access, s.now()),
		AccessToken:    access,
		ExpiresIn:      int64(s.cfg.AccessTokenTTL.Seconds()),
		RefreshToken:   refresh,
		RefreshExpires: expires,
		Redirect:       session.DashboardRoute(u.Role),
	}, nil
}
