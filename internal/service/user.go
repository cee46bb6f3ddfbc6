package service

import (
	"context"
	"errors"
	"strings"

	"github.com/madhava-poojari/educonnect-api/internal/apperrors"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
)

type UserService struct {
	users store.UserRepository
}

func NewUserService(users store.UserRepository) *UserService {
	return &UserService{users: users}
}

// NewUser describes an account to create. An empty Password leaves the
// account without a password (demo and Google users).
type NewUser struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     models.Role
	Avatar   string
}

func (u *UserService) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !in.Role.Valid() {
		return nil, apperrors.Invalid("Invalid role", map[string]string{"role": "Role must be student or tutor"})
	}
	if _, err := u.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperrors.E(apperrors.KindConflict, "An account with this email already exists")
	} else if !store.IsNotFound(err) {
		return nil, err
	}

	hash := ""
	if in.Password != "" {
		h, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Phone:        in.Phone,
		Role:         in.Role,
		AvatarURL:    in.Avatar,
	}
	// ids are short, so retry a few times on collision
	for i := 0; i < 5; i++ {
		uid, err := utils.GenerateUserID()
		if err != nil {
			return nil, err
		}
		user.ID = uid
		err = u.users.CreateUser(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
		if _, err := u.users.GetUserByEmail(ctx, email); err == nil {
			return nil, apperrors.E(apperrors.KindConflict, "An account with this email already exists")
		}
	}
	return nil, errors.New("could not create unique user id")
}
