package store

import (
	"context"
	"strings"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/models"
)

/* ------------------ User CRUD ------------------ */

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return translate(s.DB.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
