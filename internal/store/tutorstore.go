package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func reviewsNewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("date desc")
}

// ListTutors returns every profile in creation order, without reviews.
func (s *GormStore) ListTutors(ctx context.Context) ([]*models.TutorProfile, error) {
	var res []*models.TutorProfile
	if err := s.DB.WithContext(ctx).Order("created_at asc, id asc").Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (s *GormStore) GetTutorByID(ctx context.Context, id string) (*models.TutorProfile, error) {
	var t models.TutorProfile
	if err := s.DB.WithContext(ctx).Preload("Reviews", reviewsNewestFirst).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *GormStore) GetTutorByUserID(ctx context.Context, userID string) (*models.TutorProfile, error) {
	var t models.TutorProfile
	if err := s.DB.WithContext(ctx).Preload("Reviews", reviewsNewestFirst).Where("user_id = ?", userID).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// CreateTutor inserts the profile together with its seed reviews.
func (s *GormStore) CreateTutor(ctx context.Context, t *models.TutorProfile) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	for i := range t.Reviews {
		if t.Reviews[i].ID == "" {
			t.Reviews[i].ID = uuid.NewString()
		}
		t.Reviews[i].TutorID = t.ID
	}
	return translate(s.DB.WithContext(ctx).Create(t).Error)
}

func (s *GormStore) ReplaceTutor(ctx context.Context, t *models.TutorProfile) error {
	t.UpdatedAt = time.Now()
	res := s.DB.WithContext(ctx).Model(&models.TutorProfile{}).
		Where("id = ?", t.ID).
		Omit(clause.Associations, "id", "created_at").
		Select("*").
		Updates(t)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
