package store

import (
	"context"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/models"
)

func (s *GormStore) listRequests(ctx context.Context, column, value string) ([]*models.TuitionRequest, error) {
	res := []*models.TuitionRequest{}
	if err := s.DB.WithContext(ctx).
		Where(column+" = ?", value).
		Order("created_at desc, id desc").
		Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (s *GormStore) ListRequestsByStudent(ctx context.Context, studentID string) ([]*models.TuitionRequest, error) {
	return s.listRequests(ctx, "student_id", studentID)
}

func (s *GormStore) ListRequestsByTutor(ctx context.Context, tutorID string) ([]*models.TuitionRequest, error) {
	return s.listRequests(ctx, "tutor_id", tutorID)
}

func (s *GormStore) GetRequestByID(ctx context.Context, id string) (*models.TuitionRequest, error) {
	var r models.TuitionRequest
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *GormStore) AppendRequest(ctx context.Context, r *models.TuitionRequest) error {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	return translate(s.DB.WithContext(ctx).Create(r).Error)
}

// UpdateRequestStatus is a compare-and-set on status so two concurrent
// decisions on the same request produce exactly one winner.
func (s *GormStore) UpdateRequestStatus(ctx context.Context, id string, from, to models.RequestStatus) (*models.TuitionRequest, error) {
	res := s.DB.WithContext(ctx).Model(&models.TuitionRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetRequestByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStatusConflict
	}
	return s.GetRequestByID(ctx, id)
}
