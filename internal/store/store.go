package store

import (
	"context"
	"errors"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("record already exists")
	ErrStatusConflict = errors.New("request status already decided")
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type TutorRepository interface {
	ListTutors(ctx context.Context) ([]*models.TutorProfile, error)
	GetTutorByID(ctx context.Context, id string) (*models.TutorProfile, error)
	GetTutorByUserID(ctx context.Context, userID string) (*models.TutorProfile, error)
	CreateTutor(ctx context.Context, t *models.TutorProfile) error
	// ReplaceTutor overwrites the editable fields of an existing profile.
	// Reviews are not touched.
	ReplaceTutor(ctx context.Context, t *models.TutorProfile) error
}

type RequestRepository interface {
	// List methods return newest first.
	ListRequestsByStudent(ctx context.Context, studentID string) ([]*models.TuitionRequest, error)
	ListRequestsByTutor(ctx context.Context, tutorID string) ([]*models.TuitionRequest, error)
	GetRequestByID(ctx context.Context, id string) (*models.TuitionRequest, error)
	AppendRequest(ctx context.Context, r *models.TuitionRequest) error
	// UpdateRequestStatus moves a request from one status to another. It
	// returns ErrStatusConflict when the current status is not from.
	UpdateRequestStatus(ctx context.Context, id string, from, to models.RequestStatus) (*models.TuitionRequest, error)
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID, plainToken string, expiresAt time.Time) error
	FindRefreshToken(ctx context.Context, plainToken string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, plainToken string) error
	RotateRefreshToken(ctx context.Context, oldPlain, newPlain string, newExpiry time.Time) (*models.RefreshToken, error)
}

// Repository is the full storage capability set used by the API.
type Repository interface {
	UserRepository
	TutorRepository
	RequestRepository
	TokenRepository
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFound is used by handlers to detect not-found vs other errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
