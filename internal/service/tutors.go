package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/apperrors"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"github.com/madhava-poojari/educonnect-api/internal/search"
	"github.com/madhava-poojari/educonnect-api/internal/session"
	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ProfileInput is the tutor "edit profile" form. Nil lists keep the
// stored values.
type ProfileInput struct {
	Name          string   `json:"name" validate:"required,min=2,max=100"`
	Qualification string   `json:"qualification" validate:"max=200"`
	Experience    string   `json:"experience" validate:"max=100"`
	HourlyRate    int      `json:"hourly_rate" validate:"gte=0,lte=100000"`
	Location      string   `json:"location" validate:"max=200"`
	Description   string   `json:"description" validate:"max=2000"`
	Subjects      []string `json:"subjects" validate:"omitempty,dive,subject"`
	Classes       []string `json:"classes" validate:"omitempty,dive,class"`
	Achievements  []string `json:"achievements" validate:"omitempty,max=20,dive,max=200"`
	Availability  []string `json:"availability" validate:"omitempty,max=14,dive,max=100"`
}

var profileMessages = messages{
	"name.required":    "Name is required",
	"name.min":         "Name must be at least 2 characters",
	"hourly_rate":      "Hourly rate must be between 0 and 100000",
	"subjects.subject": "Please choose subjects from the list",
	"classes.class":    "Please choose classes from the list",
}

var allowedAvatarExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type TutorService struct {
	tutors  store.TutorRepository
	storage utils.AvatarStorage
	log     logrus.FieldLogger

	// serializes profile auto-creation
	createMu sync.Mutex
}

func NewTutorService(tutors store.TutorRepository, storage utils.AvatarStorage, log logrus.FieldLogger) *TutorService {
	return &TutorService{tutors: tutors, storage: storage, log: log.WithField("component", "tutors")}
}

// Search lists tutors matching c, in catalog order.
func (s *TutorService) Search(ctx context.Context, c search.Criteria) ([]*models.TutorProfile, error) {
	all, err := s.tutors.ListTutors(ctx)
	if err != nil {
		return nil, err
	}
	out := search.Filter(all, c)
	for _, t := range out {
		s.resolveAvatar(ctx, t)
	}
	return out, nil
}

// Get returns a full profile including reviews.
func (s *TutorService) Get(ctx context.Context, id string) (*models.TutorProfile, error) {
	t, err := s.tutors.GetTutorByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.E(apperrors.KindNotFound, "tutor not found")
		}
		return nil, err
	}
	s.resolveAvatar(ctx, t)
	return t, nil
}

// EnsureProfile returns the signed-in tutor's profile, creating an empty
// one named after the user on first use.
func (s *TutorService) EnsureProfile(ctx context.Context, current session.Session) (*models.TutorProfile, error) {
	t, err := s.ownProfile(ctx, current)
	if err != nil {
		return nil, err
	}
	s.resolveAvatar(ctx, t)
	return t, nil
}

// ownProfile is EnsureProfile without avatar resolution, for callers that
// write the profile back.
func (s *TutorService) ownProfile(ctx context.Context, current session.Session) (*models.TutorProfile, error) {
	if err := requireRole(current, models.RoleTutor, "manage a tutor profile"); err != nil {
		return nil, err
	}
	t, err := s.tutors.GetTutorByUserID(ctx, current.UserID())
	if err == nil {
		return t, nil
	}
	if !store.IsNotFound(err) {
		return nil, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()
	if t, err := s.tutors.GetTutorByUserID(ctx, current.UserID()); err == nil {
		return t, nil
	}
	t = &models.TutorProfile{
		ID:                utils.GenerateID(),
		UserID:            current.UserID(),
		Name:              current.User.Name,
		ProfilePictureURL: current.User.AvatarURL,
		Subjects:          datatypes.JSONSlice[string]{},
		Classes:           datatypes.JSONSlice[string]{},
		Achievements:      datatypes.JSONSlice[string]{},
		Availability:      datatypes.JSONSlice[string]{},
		CreatedAt:         time.Now(),
	}
	if err := s.tutors.CreateTutor(ctx, t); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"tutor_id": t.ID, "user_id": t.UserID}).Info("tutor profile created")
	return t, nil
}

// UpdateProfile replaces the editable fields of the signed-in tutor's
// profile. Rating, review count and reviews are never changed here.
func (s *TutorService) UpdateProfile(ctx context.Context, current session.Session, in ProfileInput) (*models.TutorProfile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	if err := check(in, profileMessages); err != nil {
		return nil, err
	}
	t, err := s.ownProfile(ctx, current)
	if err != nil {
		return nil, err
	}

	t.Name = in.Name
	t.Qualification = strings.TrimSpace(in.Qualification)
	t.Experience = strings.TrimSpace(in.Experience)
	t.HourlyRate = in.HourlyRate
	t.Location = in.Location
	t.Description = strings.TrimSpace(in.Description)
	if in.Subjects != nil {
		t.Subjects = datatypes.JSONSlice[string](utils.UniqueStrings(in.Subjects))
	}
	if in.Classes != nil {
		t.Classes = datatypes.JSONSlice[string](utils.UniqueStrings(in.Classes))
	}
	if in.Achievements != nil {
		t.Achievements = datatypes.JSONSlice[string](utils.UniqueStrings(in.Achievements))
	}
	if in.Availability != nil {
		t.Availability = datatypes.JSONSlice[string](utils.UniqueStrings(in.Availability))
	}
	if err := s.tutors.ReplaceTutor(ctx, t); err != nil {
		return nil, err
	}
	s.log.WithField("tutor_id", t.ID).Info("tutor profile updated")
	return s.Get(ctx, t.ID)
}

// SetAvatar stores a new profile picture and drops the previous upload.
func (s *TutorService) SetAvatar(ctx context.Context, current session.Session, filename string, r io.Reader) (*models.TutorProfile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedAvatarExt[ext] {
		return nil, apperrors.Invalid("unsupported image type", map[string]string{"file": "Image must be jpg, png, webp or gif"})
	}
	t, err := s.ownProfile(ctx, current)
	if err != nil {
		return nil, err
	}
	key, err := s.storage.SaveFile(ctx, "avatars/"+t.ID, filename, r)
	if err != nil {
		return nil, err
	}
	return s.replaceAvatar(ctx, current, key)
}

// ClearAvatar removes the profile picture.
func (s *TutorService) ClearAvatar(ctx context.Context, current session.Session) (*models.TutorProfile, error) {
	return s.replaceAvatar(ctx, current, "")
}

func (s *TutorService) replaceAvatar(ctx context.Context, current session.Session, key string) (*models.TutorProfile, error) {
	t, err := s.ownProfile(ctx, current)
	if err != nil {
		return nil, err
	}
	old := t.ProfilePictureURL
	t.ProfilePictureURL = key
	if err := s.tutors.ReplaceTutor(ctx, t); err != nil {
		return nil, err
	}
	if isStorageKey(old) {
		if err := s.storage.DeleteFile(ctx, old); err != nil {
			s.log.WithError(err).WithField("key", old).Warn("delete old avatar")
		}
	}
	return s.Get(ctx, t.ID)
}

func isStorageKey(v string) bool {
	return v != "" && !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://")
}

// resolveAvatar turns a stored upload key into a URL clients can load.
func (s *TutorService) resolveAvatar(ctx context.Context, t *models.TutorProfile) {
	if !isStorageKey(t.ProfilePictureURL) || s.storage == nil {
		return
	}
	url, err := s.storage.URL(ctx, t.ProfilePictureURL)
	if err != nil {
		s.log.WithError(err).WithField("tutor_id", t.ID).Warn("resolve avatar url")
		return
	}
	t.ProfilePictureURL = url
}
