package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/madhava-poojari/educonnect-api/internal/models"
)

// MemoryStore keeps everything in process memory. State is lost on
// restart. All returned records are copies.
type MemoryStore struct {
	mu sync.RWMutex

	users       map[string]*models.User
	usersByMail map[string]string

	tutors     map[string]*models.TutorProfile
	tutorOrder []string

	requests     map[string]*models.TuitionRequest
	requestOrder []string // newest first

	tokens map[string]*models.RefreshToken // keyed by token hash
}

var _ Repository = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       map[string]*models.User{},
		usersByMail: map[string]string{},
		tutors:      map[string]*models.TutorProfile{},
		requests:    map[string]*models.TuitionRequest{},
		tokens:      map[string]*models.RefreshToken{},
	}
}

func mailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

/* ------------------ Users ------------------ */

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return ErrDuplicate
	}
	if _, ok := s.usersByMail[mailKey(u.Email)]; ok {
		return ErrDuplicate
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	c := *u
	s.users[u.ID] = &c
	s.usersByMail[mailKey(u.Email)] = u.ID
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByMail[mailKey(email)]
	if !ok {
		return nil, ErrNotFound
	}
	c := *s.users[id]
	return &c, nil
}

/* ------------------ Tutors ------------------ */

func (s *MemoryStore) ListTutors(_ context.Context) ([]*models.TutorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.TutorProfile, 0, len(s.tutorOrder))
	for _, id := range s.tutorOrder {
		out = append(out, s.tutors[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) GetTutorByID(_ context.Context, id string) (*models.TutorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tutors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (s *MemoryStore) GetTutorByUserID(_ context.Context, userID string) (*models.TutorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID == "" {
		return nil, ErrNotFound
	}
	for _, id := range s.tutorOrder {
		if t := s.tutors[id]; t.UserID == userID {
			return t.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateTutor(_ context.Context, t *models.TutorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, ok := s.tutors[t.ID]; ok {
		return ErrDuplicate
	}
	for i := range t.Reviews {
		if t.Reviews[i].ID == "" {
			t.Reviews[i].ID = uuid.NewString()
		}
		t.Reviews[i].TutorID = t.ID
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	s.tutors[t.ID] = t.Clone()
	s.tutorOrder = append(s.tutorOrder, t.ID)
	return nil
}

func (s *MemoryStore) ReplaceTutor(_ context.Context, t *models.TutorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.tutors[t.ID]
	if !ok {
		return ErrNotFound
	}
	c := t.Clone()
	c.Reviews = old.Reviews
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = time.Now()
	s.tutors[t.ID] = c
	return nil
}

/* ------------------ Tuition requests ------------------ */

func (s *MemoryStore) listRequests(match func(*models.TuitionRequest) bool) []*models.TuitionRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.TuitionRequest{}
	for _, id := range s.requestOrder {
		if r := s.requests[id]; match(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (s *MemoryStore) ListRequestsByStudent(_ context.Context, studentID string) ([]*models.TuitionRequest, error) {
	return s.listRequests(func(r *models.TuitionRequest) bool { return r.StudentID == studentID }), nil
}

func (s *MemoryStore) ListRequestsByTutor(_ context.Context, tutorID string) ([]*models.TuitionRequest, error) {
	return s.listRequests(func(r *models.TuitionRequest) bool { return r.TutorID == tutorID }), nil
}

func (s *MemoryStore) GetRequestByID(_ context.Context, id string) (*models.TuitionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// AppendRequest prepends r so listings stay newest first.
func (s *MemoryStore) AppendRequest(_ context.Context, r *models.TuitionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[r.ID]; ok {
		return ErrDuplicate
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	s.requests[r.ID] = r.Clone()
	s.requestOrder = append([]string{r.ID}, s.requestOrder...)
	return nil
}

func (s *MemoryStore) UpdateRequestStatus(_ context.Context, id string, from, to models.RequestStatus) (*models.TuitionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.Status != from {
		return nil, ErrStatusConflict
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return r.Clone(), nil
}

/* ------------------ Refresh tokens ------------------ */

func (s *MemoryStore) SaveRefreshToken(_ context.Context, userID, plainToken string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := hashTokenPlain(plainToken)
	s.tokens[h] = &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: h,
		IssuedAt:  time.Now(),
		ExpiresAt: expiresAt,
	}
	return nil
}

func (s *MemoryStore) validToken(plainToken string) (*models.RefreshToken, bool) {
	rt, ok := s.tokens[hashTokenPlain(plainToken)]
	if !ok || rt.Revoked || !rt.ExpiresAt.After(time.Now()) {
		return nil, false
	}
	return rt, true
}

func (s *MemoryStore) FindRefreshToken(_ context.Context, plainToken string) (*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.validToken(plainToken)
	if !ok {
		return nil, ErrNotFound
	}
	c := *rt
	return &c, nil
}

func (s *MemoryStore) RevokeRefreshToken(_ context.Context, plainToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rt, ok := s.tokens[hashTokenPlain(plainToken)]; ok {
		rt.Revoked = true
	}
	return nil
}

func (s *MemoryStore) RotateRefreshToken(_ context.Context, oldPlain, newPlain string, newExpiry time.Time) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.validToken(oldPlain)
	if !ok {
		return nil, ErrNotFound
	}
	old.Revoked = true
	h := hashTokenPlain(newPlain)
	rt := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    old.UserID,
		TokenHash: h,
		IssuedAt:  time.Now(),
		ExpiresAt: newExpiry,
	}
	s.tokens[h] = rt
	c := *rt
	return &c, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
