package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/madhava-poojari/educonnect-api/internal/apperrors"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"github.com/madhava-poojari/educonnect-api/internal/session"
	"github.com/madhava-poojari/educonnect-api/internal/store"
	"github.com/madhava-poojari/educonnect-api/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// NoTimeSlotMessage is returned when a request names no preferred slot.
const NoTimeSlotMessage = "Please select at least one preferred time slot."

// RequestInput is the tuition request form.
type RequestInput struct {
	TutorID           string   `json:"tutor_id" validate:"required"`
	Subject           string   `json:"subject" validate:"required,subject"`
	Class             string   `json:"class" validate:"required,class"`
	PreferredSchedule []string `json:"preferred_schedule" validate:"dive,timeslot"`
	Duration          string   `json:"duration" validate:"omitempty,duration"`
	Budget            string   `json:"budget" validate:"max=50"`
	Location          string   `json:"location" validate:"required,max=200"`
	Message           string   `json:"message" validate:"max=2000"`
	StartDate         string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

var requestMessages = messages{
	"tutor_id.required":           "Tutor is required",
	"subject.required":            "Subject is required",
	"subject.subject":             "Please choose a subject from the list",
	"class.required":              "Class is required",
	"class.class":                 "Please choose a class from the list",
	"preferred_schedule.timeslot": "Unknown time slot",
	"duration":                    "Please choose a session duration from the list",
	"budget":                      "Budget is too long",
	"location.required":           "Location is required",
	"location.max":                "Location is too long",
	"message":                     "Message must be at most 2000 characters",
	"start_date":                  "Start date must be in YYYY-MM-DD format",
}

func (in *RequestInput) normalize() {
	in.TutorID = strings.TrimSpace(in.TutorID)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Class = strings.TrimSpace(in.Class)
	in.Duration = strings.TrimSpace(in.Duration)
	in.Budget = strings.TrimSpace(in.Budget)
	in.Location = strings.TrimSpace(in.Location)
	in.Message = strings.TrimSpace(in.Message)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.PreferredSchedule = utils.UniqueStrings(in.PreferredSchedule)
}

// RequestService owns tuition request submission and the tutor's
// accept/reject decisions.
type RequestService struct {
	requests store.RequestRepository
	tutors   store.TutorRepository
	log      logrus.FieldLogger
	timeout  time.Duration
	delay    time.Duration
	now      func() time.Time
}

// NewRequestService builds the service. Every operation runs under
// timeout; Submit additionally waits delay before storing, which lets
// a deployment mimic a slow backend.
func NewRequestService(requests store.RequestRepository, tutors store.TutorRepository, log logrus.FieldLogger, timeout, delay time.Duration) *RequestService {
	return &RequestService{
		requests: requests,
		tutors:   tutors,
		log:      log.WithField("component", "requests"),
		timeout:  timeout,
		delay:    delay,
		now:      time.Now,
	}
}

func (s *RequestService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ctxError maps context failures onto typed errors and passes others through.
func ctxError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.KindTimeout, "The request took too long. Please try again.", err)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(apperrors.KindUnavailable, "request cancelled", err)
	}
	return err
}

func (s *RequestService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func requireRole(current session.Session, role models.Role, action string) error {
	if !current.Authenticated() {
		return apperrors.E(apperrors.KindUnauthorized, "please log in to continue")
	}
	if !current.HasRole(role) {
		return apperrors.E(apperrors.KindForbidden, "only "+string(role)+"s can "+action)
	}
	return nil
}

// Submit validates in and appends a new pending request from the
// signed-in student. Nothing is stored when any step fails.
func (s *RequestService) Submit(ctx context.Context, current session.Session, in RequestInput) (*models.TuitionRequest, error) {
	if err := requireRole(current, models.RoleStudent, "send tuition requests"); err != nil {
		return nil, err
	}
	in.normalize()
	if err := check(in, requestMessages); err != nil {
		return nil, err
	}
	if len(in.PreferredSchedule) == 0 {
		return nil, apperrors.Invalid(NoTimeSlotMessage, map[string]string{"preferred_schedule": NoTimeSlotMessage})
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tutor, err := s.tutors.GetTutorByID(ctx, in.TutorID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.E(apperrors.KindNotFound, "tutor not found")
		}
		return nil, ctxError(err)
	}
	if err := s.wait(ctx); err != nil {
		return nil, ctxError(err)
	}

	now := s.now()
	req := &models.TuitionRequest{
		ID:                utils.GenerateID(),
		TutorID:           tutor.ID,
		TutorName:         tutor.Name,
		StudentID:         current.User.ID,
		StudentName:       current.User.Name,
		StudentEmail:      current.User.Email,
		Subject:           in.Subject,
		Class:             in.Class,
		PreferredSchedule: datatypes.JSONSlice[string](in.PreferredSchedule),
		Duration:          in.Duration,
		Budget:            in.Budget,
		Location:          in.Location,
		Message:           in.Message,
		StartDate:         in.StartDate,
		RequestDate:       now.Format("2006-01-02"),
		Status:            models.RequestStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.requests.AppendRequest(ctx, req); err != nil {
		return nil, ctxError(err)
	}
	s.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"tutor_id":   req.TutorID,
		"student_id": req.StudentID,
		"subject":    req.Subject,
	}).Info("tuition request submitted")
	return req, nil
}

// Accept moves a pending request addressed to the signed-in tutor to accepted.
func (s *RequestService) Accept(ctx context.Context, current session.Session, id string) (*models.TuitionRequest, error) {
	return s.decide(ctx, current, id, models.RequestStatusAccepted)
}

// Reject moves a pending request addressed to the signed-in tutor to rejected.
func (s *RequestService) Reject(ctx context.Context, current session.Session, id string) (*models.TuitionRequest, error) {
	return s.decide(ctx, current, id, models.RequestStatusRejected)
}

func (s *RequestService) decide(ctx context.Context, current session.Session, id string, to models.RequestStatus) (*models.TuitionRequest, error) {
	if err := requireRole(current, models.RoleTutor, "answer tuition requests"); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tutor, err := s.tutors.GetTutorByUserID(ctx, current.UserID())
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.E(apperrors.KindForbidden, "no tutor profile for this account")
		}
		return nil, ctxError(err)
	}
	req, err := s.requests.GetRequestByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.E(apperrors.KindNotFound, "request not found")
		}
		return nil, ctxError(err)
	}
	if req.TutorID != tutor.ID {
		return nil, apperrors.E(apperrors.KindForbidden, "this request was sent to another tutor")
	}

	updated, err := s.requests.UpdateRequestStatus(ctx, id, models.RequestStatusPending, to)
	switch {
	case errors.Is(err, store.ErrStatusConflict):
		return nil, apperrors.Wrap(apperrors.KindConflict, "request has already been answered", err)
	case store.IsNotFound(err):
		return nil, apperrors.E(apperrors.KindNotFound, "request not found")
	case err != nil:
		return nil, ctxError(err)
	}
	s.log.WithFields(logrus.Fields{
		"request_id": id,
		"tutor_id":   tutor.ID,
		"status":     to,
	}).Info("tuition request answered")
	return updated, nil
}

// ListForStudent returns the signed-in student's requests, newest first.
func (s *RequestService) ListForStudent(ctx context.Context, current session.Session) ([]*models.TuitionRequest, error) {
	if err := requireRole(current, models.RoleStudent, "view sent requests"); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	reqs, err := s.requests.ListRequestsByStudent(ctx, current.UserID())
	return reqs, ctxError(err)
}

// ListForTutor returns requests addressed to the signed-in tutor, newest
// first. A tutor without a profile has none.
func (s *RequestService) ListForTutor(ctx context.Context, current session.Session) ([]*models.TuitionRequest, error) {
	if err := requireRole(current, models.RoleTutor, "view received requests"); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	tutor, err := s.tutors.GetTutorByUserID(ctx, current.UserID())
	if err != nil {
		if store.IsNotFound(err) {
			return []*models.TuitionRequest{}, nil
		}
		return nil, ctxError(err)
	}
	reqs, err := s.requests.ListRequestsByTutor(ctx, tutor.ID)
	return reqs, ctxError(err)
}

// List returns the requests relevant to whoever is signed in.
func (s *RequestService) List(ctx context.Context, current session.Session) ([]*models.TuitionRequest, error) {
	if current.HasRole(models.RoleTutor) {
		return s.ListForTutor(ctx, current)
	}
	return s.ListForStudent(ctx, current)
}
