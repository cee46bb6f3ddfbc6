package service

import (
	"context"

	"github.com/madhava-poojari/educonnect-api/internal/models"
	"github.com/madhava-poojari/educonnect-api/internal/session"
)

type StatusCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

func countStatuses(reqs []*models.TuitionRequest) StatusCounts {
	c := StatusCounts{Total: len(reqs)}
	for _, r := range reqs {
		switch {
		case r.Status.IsPending():
			c.Pending++
		case r.Status.IsAccepted():
			c.Accepted++
		case r.Status.IsRejected():
			c.Rejected++
		}
	}
	return c
}

type StudentDashboard struct {
	User     *models.User             `json:"user"`
	Requests []*models.TuitionRequest `json:"requests"`
	Counts   StatusCounts             `json:"counts"`
}

type TutorStats struct {
	TotalStudents   int     `json:"total_students"`
	PendingRequests int     `json:"pending_requests"`
	Rating          float64 `json:"rating"`
	HourlyRate      int     `json:"hourly_rate"`
}

// AcceptedStudent is one row of the tutor's "my students" list.
type AcceptedStudent struct {
	RequestID string `json:"request_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Subject   string `json:"subject"`
	Class     string `json:"class"`
	Location  string `json:"location"`
	Since     string `json:"since"`
}

type TutorDashboard struct {
	Profile  *models.TutorProfile     `json:"profile"`
	Stats    TutorStats               `json:"stats"`
	Pending  []*models.TuitionRequest `json:"pending_requests"`
	Students []AcceptedStudent        `json:"accepted_students"`
	Counts   StatusCounts             `json:"counts"`
}

// DashboardService assembles the per-role landing pages.
type DashboardService struct {
	auth     *AuthService
	requests *RequestService
	tutors   *TutorService
}

func NewDashboardService(auth *AuthService, requests *RequestService, tutors *TutorService) *DashboardService {
	return &DashboardService{auth: auth, requests: requests, tutors: tutors}
}

func (d *DashboardService) Student(ctx context.Context, current session.Session) (*StudentDashboard, error) {
	if err := requireRole(current, models.RoleStudent, "open the student dashboard"); err != nil {
		return nil, err
	}
	u, err := d.auth.Me(ctx, current)
	if err != nil {
		return nil, err
	}
	reqs, err := d.requests.ListForStudent(ctx, current)
	if err != nil {
		return nil, err
	}
	return &StudentDashboard{User: u, Requests: reqs, Counts: countStatuses(reqs)}, nil
}

func (d *DashboardService) Tutor(ctx context.Context, current session.Session) (*TutorDashboard, error) {
	if err := requireRole(current, models.RoleTutor, "open the tutor dashboard"); err != nil {
		return nil, err
	}
	profile, err := d.tutors.EnsureProfile(ctx, current)
	if err != nil {
		return nil, err
	}
	reqs, err := d.requests.ListForTutor(ctx, current)
	if err != nil {
		return nil, err
	}

	pending := []*models.TuitionRequest{}
	students := []AcceptedStudent{}
	for _, r := range reqs {
		switch {
		case r.Status.IsPending():
			pending = append(pending, r)
		case r.Status.IsAccepted():
			students = append(students, AcceptedStudent{
				RequestID: r.ID,
				Name:      r.StudentName,
				Email:     r.StudentEmail,
				Subject:   r.Subject,
				Class:     r.Class,
				Location:  r.Location,
				Since:     r.RequestDate,
			})
		}
	}
	return &TutorDashboard{
		Profile: profile,
		Stats: TutorStats{
			TotalStudents:   profile.TotalStudents,
			PendingRequests: len(pending),
			Rating:          profile.Rating,
			HourlyRate:      profile.HourlyRate,
		},
		Pending:  pending,
		Students: students,
		Counts:   countStatuses(reqs),
	}, nil
}
