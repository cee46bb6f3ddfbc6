package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/madhava-poojari/educonnect-api/internal/models"
	"gorm.io/datatypes"
)

// Demo account identities.
const (
	DemoStudentID    = "USR00DEMOS"
	DemoStudentEmail = "student@demo.com"
	DemoTutorUserID  = "USR00DEMOT"
	DemoTutorEmail   = "tutor@demo.com"
)

// DemoSet is the fixture loaded into a fresh repository.
type DemoSet struct {
	Users    []*models.User
	Tutors   []*models.TutorProfile
	Requests []*models.TuitionRequest // oldest first
}

func list(v ...string) datatypes.JSONSlice[string] {
	return datatypes.JSONSlice[string](v)
}

func demoRequestID(n int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("educonnect:demo-request:%d", n))).String()
}

func day(s string, hour int) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t.Add(time.Duration(hour) * time.Hour)
}

// DemoData returns a fresh copy of the demo fixture on every call.
func DemoData() DemoSet {
	created := day("2023-06-01", 0)

	users := []*models.User{
		{ID: DemoStudentID, Email: DemoStudentEmail, Name: "John Doe", Phone: "9876543210", Role: models.RoleStudent, CreatedAt: created},
		{ID: DemoTutorUserID, Email: DemoTutorEmail, Name: "Dr. Sarah Johnson", Phone: "9876500001", Role: models.RoleTutor, CreatedAt: created},
		{ID: "USR00RAHUL", Email: "rahul@demo.com", Name: "Rahul Sharma", Phone: "9876500011", Role: models.RoleStudent, CreatedAt: created},
		{ID: "USR00PRIYA", Email: "priya@demo.com", Name: "Priya Gupta", Phone: "9876500012", Role: models.RoleStudent, CreatedAt: created},
		{ID: "USR000AMIT", Email: "amit@demo.com", Name: "Amit Kumar", Phone: "9876500013", Role: models.RoleStudent, CreatedAt: created},
	}

	tutors := []*models.TutorProfile{
		{
			ID:                "1",
			UserID:            DemoTutorUserID,
			Name:              "Dr. Sarah Johnson",
			ProfilePictureURL: "https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=150",
			Subjects:          list("Mathematics", "Physics"),
			Classes:           list("Class 9", "Class 10", "Class 11", "Class 12"),
			Location:          "Delhi, Sector 12",
			Rating:            4.9,
			ReviewCount:       45,
			HourlyRate:        800,
			Experience:        "8 years",
			Qualification:     "Ph.D. in Mathematics, IIT Delhi",
			Description:       "Experienced mathematics and physics tutor with a strong record of board exam and JEE results.",
			TotalStudents:     120,
			Achievements: list(
				"Best Teacher Award 2022",
				"95% students scored above 90% in board exams",
				"Published researcher in applied mathematics",
			),
			Availability: list(
				"Monday - Friday: 4 PM - 8 PM",
				"Saturday: 10 AM - 6 PM",
				"Sunday: 10 AM - 2 PM",
			),
			Reviews: []models.Review{
				{ID: "rev-1-1", StudentName: "Rahul Sharma", Rating: 5, Comment: "Excellent teacher! Made complex topics very easy to understand.", Date: "2024-01-10", Subject: "Mathematics"},
				{ID: "rev-1-2", StudentName: "Priya Gupta", Rating: 5, Comment: "Very patient and thorough. My physics grades improved significantly.", Date: "2024-01-05", Subject: "Physics"},
				{ID: "rev-1-3", StudentName: "Amit Kumar", Rating: 4, Comment: "Great teaching methods and always available for doubts.", Date: "2023-12-28", Subject: "Mathematics"},
			},
			CreatedAt: created,
		},
		{
			ID:                "2",
			Name:              "Priya Sharma",
			ProfilePictureURL: "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=150",
			Subjects:          list("Chemistry", "Biology"),
			Classes:           list("Class 8", "Class 9", "Class 10", "Class 11", "Class 12"),
			Location:          "Mumbai, Andheri",
			Rating:            4.8,
			ReviewCount:       32,
			HourlyRate:        700,
			Experience:        "6 years",
			Description:       "Chemistry and biology specialist focused on NEET and board preparation.",
			CreatedAt:         created.Add(time.Minute),
		},
		{
			ID:                "3",
			Name:              "Raj Patel",
			ProfilePictureURL: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=150",
			Subjects:          list("English", "Hindi"),
			Classes:           list("Class 6", "Class 7", "Class 8", "Class 9", "Class 10"),
			Location:          "Bangalore, Koramangala",
			Rating:            4.7,
			ReviewCount:       28,
			HourlyRate:        600,
			Experience:        "5 years",
			Description:       "Language tutor helping students build grammar, writing and literature skills.",
			CreatedAt:         created.Add(2 * time.Minute),
		},
	}

	reqs := []*models.TuitionRequest{
		{
			ID: demoRequestID(1), TutorID: "1", TutorName: "Dr. Sarah Johnson",
			StudentID: "USR000AMIT", StudentName: "Amit Kumar", StudentEmail: "amit@demo.com",
			Subject: "Mathematics", Class: "Class 11",
			PreferredSchedule: list("Afternoon (12 PM - 6 PM)"), Duration: "1.5-hours",
			Budget: "₹800/hr", Location: "Delhi, Sector 20",
			Message:     "Need help with calculus and coordinate geometry",
			RequestDate: "2024-01-10", Status: models.RequestStatusAccepted,
			CreatedAt: day("2024-01-10", 9),
		},
		{
			ID: demoRequestID(2), TutorID: "2", TutorName: "Priya Sharma",
			StudentID: DemoStudentID, StudentName: "John Doe", StudentEmail: DemoStudentEmail,
			Subject: "Chemistry", Class: "Class 12",
			PreferredSchedule: list("Evening (6 PM - 10 PM)"), Duration: "1-hour",
			Budget: "₹700/hr", Location: "Delhi, Sector 12",
			Message:     "Organic chemistry preparation for board exams",
			RequestDate: "2024-01-10", Status: models.RequestStatusAccepted,
			CreatedAt: day("2024-01-10", 11),
		},
		{
			ID: demoRequestID(3), TutorID: "1", TutorName: "Dr. Sarah Johnson",
			StudentID: "USR00PRIYA", StudentName: "Priya Gupta", StudentEmail: "priya@demo.com",
			Subject: "Physics", Class: "Class 12",
			PreferredSchedule: list("Morning (6 AM - 12 PM)", "Evening (6 PM - 10 PM)"), Duration: "2-hours",
			Budget: "₹900/hr", Location: "Delhi, Sector 8",
			Message:     "Need intensive coaching for JEE preparation",
			RequestDate: "2024-01-14", Status: models.RequestStatusPending,
			CreatedAt: day("2024-01-14", 10),
		},
		{
			ID: demoRequestID(4), TutorID: "1", TutorName: "Dr. Sarah Johnson",
			StudentID: DemoStudentID, StudentName: "John Doe", StudentEmail: DemoStudentEmail,
			Subject: "Mathematics", Class: "Class 10",
			PreferredSchedule: list("Evening (6 PM - 10 PM)"), Duration: "1-hour",
			Budget: "₹800/hr", Location: "Delhi, Sector 12",
			Message:     "Need help with trigonometry and algebra",
			RequestDate: "2024-01-15", Status: models.RequestStatusPending,
			CreatedAt: day("2024-01-15", 9),
		},
		{
			ID: demoRequestID(5), TutorID: "1", TutorName: "Dr. Sarah Johnson",
			StudentID: "USR00RAHUL", StudentName: "Rahul Sharma", StudentEmail: "rahul@demo.com",
			Subject: "Mathematics", Class: "Class 10",
			PreferredSchedule: list("Evening (6 PM - 10 PM)"), Duration: "1-hour",
			Budget: "₹700/hr", Location: "Delhi, Sector 15",
			Message:     "Need help with trigonometry and algebra preparation for board exams",
			RequestDate: "2024-01-15", Status: models.RequestStatusPending,
			CreatedAt: day("2024-01-15", 12),
		},
	}

	return DemoSet{Users: users, Tutors: tutors, Requests: reqs}
}

// Seed loads the demo fixture into repo. Records that already exist are
// left alone, so running it twice is harmless. When passwordHash is set
// every demo user gets it.
func Seed(ctx context.Context, repo Repository, passwordHash string) error {
	data := DemoData()
	for _, u := range data.Users {
		if _, err := repo.GetUserByEmail(ctx, u.Email); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		u.PasswordHash = passwordHash
		if err := repo.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	for _, t := range data.Tutors {
		if _, err := repo.GetTutorByID(ctx, t.ID); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("seed tutor %s: %w", t.ID, err)
		}
		if err := repo.CreateTutor(ctx, t); err != nil {
			return fmt.Errorf("seed tutor %s: %w", t.ID, err)
		}
	}
	for _, r := range data.Requests {
		if _, err := repo.GetRequestByID(ctx, r.ID); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("seed request %s: %w", r.ID, err)
		}
		if err := repo.AppendRequest(ctx, r); err != nil {
			return fmt.Errorf("seed request %s: %w", r.ID, err)
		}
	}
	return nil
}
