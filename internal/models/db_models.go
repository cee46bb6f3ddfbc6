package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID    string `gorm:"primaryKey;size:10" json:"id"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `gorm:"type:text;not null" json:"role"`
	AvatarURL    string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TutorProfile struct {
	ID                string                      `gorm:"primaryKey;size:36" json:"id"`
	UserID            string                      `gorm:"index;size:10" json:"user_id,omitempty"`
	Name              string                      `gorm:"not null" json:"name"`
	ProfilePictureURL string                      `json:"profile_picture,omitempty"`
	Subjects          datatypes.JSONSlice[string] `json:"subjects"`
	Classes           datatypes.JSONSlice[string] `json:"classes"`
	Location          string                      `json:"location"`
	Rating            float64                     `json:"rating"`
	ReviewCount       int                         `json:"review_count"`
	HourlyRate        int                         `json:"hourly_rate"`
	Experience        string                      `json:"experience"`
	Qualification     string                      `json:"qualification,omitempty"`
	Description       string                      `gorm:"type:text" json:"description"`
	TotalStudents     int                         `json:"total_students"`
	Achievements      datatypes.JSONSlice[string] `json:"achievements,omitempty"`
	Availability      datatypes.JSONSlice[string] `json:"availability,omitempty"`
	Reviews           []Review                    `gorm:"foreignKey:TutorID" json:"reviews,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate the result freely.
func (t *TutorProfile) Clone() *TutorProfile {
	if t == nil {
		return nil
	}
	c := *t
	c.Subjects = append(datatypes.JSONSlice[string]{}, t.Subjects...)
	c.Classes = append(datatypes.JSONSlice[string]{}, t.Classes...)
	c.Achievements = append(datatypes.JSONSlice[string]{}, t.Achievements...)
	c.Availability = append(datatypes.JSONSlice[string]{}, t.Availability...)
	c.Reviews = append([]Review{}, t.Reviews...)
	return &c
}

type Review struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	TutorID     string    `gorm:"index;size:36;not null" json:"tutor_id"`
	StudentName string    `json:"student_name"`
	Rating      int       `json:"rating"`
	Comment     string    `gorm:"type:text" json:"comment"`
	Date        string    `json:"date"`
	Subject     string    `json:"subject"`
	CreatedAt   time.Time `json:"-"`
}

type TuitionRequest struct {
	ID                string                      `gorm:"primaryKey;size:36" json:"id"`
	TutorID           string                      `gorm:"index;size:36;not null" json:"tutor_id"`
	TutorName         string                      `json:"tutor_name"`
	StudentID         string                      `gorm:"index;size:10" json:"student_id"`
	StudentName       string                      `json:"student_name"`
	StudentEmail      string                      `json:"student_email,omitempty"`
	Subject           string                      `json:"subject"`
	Class             string                      `json:"class"`
	PreferredSchedule datatypes.JSONSlice[string] `json:"preferred_schedule"`
	Duration          string                      `json:"duration,omitempty"`
	Budget            string                      `json:"budget,omitempty"`
	Location          string                      `json:"location"`
	Message           string                      `gorm:"type:text" json:"message,omitempty"`
	StartDate         string                      `json:"start_date,omitempty"`
	RequestDate       string                      `json:"request_date"`
	Status            RequestStatus               `gorm:"type:text;not null;index" json:"status"`
	CreatedAt         time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

func (r *TuitionRequest) Clone() *TuitionRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.PreferredSchedule = append(datatypes.JSONSlice[string]{}, r.PreferredSchedule...)
	return &c
}

type RefreshToken struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:10" json:"user_id"`
	TokenHash string    `gorm:"not null;index" json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
}
