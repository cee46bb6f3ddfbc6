package models

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTutor
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) IsPending() bool  { return s == RequestStatusPending }
func (s RequestStatus) IsAccepted() bool { return s == RequestStatusAccepted }
func (s RequestStatus) IsRejected() bool { return s == RequestStatusRejected }
