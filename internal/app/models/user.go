package models

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is the portal role a user signs in with.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleMentor  Role = "MENTOR"
	RoleAdmin   Role = "ADMIN"
)

// Status is the moderation state of an account.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
	StatusBlocked Status = "BLOCKED"
)

// label title-cases an enum value. Casers are stateful, so each call gets its own.
func label(v string) string {
	return cases.Title(language.English).String(v)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// Label returns the human readable form, e.g. "Student".
func (r Role) Label() string {
	return label(string(r))
}

func (s Status) Label() string {
	return label(string(s))
}

// User is the identity returned by the portal backend on login and profile reads.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	Status        Status `json:"status"`
	EmailVerified bool   `json:"emailVerified"`
	Phone         string `json:"phone,omitempty"`
	College       string `json:"college,omitempty"`
	City          string `json:"city,omitempty"`
	Batch         string `json:"batch,omitempty"`
	Bio           string `json:"bio,omitempty"`
	MentorID      string `json:"mentorId,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// HasRole reports whether the user's role is in roles. An empty set matches any role.
func (u User) HasRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u User) Blocked() bool {
	return u.Status == StatusBlocked
}

// AuthResponse is the body of /auth/login and /auth/signup.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Credentials are posted to /auth/login.
type Credentials struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// SignupRequest is posted to /auth/signup.
type SignupRequest struct {
	Name            string `json:"name" form:"name" binding:"required"`
	Email           string `json:"email" form:"email" binding:"required,email"`
	Password        string `json:"password" form:"password" binding:"required"`
	ConfirmPassword string `json:"-" form:"confirmPassword"`
	Role            Role   `json:"role" form:"role"`
	College         string `json:"college,omitempty" form:"college"`
	City            string `json:"city,omitempty" form:"city"`
	Batch           string `json:"batch,omitempty" form:"batch"`
	Phone           string `json:"phone,omitempty" form:"phone"`
}

// ProfileUpdate is the editable subset of a profile sent to PUT /profile.
type ProfileUpdate struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone,omitempty"`
	College string `json:"college,omitempty"`
	City    string `json:"city,omitempty"`
	Batch   string `json:"batch,omitempty"`
	Bio     string `json:"bio,omitempty"`
}
