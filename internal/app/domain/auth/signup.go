package auth

import (
	"fmt"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

const MinPasswordLength = 6

// SignupForm is the sign-up form as the browser posts it.
type SignupForm struct {
	Name            string      `json:"name" form:"name" binding:"required"`
	Email           string      `json:"email" form:"email" binding:"required,email"`
	Password        string      `json:"password" form:"password" binding:"required"`
	ConfirmPassword string      `json:"confirmPassword" form:"confirmPassword" binding:"required"`
	Role            models.Role `json:"role" form:"role"`
	College         string      `json:"college" form:"college"`
	City            string      `json:"city" form:"city"`
	Batch           string      `json:"batch" form:"batch"`
	Phone           string      `json:"phone" form:"phone"`
}

// Validate applies the checks done before the form is sent to the backend and returns the
// request to send. An empty role signs up a student; admins cannot self-register.
func (f SignupForm) Validate() (models.SignupRequest, error) {
	if len(f.Password) < MinPasswordLength {
		return models.SignupRequest{}, fmt.Errorf("%w: %w", models.ErrValidation, models.ErrPasswordTooShort)
	}
	if f.Password != f.ConfirmPassword {
		return models.SignupRequest{}, fmt.Errorf("%w: %w", models.ErrValidation, models.ErrPasswordMismatch)
	}

	role := f.Role
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleMentor {
		return models.SignupRequest{}, fmt.Errorf("%w: role %s cannot sign up", models.ErrValidation, role)
	}

	return models.SignupRequest{
		Name:            f.Name,
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
		Role:            role,
		College:         f.College,
		City:            f.City,
		Batch:           f.Batch,
		Phone:           f.Phone,
	}, nil
}
