package dto

import "github.com/noah-isme/uni-hours-api/internal/models"

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Email        string               `json:"email" validate:"required,email"`
	Password     string               `json:"password" validate:"required,min=6"`
	FullName     string               `json:"full_name" validate:"required,min=2"`
	Role         models.UserRole      `json:"role" validate:"required"`
	DepartmentID *string              `json:"department_id,omitempty"`
	Grade        *models.TeacherGrade `json:"grade,omitempty"`
}

// UpdateUserRequest carries admin edits to an account.
type UpdateUserRequest struct {
	Email        *string              `json:"email,omitempty" validate:"omitempty,email"`
	FullName     *string              `json:"full_name,omitempty" validate:"omitempty,min=2"`
	Role         *models.UserRole     `json:"role,omitempty"`
	DepartmentID *string              `json:"department_id,omitempty"`
	Grade        *models.TeacherGrade `json:"grade,omitempty"`
	Active       *bool                `json:"active,omitempty"`
}
