package dto

import (
	"time"

	"github.com/noah-isme/uni-hours-api/internal/models"
)

// CreateDeclarationRequest is the payload for submitting teaching hours.
type CreateDeclarationRequest struct {
	DepartmentID    string  `json:"department_id" validate:"required"`
	TrackID         *string `json:"track_id,omitempty"`
	LevelID         *string `json:"level_id,omitempty"`
	SemesterID      *string `json:"semester_id,omitempty"`
	CourseUnitID    *string `json:"course_unit_id,omitempty"`
	CourseElementID string  `json:"course_element_id" validate:"required"`
	Date            string  `json:"date" validate:"required"`
	HoursCM         float64 `json:"hours_cm" validate:"gte=0"`
	HoursTD         float64 `json:"hours_td" validate:"gte=0"`
	HoursTP         float64 `json:"hours_tp" validate:"gte=0"`
	Notes           string  `json:"notes"`
}

// UpdateDeclarationRequest carries author edits to an editable declaration.
// Fields left nil are kept unchanged.
type UpdateDeclarationRequest struct {
	DepartmentID    *string  `json:"department_id,omitempty"`
	TrackID         *string  `json:"track_id,omitempty"`
	LevelID         *string  `json:"level_id,omitempty"`
	SemesterID      *string  `json:"semester_id,omitempty"`
	CourseUnitID    *string  `json:"course_unit_id,omitempty"`
	CourseElementID *string  `json:"course_element_id,omitempty"`
	Date            *string  `json:"date,omitempty"`
	HoursCM         *float64 `json:"hours_cm,omitempty" validate:"omitempty,gte=0"`
	HoursTD         *float64 `json:"hours_td,omitempty" validate:"omitempty,gte=0"`
	HoursTP         *float64 `json:"hours_tp,omitempty" validate:"omitempty,gte=0"`
	Notes           *string  `json:"notes,omitempty"`
}

// ReviewDeclarationRequest captures a reviewer decision. Reason is mandatory
// when rejecting.
type ReviewDeclarationRequest struct {
	Reason string `json:"reason"`
}

// DeclarationQuery mirrors supported listing filters.
type DeclarationQuery struct {
	Status       []models.DeclarationStatus
	DepartmentID string
	DateFrom     *time.Time
	DateTo       *time.Time
	Limit        int
	Offset       int
}
