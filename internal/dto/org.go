package dto

// Organizational hierarchy CRUD payloads. Each record is a name plus the
// parent it hangs from; the service checks the parent exists.

// CreateDepartmentRequest creates a hierarchy root.
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

// UpdateDepartmentRequest renames a department.
type UpdateDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

// CreateTrackRequest creates a track inside a department.
type CreateTrackRequest struct {
	Name         string `json:"name" validate:"required,min=2"`
	DepartmentID string `json:"department_id" validate:"required"`
}

// UpdateOrgNodeRequest renames a hierarchy node and optionally moves it to
// another parent. Used by every level below the department.
type UpdateOrgNodeRequest struct {
	Name     string  `json:"name" validate:"required,min=1"`
	ParentID *string `json:"parent_id,omitempty"`
}

// CreateLevelRequest creates a level inside a track.
type CreateLevelRequest struct {
	Name    string `json:"name" validate:"required,min=1"`
	TrackID string `json:"track_id" validate:"required"`
}

// CreateSemesterRequest creates a semester inside a level.
type CreateSemesterRequest struct {
	Name    string `json:"name" validate:"required,min=1"`
	LevelID string `json:"level_id" validate:"required"`
}

// CreateCourseUnitRequest creates a course unit inside a semester.
type CreateCourseUnitRequest struct {
	Name       string `json:"name" validate:"required,min=2"`
	SemesterID string `json:"semester_id" validate:"required"`
}

// CreateCourseElementRequest creates a course element inside a course unit.
type CreateCourseElementRequest struct {
	Name         string `json:"name" validate:"required,min=2"`
	CourseUnitID string `json:"course_unit_id" validate:"required"`
}
