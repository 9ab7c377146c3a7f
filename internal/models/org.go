package models

import "time"

// The organizational hierarchy is a strict containment chain:
// department -> track -> level -> semester -> course unit -> course element.
// Each record holds a name and a single parent reference.

// Department is the root of the hierarchy and the unit of review scoping.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Track is a study programme inside a department.
type Track struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Level is a study year inside a track.
type Level struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TrackID   string    `db:"track_id" json:"track_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Semester belongs to a level.
type Semester struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	LevelID   string    `db:"level_id" json:"level_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseUnit (UE) belongs to a semester.
type CourseUnit struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	SemesterID string    `db:"semester_id" json:"semester_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// CourseElement (EC) is the leaf a declaration is filed against.
type CourseElement struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	CourseUnitID string    `db:"course_unit_id" json:"course_unit_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CoursePath groups the hierarchy references carried by a declaration so the
// referential-integrity check can be expressed once.
type CoursePath struct {
	DepartmentID    string
	TrackID         *string
	LevelID         *string
	SemesterID      *string
	CourseUnitID    *string
	CourseElementID string
}
