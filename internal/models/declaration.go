package models

import "time"

// DeclarationStatus captures workflow states for teaching-hour declarations.
// The string tokens are the stable wire format: they round-trip through the
// database and the API surface unchanged.
type DeclarationStatus string

const (
	StatusPending            DeclarationStatus = "pending"
	StatusRegistrarVerified  DeclarationStatus = "registrar_verified"
	StatusDepartmentApproved DeclarationStatus = "department_approved"
	StatusDirectorValidated  DeclarationStatus = "director_validated"
	StatusRejected           DeclarationStatus = "rejected"
)

// Valid reports whether the status belongs to the closed status set.
func (s DeclarationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRegistrarVerified, StatusDepartmentApproved,
		StatusDirectorValidated, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further approve transition exists from s.
func (s DeclarationStatus) Terminal() bool {
	return s == StatusDirectorValidated || s == StatusRejected
}

// MaxDailyHours is the cap on total hours declared for a single day.
const MaxDailyHours = 8.0

// Declaration is a single dated record of teaching hours submitted for one
// course element, moving through the verification pipeline.
type Declaration struct {
	ID         string `db:"id" json:"id"`
	AuthorID   string `db:"author_id" json:"author_id"`
	AuthorName string `db:"author_name" json:"author_name"`

	// Organizational path. Department and course element are mandatory; the
	// intermediate levels are optional but must chain consistently when set.
	DepartmentID    string  `db:"department_id" json:"department_id"`
	TrackID         *string `db:"track_id" json:"track_id,omitempty"`
	LevelID         *string `db:"level_id" json:"level_id,omitempty"`
	SemesterID      *string `db:"semester_id" json:"semester_id,omitempty"`
	CourseUnitID    *string `db:"course_unit_id" json:"course_unit_id,omitempty"`
	CourseElementID string  `db:"course_element_id" json:"course_element_id"`

	Date    time.Time `db:"date" json:"date"`
	HoursCM float64   `db:"hours_cm" json:"hours_cm"`
	HoursTD float64   `db:"hours_td" json:"hours_td"`
	HoursTP float64   `db:"hours_tp" json:"hours_tp"`
	Hours   float64   `db:"hours" json:"hours"`
	Notes   string    `db:"notes" json:"notes,omitempty"`

	Status DeclarationStatus `db:"status" json:"status"`

	RegistrarVerifiedBy  *string    `db:"registrar_verified_by" json:"registrar_verified_by,omitempty"`
	RegistrarVerifiedAt  *time.Time `db:"registrar_verified_at" json:"registrar_verified_at,omitempty"`
	DepartmentApprovedBy *string    `db:"department_approved_by" json:"department_approved_by,omitempty"`
	DepartmentApprovedAt *time.Time `db:"department_approved_at" json:"department_approved_at,omitempty"`
	DirectorValidatedBy  *string    `db:"director_validated_by" json:"director_validated_by,omitempty"`
	DirectorValidatedAt  *time.Time `db:"director_validated_at" json:"director_validated_at,omitempty"`
	RejectedBy           *string    `db:"rejected_by" json:"rejected_by,omitempty"`
	RejectedAt           *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectionReason      *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`

	PaymentStatus *string `db:"payment_status" json:"payment_status,omitempty"`

	// Version backs optimistic concurrency: every successful write increments
	// it, and a transition only commits against the version it decided on.
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TotalHours returns the recomputed sum of the three hour categories.
func (d *Declaration) TotalHours() float64 {
	return d.HoursCM + d.HoursTD + d.HoursTP
}

// Editable reports whether the author may still modify or delete the record.
func (d *Declaration) Editable() bool {
	return d.Status == StatusPending || d.Status == StatusRejected
}

// DeclarationFilter constrains listing queries.
type DeclarationFilter struct {
	Status       []DeclarationStatus
	AuthorID     string
	DepartmentID string
	DateFrom     *time.Time
	DateTo       *time.Time
	Limit        int
	Offset       int
}

// DeclarationStats are the role-scoped aggregate counters surfaced on the
// dashboard. The population each role sees matches its review scope.
type DeclarationStats struct {
	TotalHours           float64 `json:"total_hours"`
	PendingDeclarations  int     `json:"pending_declarations"`
	ApprovedDeclarations int     `json:"approved_declarations"`
	RejectedDeclarations int     `json:"rejected_declarations"`
}
