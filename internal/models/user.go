package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleTeacher        UserRole = "TEACHER"
	RoleRegistrar      UserRole = "REGISTRAR"
	RoleDepartmentHead UserRole = "DEPARTMENT_HEAD"
	RoleDirector       UserRole = "DIRECTOR"
	RoleAdmin          UserRole = "ADMIN"
)

// Valid reports whether the role belongs to the closed role set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleTeacher, RoleRegistrar, RoleDepartmentHead, RoleDirector, RoleAdmin:
		return true
	}
	return false
}

// TeacherGrade is the academic rank attached to teaching staff.
type TeacherGrade string

const (
	GradeProfesseurTitulaire TeacherGrade = "PROFESSEUR_TITULAIRE"
	GradeMaitreConferences   TeacherGrade = "MAITRE_DE_CONFERENCES"
	GradeMaitreAssistant     TeacherGrade = "MAITRE_ASSISTANT"
	GradeAssistant           TeacherGrade = "ASSISTANT"
)

// User represents an application user stored in the users table.
// DepartmentID is set for department heads and for teaching staff with a
// home department; it is what scopes a head's review authority.
type User struct {
	ID           string        `db:"id" json:"id"`
	Email        string        `db:"email" json:"email"`
	PasswordHash string        `db:"password_hash" json:"-"`
	FullName     string        `db:"full_name" json:"full_name"`
	Role         UserRole      `db:"role" json:"role"`
	DepartmentID *string       `db:"department_id" json:"department_id,omitempty"`
	Grade        *TeacherGrade `db:"grade" json:"grade,omitempty"`
	Active       bool          `db:"active" json:"active"`
	LastLogin    *time.Time    `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// Actor is the identity slice the workflow core reasons about: who acts,
// with which role, affiliated to which department.
type Actor struct {
	ID           string
	Role         UserRole
	DepartmentID string
}

// ActorFromUser projects a stored user onto the workflow actor shape.
func ActorFromUser(u *User) Actor {
	actor := Actor{ID: u.ID, Role: u.Role}
	if u.DepartmentID != nil {
		actor.DepartmentID = *u.DepartmentID
	}
	return actor
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role         *UserRole
	DepartmentID string
	Active       *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
