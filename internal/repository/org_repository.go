package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-hours-api/internal/models"
)

// OrgRepository persists the organizational hierarchy:
// departments, tracks, levels, semesters, course units and course elements.
type OrgRepository struct {
	db *sqlx.DB
}

// NewOrgRepository constructs the repository.
func NewOrgRepository(db *sqlx.DB) *OrgRepository {
	return &OrgRepository{db: db}
}

// Departments

func (r *OrgRepository) CreateDepartment(ctx context.Context, d *models.Department) error {
	stampNew(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	const query = `INSERT INTO departments (id, name, created_at, updated_at)
	VALUES (:id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, d); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

func (r *OrgRepository) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	var d models.Department
	if err := r.db.GetContext(ctx, &d, `SELECT id, name, created_at, updated_at FROM departments WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *OrgRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var out []models.Department
	if err := r.db.SelectContext(ctx, &out, `SELECT id, name, created_at, updated_at FROM departments ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return out, nil
}

func (r *OrgRepository) UpdateDepartment(ctx context.Context, d *models.Department) error {
	d.UpdatedAt = time.Now().UTC()
	return r.execOne(ctx, `UPDATE departments SET name = $1, updated_at = $2 WHERE id = $3`, d.Name, d.UpdatedAt, d.ID)
}

func (r *OrgRepository) DeleteDepartment(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM departments WHERE id = $1`, id)
}

// Tracks

func (r *OrgRepository) CreateTrack(ctx context.Context, t *models.Track) error {
	stampNew(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	const query = `INSERT INTO tracks (id, name, department_id, created_at, updated_at)
	VALUES (:id, :name, :department_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("create track: %w", err)
	}
	return nil
}

func (r *OrgRepository) GetTrack(ctx context.Context, id string) (*models.Track, error) {
	var t models.Track
	if err := r.db.GetContext(ctx, &t, `SELECT id, name, department_id, created_at, updated_at FROM tracks WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *OrgRepository) ListTracks(ctx context.Context, departmentID string) ([]models.Track, error) {
	query := `SELECT id, name, department_id, created_at, updated_at FROM tracks`
	args := []interface{}{}
	if departmentID != "" {
		query += ` WHERE department_id = $1`
		args = append(args, departmentID)
	}
	query += ` ORDER BY name`
	var out []models.Track
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	return out, nil
}

func (r *OrgRepository) UpdateTrack(ctx context.Context, t *models.Track) error {
	t.UpdatedAt = time.Now().UTC()
	return r.execOne(ctx, `UPDATE tracks SET name = $1, department_id = $2, updated_at = $3 WHERE id = $4`,
		t.Name, t.DepartmentID, t.UpdatedAt, t.ID)
}

func (r *OrgRepository) DeleteTrack(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM tracks WHERE id = $1`, id)
}

// Levels

func (r *OrgRepository) CreateLevel(ctx context.Context, l *models.Level) error {
	stampNew(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	const query = `INSERT INTO levels (id, name, track_id, created_at, updated_at)
	VALUES (:id, :name, :track_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, l); err != nil {
		return fmt.Errorf("create level: %w", err)
	}
	return nil
}

func (r *OrgRepository) GetLevel(ctx context.Context, id string) (*models.Level, error) {
	var l models.Level
	if err := r.db.GetContext(ctx, &l, `SELECT id, name, track_id, created_at, updated_at FROM levels WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *OrgRepository) ListLevels(ctx context.Context, trackID string) ([]models.Level, error) {
	query := `SELECT id, name, track_id, created_at, updated_at FROM levels`
	args := []interface{}{}
	if trackID != "" {
		query += ` WHERE track_id = $1`
		args = append(args, trackID)
	}
	query += ` ORDER BY name`
	var out []models.Level
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return out, nil
}

func (r *OrgRepository) UpdateLevel(ctx context.Context, l *models.Level) error {
	l.UpdatedAt = time.Now().UTC()
	return r.execOne(ctx, `UPDATE levels SET name = $1, track_id = $2, updated_at = $3 WHERE id = $4`,
		l.Name, l.TrackID, l.UpdatedAt, l.ID)
}

func (r *OrgRepository) DeleteLevel(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM levels WHERE id = $1`, id)
}

// Semesters

func (r *OrgRepository) CreateSemester(ctx context.Context, s *models.Semester) error {
	stampNew(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	const query = `INSERT INTO semesters (id, name, level_id, created_at, updated_at)
	VALUES (:id, :name, :level_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}

func (r *OrgRepository) GetSemester(ctx context.Context, id string) (*models.Semester, error) {
	var s models.Semester
	if err := r.db.GetContext(ctx, &s, `SELECT id, name, level_id, created_at, updated_at FROM semesters WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *OrgRepository) ListSemesters(ctx context.Context, levelID string) ([]models.Semester, error) {
	query := `SELECT id, name, level_id, created_at, updated_at FROM semesters`
	args := []interface{}{}
	if levelID != "" {
		query += ` WHERE level_id = $1`
		args = append(args, levelID)
	}
	query += ` ORDER BY name`
	var out []models.Semester
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return out, nil
}

func (r *OrgRepository) UpdateSemester(ctx context.Context, s *models.Semester) error {
	s.UpdatedAt = time.Now().UTC()
	return r.execOne(ctx, `UPDATE semesters SET name = $1, level_id = $2, updated_at = $3 WHERE id = $4`,
		s.Name, s.LevelID, s.UpdatedAt, s.ID)
}

func (r *OrgRepository) DeleteSemester(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM semesters WHERE id = $1`, id)
}

// Course units

func (r *OrgRepository) CreateCourseUnit(ctx context.Context, u *models.CourseUnit) error {
	stampNew(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	const query = `INSERT INTO course_units (id, name, semester_id, created_at, updated_at)
	VALUES (:id, :name, :semester_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		return fmt.Errorf("create course unit: %w", err)
	}
	return nil
}

func (r *OrgRepository) GetCourseUnit(ctx context.Context, id string) (*models.CourseUnit, error) {
	var u models.CourseUnit
	if err := r.db.GetContext(ctx, &u, `SELECT id, name, semester_id, created_at, updated_at FROM course_units WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *OrgRepository) ListCourseUnits(ctx context.Context, semesterID string) ([]models.CourseUnit, error) {
	query := `SELECT id, name, semester_id, created_at, updated_at FROM course_units`
	args := []interface{}{}
	if semesterID != "" {
		query += ` WHERE semester_id = $1`
		args = append(args, semesterID)
	}
	query += ` ORDER BY name`
	var out []models.CourseUnit
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list course units: %w", err)
	}
	return out, nil
}

func (r *OrgRepository) UpdateCourseUnit(ctx context.Context, u *models.CourseUnit) error {
	u.UpdatedAt = time.Now().UTC()
	return r.execOne(ctx, `UPDATE course_units SET name = $1, semester_id = $2, updated_at = $3 WHERE id = $4`,
		u.Name, u.SemesterID, u.UpdatedAt, u.ID)
}

func (r *OrgRepository) DeleteCourseUnit(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM course_units WHERE id = $1`, id)
}

// Course elements

func (r *OrgRepository) CreateCourseElement(ctx context.Context, e *models.CourseElement) error {
	stampNew(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	const query = `INSERT INTO course_elements (id, name, course_unit_id, created_at, updated_at)
	VALUES (:id, :name, :course_unit_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("create course element: %w", err)
	}
	return nil
}

func (r *OrgRepository) GetCourseElement(ctx context.Context, id string) (*models.CourseElement, error) {
	var e models.CourseElement
	if err := r.db.GetContext(ctx, &e, `SELECT id, name, course_unit_id, created_at, updated_at FROM course_elements WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *OrgRepository) ListCourseElements(ctx context.Context, courseUnitID string) ([]models.CourseElement, error) {
	query := `SELECT id, name, course_unit_id, created_at, updated_at FROM course_elements`
	args := []interface{}{}
	if courseUnitID != "" {
		query += ` WHERE course_unit_id = $1`
		args = append(args, courseUnitID)
	}
	query += ` ORDER BY name`
	var out []models.CourseElement
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list course elements: %w", err)
	}
	return out, nil
}

func (r *OrgRepository) UpdateCourseElement(ctx context.Context, e *models.CourseElement) error {
	e.UpdatedAt = time.Now().UTC()
	return r.execOne(ctx, `UPDATE course_elements SET name = $1, course_unit_id = $2, updated_at = $3 WHERE id = $4`,
		e.Name, e.CourseUnitID, e.UpdatedAt, e.ID)
}

func (r *OrgRepository) DeleteCourseElement(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM course_elements WHERE id = $1`, id)
}

// CoursePathRow is the flattened parent chain of a course element, used to
// check that a declaration's hierarchy references are mutually consistent.
type CoursePathRow struct {
	CourseElementID string `db:"course_element_id"`
	CourseUnitID    string `db:"course_unit_id"`
	SemesterID      string `db:"semester_id"`
	LevelID         string `db:"level_id"`
	TrackID         string `db:"track_id"`
	DepartmentID    string `db:"department_id"`
	ElementName     string `db:"element_name"`
	DepartmentName  string `db:"department_name"`
}

// ResolvePath walks up the containment chain from a course element and
// returns every ancestor identifier in one query.
func (r *OrgRepository) ResolvePath(ctx context.Context, courseElementID string) (*CoursePathRow, error) {
	const query = `SELECT
		ce.id AS course_element_id,
		cu.id AS course_unit_id,
		s.id AS semester_id,
		l.id AS level_id,
		t.id AS track_id,
		d.id AS department_id,
		ce.name AS element_name,
		d.name AS department_name
	FROM course_elements ce
	JOIN course_units cu ON cu.id = ce.course_unit_id
	JOIN semesters s ON s.id = cu.semester_id
	JOIN levels l ON l.id = s.level_id
	JOIN tracks t ON t.id = l.track_id
	JOIN departments d ON d.id = t.department_id
	WHERE ce.id = $1`
	var row CoursePathRow
	if err := r.db.GetContext(ctx, &row, query, courseElementID); err != nil {
		return nil, err
	}
	return &row, nil
}

// execOne runs a statement that must affect exactly one row.
func (r *OrgRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec org statement: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check affected rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func stampNew(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := time.Now().UTC()
	*createdAt = now
	*updatedAt = now
}
