package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-hours-api/internal/models"
)

const declarationColumns = `id, author_id, author_name, department_id, track_id, level_id, semester_id, course_unit_id, course_element_id,
	date, hours_cm, hours_td, hours_tp, hours, notes, status,
	registrar_verified_by, registrar_verified_at, department_approved_by, department_approved_at,
	director_validated_by, director_validated_at, rejected_by, rejected_at, rejection_reason,
	payment_status, version, created_at, updated_at`

// DeclarationRepository persists teaching-hour declarations.
type DeclarationRepository struct {
	db *sqlx.DB
}

// NewDeclarationRepository constructs the repository.
func NewDeclarationRepository(db *sqlx.DB) *DeclarationRepository {
	return &DeclarationRepository{db: db}
}

// Create inserts a new declaration row.
func (r *DeclarationRepository) Create(ctx context.Context, d *models.Declaration) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	if d.Version == 0 {
		d.Version = 1
	}
	const query = `INSERT INTO declarations
	(id, author_id, author_name, department_id, track_id, level_id, semester_id, course_unit_id, course_element_id,
	 date, hours_cm, hours_td, hours_tp, hours, notes, status,
	 registrar_verified_by, registrar_verified_at, department_approved_by, department_approved_at,
	 director_validated_by, director_validated_at, rejected_by, rejected_at, rejection_reason,
	 payment_status, version, created_at, updated_at)
	VALUES (:id, :author_id, :author_name, :department_id, :track_id, :level_id, :semester_id, :course_unit_id, :course_element_id,
	 :date, :hours_cm, :hours_td, :hours_tp, :hours, :notes, :status,
	 :registrar_verified_by, :registrar_verified_at, :department_approved_by, :department_approved_at,
	 :director_validated_by, :director_validated_at, :rejected_by, :rejected_at, :rejection_reason,
	 :payment_status, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, d); err != nil {
		return fmt.Errorf("create declaration: %w", err)
	}
	return nil
}

// GetByID fetches a declaration by identifier.
func (r *DeclarationRepository) GetByID(ctx context.Context, id string) (*models.Declaration, error) {
	query := `SELECT ` + declarationColumns + ` FROM declarations WHERE id = $1`
	var d models.Declaration
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns declarations matching the filter, newest first.
func (r *DeclarationRepository) List(ctx context.Context, filter models.DeclarationFilter) ([]models.Declaration, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 6)
	builder.WriteString(`SELECT ` + declarationColumns + ` FROM declarations`)

	conditions := make([]string, 0, 5)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", len(args)))
	}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var declarations []models.Declaration
	if err := r.db.SelectContext(ctx, &declarations, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list declarations: %w", err)
	}
	return declarations, nil
}

// UpdateWithVersion writes the full mutable state of a declaration guarded
// by its optimistic version: the row is only touched when the stored version
// still equals expectedVersion, and the write bumps it by one. Zero affected
// rows surface as sql.ErrNoRows so the service can map it to a conflict.
func (r *DeclarationRepository) UpdateWithVersion(ctx context.Context, d *models.Declaration, expectedVersion int) error {
	const query = `UPDATE declarations SET
	department_id = :department_id, track_id = :track_id, level_id = :level_id, semester_id = :semester_id,
	course_unit_id = :course_unit_id, course_element_id = :course_element_id,
	date = :date, hours_cm = :hours_cm, hours_td = :hours_td, hours_tp = :hours_tp, hours = :hours, notes = :notes,
	status = :status,
	registrar_verified_by = :registrar_verified_by, registrar_verified_at = :registrar_verified_at,
	department_approved_by = :department_approved_by, department_approved_at = :department_approved_at,
	director_validated_by = :director_validated_by, director_validated_at = :director_validated_at,
	rejected_by = :rejected_by, rejected_at = :rejected_at, rejection_reason = :rejection_reason,
	payment_status = :payment_status,
	version = :version, updated_at = :updated_at
	WHERE id = :id AND version = :expected_version`

	d.Version = expectedVersion + 1
	d.UpdatedAt = time.Now().UTC()

	params := map[string]interface{}{
		"id":                     d.ID,
		"department_id":          d.DepartmentID,
		"track_id":               d.TrackID,
		"level_id":               d.LevelID,
		"semester_id":            d.SemesterID,
		"course_unit_id":         d.CourseUnitID,
		"course_element_id":      d.CourseElementID,
		"date":                   d.Date,
		"hours_cm":               d.HoursCM,
		"hours_td":               d.HoursTD,
		"hours_tp":               d.HoursTP,
		"hours":                  d.Hours,
		"notes":                  d.Notes,
		"status":                 d.Status,
		"registrar_verified_by":  d.RegistrarVerifiedBy,
		"registrar_verified_at":  d.RegistrarVerifiedAt,
		"department_approved_by": d.DepartmentApprovedBy,
		"department_approved_at": d.DepartmentApprovedAt,
		"director_validated_by":  d.DirectorValidatedBy,
		"director_validated_at":  d.DirectorValidatedAt,
		"rejected_by":            d.RejectedBy,
		"rejected_at":            d.RejectedAt,
		"rejection_reason":       d.RejectionReason,
		"payment_status":         d.PaymentStatus,
		"version":                d.Version,
		"updated_at":             d.UpdatedAt,
		"expected_version":       expectedVersion,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return fmt.Errorf("update declaration: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check declaration update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a declaration row. The service layer enforces that only
// editable declarations owned by the caller reach this point.
func (r *DeclarationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM declarations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete declaration: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check declaration delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
