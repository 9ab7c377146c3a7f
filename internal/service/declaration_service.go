package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-hours-api/internal/dto"
	"github.com/noah-isme/uni-hours-api/internal/models"
	"github.com/noah-isme/uni-hours-api/internal/repository"
	"github.com/noah-isme/uni-hours-api/internal/workflow"
	appErrors "github.com/noah-isme/uni-hours-api/pkg/errors"
)

type declarationStore interface {
	Create(ctx context.Context, d *models.Declaration) error
	GetByID(ctx context.Context, id string) (*models.Declaration, error)
	List(ctx context.Context, filter models.DeclarationFilter) ([]models.Declaration, error)
	UpdateWithVersion(ctx context.Context, d *models.Declaration, expectedVersion int) error
	Delete(ctx context.Context, id string) error
}

type coursePathResolver interface {
	ResolvePath(ctx context.Context, courseElementID string) (*repository.CoursePathRow, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// DeclarationNotifier dispatches the notification intents a transition
// produced. Implementations must never block the workflow: failures are
// logged downstream, not returned.
type DeclarationNotifier interface {
	Dispatch(ctx context.Context, d *models.Declaration, intents []models.NotificationIntent)
}

type statsInvalidator interface {
	InvalidateStats(ctx context.Context)
}

// DeclarationService orchestrates the declaration lifecycle: creation with
// validation and fast-track, author edits, the review chain, resubmission
// after rejection, and role-scoped reads.
type DeclarationService struct {
	repo     declarationStore
	org      coursePathResolver
	engine   *workflow.Engine
	notifier DeclarationNotifier
	audit    auditLogger
	stats    statsInvalidator
	logger   *zap.Logger
}

// DeclarationServiceOption configures the service.
type DeclarationServiceOption func(*DeclarationService)

// WithDeclarationNotifier sets the notification dispatcher.
func WithDeclarationNotifier(n DeclarationNotifier) DeclarationServiceOption {
	return func(s *DeclarationService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithStatsInvalidator sets the hook flushing cached statistics after writes.
func WithStatsInvalidator(inv statsInvalidator) DeclarationServiceOption {
	return func(s *DeclarationService) {
		if inv != nil {
			s.stats = inv
		}
	}
}

// WithWorkflowEngine overrides the default engine, mainly for tests that
// need a fixed clock.
func WithWorkflowEngine(engine *workflow.Engine) DeclarationServiceOption {
	return func(s *DeclarationService) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// NewDeclarationService constructs the service.
func NewDeclarationService(repo declarationStore, org coursePathResolver, audit auditLogger, logger *zap.Logger, opts ...DeclarationServiceOption) *DeclarationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &DeclarationService{
		repo:   repo,
		org:    org,
		audit:  audit,
		engine: workflow.NewEngine(),
		logger: logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create validates and stores a new declaration. Teachers and department
// heads may declare; a department head declaring in their own department is
// fast-tracked past registrar verification.
func (s *DeclarationService) Create(ctx context.Context, req dto.CreateDeclarationRequest, actor *models.JWTClaims) (*models.Declaration, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleTeacher && actor.Role != models.RoleDepartmentHead {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teaching staff may declare hours")
	}

	date, err := parseDeclarationDate(req.Date)
	if err != nil {
		return nil, err
	}

	declaration := &models.Declaration{
		AuthorID:        actor.UserID,
		AuthorName:      actor.FullName,
		DepartmentID:    req.DepartmentID,
		TrackID:         req.TrackID,
		LevelID:         req.LevelID,
		SemesterID:      req.SemesterID,
		CourseUnitID:    req.CourseUnitID,
		CourseElementID: req.CourseElementID,
		Date:            date,
		HoursCM:         req.HoursCM,
		HoursTD:         req.HoursTD,
		HoursTP:         req.HoursTP,
		Notes:           strings.TrimSpace(req.Notes),
	}
	declaration.Hours = declaration.TotalHours()

	if err := s.validateHours(declaration); err != nil {
		return nil, err
	}
	if err := s.validateCoursePath(ctx, declaration); err != nil {
		return nil, err
	}

	created, intents := s.engine.InitialStatus(declaration, actor.Actor())
	if err := s.repo.Create(ctx, created); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create declaration")
	}

	s.emitAudit(ctx, actor.UserID, models.AuditActionDeclarationCreate, created)
	s.dispatch(ctx, created, intents)
	s.invalidateStats(ctx)
	return created, nil
}

// Get loads a declaration enforcing visibility: the author always sees their
// own records; reviewers and admins see records inside their review scope.
func (s *DeclarationService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Declaration, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	declaration, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visible(declaration, actor) {
		return nil, appErrors.ErrForbidden
	}
	return declaration, nil
}

// List returns declarations scoped to the actor's role: teachers see their
// own, department heads their department, everyone else sees all.
func (s *DeclarationService) List(ctx context.Context, query dto.DeclarationQuery, actor *models.JWTClaims) ([]models.Declaration, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.DeclarationFilter{
		Status:       query.Status,
		DepartmentID: query.DepartmentID,
		DateFrom:     query.DateFrom,
		DateTo:       query.DateTo,
		Limit:        query.Limit,
		Offset:       query.Offset,
	}
	switch actor.Role {
	case models.RoleTeacher:
		filter.AuthorID = actor.UserID
	case models.RoleDepartmentHead:
		filter.DepartmentID = actor.DepartmentID
	case models.RoleRegistrar, models.RoleDirector, models.RoleAdmin:
		// full visibility
	default:
		return nil, appErrors.ErrForbidden
	}
	declarations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list declarations")
	}
	return declarations, nil
}

// Pending returns the declarations waiting on the actor's review stage.
func (s *DeclarationService) Pending(ctx context.Context, actor *models.JWTClaims) ([]models.Declaration, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.DeclarationFilter{}
	switch actor.Role {
	case models.RoleRegistrar:
		filter.Status = []models.DeclarationStatus{models.StatusPending}
	case models.RoleDepartmentHead:
		filter.Status = []models.DeclarationStatus{models.StatusRegistrarVerified}
		filter.DepartmentID = actor.DepartmentID
	case models.RoleDirector:
		filter.Status = []models.DeclarationStatus{models.StatusDepartmentApproved}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role has no review queue")
	}
	declarations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending declarations")
	}
	return workflow.PendingForActor(declarations, actor.Actor()), nil
}

// Update applies author edits to a declaration still open to modification.
func (s *DeclarationService) Update(ctx context.Context, id string, req dto.UpdateDeclarationRequest, actor *models.JWTClaims) (*models.Declaration, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	declaration, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if declaration.AuthorID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author may edit a declaration")
	}
	if !declaration.Editable() {
		return nil, appErrors.Clone(appErrors.ErrNotEditable, "declaration is already under review")
	}

	expectedVersion := declaration.Version
	updated := *declaration
	applyDeclarationEdits(&updated, req)
	updated.Hours = updated.TotalHours()

	if req.Date != nil {
		date, err := parseDeclarationDate(*req.Date)
		if err != nil {
			return nil, err
		}
		updated.Date = date
	}
	if err := s.validateHours(&updated); err != nil {
		return nil, err
	}
	if err := s.validateCoursePath(ctx, &updated); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, &updated, expectedVersion); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, actor.UserID, models.AuditActionDeclarationUpdate, &updated)
	s.invalidateStats(ctx)
	return &updated, nil
}

// Delete removes an editable declaration owned by the actor.
func (s *DeclarationService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	declaration, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if declaration.AuthorID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author may delete a declaration")
	}
	if !declaration.Editable() {
		return appErrors.Clone(appErrors.ErrNotEditable, "declaration is already under review")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete declaration")
	}
	s.emitAudit(ctx, actor.UserID, models.AuditActionDeclarationDelete, declaration)
	s.invalidateStats(ctx)
	return nil
}

// Approve advances a declaration one stage along the review chain.
func (s *DeclarationService) Approve(ctx context.Context, id string, actor *models.JWTClaims) (*models.Declaration, error) {
	return s.review(ctx, id, workflow.ActionApprove, "", actor)
}

// Reject terminates the review with a mandatory reason.
func (s *DeclarationService) Reject(ctx context.Context, id string, reason string, actor *models.JWTClaims) (*models.Declaration, error) {
	return s.review(ctx, id, workflow.ActionReject, reason, actor)
}

func (s *DeclarationService) review(ctx context.Context, id string, action workflow.Action, reason string, actor *models.JWTClaims) (*models.Declaration, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	declaration, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, intents, err := s.engine.Apply(declaration, actor.Actor(), action, reason)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, updated, declaration.Version); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, actor.UserID, models.AuditActionDeclarationReview, updated)
	s.dispatch(ctx, updated, intents)
	s.invalidateStats(ctx)
	return updated, nil
}

// Resubmit puts a rejected declaration back into the review chain. All audit
// stamps and the rejection metadata are cleared, and the fast-track rule is
// evaluated again against the current author role.
func (s *DeclarationService) Resubmit(ctx context.Context, id string, actor *models.JWTClaims) (*models.Declaration, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	declaration, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if declaration.AuthorID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author may resubmit a declaration")
	}
	if declaration.Status != models.StatusRejected {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only rejected declarations can be resubmitted")
	}

	expectedVersion := declaration.Version
	cleared := *declaration
	cleared.RegistrarVerifiedBy, cleared.RegistrarVerifiedAt = nil, nil
	cleared.DepartmentApprovedBy, cleared.DepartmentApprovedAt = nil, nil
	cleared.DirectorValidatedBy, cleared.DirectorValidatedAt = nil, nil
	cleared.RejectedBy, cleared.RejectedAt, cleared.RejectionReason = nil, nil, nil

	resubmitted, intents := s.engine.InitialStatus(&cleared, actor.Actor())
	if err := s.commit(ctx, resubmitted, expectedVersion); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, actor.UserID, models.AuditActionDeclarationResubmit, resubmitted)
	s.dispatch(ctx, resubmitted, intents)
	s.invalidateStats(ctx)
	return resubmitted, nil
}

func (s *DeclarationService) load(ctx context.Context, id string) (*models.Declaration, error) {
	declaration, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load declaration")
	}
	return declaration, nil
}

// commit performs the version-guarded write, mapping a missed guard to a
// stale-version conflict.
func (s *DeclarationService) commit(ctx context.Context, d *models.Declaration, expectedVersion int) error {
	if err := s.repo.UpdateWithVersion(ctx, d, expectedVersion); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrStaleVersion
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update declaration")
	}
	return nil
}

func (s *DeclarationService) visible(d *models.Declaration, actor *models.JWTClaims) bool {
	if d.AuthorID == actor.UserID {
		return true
	}
	switch actor.Role {
	case models.RoleRegistrar, models.RoleDirector, models.RoleAdmin:
		return true
	case models.RoleDepartmentHead:
		return actor.DepartmentID != "" && actor.DepartmentID == d.DepartmentID
	}
	return false
}

func (s *DeclarationService) validateHours(d *models.Declaration) error {
	if d.HoursCM < 0 || d.HoursTD < 0 || d.HoursTP < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "hours cannot be negative")
	}
	total := d.TotalHours()
	if total <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one hour category must be positive")
	}
	if total > models.MaxDailyHours {
		return appErrors.Clone(appErrors.ErrDailyCapExceeded, "total hours exceed the daily cap of 8")
	}
	return nil
}

// validateCoursePath checks that the declaration's hierarchy references all
// sit on the ancestry chain of its course element.
func (s *DeclarationService) validateCoursePath(ctx context.Context, d *models.Declaration) error {
	if d.DepartmentID == "" || d.CourseElementID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "department and course element are required")
	}
	path, err := s.org.ResolvePath(ctx, d.CourseElementID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidCoursePath, "course element does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve course path")
	}
	if path.DepartmentID != d.DepartmentID {
		return appErrors.Clone(appErrors.ErrInvalidCoursePath, "course element does not belong to the declared department")
	}
	if d.TrackID != nil && *d.TrackID != path.TrackID {
		return appErrors.Clone(appErrors.ErrInvalidCoursePath, "track does not match the course element")
	}
	if d.LevelID != nil && *d.LevelID != path.LevelID {
		return appErrors.Clone(appErrors.ErrInvalidCoursePath, "level does not match the course element")
	}
	if d.SemesterID != nil && *d.SemesterID != path.SemesterID {
		return appErrors.Clone(appErrors.ErrInvalidCoursePath, "semester does not match the course element")
	}
	if d.CourseUnitID != nil && *d.CourseUnitID != path.CourseUnitID {
		return appErrors.Clone(appErrors.ErrInvalidCoursePath, "course unit does not match the course element")
	}
	return nil
}

func (s *DeclarationService) dispatch(ctx context.Context, d *models.Declaration, intents []models.NotificationIntent) {
	if s.notifier == nil || len(intents) == 0 {
		return
	}
	s.notifier.Dispatch(ctx, d, intents)
}

func (s *DeclarationService) invalidateStats(ctx context.Context) {
	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}
}

func (s *DeclarationService) emitAudit(ctx context.Context, userID, action string, d *models.Declaration) {
	if s.audit == nil {
		return
	}
	payload, err := json.Marshal(d)
	if err != nil {
		payload = []byte("{}")
	}
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "declaration",
		ResourceID: &d.ID,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "declaration-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func applyDeclarationEdits(d *models.Declaration, req dto.UpdateDeclarationRequest) {
	if req.DepartmentID != nil {
		d.DepartmentID = *req.DepartmentID
	}
	if req.TrackID != nil {
		d.TrackID = req.TrackID
	}
	if req.LevelID != nil {
		d.LevelID = req.LevelID
	}
	if req.SemesterID != nil {
		d.SemesterID = req.SemesterID
	}
	if req.CourseUnitID != nil {
		d.CourseUnitID = req.CourseUnitID
	}
	if req.CourseElementID != nil {
		d.CourseElementID = *req.CourseElementID
	}
	if req.HoursCM != nil {
		d.HoursCM = *req.HoursCM
	}
	if req.HoursTD != nil {
		d.HoursTD = *req.HoursTD
	}
	if req.HoursTP != nil {
		d.HoursTP = *req.HoursTP
	}
	if req.Notes != nil {
		d.Notes = strings.TrimSpace(*req.Notes)
	}
}

func parseDeclarationDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must use the YYYY-MM-DD format")
	}
	return date, nil
}
