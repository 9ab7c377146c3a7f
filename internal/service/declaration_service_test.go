package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-hours-api/internal/dto"
	"github.com/noah-isme/uni-hours-api/internal/models"
	"github.com/noah-isme/uni-hours-api/internal/repository"
	appErrors "github.com/noah-isme/uni-hours-api/pkg/errors"
)

type declarationRepoStub struct {
	declarations map[string]*models.Declaration
	filter       models.DeclarationFilter
	failUpdate   bool
	nextID       int
}

func newDeclarationRepoStub() *declarationRepoStub {
	return &declarationRepoStub{declarations: make(map[string]*models.Declaration)}
}

func (r *declarationRepoStub) Create(ctx context.Context, d *models.Declaration) error {
	if d.ID == "" {
		r.nextID++
		d.ID = "decl-" + string(rune('0'+r.nextID))
	}
	if d.Version == 0 {
		d.Version = 1
	}
	copy := *d
	r.declarations[d.ID] = &copy
	return nil
}

func (r *declarationRepoStub) GetByID(ctx context.Context, id string) (*models.Declaration, error) {
	if d, ok := r.declarations[id]; ok {
		copy := *d
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *declarationRepoStub) List(ctx context.Context, filter models.DeclarationFilter) ([]models.Declaration, error) {
	r.filter = filter
	result := make([]models.Declaration, 0, len(r.declarations))
	for _, d := range r.declarations {
		result = append(result, *d)
	}
	return result, nil
}

func (r *declarationRepoStub) UpdateWithVersion(ctx context.Context, d *models.Declaration, expectedVersion int) error {
	stored, ok := r.declarations[d.ID]
	if !ok || r.failUpdate || stored.Version != expectedVersion {
		return sql.ErrNoRows
	}
	d.Version = expectedVersion + 1
	copy := *d
	r.declarations[d.ID] = &copy
	return nil
}

func (r *declarationRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.declarations[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.declarations, id)
	return nil
}

type orgResolverStub struct {
	path *repository.CoursePathRow
	err  error
}

func (o *orgResolverStub) ResolvePath(ctx context.Context, courseElementID string) (*repository.CoursePathRow, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.path, nil
}

type notifierStub struct {
	dispatched [][]models.NotificationIntent
}

func (n *notifierStub) Dispatch(ctx context.Context, d *models.Declaration, intents []models.NotificationIntent) {
	n.dispatched = append(n.dispatched, intents)
}

type auditStub struct {
	logs []*models.AuditLog
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func validPath() *repository.CoursePathRow {
	return &repository.CoursePathRow{
		CourseElementID: "ec-1",
		CourseUnitID:    "ue-1",
		SemesterID:      "sem-1",
		LevelID:         "lvl-1",
		TrackID:         "trk-1",
		DepartmentID:    "dept-1",
		ElementName:     "Algorithmique",
		DepartmentName:  "Informatique",
	}
}

func newTestDeclarationService(repo *declarationRepoStub, notifier *notifierStub, audit *auditStub) *DeclarationService {
	return NewDeclarationService(repo, &orgResolverStub{path: validPath()}, audit, nil,
		WithDeclarationNotifier(notifier))
}

func createRequest() dto.CreateDeclarationRequest {
	return dto.CreateDeclarationRequest{
		DepartmentID:    "dept-1",
		CourseElementID: "ec-1",
		Date:            "2026-03-10",
		HoursCM:         2,
		HoursTD:         1.5,
	}
}

func teacherClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher, FullName: "Alice Martin"}
}

func TestDeclarationServiceCreate(t *testing.T) {
	repo := newDeclarationRepoStub()
	notifier := &notifierStub{}
	audit := &auditStub{}
	svc := newTestDeclarationService(repo, notifier, audit)

	declaration, err := svc.Create(context.Background(), createRequest(), teacherClaims())
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, declaration.Status)
	require.Equal(t, 3.5, declaration.Hours)
	require.Equal(t, "teacher-1", declaration.AuthorID)
	require.Len(t, notifier.dispatched, 1)
	require.Len(t, audit.logs, 1)
}

func TestDeclarationServiceCreateFastTrack(t *testing.T) {
	repo := newDeclarationRepoStub()
	notifier := &notifierStub{}
	svc := newTestDeclarationService(repo, notifier, &auditStub{})

	head := &models.JWTClaims{UserID: "head-1", Role: models.RoleDepartmentHead, FullName: "Chef Dept", DepartmentID: "dept-1"}
	declaration, err := svc.Create(context.Background(), createRequest(), head)
	require.NoError(t, err)
	require.Equal(t, models.StatusRegistrarVerified, declaration.Status)
	require.NotNil(t, declaration.RegistrarVerifiedBy)
	require.Equal(t, "head-1", *declaration.RegistrarVerifiedBy)
}

func TestDeclarationServiceCreateRejectsDailyCap(t *testing.T) {
	svc := newTestDeclarationService(newDeclarationRepoStub(), &notifierStub{}, &auditStub{})

	req := createRequest()
	req.HoursCM = 5
	req.HoursTD = 2.5
	req.HoursTP = 1
	_, err := svc.Create(context.Background(), req, teacherClaims())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrDailyCapExceeded.Code, appErrors.FromError(err).Code)
}

func TestDeclarationServiceCreateRejectsInconsistentPath(t *testing.T) {
	repo := newDeclarationRepoStub()
	svc := NewDeclarationService(repo, &orgResolverStub{path: validPath()}, &auditStub{}, nil)

	req := createRequest()
	wrongTrack := "trk-other"
	req.TrackID = &wrongTrack
	_, err := svc.Create(context.Background(), req, teacherClaims())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidCoursePath.Code, appErrors.FromError(err).Code)
}

func TestDeclarationServiceApproveChain(t *testing.T) {
	repo := newDeclarationRepoStub()
	notifier := &notifierStub{}
	svc := newTestDeclarationService(repo, notifier, &auditStub{})

	declaration, err := svc.Create(context.Background(), createRequest(), teacherClaims())
	require.NoError(t, err)

	registrar := &models.JWTClaims{UserID: "registrar-1", Role: models.RoleRegistrar}
	verified, err := svc.Approve(context.Background(), declaration.ID, registrar)
	require.NoError(t, err)
	require.Equal(t, models.StatusRegistrarVerified, verified.Status)
	require.Equal(t, 2, verified.Version)

	head := &models.JWTClaims{UserID: "head-1", Role: models.RoleDepartmentHead, DepartmentID: "dept-1"}
	approved, err := svc.Approve(context.Background(), verified.ID, head)
	require.NoError(t, err)
	require.Equal(t, models.StatusDepartmentApproved, approved.Status)

	director := &models.JWTClaims{UserID: "director-1", Role: models.RoleDirector}
	validated, err := svc.Approve(context.Background(), approved.ID, director)
	require.NoError(t, err)
	require.Equal(t, models.StatusDirectorValidated, validated.Status)
	require.Equal(t, 4, validated.Version)
}

func TestDeclarationServiceApproveStaleVersion(t *testing.T) {
	repo := newDeclarationRepoStub()
	svc := newTestDeclarationService(repo, &notifierStub{}, &auditStub{})

	declaration, err := svc.Create(context.Background(), createRequest(), teacherClaims())
	require.NoError(t, err)

	repo.failUpdate = true
	registrar := &models.JWTClaims{UserID: "registrar-1", Role: models.RoleRegistrar}
	_, err = svc.Approve(context.Background(), declaration.ID, registrar)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrStaleVersion.Code, appErrors.FromError(err).Code)
}

func TestDeclarationServiceRejectRequiresReason(t *testing.T) {
	repo := newDeclarationRepoStub()
	svc := newTestDeclarationService(repo, &notifierStub{}, &auditStub{})

	declaration, err := svc.Create(context.Background(), createRequest(), teacherClaims())
	require.NoError(t, err)

	registrar := &models.JWTClaims{UserID: "registrar-1", Role: models.RoleRegistrar}
	_, err = svc.Reject(context.Background(), declaration.ID, "  ", registrar)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrReasonRequired.Code, appErrors.FromError(err).Code)

	rejected, err := svc.Reject(context.Background(), declaration.ID, "heures incohérentes", registrar)
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
}

func TestDeclarationServiceUpdateOnlyWhenEditable(t *testing.T) {
	repo := newDeclarationRepoStub()
	svc := newTestDeclarationService(repo, &notifierStub{}, &auditStub{})

	declaration, err := svc.Create(context.Background(), createRequest(), teacherClaims())
	require.NoError(t, err)

	registrar := &models.JWTClaims{UserID: "registrar-1", Role: models.RoleRegistrar}
	_, err = svc.Approve(context.Background(), declaration.ID, registrar)
	require.NoError(t, err)

	hours := 1.0
	_, err = svc.Update(context.Background(), declaration.ID, dto.UpdateDeclarationRequest{HoursCM: &hours}, teacherClaims())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotEditable.Code, appErrors.FromError(err).Code)
}

func TestDeclarationServiceResubmit(t *testing.T) {
	repo := newDeclarationRepoStub()
	notifier := &notifierStub{}
	svc := newTestDeclarationService(repo, notifier, &auditStub{})

	declaration, err := svc.Create(context.Background(), createRequest(), teacherClaims())
	require.NoError(t, err)

	registrar := &models.JWTClaims{UserID: "registrar-1", Role: models.RoleRegistrar}
	rejected, err := svc.Reject(context.Background(), declaration.ID, "date erronée", registrar)
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, rejected.Status)

	resubmitted, err := svc.Resubmit(context.Background(), declaration.ID, teacherClaims())
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, resubmitted.Status)
	require.Nil(t, resubmitted.RejectedBy)
	require.Nil(t, resubmitted.RejectionReason)
	require.Equal(t, 3, resubmitted.Version)

	// Only the author may resubmit, and only from rejected.
	_, err = svc.Resubmit(context.Background(), declaration.ID, teacherClaims())
	require.Error(t, err)
}

func TestDeclarationServiceListScoping(t *testing.T) {
	repo := newDeclarationRepoStub()
	svc := newTestDeclarationService(repo, &notifierStub{}, &auditStub{})

	_, err := svc.List(context.Background(), dto.DeclarationQuery{}, teacherClaims())
	require.NoError(t, err)
	require.Equal(t, "teacher-1", repo.filter.AuthorID)

	head := &models.JWTClaims{UserID: "head-1", Role: models.RoleDepartmentHead, DepartmentID: "dept-1"}
	_, err = svc.List(context.Background(), dto.DeclarationQuery{}, head)
	require.NoError(t, err)
	require.Equal(t, "dept-1", repo.filter.DepartmentID)
	require.Empty(t, repo.filter.AuthorID)
}

func TestDeclarationServicePendingQueue(t *testing.T) {
	repo := newDeclarationRepoStub()
	svc := newTestDeclarationService(repo, &notifierStub{}, &auditStub{})

	_, err := svc.Create(context.Background(), createRequest(), teacherClaims())
	require.NoError(t, err)

	registrar := &models.JWTClaims{UserID: "registrar-1", Role: models.RoleRegistrar}
	queue, err := svc.Pending(context.Background(), registrar)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, []models.DeclarationStatus{models.StatusPending}, repo.filter.Status)

	// A teacher has no review queue at all.
	_, err = svc.Pending(context.Background(), teacherClaims())
	require.Error(t, err)
}

func TestDeclarationServiceVisibility(t *testing.T) {
	repo := newDeclarationRepoStub()
	svc := newTestDeclarationService(repo, &notifierStub{}, &auditStub{})

	declaration, err := svc.Create(context.Background(), createRequest(), teacherClaims())
	require.NoError(t, err)

	otherHead := &models.JWTClaims{UserID: "head-2", Role: models.RoleDepartmentHead, DepartmentID: "dept-2"}
	_, err = svc.Get(context.Background(), declaration.ID, otherHead)
	require.Error(t, err)

	sameHead := &models.JWTClaims{UserID: "head-1", Role: models.RoleDepartmentHead, DepartmentID: "dept-1"}
	found, err := svc.Get(context.Background(), declaration.ID, sameHead)
	require.NoError(t, err)
	require.Equal(t, declaration.ID, found.ID)
}

func TestDeclarationServiceDeleteRules(t *testing.T) {
	repo := newDeclarationRepoStub()
	svc := newTestDeclarationService(repo, &notifierStub{}, &auditStub{})

	declaration, err := svc.Create(context.Background(), createRequest(), teacherClaims())
	require.NoError(t, err)

	stranger := &models.JWTClaims{UserID: "teacher-2", Role: models.RoleTeacher}
	err = svc.Delete(context.Background(), declaration.ID, stranger)
	require.Error(t, err)

	require.NoError(t, svc.Delete(context.Background(), declaration.ID, teacherClaims()))
	_, err = svc.Get(context.Background(), declaration.ID, teacherClaims())
	require.Error(t, err)
}

func TestDeclarationServiceDateParsing(t *testing.T) {
	svc := newTestDeclarationService(newDeclarationRepoStub(), &notifierStub{}, &auditStub{})

	req := createRequest()
	req.Date = "10/03/2026"
	_, err := svc.Create(context.Background(), req, teacherClaims())
	require.Error(t, err)

	req.Date = "2026-03-10"
	declaration, err := svc.Create(context.Background(), req, teacherClaims())
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), declaration.Date)
}
