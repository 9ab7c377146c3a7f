package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-hours-api/internal/models"
	appErrors "github.com/noah-isme/uni-hours-api/pkg/errors"
)

var testClock = func() time.Time {
	return time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC)
}

func newDeclaration(status models.DeclarationStatus, departmentID string) *models.Declaration {
	return &models.Declaration{
		ID:              "decl-1",
		AuthorID:        "teacher-1",
		AuthorName:      "Dr. Amadou Diop",
		DepartmentID:    departmentID,
		CourseElementID: "ec-1",
		Date:            time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC),
		HoursCM:         2,
		HoursTD:         2,
		Hours:           4,
		Status:          status,
		Version:         1,
	}
}

func TestCanProcessMatchesTransitionTable(t *testing.T) {
	registrar := models.Actor{ID: "reg-1", Role: models.RoleRegistrar}
	headCS := models.Actor{ID: "head-cs", Role: models.RoleDepartmentHead, DepartmentID: "dept-cs"}
	headMath := models.Actor{ID: "head-math", Role: models.RoleDepartmentHead, DepartmentID: "dept-math"}
	director := models.Actor{ID: "dir-1", Role: models.RoleDirector}
	teacher := models.Actor{ID: "teacher-1", Role: models.RoleTeacher}
	admin := models.Actor{ID: "admin-1", Role: models.RoleAdmin}

	cases := []struct {
		name   string
		status models.DeclarationStatus
		actor  models.Actor
		want   bool
	}{
		{"registrar processes pending", models.StatusPending, registrar, true},
		{"registrar cannot process verified", models.StatusRegistrarVerified, registrar, false},
		{"head processes verified in own department", models.StatusRegistrarVerified, headCS, true},
		{"head cannot process other department", models.StatusRegistrarVerified, headMath, false},
		{"head cannot process pending", models.StatusPending, headCS, false},
		{"director processes department approved", models.StatusDepartmentApproved, director, true},
		{"director cannot process verified", models.StatusRegistrarVerified, director, false},
		{"teacher never processes", models.StatusPending, teacher, false},
		{"admin never processes", models.StatusPending, admin, false},
		{"nobody processes validated", models.StatusDirectorValidated, director, false},
		{"nobody processes rejected", models.StatusRejected, registrar, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDeclaration(tc.status, "dept-cs")
			require.Equal(t, tc.want, CanProcess(d, tc.actor))
		})
	}
}

func TestNextAndRejectStatus(t *testing.T) {
	d := newDeclaration(models.StatusPending, "dept-cs")
	registrar := models.Actor{ID: "reg-1", Role: models.RoleRegistrar}

	next, ok := NextStatus(d, registrar)
	require.True(t, ok)
	require.Equal(t, models.StatusRegistrarVerified, next)

	reject, ok := RejectStatus(d, registrar)
	require.True(t, ok)
	require.Equal(t, models.StatusRejected, reject)

	teacher := models.Actor{ID: "teacher-1", Role: models.RoleTeacher}
	_, ok = NextStatus(d, teacher)
	require.False(t, ok)
	_, ok = RejectStatus(d, teacher)
	require.False(t, ok)
}

func TestApplyFullApprovalChain(t *testing.T) {
	engine := NewEngineWithClock(testClock)
	d := newDeclaration(models.StatusPending, "dept-cs")

	verified, intents, err := engine.Apply(d, models.Actor{ID: "reg-1", Role: models.RoleRegistrar}, ActionApprove, "")
	require.NoError(t, err)
	require.Equal(t, models.StatusRegistrarVerified, verified.Status)
	require.NotNil(t, verified.RegistrarVerifiedBy)
	require.Equal(t, "reg-1", *verified.RegistrarVerifiedBy)
	require.Len(t, intents, 2)
	require.Equal(t, models.RecipientAuthor, intents[0].Recipient.Kind)
	require.Equal(t, models.RecipientDepartmentHeads, intents[1].Recipient.Kind)
	require.Equal(t, "dept-cs", intents[1].Recipient.DepartmentID)

	approved, intents, err := engine.Apply(verified, models.Actor{ID: "head-cs", Role: models.RoleDepartmentHead, DepartmentID: "dept-cs"}, ActionApprove, "")
	require.NoError(t, err)
	require.Equal(t, models.StatusDepartmentApproved, approved.Status)
	require.Equal(t, "head-cs", *approved.DepartmentApprovedBy)
	require.Equal(t, models.RecipientDirectors, intents[1].Recipient.Kind)

	validated, intents, err := engine.Apply(approved, models.Actor{ID: "dir-1", Role: models.RoleDirector}, ActionApprove, "")
	require.NoError(t, err)
	require.Equal(t, models.StatusDirectorValidated, validated.Status)
	require.Equal(t, "dir-1", *validated.DirectorValidatedBy)
	require.Len(t, intents, 1)
	require.Equal(t, models.TemplateDeclarationValidated, intents[0].Template)

	// Terminal: no role can process any further.
	for _, actor := range []models.Actor{
		{ID: "reg-1", Role: models.RoleRegistrar},
		{ID: "head-cs", Role: models.RoleDepartmentHead, DepartmentID: "dept-cs"},
		{ID: "dir-1", Role: models.RoleDirector},
	} {
		require.False(t, CanProcess(validated, actor))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	engine := NewEngineWithClock(testClock)
	d := newDeclaration(models.StatusPending, "dept-cs")

	_, _, err := engine.Apply(d, models.Actor{ID: "reg-1", Role: models.RoleRegistrar}, ActionApprove, "")
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, d.Status)
	require.Nil(t, d.RegistrarVerifiedBy)
}

func TestApplyRejectRequiresReason(t *testing.T) {
	engine := NewEngineWithClock(testClock)
	d := newDeclaration(models.StatusPending, "dept-cs")
	registrar := models.Actor{ID: "reg-1", Role: models.RoleRegistrar}

	_, _, err := engine.Apply(d, registrar, ActionReject, "")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.ErrReasonRequired.Code, appErr.Code)

	_, _, err = engine.Apply(d, registrar, ActionReject, "   ")
	require.Error(t, err)

	rejected, intents, err := engine.Apply(d, registrar, ActionReject, "duplicate")
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, rejected.Status)
	require.Equal(t, "duplicate", *rejected.RejectionReason)
	require.Equal(t, "reg-1", *rejected.RejectedBy)
	require.Len(t, intents, 1)
	require.Equal(t, models.RecipientAuthor, intents[0].Recipient.Kind)
	require.Equal(t, models.TemplateRejectedByRegistrar, intents[0].Template)
	require.Equal(t, "duplicate", intents[0].Params["rejectionReason"])
}

func TestApplyRejectTemplateVariesByRole(t *testing.T) {
	engine := NewEngineWithClock(testClock)

	verified := newDeclaration(models.StatusRegistrarVerified, "dept-cs")
	rejected, intents, err := engine.Apply(verified, models.Actor{ID: "head-cs", Role: models.RoleDepartmentHead, DepartmentID: "dept-cs"}, ActionReject, "planning conflict")
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, rejected.Status)
	require.Equal(t, models.TemplateRejectedByHead, intents[0].Template)

	approved := newDeclaration(models.StatusDepartmentApproved, "dept-cs")
	_, intents, err = engine.Apply(approved, models.Actor{ID: "dir-1", Role: models.RoleDirector}, ActionReject, "budget")
	require.NoError(t, err)
	require.Equal(t, models.TemplateRejectedByDirector, intents[0].Template)
}

func TestApplyUnauthorizedAfterRejection(t *testing.T) {
	engine := NewEngineWithClock(testClock)
	d := newDeclaration(models.StatusPending, "dept-cs")

	rejected, _, err := engine.Apply(d, models.Actor{ID: "reg-1", Role: models.RoleRegistrar}, ActionReject, "duplicate")
	require.NoError(t, err)

	// The department head never gets a turn: the declaration was rejected
	// before reaching registrar_verified.
	_, _, err = engine.Apply(rejected, models.Actor{ID: "head-cs", Role: models.RoleDepartmentHead, DepartmentID: "dept-cs"}, ActionApprove, "")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestApplyRejectClearsForwardStamps(t *testing.T) {
	engine := NewEngineWithClock(testClock)
	d := newDeclaration(models.StatusRegistrarVerified, "dept-cs")
	verifiedBy := "reg-1"
	verifiedAt := testClock()
	d.RegistrarVerifiedBy = &verifiedBy
	d.RegistrarVerifiedAt = &verifiedAt

	rejected, _, err := engine.Apply(d, models.Actor{ID: "head-cs", Role: models.RoleDepartmentHead, DepartmentID: "dept-cs"}, ActionReject, "out of scope")
	require.NoError(t, err)
	// The registrar stamp survives; later stages stay empty.
	require.NotNil(t, rejected.RegistrarVerifiedBy)
	require.Nil(t, rejected.DepartmentApprovedBy)
	require.Nil(t, rejected.DirectorValidatedBy)
}

func TestInitialStatusFastTrack(t *testing.T) {
	engine := NewEngineWithClock(testClock)
	head := models.Actor{ID: "head-cs", Role: models.RoleDepartmentHead, DepartmentID: "dept-cs"}

	own := newDeclaration("", "dept-cs")
	own.AuthorID = head.ID
	created, intents := engine.InitialStatus(own, head)
	require.Equal(t, models.StatusRegistrarVerified, created.Status)
	require.NotNil(t, created.RegistrarVerifiedBy)
	require.Equal(t, head.ID, *created.RegistrarVerifiedBy)
	require.NotNil(t, created.RegistrarVerifiedAt)
	require.Len(t, intents, 2)
	require.Equal(t, models.TemplateDeclarationVerified, intents[0].Template)
	require.Equal(t, models.TemplatePendingApproval, intents[1].Template)

	// Declaring for another department is not fast-tracked.
	other := newDeclaration("", "dept-math")
	other.AuthorID = head.ID
	created, intents = engine.InitialStatus(other, head)
	require.Equal(t, models.StatusPending, created.Status)
	require.Nil(t, created.RegistrarVerifiedBy)
	require.Len(t, intents, 2)
	require.Equal(t, models.TemplateDeclarationSubmitted, intents[0].Template)
	require.Equal(t, models.RecipientRegistrars, intents[1].Recipient.Kind)
}

func TestInitialStatusTeacherSubmission(t *testing.T) {
	engine := NewEngineWithClock(testClock)
	teacher := models.Actor{ID: "teacher-1", Role: models.RoleTeacher}

	d := newDeclaration("", "dept-cs")
	created, intents := engine.InitialStatus(d, teacher)
	require.Equal(t, models.StatusPending, created.Status)
	require.Nil(t, created.RegistrarVerifiedBy)
	require.Len(t, intents, 2)
	require.Equal(t, models.RecipientAuthor, intents[0].Recipient.Kind)
	require.Equal(t, models.TemplatePendingVerification, intents[1].Template)
}

func TestRenderTemplates(t *testing.T) {
	subject, body := Render(models.TemplateRejectedByRegistrar, map[string]string{
		"date":            "2025-04-15",
		"rejectionReason": "duplicate",
	})
	require.Equal(t, "Déclaration d'heures refusée", subject)
	require.Contains(t, body, "duplicate")

	_, body = Render(models.TemplateRejectedByHead, map[string]string{"date": "2025-04-15"})
	require.Contains(t, body, "Non spécifié")

	subject, _ = Render(models.TemplateID("unknown"), map[string]string{"date": "2025-04-15"})
	require.Equal(t, "Notification", subject)
}
