package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-hours-api/internal/dto"
	"github.com/noah-isme/uni-hours-api/internal/models"
)

type listerStub struct {
	declarations []models.Declaration
	lastActor    *models.JWTClaims
}

func (l *listerStub) List(ctx context.Context, query dto.DeclarationQuery, actor *models.JWTClaims) ([]models.Declaration, error) {
	l.lastActor = actor
	return l.declarations, nil
}

func exportFixtures() []models.Declaration {
	reason := "heures incohérentes"
	return []models.Declaration{
		{
			ID: "d-1", AuthorName: "Alice Martin", DepartmentID: "dept-1", CourseElementID: "ec-1",
			Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			HoursCM: 2, HoursTD: 1.5, Hours: 3.5, Status: models.StatusDirectorValidated,
		},
		{
			ID: "d-2", AuthorName: "Bob Diallo", DepartmentID: "dept-1", CourseElementID: "ec-2",
			Date: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
			HoursTP: 4, Hours: 4, Status: models.StatusRejected, RejectionReason: &reason,
		},
	}
}

func TestExportServiceGenerateCSV(t *testing.T) {
	lister := &listerStub{declarations: exportFixtures()}
	svc := NewExportService(lister, nil)

	actor := &models.JWTClaims{UserID: "director-1", Role: models.RoleDirector}
	file, err := svc.Generate(context.Background(), ExportFormatCSV, dto.DeclarationQuery{}, actor)
	require.NoError(t, err)
	require.Equal(t, "text/csv", file.ContentType)
	require.True(t, strings.HasSuffix(file.Filename, ".csv"))
	require.Same(t, actor, lister.lastActor)

	content := string(file.Payload)
	require.Contains(t, content, "Alice Martin")
	require.Contains(t, content, "director_validated")
	require.Contains(t, content, "heures incohérentes")
}

func TestExportServiceGeneratePDF(t *testing.T) {
	lister := &listerStub{declarations: exportFixtures()}
	svc := NewExportService(lister, nil)

	actor := &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}
	file, err := svc.Generate(context.Background(), ExportFormatPDF, dto.DeclarationQuery{}, actor)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", file.ContentType)
	require.NotEmpty(t, file.Payload)
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&listerStub{}, nil)
	_, err := svc.Generate(context.Background(), ExportFormat("xml"), dto.DeclarationQuery{}, &models.JWTClaims{UserID: "u", Role: models.RoleDirector})
	require.Error(t, err)
}
