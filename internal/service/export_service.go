package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-hours-api/internal/dto"
	"github.com/noah-isme/uni-hours-api/internal/models"
	appErrors "github.com/noah-isme/uni-hours-api/pkg/errors"
	"github.com/noah-isme/uni-hours-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered declaration report ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

type declarationLister interface {
	List(ctx context.Context, query dto.DeclarationQuery, actor *models.JWTClaims) ([]models.Declaration, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders role-scoped declaration reports. The visible
// population is whatever the declaration listing would return for the actor,
// so a teacher exports their own hours and a director the whole school.
type ExportService struct {
	declarations declarationLister
	csv          csvRenderer
	pdf          pdfRenderer
	logger       *zap.Logger
}

// NewExportService constructs the service with the default renderers.
func NewExportService(declarations declarationLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		declarations: declarations,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

// Generate builds and renders the declarations report for the actor.
func (s *ExportService) Generate(ctx context.Context, format ExportFormat, query dto.DeclarationQuery, actor *models.JWTClaims) (*ExportFile, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	declarations, err := s.declarations.List(ctx, query, actor)
	if err != nil {
		return nil, err
	}
	dataset := buildDeclarationDataset(declarations)
	title := fmt.Sprintf("Déclarations d'heures - %s", time.Now().UTC().Format("2006-01-02"))

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("declarations_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	return &ExportFile{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

func buildDeclarationDataset(declarations []models.Declaration) export.Dataset {
	headers := []string{"Date", "Enseignant", "Département", "Élément", "CM", "TD", "TP", "Total", "Statut", "Motif de refus"}
	rows := make([]map[string]string, 0, len(declarations))
	for _, d := range declarations {
		rows = append(rows, map[string]string{
			"Date":           d.Date.Format("2006-01-02"),
			"Enseignant":     d.AuthorName,
			"Département":    d.DepartmentID,
			"Élément":        d.CourseElementID,
			"CM":             formatHours(d.HoursCM),
			"TD":             formatHours(d.HoursTD),
			"TP":             formatHours(d.HoursTP),
			"Total":          formatHours(d.Hours),
			"Statut":         string(d.Status),
			"Motif de refus": derefString(d.RejectionReason),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func formatHours(h float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", h), "0"), ".")
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
