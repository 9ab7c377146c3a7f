package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-hours-api/internal/service"
	"github.com/noah-isme/uni-hours-api/pkg/response"
)

// ExportHandler streams declaration reports as CSV or PDF.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Download godoc
// @Summary Export visible declarations as a file
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf, defaults to csv"
// @Param status query string false "Comma separated status filter"
// @Param departmentId query string false "Department filter"
// @Param dateFrom query string false "Start date YYYY-MM-DD"
// @Param dateTo query string false "End date YYYY-MM-DD"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /declarations/export [get]
func (h *ExportHandler) Download(c *gin.Context) {
	query, err := parseDeclarationQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	file, err := h.exports.Generate(c.Request.Context(), format, query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}
