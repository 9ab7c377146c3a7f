package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-hours-api/internal/dto"
	"github.com/noah-isme/uni-hours-api/internal/models"
	"github.com/noah-isme/uni-hours-api/internal/service"
	appErrors "github.com/noah-isme/uni-hours-api/pkg/errors"
	"github.com/noah-isme/uni-hours-api/pkg/response"
)

// DeclarationHandler exposes the declaration lifecycle endpoints.
type DeclarationHandler struct {
	declarations *service.DeclarationService
}

// NewDeclarationHandler constructs the handler.
func NewDeclarationHandler(declarations *service.DeclarationService) *DeclarationHandler {
	return &DeclarationHandler{declarations: declarations}
}

// Create godoc
// @Summary Submit a teaching hours declaration
// @Tags Declarations
// @Accept json
// @Produce json
// @Param payload body dto.CreateDeclarationRequest true "Declaration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /declarations [post]
func (h *DeclarationHandler) Create(c *gin.Context) {
	var req dto.CreateDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	declaration, err := h.declarations.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, declaration)
}

// List godoc
// @Summary List declarations visible to the caller
// @Tags Declarations
// @Produce json
// @Param status query string false "Comma separated status filter"
// @Param departmentId query string false "Department filter"
// @Param dateFrom query string false "Start date YYYY-MM-DD"
// @Param dateTo query string false "End date YYYY-MM-DD"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /declarations [get]
func (h *DeclarationHandler) List(c *gin.Context) {
	query, err := parseDeclarationQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	declarations, err := h.declarations.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, declarations, nil)
}

// Pending godoc
// @Summary List declarations awaiting the caller's decision
// @Tags Declarations
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /declarations/pending [get]
func (h *DeclarationHandler) Pending(c *gin.Context) {
	declarations, err := h.declarations.Pending(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, declarations, nil)
}

// Get godoc
// @Summary Fetch one declaration
// @Tags Declarations
// @Produce json
// @Param id path string true "Declaration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /declarations/{id} [get]
func (h *DeclarationHandler) Get(c *gin.Context) {
	declaration, err := h.declarations.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, declaration, nil)
}

// Update godoc
// @Summary Edit a pending or rejected declaration
// @Tags Declarations
// @Accept json
// @Produce json
// @Param id path string true "Declaration ID"
// @Param payload body dto.UpdateDeclarationRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /declarations/{id} [put]
func (h *DeclarationHandler) Update(c *gin.Context) {
	var req dto.UpdateDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	declaration, err := h.declarations.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, declaration, nil)
}

// Delete godoc
// @Summary Delete an editable declaration
// @Tags Declarations
// @Param id path string true "Declaration ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /declarations/{id} [delete]
func (h *DeclarationHandler) Delete(c *gin.Context) {
	if err := h.declarations.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Approve godoc
// @Summary Advance a declaration one step in the approval chain
// @Tags Declarations
// @Produce json
// @Param id path string true "Declaration ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /declarations/{id}/approve [post]
func (h *DeclarationHandler) Approve(c *gin.Context) {
	declaration, err := h.declarations.Approve(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, declaration, nil)
}

// Reject godoc
// @Summary Reject a declaration with a reason
// @Tags Declarations
// @Accept json
// @Produce json
// @Param id path string true "Declaration ID"
// @Param payload body dto.ReviewDeclarationRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /declarations/{id}/reject [post]
func (h *DeclarationHandler) Reject(c *gin.Context) {
	var req dto.ReviewDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	declaration, err := h.declarations.Reject(c.Request.Context(), c.Param("id"), req.Reason, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, declaration, nil)
}

// Resubmit godoc
// @Summary Resubmit a rejected declaration
// @Tags Declarations
// @Produce json
// @Param id path string true "Declaration ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /declarations/{id}/resubmit [post]
func (h *DeclarationHandler) Resubmit(c *gin.Context) {
	declaration, err := h.declarations.Resubmit(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, declaration, nil)
}

func parseDeclarationQuery(c *gin.Context) (dto.DeclarationQuery, error) {
	query := dto.DeclarationQuery{DepartmentID: c.Query("departmentId")}

	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := models.DeclarationStatus(strings.TrimSpace(part))
			if !status.Valid() {
				return query, appErrors.Clone(appErrors.ErrValidation, "unknown status: "+string(status))
			}
			query.Status = append(query.Status, status)
		}
	}

	if raw := c.Query("dateFrom"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "dateFrom must be YYYY-MM-DD")
		}
		query.DateFrom = &parsed
	}
	if raw := c.Query("dateTo"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "dateTo must be YYYY-MM-DD")
		}
		query.DateTo = &parsed
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return query, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer")
		}
		query.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return query, appErrors.Clone(appErrors.ErrValidation, "offset must be a positive integer")
		}
		query.Offset = offset
	}

	return query, nil
}
