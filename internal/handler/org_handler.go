package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-hours-api/internal/dto"
	"github.com/noah-isme/uni-hours-api/internal/service"
	appErrors "github.com/noah-isme/uni-hours-api/pkg/errors"
	"github.com/noah-isme/uni-hours-api/pkg/response"
)

// OrgHandler exposes the course hierarchy CRUD endpoints, department down to
// course element.
type OrgHandler struct {
	org *service.OrgService
}

// NewOrgHandler constructs the handler.
func NewOrgHandler(org *service.OrgService) *OrgHandler {
	return &OrgHandler{org: org}
}

// CreateDepartment godoc
// @Summary Create a department
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param payload body dto.CreateDepartmentRequest true "Department payload"
// @Success 201 {object} response.Envelope
// @Router /departments [post]
func (h *OrgHandler) CreateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	department, err := h.org.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, department)
}

// ListDepartments godoc
// @Summary List departments
// @Tags Hierarchy
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *OrgHandler) ListDepartments(c *gin.Context) {
	departments, err := h.org.ListDepartments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// GetDepartment godoc
// @Summary Fetch one department
// @Tags Hierarchy
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /departments/{id} [get]
func (h *OrgHandler) GetDepartment(c *gin.Context) {
	department, err := h.org.GetDepartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

// UpdateDepartment godoc
// @Summary Rename a department
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param id path string true "Department ID"
// @Param payload body dto.UpdateDepartmentRequest true "Department payload"
// @Success 200 {object} response.Envelope
// @Router /departments/{id} [put]
func (h *OrgHandler) UpdateDepartment(c *gin.Context) {
	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	department, err := h.org.UpdateDepartment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

// DeleteDepartment godoc
// @Summary Delete a department
// @Tags Hierarchy
// @Param id path string true "Department ID"
// @Success 204 {object} response.Envelope
// @Router /departments/{id} [delete]
func (h *OrgHandler) DeleteDepartment(c *gin.Context) {
	if err := h.org.DeleteDepartment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateTrack godoc
// @Summary Create a track inside a department
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param payload body dto.CreateTrackRequest true "Track payload"
// @Success 201 {object} response.Envelope
// @Router /tracks [post]
func (h *OrgHandler) CreateTrack(c *gin.Context) {
	var req dto.CreateTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	track, err := h.org.CreateTrack(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, track)
}

// ListTracks godoc
// @Summary List tracks
// @Tags Hierarchy
// @Produce json
// @Param departmentId query string false "Department filter"
// @Success 200 {object} response.Envelope
// @Router /tracks [get]
func (h *OrgHandler) ListTracks(c *gin.Context) {
	tracks, err := h.org.ListTracks(c.Request.Context(), c.Query("departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tracks, nil)
}

// UpdateTrack godoc
// @Summary Rename or move a track
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param id path string true "Track ID"
// @Param payload body dto.UpdateOrgNodeRequest true "Track payload"
// @Success 200 {object} response.Envelope
// @Router /tracks/{id} [put]
func (h *OrgHandler) UpdateTrack(c *gin.Context) {
	var req dto.UpdateOrgNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	track, err := h.org.UpdateTrack(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, track, nil)
}

// DeleteTrack godoc
// @Summary Delete a track
// @Tags Hierarchy
// @Param id path string true "Track ID"
// @Success 204 {object} response.Envelope
// @Router /tracks/{id} [delete]
func (h *OrgHandler) DeleteTrack(c *gin.Context) {
	if err := h.org.DeleteTrack(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateLevel godoc
// @Summary Create a level inside a track
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param payload body dto.CreateLevelRequest true "Level payload"
// @Success 201 {object} response.Envelope
// @Router /levels [post]
func (h *OrgHandler) CreateLevel(c *gin.Context) {
	var req dto.CreateLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	level, err := h.org.CreateLevel(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, level)
}

// ListLevels godoc
// @Summary List levels
// @Tags Hierarchy
// @Produce json
// @Param trackId query string false "Track filter"
// @Success 200 {object} response.Envelope
// @Router /levels [get]
func (h *OrgHandler) ListLevels(c *gin.Context) {
	levels, err := h.org.ListLevels(c.Request.Context(), c.Query("trackId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, levels, nil)
}

// UpdateLevel godoc
// @Summary Rename or move a level
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param id path string true "Level ID"
// @Param payload body dto.UpdateOrgNodeRequest true "Level payload"
// @Success 200 {object} response.Envelope
// @Router /levels/{id} [put]
func (h *OrgHandler) UpdateLevel(c *gin.Context) {
	var req dto.UpdateOrgNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	level, err := h.org.UpdateLevel(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, level, nil)
}

// DeleteLevel godoc
// @Summary Delete a level
// @Tags Hierarchy
// @Param id path string true "Level ID"
// @Success 204 {object} response.Envelope
// @Router /levels/{id} [delete]
func (h *OrgHandler) DeleteLevel(c *gin.Context) {
	if err := h.org.DeleteLevel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateSemester godoc
// @Summary Create a semester inside a level
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param payload body dto.CreateSemesterRequest true "Semester payload"
// @Success 201 {object} response.Envelope
// @Router /semesters [post]
func (h *OrgHandler) CreateSemester(c *gin.Context) {
	var req dto.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	semester, err := h.org.CreateSemester(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, semester)
}

// ListSemesters godoc
// @Summary List semesters
// @Tags Hierarchy
// @Produce json
// @Param levelId query string false "Level filter"
// @Success 200 {object} response.Envelope
// @Router /semesters [get]
func (h *OrgHandler) ListSemesters(c *gin.Context) {
	semesters, err := h.org.ListSemesters(c.Request.Context(), c.Query("levelId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semesters, nil)
}

// UpdateSemester godoc
// @Summary Rename or move a semester
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param id path string true "Semester ID"
// @Param payload body dto.UpdateOrgNodeRequest true "Semester payload"
// @Success 200 {object} response.Envelope
// @Router /semesters/{id} [put]
func (h *OrgHandler) UpdateSemester(c *gin.Context) {
	var req dto.UpdateOrgNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	semester, err := h.org.UpdateSemester(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semester, nil)
}

// DeleteSemester godoc
// @Summary Delete a semester
// @Tags Hierarchy
// @Param id path string true "Semester ID"
// @Success 204 {object} response.Envelope
// @Router /semesters/{id} [delete]
func (h *OrgHandler) DeleteSemester(c *gin.Context) {
	if err := h.org.DeleteSemester(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateCourseUnit godoc
// @Summary Create a course unit inside a semester
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseUnitRequest true "Course unit payload"
// @Success 201 {object} response.Envelope
// @Router /course-units [post]
func (h *OrgHandler) CreateCourseUnit(c *gin.Context) {
	var req dto.CreateCourseUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	unit, err := h.org.CreateCourseUnit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, unit)
}

// ListCourseUnits godoc
// @Summary List course units
// @Tags Hierarchy
// @Produce json
// @Param semesterId query string false "Semester filter"
// @Success 200 {object} response.Envelope
// @Router /course-units [get]
func (h *OrgHandler) ListCourseUnits(c *gin.Context) {
	units, err := h.org.ListCourseUnits(c.Request.Context(), c.Query("semesterId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, units, nil)
}

// UpdateCourseUnit godoc
// @Summary Rename or move a course unit
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param id path string true "Course unit ID"
// @Param payload body dto.UpdateOrgNodeRequest true "Course unit payload"
// @Success 200 {object} response.Envelope
// @Router /course-units/{id} [put]
func (h *OrgHandler) UpdateCourseUnit(c *gin.Context) {
	var req dto.UpdateOrgNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	unit, err := h.org.UpdateCourseUnit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, unit, nil)
}

// DeleteCourseUnit godoc
// @Summary Delete a course unit
// @Tags Hierarchy
// @Param id path string true "Course unit ID"
// @Success 204 {object} response.Envelope
// @Router /course-units/{id} [delete]
func (h *OrgHandler) DeleteCourseUnit(c *gin.Context) {
	if err := h.org.DeleteCourseUnit(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateCourseElement godoc
// @Summary Create a course element inside a course unit
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseElementRequest true "Course element payload"
// @Success 201 {object} response.Envelope
// @Router /course-elements [post]
func (h *OrgHandler) CreateCourseElement(c *gin.Context) {
	var req dto.CreateCourseElementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	element, err := h.org.CreateCourseElement(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, element)
}

// ListCourseElements godoc
// @Summary List course elements
// @Tags Hierarchy
// @Produce json
// @Param courseUnitId query string false "Course unit filter"
// @Success 200 {object} response.Envelope
// @Router /course-elements [get]
func (h *OrgHandler) ListCourseElements(c *gin.Context) {
	elements, err := h.org.ListCourseElements(c.Request.Context(), c.Query("courseUnitId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, elements, nil)
}

// UpdateCourseElement godoc
// @Summary Rename or move a course element
// @Tags Hierarchy
// @Accept json
// @Produce json
// @Param id path string true "Course element ID"
// @Param payload body dto.UpdateOrgNodeRequest true "Course element payload"
// @Success 200 {object} response.Envelope
// @Router /course-elements/{id} [put]
func (h *OrgHandler) UpdateCourseElement(c *gin.Context) {
	var req dto.UpdateOrgNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	element, err := h.org.UpdateCourseElement(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, element, nil)
}

// DeleteCourseElement godoc
// @Summary Delete a course element
// @Tags Hierarchy
// @Param id path string true "Course element ID"
// @Success 204 {object} response.Envelope
// @Router /course-elements/{id} [delete]
func (h *OrgHandler) DeleteCourseElement(c *gin.Context) {
	if err := h.org.DeleteCourseElement(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
