package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-hours-api/internal/models"
)

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestDeclarationHandlerCreateInvalidBody(t *testing.T) {
	handler := NewDeclarationHandler(nil)
	c, w := testContext(t)
	req, _ := http.NewRequest(http.MethodPost, "/declarations", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeclarationHandlerRejectInvalidBody(t *testing.T) {
	handler := NewDeclarationHandler(nil)
	c, w := testContext(t)
	req, _ := http.NewRequest(http.MethodPost, "/declarations/d-1/reject", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "d-1"}}

	handler.Reject(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseDeclarationQuery(t *testing.T) {
	c, _ := testContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/declarations?status=pending,registrar_verified&departmentId=dept-1&dateFrom=2026-01-01&dateTo=2026-06-30&limit=25&offset=50", nil)
	c.Request = req

	query, err := parseDeclarationQuery(c)
	require.NoError(t, err)
	assert.Equal(t, []models.DeclarationStatus{models.StatusPending, models.StatusRegistrarVerified}, query.Status)
	assert.Equal(t, "dept-1", query.DepartmentID)
	require.NotNil(t, query.DateFrom)
	assert.Equal(t, "2026-01-01", query.DateFrom.Format("2006-01-02"))
	require.NotNil(t, query.DateTo)
	assert.Equal(t, 25, query.Limit)
	assert.Equal(t, 50, query.Offset)
}

func TestParseDeclarationQueryUnknownStatus(t *testing.T) {
	c, _ := testContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/declarations?status=archived", nil)
	c.Request = req

	_, err := parseDeclarationQuery(c)
	require.Error(t, err)
}

func TestParseDeclarationQueryBadDate(t *testing.T) {
	c, _ := testContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/declarations?dateFrom=01-02-2026", nil)
	c.Request = req

	_, err := parseDeclarationQuery(c)
	require.Error(t, err)
}

func TestNotificationHandlerRequiresClaims(t *testing.T) {
	handler := NewNotificationHandler(nil)
	c, w := testContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/notifications", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
