package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

func runRole(t *testing.T, ctxRole any, allowed ...workflow.Role) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/staff/requests", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if ctxRole != nil {
		c.Set("role", ctxRole)
	}

	h := RequireRole(allowed...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	return rec
}

func TestRequireRoleAllowsListedRoles(t *testing.T) {
	rec := runRole(t, "concierge", workflow.RoleConcierge, workflow.RoleDealer, workflow.RoleOwner)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleNormalizesCase(t *testing.T) {
	rec := runRole(t, "Owner", workflow.RoleOwner)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsUnlistedRole(t *testing.T) {
	rec := runRole(t, "customer", workflow.RoleConcierge, workflow.RoleDealer, workflow.RoleOwner)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	rec := runRole(t, nil, workflow.RoleOwner)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleRejectsUnknownRole(t *testing.T) {
	rec := runRole(t, "superadmin", workflow.RoleOwner)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
