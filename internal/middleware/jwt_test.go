package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/car-service-concierge/internal/utils"
)

const testSecret = "middleware-test-secret"

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthInjectsPrincipal(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "concierge", 15)
	assert.NoError(t, err)

	rec, c := runJWT(t, "Bearer "+at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), c.Get("user_id"))
	assert.Equal(t, "concierge", c.Get("role"))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("some-other-secret", 7, "customer", 15)
	assert.NoError(t, err)

	rec, _ := runJWT(t, "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsGarbage(t *testing.T) {
	rec, _ := runJWT(t, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
