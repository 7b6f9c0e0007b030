package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runJobGate(t *testing.T, secret, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/jobs/cleanup-expired-holds", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	next := func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, RequireJobSecret(secret)(next)(c))
	return rec, reached
}

func TestRequireJobSecret(t *testing.T) {
	rec, reached := runJobGate(t, "job-secret", "Bearer job-secret")
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, reached = runJobGate(t, "job-secret", "Bearer wrong")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, reached = runJobGate(t, "job-secret", "")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, reached = runJobGate(t, "job-secret", "job-secret")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
