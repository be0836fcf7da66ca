package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrasale/terrasale-api/internal/utils"
)

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := JWTAuth("test-secret")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c, called
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _, called := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestJWTAuthGarbageToken(t *testing.T) {
	rec, _, called := runJWT(t, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAuthToken("other-secret", 5, "ada@example.com")
	require.NoError(t, err)

	rec, _, called := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestJWTAuthValidTokenInjectsClaims(t *testing.T) {
	tok, err := utils.NewAuthToken("test-secret", 5, "ada@example.com")
	require.NoError(t, err)

	rec, c, called := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
	assert.Equal(t, float64(5), c.Get("user_id"))
	assert.Equal(t, "ada@example.com", c.Get("email"))
}
