package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrasale/terrasale-api/internal/config"
	"github.com/terrasale/terrasale-api/internal/repository"
	"github.com/terrasale/terrasale-api/internal/utils"
)

var loginCols = []string{
	"id", "name", "email", "phone", "address", "password_hash",
	"role", "is_active", "last_login", "created_at", "updated_at",
}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	cfg := config.Config{JWTSecret: "test-secret", BcryptCost: 4}
	return NewAuthHandler(cfg, repository.NewUserRepo(db)), mock, func() { db.Close() }
}

func TestLoginRequiresCredentials(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()

	e := echo.New()
	c, rec := postJSON(e, "/api/auth/login", `{"email":"ada@example.com"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()

	hash, err := utils.HashPassword("right-password", 4)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, email`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(loginCols).
			AddRow(5, "Ada", "ada@example.com", nil, nil, hash, "admin", true, nil, now, now))

	e := echo.New()
	c, rec := postJSON(e, "/api/auth/login", `{"email":"ada@example.com","password":"wrong"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownEmailAnswersLikeWrongPassword(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()

	mock.ExpectQuery(`SELECT id, name, email`).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(loginCols))

	e := echo.New()
	c, rec := postJSON(e, "/api/auth/login", `{"email":"ghost@example.com","password":"whatever"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid credentials", body["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginSuccessIssuesTokenAndStampsLogin(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()

	hash, err := utils.HashPassword("right-password", 4)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, email`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(loginCols).
			AddRow(5, "Ada", "ada@example.com", nil, nil, hash, "admin", true, nil, now, now))
	mock.ExpectExec(`UPDATE users SET last_login=CURRENT_TIMESTAMP`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := echo.New()
	c, rec := postJSON(e, "/api/auth/login", `{"email":"ada@example.com","password":"right-password"}`)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	token := data["token"].(map[string]any)
	assert.NotEmpty(t, token["token"])
	// The hash never leaves the server.
	assert.NotContains(t, rec.Body.String(), hash)
	assert.NoError(t, mock.ExpectationsWereMet())
}
