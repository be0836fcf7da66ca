package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrasale/terrasale-api/internal/notify"
	"github.com/terrasale/terrasale-api/internal/repository"
)

func newContactHandler(t *testing.T) (*ContactHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewContactHandler(repository.NewContactRepo(db), notify.NewClient("", ""))
	return h, mock, func() { db.Close() }
}

func postJSON(e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestContactCreateRejectsBadEmailBeforeStore(t *testing.T) {
	h, mock, done := newContactHandler(t)
	defer done()

	e := echo.New()
	c, rec := postJSON(e, "/api/contacts", `{"name":"Lia Lead","email":"not-an-email"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	// No expectations were registered: the store was never touched.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactCreateRequiresName(t *testing.T) {
	h, mock, done := newContactHandler(t)
	defer done()

	e := echo.New()
	c, rec := postJSON(e, "/api/contacts", `{"email":"lead@example.com"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactUpdateStatusRejectsUnknownEnum(t *testing.T) {
	h, mock, done := newContactHandler(t)
	defer done()

	e := echo.New()
	c, rec := postJSON(e, "/api/contacts/9/status", `{"status":"archived"}`)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactGetNotFoundEnvelope(t *testing.T) {
	h, mock, done := newContactHandler(t)
	defer done()

	mock.ExpectQuery(`SELECT c\.id, c\.name`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/contacts/404", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("404")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}
