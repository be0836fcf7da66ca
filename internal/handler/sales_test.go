package handler

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrasale/terrasale-api/internal/notify"
	"github.com/terrasale/terrasale-api/internal/repository"
)

func newSaleHandler(t *testing.T) (*SaleHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewSaleHandler(repository.NewSaleRepo(db), notify.NewClient("", ""))
	return h, mock, func() { db.Close() }
}

func TestSaleCreateRequiresBuyerName(t *testing.T) {
	h, mock, done := newSaleHandler(t)
	defer done()

	e := echo.New()
	c, rec := postJSON(e, "/api/sales",
		`{"property_id":7,"seller_id":3,"sale_amount":"250000.00","sale_date":"2026-08-15"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleCreateRejectsNonPositiveAmount(t *testing.T) {
	h, mock, done := newSaleHandler(t)
	defer done()

	e := echo.New()
	c, rec := postJSON(e, "/api/sales",
		`{"property_id":7,"seller_id":3,"buyer_name":"Jane","sale_amount":"0","sale_date":"2026-08-15"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleCreateRejectsBadDate(t *testing.T) {
	h, mock, done := newSaleHandler(t)
	defer done()

	e := echo.New()
	c, rec := postJSON(e, "/api/sales",
		`{"property_id":7,"seller_id":3,"buyer_name":"Jane","sale_amount":"250000.00","sale_date":"15/08/2026"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleCreateSoldPropertyConflicts(t *testing.T) {
	h, mock, done := newSaleHandler(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM properties WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("sold"))
	mock.ExpectRollback()

	e := echo.New()
	c, rec := postJSON(e, "/api/sales",
		`{"property_id":7,"seller_id":3,"buyer_name":"Jane","sale_amount":"250000.00","sale_date":"2026-08-15"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleCreateMissingPropertyIs404(t *testing.T) {
	h, mock, done := newSaleHandler(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM properties WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	e := echo.New()
	c, rec := postJSON(e, "/api/sales",
		`{"property_id":7,"seller_id":3,"buyer_name":"Jane","sale_amount":"250000.00","sale_date":"2026-08-15"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
