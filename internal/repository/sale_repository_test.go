package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var saleDetailCols = []string{
	"id", "property_id", "seller_id", "buyer_name", "buyer_email", "buyer_phone",
	"sale_amount", "commission", "sale_date", "status", "created_at", "updated_at",
	"title", "location", "name", "email",
}

func saleDetailRow(id int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(saleDetailCols).AddRow(
		id, 7, 3, "Jane Buyer", nil, nil,
		"250000.00", "7500.00", time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), "completed", now, now,
		"Hilltop Plot", "Nakuru", "Sam Seller", "sam@example.com",
	)
}

func saleInput() CreateSaleInput {
	return CreateSaleInput{
		PropertyID: 7,
		SellerID:   3,
		BuyerName:  "Jane Buyer",
		SaleAmount: decimal.RequireFromString("250000.00"),
		Commission: decimal.RequireFromString("7500.00"),
		SaleDate:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestSaleCreateCommitsAndFlipsProperty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM properties WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("available"))
	mock.ExpectExec(`INSERT INTO sales`).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(`UPDATE properties SET status = 'sold', updated_at = CURRENT_TIMESTAMP WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT s\.id, s\.property_id`).
		WithArgs(uint64(42)).
		WillReturnRows(saleDetailRow(42))

	repo := NewSaleRepo(db)
	s, err := repo.Create(context.Background(), saleInput())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), s.ID)
	assert.Equal(t, "completed", s.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleCreateRejectsSoldProperty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM properties WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("sold"))
	mock.ExpectRollback()

	repo := NewSaleRepo(db)
	_, err = repo.Create(context.Background(), saleInput())
	assert.ErrorIs(t, err, ErrPropertySold)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleCreateMissingPropertyIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM properties WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	repo := NewSaleRepo(db)
	_, err = repo.Create(context.Background(), saleInput())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleCreateRollsBackWhenStatusFlipFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM properties WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("available"))
	mock.ExpectExec(`INSERT INTO sales`).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(`UPDATE properties SET status = 'sold'`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	repo := NewSaleRepo(db)
	_, err = repo.Create(context.Background(), saleInput())
	require.Error(t, err)
	// Both writes are undone together; the sale row never outlives the
	// failed status flip.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleUpdateEmptyPatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSaleRepo(db)
	_, err = repo.Update(context.Background(), 42, SalePatch{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleUpdateUnknownIDIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	status := "pending"
	mock.ExpectExec(`UPDATE sales SET status = \?, updated_at = CURRENT_TIMESTAMP WHERE id = \?`).
		WithArgs("pending", uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSaleRepo(db)
	_, err = repo.Update(context.Background(), 99, SalePatch{Status: &status})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleUpdateBadDate(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	bad := "15/08/2026"
	repo := NewSaleRepo(db)
	_, err = repo.Update(context.Background(), 42, SalePatch{SaleDate: &bad})
	assert.Error(t, err)
}
