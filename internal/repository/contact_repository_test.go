package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contactCols = []string{
	"id", "name", "email", "phone", "message",
	"property_id", "contact_type", "status", "created_at",
	"title", "location",
}

func contactRow(id int64, name string) *sqlmock.Rows {
	return sqlmock.NewRows(contactCols).AddRow(
		id, name, "lead@example.com", nil, "Interested in the plot",
		7, "viewing", "new", time.Now(),
		"Hilltop Plot", "Nakuru",
	)
}

func TestContactCreateAppliesDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	email := "lead@example.com"
	mock.ExpectExec(`INSERT INTO contacts`).
		WithArgs("Lia Lead", &email, nil, nil, nil, "general", "new").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(`SELECT c\.id, c\.name`).
		WithArgs(uint64(9)).
		WillReturnRows(contactRow(9, "Lia Lead"))

	repo := NewContactRepo(db)
	ct, err := repo.Create(context.Background(), CreateContactInput{Name: "Lia Lead", Email: &email})
	require.NoError(t, err)
	assert.Equal(t, uint64(9), ct.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactUpdateStatusUnknownID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE contacts SET status = \? WHERE id = \?`).
		WithArgs("contacted", uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewContactRepo(db)
	_, err = repo.UpdateStatus(context.Background(), 99, "contacted")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidContactStatus(t *testing.T) {
	for _, s := range ContactStatuses {
		assert.True(t, ValidContactStatus(s))
	}
	assert.False(t, ValidContactStatus("archived"))
	assert.False(t, ValidContactStatus(""))
}
