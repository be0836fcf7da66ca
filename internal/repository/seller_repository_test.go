package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSellerRepo(t *testing.T) (*SellerRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewSellerRepo(NewUserRepo(db)), mock, func() { db.Close() }
}

func TestSellerUpdateScopedToRole(t *testing.T) {
	repo, mock, done := newSellerRepo(t)
	defer done()

	name := "Sam"
	// The WHERE clause carries the role predicate so the write cannot
	// reach a non-seller row.
	mock.ExpectExec(`UPDATE users SET name = \?, updated_at = CURRENT_TIMESTAMP WHERE id = \? AND role = 'seller'`).
		WithArgs("Sam", uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id, name, email`).
		WithArgs(uint64(3)).
		WillReturnRows(userRow(3, "Sam", "sam@example.com", "seller"))

	u, err := repo.Update(context.Background(), 3, UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "seller", u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerUpdateNonSellerIDIsNotFound(t *testing.T) {
	repo, mock, done := newSellerRepo(t)
	defer done()

	name := "Sam"
	mock.ExpectExec(`UPDATE users SET name = \?, updated_at = CURRENT_TIMESTAMP WHERE id = \? AND role = 'seller'`).
		WithArgs("Sam", uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), 8, UserPatch{Name: &name})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerCreateForcesRole(t *testing.T) {
	repo, mock, done := newSellerRepo(t)
	defer done()

	mock.ExpectExec(`INSERT INTO users \(name, email, phone, address, password_hash, role\) VALUES \(\?,\?,\?,\?,\?,'seller'\)`).
		WithArgs("Sam", "sam@example.com", nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(`SELECT id, name, email`).
		WithArgs(uint64(3)).
		WillReturnRows(userRow(3, "Sam", "sam@example.com", "seller"))

	u, err := repo.Create(context.Background(), "Sam", "sam@example.com", "secret", nil, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, "seller", u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerDeactivateAlreadyInactive(t *testing.T) {
	repo, mock, done := newSellerRepo(t)
	defer done()

	mock.ExpectExec(`UPDATE users SET is_active=\?`).
		WithArgs(false, uint64(3), true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Deactivate(context.Background(), 3), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerActivate(t *testing.T) {
	repo, mock, done := newSellerRepo(t)
	defer done()

	mock.ExpectExec(`UPDATE users SET is_active=\?`).
		WithArgs(true, uint64(3), false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Activate(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
