package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/terrasale/terrasale-api/internal/utils"
)

// User mirrors the 'users' table. PasswordHash is never serialized.
type User struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        *string    `json:"phone"`
	Address      *string    `json:"address"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserPatch enumerates the fields a generic update may touch. Role,
// password and the activity flag are deliberately unreachable through
// this path.
type UserPatch struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (p UserPatch) apply(b *updateBuilder) {
	if p.Name != nil {
		b.Set("name", strings.TrimSpace(*p.Name))
	}
	if p.Email != nil {
		b.Set("email", strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if p.Phone != nil {
		b.SetNullable("phone", *p.Phone)
	}
	if p.Address != nil {
		b.SetNullable("address", *p.Address)
	}
}

// UserStats aggregates activity counts over the whole users table.
type UserStats struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	InactiveUsers int `json:"inactive_users"`
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id, name, email, phone, address, role, is_active, last_login, created_at, updated_at"

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanUser(rs rowScanner) (User, error) {
	var u User
	err := rs.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address,
		&u.Role, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// isDupErr detects a MySQL unique-constraint violation (error 1062).
func isDupErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// Create inserts a user with role 'admin' and returns the stored row.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, phone, address *string, cost int) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, address, password_hash, role) VALUES (?,?,?,?,?,'admin')",
		strings.TrimSpace(name), email, phone, address, hash)
	if err != nil {
		if isDupErr(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches an active user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? AND is_active=TRUE LIMIT 1", id)
	return scanUser(row)
}

// GetByEmail fetches an active user by normalized email, including the
// password hash for credential verification.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, email, phone, address, password_hash, role, is_active, last_login, created_at, updated_at FROM users WHERE email=? AND is_active=TRUE LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.PasswordHash,
		&u.Role, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// ListActive returns all active users ordered by name.
func (r *UserRepo) ListActive(ctx context.Context) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users WHERE is_active=TRUE ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies a patch and returns the row re-read after the write so
// generated timestamps are reflected. Zero affected rows map to
// sql.ErrNoRows; an empty patch maps to ErrNoFieldsToUpdate.
func (r *UserRepo) Update(ctx context.Context, id uint64, p UserPatch) (User, error) {
	var b updateBuilder
	p.apply(&b)
	b.SetRaw("updated_at = CURRENT_TIMESTAMP")
	if len(b.sets) == 1 { // only the timestamp touch
		return User{}, ErrNoFieldsToUpdate
	}
	q, args, err := b.Query("users", "id = ?", id)
	if err != nil {
		return User{}, err
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		if isDupErr(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if n == 0 {
		return User{}, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

// Deactivate flips the active flag (soft delete). Deactivating an
// already-inactive user affects zero rows and reports sql.ErrNoRows.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=FALSE, updated_at=CURRENT_TIMESTAMP WHERE id=? AND is_active=TRUE", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateLastLogin stamps the last successful login.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=CURRENT_TIMESTAMP WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Stats returns activity counts across all users.
func (r *UserRepo) Stats(ctx context.Context) (UserStats, error) {
	var s UserStats
	err := r.DB.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(CASE WHEN is_active = TRUE THEN 1 END),
			COUNT(CASE WHEN is_active = FALSE THEN 1 END)
		FROM users`).Scan(&s.TotalUsers, &s.ActiveUsers, &s.InactiveUsers)
	return s, err
}

// Search matches active users by substring across name, email and phone.
func (r *UserRepo) Search(ctx context.Context, term string) ([]User, error) {
	pattern := "%" + term + "%"
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+` FROM users
		 WHERE is_active=TRUE AND (name LIKE ? OR email LIKE ? OR phone LIKE ?)
		 ORDER BY name ASC`,
		pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
