package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/terrasale/terrasale-api/internal/utils"
)

// SellerRepo is a role-scoped projection over the users table: every query
// carries a fixed role='seller' predicate, so a seller is simply a user with
// that role. It composes UserRepo rather than owning a parallel table.
type SellerRepo struct {
	Users *UserRepo
}

func NewSellerRepo(users *UserRepo) *SellerRepo { return &SellerRepo{Users: users} }

// SellerStats aggregates activity counts over users with role 'seller'.
type SellerStats struct {
	TotalSellers    int `json:"total_sellers"`
	ActiveSellers   int `json:"active_sellers"`
	InactiveSellers int `json:"inactive_sellers"`
}

// ListActive returns all active sellers ordered by name.
func (r *SellerRepo) ListActive(ctx context.Context) ([]User, error) {
	rows, err := r.Users.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users WHERE role='seller' AND is_active=TRUE ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sellers := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		sellers = append(sellers, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sellers, nil
}

// GetByID fetches an active seller by id.
func (r *SellerRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	row := r.Users.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? AND role='seller' AND is_active=TRUE LIMIT 1", id)
	return scanUser(row)
}

// GetByEmail fetches an active seller by normalized email.
func (r *SellerRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.Users.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? AND role='seller' AND is_active=TRUE LIMIT 1", email)
	return scanUser(row)
}

// Create inserts a user with role forced to 'seller' and returns the stored row.
func (r *SellerRepo) Create(ctx context.Context, name, email, password string, phone, address *string, cost int) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return User{}, err
	}
	res, err := r.Users.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, address, password_hash, role) VALUES (?,?,?,?,?,'seller')",
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

// Update applies a patch under the seller predicate. The patch type cannot
// express a role change, and the WHERE clause keeps the update from reaching
// rows outside the projection; a matching non-seller id reports sql.ErrNoRows.
func (r *SellerRepo) Update(ctx context.Context, id uint64, p UserPatch) (User, error) {
	var b updateBuilder
	p.apply(&b)
	b.SetRaw("updated_at = CURRENT_TIMESTAMP")
	if len(b.sets) == 1 {
		return User{}, ErrNoFieldsToUpdate
	}
	q, args, err := b.Query("users", "id = ? AND role = 'seller'", id)
	if err != nil {
		return User{}, err
	}
	res, err := r.Users.DB.ExecContext(ctx, q, args...)
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

// Deactivate soft-deletes a seller. Historical sales and properties keep
// their references; the seller just disappears from active listings.
func (r *SellerRepo) Deactivate(ctx context.Context, id uint64) error {
	return r.setActive(ctx, id, false)
}

// Activate restores a previously deactivated seller.
func (r *SellerRepo) Activate(ctx context.Context, id uint64) error {
	return r.setActive(ctx, id, true)
}

func (r *SellerRepo) setActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.Users.DB.ExecContext(ctx,
		"UPDATE users SET is_active=?, updated_at=CURRENT_TIMESTAMP WHERE id=? AND role='seller' AND is_active=?",
		active, id, !active)
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

// ConvertToSeller flips an existing user's role to 'seller'. This is the
// only place a role changes, and it never goes through the patch path.
func (r *SellerRepo) ConvertToSeller(ctx context.Context, userID uint64) error {
	res, err := r.Users.DB.ExecContext(ctx,
		"UPDATE users SET role='seller', updated_at=CURRENT_TIMESTAMP WHERE id=?", userID)
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

// Stats returns activity counts across all sellers.
func (r *SellerRepo) Stats(ctx context.Context) (SellerStats, error) {
	var s SellerStats
	err := r.Users.DB.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(CASE WHEN is_active = TRUE THEN 1 END),
			COUNT(CASE WHEN is_active = FALSE THEN 1 END)
		FROM users WHERE role='seller'`).Scan(&s.TotalSellers, &s.ActiveSellers, &s.InactiveSellers)
	return s, err
}

// Search matches active sellers by substring across name and email.
func (r *SellerRepo) Search(ctx context.Context, term string) ([]User, error) {
	pattern := "%" + term + "%"
	rows, err := r.Users.DB.QueryContext(ctx,
		"SELECT "+userCols+` FROM users
		 WHERE role='seller' AND is_active=TRUE AND (name LIKE ? OR email LIKE ?)
		 ORDER BY name ASC`,
		pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sellers := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		sellers = append(sellers, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sellers, nil
}
