package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// ContactStatuses is the full set of lead states. Transitions between them
// are unconstrained.
var ContactStatuses = []string{"new", "contacted", "responded", "closed", "rejected"}

// ValidContactStatus reports whether s is one of the enumerated lead states.
func ValidContactStatus(s string) bool {
	for _, v := range ContactStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Contact mirrors the 'contacts' table.
type Contact struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"phone"`
	Message     *string   `json:"message"`
	PropertyID  *uint64   `json:"property_id"`
	ContactType string    `json:"contact_type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContactDetail joins in the referenced property's title and location.
type ContactDetail struct {
	Contact
	PropertyTitle    *string `json:"property_title"`
	PropertyLocation *string `json:"property_location"`
}

// ContactPatch enumerates the fields a contact update may touch.
type ContactPatch struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Message     *string `json:"message"`
	PropertyID  *uint64 `json:"property_id"`
	ContactType *string `json:"contact_type"`
	Status      *string `json:"status"`
}

func (p ContactPatch) apply(b *updateBuilder) {
	if p.Name != nil {
		b.Set("name", strings.TrimSpace(*p.Name))
	}
	if p.Email != nil {
		b.Set("email", strings.TrimSpace(*p.Email))
	}
	if p.Phone != nil {
		b.SetNullable("phone", *p.Phone)
	}
	if p.Message != nil {
		b.SetNullable("message", *p.Message)
	}
	if p.PropertyID != nil {
		b.Set("property_id", *p.PropertyID)
	}
	if p.ContactType != nil {
		b.Set("contact_type", *p.ContactType)
	}
	if p.Status != nil {
		b.Set("status", *p.Status)
	}
}

// CreateContactInput carries the fields accepted when recording a lead.
type CreateContactInput struct {
	Name        string
	Email       *string
	Phone       *string
	Message     *string
	PropertyID  *uint64
	ContactType string
	Status      string
}

// ContactGroupCount is one grouped row of the stats query.
type ContactGroupCount struct {
	Status      string `json:"status"`
	ContactType string `json:"contact_type"`
	Count       int    `json:"count"`
}

// ContactStats aggregates lead counts.
type ContactStats struct {
	Total  int                 `json:"total"`
	New    int                 `json:"new"`
	Groups []ContactGroupCount `json:"groups"`
}

type ContactRepo struct{ db *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

const contactSelect = `SELECT c.id, c.name, c.email, c.phone, c.message,
		c.property_id, c.contact_type, c.status, c.created_at,
		p.title, p.location
	FROM contacts c
	LEFT JOIN properties p ON p.id = c.property_id`

func scanContact(rs rowScanner) (ContactDetail, error) {
	var d ContactDetail
	var propertyID sql.NullInt64
	err := rs.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.Message,
		&propertyID, &d.ContactType, &d.Status, &d.CreatedAt,
		&d.PropertyTitle, &d.PropertyLocation)
	if err != nil {
		return d, err
	}
	if propertyID.Valid {
		id := uint64(propertyID.Int64)
		d.PropertyID = &id
	}
	return d, nil
}

func (r *ContactRepo) queryContacts(ctx context.Context, q string, args ...any) ([]ContactDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	contacts := make([]ContactDetail, 0)
	for rows.Next() {
		d, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

// List returns all contacts, newest first.
func (r *ContactRepo) List(ctx context.Context) ([]ContactDetail, error) {
	return r.queryContacts(ctx, contactSelect+" ORDER BY c.created_at DESC")
}

// GetByID fetches one contact with its joined property info.
func (r *ContactRepo) GetByID(ctx context.Context, id uint64) (ContactDetail, error) {
	return scanContact(r.db.QueryRowContext(ctx, contactSelect+" WHERE c.id = ?", id))
}

// ByStatus returns contacts in the given lead state, newest first.
func (r *ContactRepo) ByStatus(ctx context.Context, status string) ([]ContactDetail, error) {
	return r.queryContacts(ctx, contactSelect+" WHERE c.status = ? ORDER BY c.created_at DESC", status)
}

// ByType returns contacts of the given type, newest first.
func (r *ContactRepo) ByType(ctx context.Context, contactType string) ([]ContactDetail, error) {
	return r.queryContacts(ctx, contactSelect+" WHERE c.contact_type = ? ORDER BY c.created_at DESC", contactType)
}

// Recent returns contacts created within the last 7 days, capped at limit.
func (r *ContactRepo) Recent(ctx context.Context, limit int) ([]ContactDetail, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.queryContacts(ctx,
		contactSelect+` WHERE c.created_at >= DATE_SUB(NOW(), INTERVAL 7 DAY)
		ORDER BY c.created_at DESC LIMIT ?`, limit)
}

// ByDateRange returns contacts created between start and end (inclusive,
// YYYY-MM-DD).
func (r *ContactRepo) ByDateRange(ctx context.Context, start, end string) ([]ContactDetail, error) {
	return r.queryContacts(ctx,
		contactSelect+" WHERE DATE(c.created_at) BETWEEN ? AND ? ORDER BY c.created_at DESC",
		start, end)
}

// Create inserts a contact and returns it re-read with joined property info.
func (r *ContactRepo) Create(ctx context.Context, in CreateContactInput) (ContactDetail, error) {
	if in.ContactType == "" {
		in.ContactType = "general"
	}
	if in.Status == "" {
		in.Status = "new"
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (name, email, phone, message, property_id, contact_type, status)
		 VALUES (?,?,?,?,?,?,?)`,
		strings.TrimSpace(in.Name), in.Email, in.Phone, in.Message, in.PropertyID, in.ContactType, in.Status)
	if err != nil {
		return ContactDetail{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ContactDetail{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update applies a patch and returns the contact re-read after the write.
func (r *ContactRepo) Update(ctx context.Context, id uint64, p ContactPatch) (ContactDetail, error) {
	var b updateBuilder
	p.apply(&b)
	q, args, err := b.Query("contacts", "id = ?", id)
	if err != nil {
		return ContactDetail{}, err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return ContactDetail{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ContactDetail{}, err
	}
	if n == 0 {
		return ContactDetail{}, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus changes only the lead state. Status validity is enforced at
// the handler so the repository stays a thin write.
func (r *ContactRepo) UpdateStatus(ctx context.Context, id uint64, status string) (ContactDetail, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE contacts SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return ContactDetail{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ContactDetail{}, err
	}
	if n == 0 {
		return ContactDetail{}, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

// Delete removes a contact. Zero affected rows map to sql.ErrNoRows.
func (r *ContactRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = ?", id)
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

// Stats returns total/new counts plus counts grouped by status and type.
func (r *ContactRepo) Stats(ctx context.Context) (ContactStats, error) {
	var s ContactStats
	err := r.db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'new' THEN 1 END)
		FROM contacts`).Scan(&s.Total, &s.New)
	if err != nil {
		return s, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, contact_type, COUNT(*) FROM contacts GROUP BY status, contact_type")
	if err != nil {
		return s, err
	}
	defer rows.Close()
	s.Groups = make([]ContactGroupCount, 0)
	for rows.Next() {
		var g ContactGroupCount
		if err := rows.Scan(&g.Status, &g.ContactType, &g.Count); err != nil {
			return s, err
		}
		s.Groups = append(s.Groups, g)
	}
	return s, rows.Err()
}

// Search matches contacts by substring across name, email, phone and message.
func (r *ContactRepo) Search(ctx context.Context, term string) ([]ContactDetail, error) {
	pattern := "%" + term + "%"
	return r.queryContacts(ctx,
		contactSelect+` WHERE c.name LIKE ? OR c.email LIKE ? OR c.phone LIKE ? OR c.message LIKE ?
		ORDER BY c.created_at DESC`,
		pattern, pattern, pattern, pattern)
}
