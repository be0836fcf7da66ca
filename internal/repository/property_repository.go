package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Property mirrors the 'properties' table. Money columns are DECIMAL(12,2)
// and stay fixed-point end to end.
type Property struct {
	ID           uint64          `json:"id"`
	Title        string          `json:"title"`
	Location     string          `json:"location"`
	Size         string          `json:"size"`
	Price        decimal.Decimal `json:"price"`
	Description  *string         `json:"description"`
	PropertyType string          `json:"property_type"`
	Status       string          `json:"status"`
	SellerID     *uint64         `json:"seller_id"`
	Latitude     *float64        `json:"latitude"`
	Longitude    *float64        `json:"longitude"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PropertyImage is one row of 'property_images'.
type PropertyImage struct {
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

// PropertyDetail is the rich view returned to callers: the property plus its
// seller contact fields, feature tags and images.
type PropertyDetail struct {
	Property
	SellerName   *string         `json:"seller_name"`
	SellerEmail  *string         `json:"seller_email"`
	SellerPhone  *string         `json:"seller_phone"`
	PrimaryImage *string         `json:"primary_image,omitempty"`
	Features     []string        `json:"features"`
	Images       []PropertyImage `json:"images,omitempty"`
}

// PropertyStats groups counts by listing status.
type PropertyStats struct {
	TotalProperties int `json:"total_properties"`
	Available       int `json:"available"`
	Sold            int `json:"sold"`
}

// CreatePropertyInput carries the fields accepted when listing a property.
type CreatePropertyInput struct {
	Title        string
	Location     string
	Size         string
	Price        decimal.Decimal
	Description  *string
	PropertyType string
	SellerID     *uint64
	Latitude     *float64
	Longitude    *float64
	Features     []string
}

type PropertyRepo struct{ db *sql.DB }

func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{db: db} }

func scanPropertyBase(rs rowScanner, p *Property, extra ...any) error {
	var sellerID sql.NullInt64
	var lat, lng sql.NullFloat64
	dest := []any{&p.ID, &p.Title, &p.Location, &p.Size, &p.Price, &p.Description,
		&p.PropertyType, &p.Status, &sellerID, &lat, &lng, &p.CreatedAt, &p.UpdatedAt}
	dest = append(dest, extra...)
	if err := rs.Scan(dest...); err != nil {
		return err
	}
	if sellerID.Valid {
		id := uint64(sellerID.Int64)
		p.SellerID = &id
	}
	if lat.Valid {
		v := lat.Float64
		p.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		p.Longitude = &v
	}
	return nil
}

const propertyCols = `p.id, p.title, p.location, p.size, p.price, p.description,
	p.property_type, p.status, p.seller_id, p.latitude, p.longitude, p.created_at, p.updated_at`

// List returns property detail rows with seller contact info, the primary
// image and feature tags. When includeSold is false only 'available'
// listings are returned.
func (r *PropertyRepo) List(ctx context.Context, includeSold bool) ([]PropertyDetail, error) {
	q := `SELECT ` + propertyCols + `,
			s.name, s.email, s.phone,
			(SELECT image_url FROM property_images WHERE property_id = p.id AND is_primary = TRUE LIMIT 1)
		FROM properties p
		LEFT JOIN users s ON s.id = p.seller_id`
	if !includeSold {
		q += ` WHERE p.status = 'available'`
	}
	q += ` ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]PropertyDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d PropertyDetail
		if err := scanPropertyBase(rows, &d.Property,
			&d.SellerName, &d.SellerEmail, &d.SellerPhone, &d.PrimaryImage); err != nil {
			return nil, err
		}
		d.Features = []string{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	// Populate features for all properties in a single query.
	ids := make([]any, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	featQ := `SELECT property_id, feature FROM property_features
		WHERE property_id IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY property_id, id`
	frows, err := r.db.QueryContext(ctx, featQ, ids...)
	if err != nil {
		return nil, err
	}
	defer frows.Close()
	for frows.Next() {
		var pid uint64
		var feat string
		if err := frows.Scan(&pid, &feat); err != nil {
			return nil, err
		}
		if idx, ok := index[pid]; ok {
			details[idx].Features = append(details[idx].Features, feat)
		}
	}
	if err := frows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetByID returns one property with seller contact info, features and images.
// Sold properties remain readable by id.
func (r *PropertyRepo) GetByID(ctx context.Context, id uint64) (*PropertyDetail, error) {
	var d PropertyDetail
	err := scanPropertyBase(r.db.QueryRowContext(ctx,
		`SELECT `+propertyCols+`, s.name, s.email, s.phone
		 FROM properties p
		 LEFT JOIN users s ON s.id = p.seller_id
		 WHERE p.id = ?`, id),
		&d.Property, &d.SellerName, &d.SellerEmail, &d.SellerPhone)
	if err != nil {
		return nil, err
	}

	d.Features = []string{}
	frows, err := r.db.QueryContext(ctx,
		"SELECT feature FROM property_features WHERE property_id = ? ORDER BY id", id)
	if err != nil {
		return nil, err
	}
	defer frows.Close()
	for frows.Next() {
		var feat string
		if err := frows.Scan(&feat); err != nil {
			return nil, err
		}
		d.Features = append(d.Features, feat)
	}
	if err := frows.Err(); err != nil {
		return nil, err
	}

	d.Images = []PropertyImage{}
	irows, err := r.db.QueryContext(ctx,
		"SELECT image_url, is_primary FROM property_images WHERE property_id = ? ORDER BY id", id)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var img PropertyImage
		if err := irows.Scan(&img.ImageURL, &img.IsPrimary); err != nil {
			return nil, err
		}
		d.Images = append(d.Images, img)
	}
	if err := irows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts the property row and its feature tags inside one
// transaction. Any failure rolls back the whole insert; the transaction is
// resolved on every exit path.
func (r *PropertyRepo) Create(ctx context.Context, in CreatePropertyInput) (*PropertyDetail, error) {
	if in.PropertyType == "" {
		in.PropertyType = "land"
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO properties (title, location, size, price, description, property_type, seller_id, latitude, longitude)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		strings.TrimSpace(in.Title), strings.TrimSpace(in.Location), strings.TrimSpace(in.Size),
		in.Price, in.Description, in.PropertyType, in.SellerID, in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	for _, feat := range in.Features {
		feat = strings.TrimSpace(feat)
		if feat == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO property_features (property_id, feature) VALUES (?,?)", id, feat); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, uint64(id))
}

// Delete removes a property. Properties with recorded sales are refused
// with ErrConflict before touching the row, so the sales ledger keeps its
// references instead of relying on the FK error text. Features and images
// go with the property via ON DELETE CASCADE.
func (r *PropertyRepo) Delete(ctx context.Context, id uint64) error {
	var salesCount int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sales WHERE property_id = ?", id).Scan(&salesCount); err != nil {
		return err
	}
	if salesCount > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM properties WHERE id = ?", id)
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

// Stats groups listing counts by status.
func (r *PropertyRepo) Stats(ctx context.Context) (PropertyStats, error) {
	var s PropertyStats
	err := r.db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'available' THEN 1 END),
			COUNT(CASE WHEN status = 'sold' THEN 1 END)
		FROM properties`).Scan(&s.TotalProperties, &s.Available, &s.Sold)
	return s, err
}
