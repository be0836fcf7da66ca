package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sale mirrors the 'sales' table. A sale is the only writer of a property's
// 'sold' status, and the two writes always land in the same transaction.
type Sale struct {
	ID         uint64          `json:"id"`
	PropertyID uint64          `json:"property_id"`
	SellerID   uint64          `json:"seller_id"`
	BuyerName  string          `json:"buyer_name"`
	BuyerEmail *string         `json:"buyer_email"`
	BuyerPhone *string         `json:"buyer_phone"`
	SaleAmount decimal.Decimal `json:"sale_amount"`
	Commission decimal.Decimal `json:"commission"`
	SaleDate   time.Time       `json:"sale_date"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SaleDetail joins in property and seller display fields for callers.
type SaleDetail struct {
	Sale
	PropertyTitle    *string `json:"property_title"`
	PropertyLocation *string `json:"property_location"`
	SellerName       *string `json:"seller_name"`
	SellerEmail      *string `json:"seller_email"`
}

// CreateSaleInput carries the fields accepted when recording a sale.
type CreateSaleInput struct {
	PropertyID uint64
	SellerID   uint64
	BuyerName  string
	BuyerEmail *string
	BuyerPhone *string
	SaleAmount decimal.Decimal
	Commission decimal.Decimal
	SaleDate   time.Time
	Status     string
}

// SalePatch enumerates the fields a sale update may touch. Unlike users,
// every mutable column is reachable here.
type SalePatch struct {
	BuyerName  *string          `json:"buyer_name"`
	BuyerEmail *string          `json:"buyer_email"`
	BuyerPhone *string          `json:"buyer_phone"`
	SaleAmount *decimal.Decimal `json:"sale_amount"`
	Commission *decimal.Decimal `json:"commission"`
	SaleDate   *string          `json:"sale_date"`
	Status     *string          `json:"status"`
}

func (p SalePatch) apply(b *updateBuilder) error {
	if p.BuyerName != nil {
		b.Set("buyer_name", strings.TrimSpace(*p.BuyerName))
	}
	if p.BuyerEmail != nil {
		b.SetNullable("buyer_email", *p.BuyerEmail)
	}
	if p.BuyerPhone != nil {
		b.SetNullable("buyer_phone", *p.BuyerPhone)
	}
	if p.SaleAmount != nil {
		b.Set("sale_amount", *p.SaleAmount)
	}
	if p.Commission != nil {
		b.Set("commission", *p.Commission)
	}
	if p.SaleDate != nil {
		d, err := time.Parse("2006-01-02", *p.SaleDate)
		if err != nil {
			return err
		}
		b.Set("sale_date", d)
	}
	if p.Status != nil {
		b.Set("status", *p.Status)
	}
	return nil
}

// SaleStats aggregates the sales ledger over a time window. Empty windows
// report zero values via COALESCE.
type SaleStats struct {
	TotalSales      int             `json:"total_sales"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	AverageSale     decimal.Decimal `json:"average_sale"`
	HighestSale     decimal.Decimal `json:"highest_sale"`
	LowestSale      decimal.Decimal `json:"lowest_sale"`
	ActiveSellers   int             `json:"active_sellers"`
}

// MonthlyTrend is one month of aggregated sales.
type MonthlyTrend struct {
	Month           string          `json:"month"`
	SalesCount      int             `json:"sales_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

type SaleRepo struct{ db *sql.DB }

func NewSaleRepo(db *sql.DB) *SaleRepo { return &SaleRepo{db: db} }

const saleSelect = `SELECT s.id, s.property_id, s.seller_id, s.buyer_name, s.buyer_email, s.buyer_phone,
		s.sale_amount, s.commission, s.sale_date, s.status, s.created_at, s.updated_at,
		p.title, p.location, sel.name, sel.email
	FROM sales s
	LEFT JOIN properties p ON p.id = s.property_id
	LEFT JOIN users sel ON sel.id = s.seller_id`

func scanSale(rs rowScanner) (SaleDetail, error) {
	var d SaleDetail
	err := rs.Scan(&d.ID, &d.PropertyID, &d.SellerID, &d.BuyerName, &d.BuyerEmail, &d.BuyerPhone,
		&d.SaleAmount, &d.Commission, &d.SaleDate, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.PropertyTitle, &d.PropertyLocation, &d.SellerName, &d.SellerEmail)
	return d, err
}

func (r *SaleRepo) querySales(ctx context.Context, q string, args ...any) ([]SaleDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sales := make([]SaleDetail, 0)
	for rows.Next() {
		d, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

// List returns all sales with property and seller info, newest sale first.
func (r *SaleRepo) List(ctx context.Context) ([]SaleDetail, error) {
	return r.querySales(ctx, saleSelect+" ORDER BY s.sale_date DESC")
}

// GetByID fetches one sale with its joined display fields.
func (r *SaleRepo) GetByID(ctx context.Context, id uint64) (SaleDetail, error) {
	return scanSale(r.db.QueryRowContext(ctx, saleSelect+" WHERE s.id = ?", id))
}

// BySeller returns a seller's sales, newest first.
func (r *SaleRepo) BySeller(ctx context.Context, sellerID uint64) ([]SaleDetail, error) {
	return r.querySales(ctx, saleSelect+" WHERE s.seller_id = ? ORDER BY s.sale_date DESC", sellerID)
}

// Create records a sale and flips the property to 'sold' atomically:
//
//  1. lock the property row and check its status
//  2. insert the sale
//  3. mark the property sold and refresh its update timestamp
//
// Any failure rolls the whole transaction back, so a sale row without the
// status flip (or the reverse) is never observable. The row lock also
// serializes concurrent sale attempts on the same property: the second
// caller sees status 'sold' and gets ErrPropertySold. The returned detail
// is re-read outside the transaction; nothing else can touch the
// just-created row, so the read needs no atomicity with the write.
func (r *SaleRepo) Create(ctx context.Context, in CreateSaleInput) (SaleDetail, error) {
	if in.Status == "" {
		in.Status = "completed"
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return SaleDetail{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var status string
	if err := tx.QueryRowContext(ctx,
		"SELECT status FROM properties WHERE id = ? FOR UPDATE", in.PropertyID).Scan(&status); err != nil {
		return SaleDetail{}, err
	}
	if status == "sold" {
		return SaleDetail{}, ErrPropertySold
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sales (property_id, seller_id, buyer_name, buyer_email, buyer_phone, sale_amount, commission, sale_date, status)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		in.PropertyID, in.SellerID, strings.TrimSpace(in.BuyerName), in.BuyerEmail, in.BuyerPhone,
		in.SaleAmount, in.Commission, in.SaleDate, in.Status)
	if err != nil {
		return SaleDetail{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return SaleDetail{}, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE properties SET status = 'sold', updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		in.PropertyID); err != nil {
		return SaleDetail{}, err
	}

	if err := tx.Commit(); err != nil {
		return SaleDetail{}, err
	}
	committed = true
	return r.GetByID(ctx, uint64(id))
}

// Update applies a patch and returns the sale re-read after the write.
func (r *SaleRepo) Update(ctx context.Context, id uint64, p SalePatch) (SaleDetail, error) {
	var b updateBuilder
	if err := p.apply(&b); err != nil {
		return SaleDetail{}, err
	}
	b.SetRaw("updated_at = CURRENT_TIMESTAMP")
	if len(b.sets) == 1 {
		return SaleDetail{}, ErrNoFieldsToUpdate
	}
	q, args, err := b.Query("sales", "id = ?", id)
	if err != nil {
		return SaleDetail{}, err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return SaleDetail{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return SaleDetail{}, err
	}
	if n == 0 {
		return SaleDetail{}, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

// Delete removes a sale from the ledger. The property's status is left
// untouched; unwinding a sale is a manual back-office decision.
func (r *SaleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sales WHERE id = ?", id)
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

// Stats aggregates the ledger over the requested period ("week", "month" or
// "year"; anything else means all time).
func (r *SaleRepo) Stats(ctx context.Context, period string) (SaleStats, error) {
	dateFilter := ""
	switch period {
	case "week":
		dateFilter = "AND s.sale_date >= DATE_SUB(NOW(), INTERVAL 1 WEEK)"
	case "month":
		dateFilter = "AND s.sale_date >= DATE_SUB(NOW(), INTERVAL 1 MONTH)"
	case "year":
		dateFilter = "AND s.sale_date >= DATE_SUB(NOW(), INTERVAL 1 YEAR)"
	}
	var s SaleStats
	err := r.db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COALESCE(SUM(s.sale_amount), 0),
			COALESCE(SUM(s.commission), 0),
			COALESCE(AVG(s.sale_amount), 0),
			COALESCE(MAX(s.sale_amount), 0),
			COALESCE(MIN(s.sale_amount), 0),
			COUNT(DISTINCT s.seller_id)
		FROM sales s
		WHERE 1=1 `+dateFilter).Scan(
		&s.TotalSales, &s.TotalRevenue, &s.TotalCommission,
		&s.AverageSale, &s.HighestSale, &s.LowestSale, &s.ActiveSellers)
	return s, err
}

// MonthlyTrends returns per-month totals for the last 12 months.
func (r *SaleRepo) MonthlyTrends(ctx context.Context) ([]MonthlyTrend, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
			DATE_FORMAT(sale_date, '%Y-%m'),
			COUNT(*),
			COALESCE(SUM(sale_amount), 0),
			COALESCE(SUM(commission), 0)
		FROM sales
		WHERE sale_date >= DATE_SUB(NOW(), INTERVAL 12 MONTH)
		GROUP BY DATE_FORMAT(sale_date, '%Y-%m')
		ORDER BY 1 ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	trends := make([]MonthlyTrend, 0)
	for rows.Next() {
		var t MonthlyTrend
		if err := rows.Scan(&t.Month, &t.SalesCount, &t.TotalAmount, &t.TotalCommission); err != nil {
			return nil, err
		}
		trends = append(trends, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trends, nil
}
