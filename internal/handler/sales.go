package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/terrasale/terrasale-api/internal/notify"
	"github.com/terrasale/terrasale-api/internal/queue"
	"github.com/terrasale/terrasale-api/internal/repository"
)

// SaleHandler bundles dependencies for sale endpoints.
type SaleHandler struct {
	Sales *repository.SaleRepo
	Slack *notify.Client
}

func NewSaleHandler(s *repository.SaleRepo, sl *notify.Client) *SaleHandler {
	return &SaleHandler{Sales: s, Slack: sl}
}

type createSaleReq struct {
	PropertyID uint64          `json:"property_id"`
	SellerID   uint64          `json:"seller_id"`
	BuyerName  string          `json:"buyer_name"`
	BuyerEmail *string         `json:"buyer_email"`
	BuyerPhone *string         `json:"buyer_phone"`
	SaleAmount decimal.Decimal `json:"sale_amount"`
	Commission decimal.Decimal `json:"commission"`
	SaleDate   string          `json:"sale_date"`
	Status     string          `json:"status"`
}

// List returns all sales, newest first.
func (h *SaleHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	sales, err := h.Sales.List(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, sales)
}

// Get fetches one sale with joined property and seller info.
func (h *SaleHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Sales.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "sale not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, s)
}

// BySeller lists one seller's sales.
func (h *SaleHandler) BySeller(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	sales, err := h.Sales.BySeller(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, sales)
}

// Create records a sale. The repository performs the property status flip
// in the same transaction; an already-sold property answers 409. Slack and
// the broker are notified after the commit, best effort.
func (h *SaleHandler) Create(c echo.Context) error {
	var req createSaleReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.PropertyID == 0 || req.SellerID == 0 {
		return fail(c, http.StatusBadRequest, "property_id and seller_id are required")
	}
	if strings.TrimSpace(req.BuyerName) == "" {
		return fail(c, http.StatusBadRequest, "buyer_name is required")
	}
	if !req.SaleAmount.IsPositive() {
		return fail(c, http.StatusBadRequest, "sale_amount must be positive")
	}
	saleDate, err := time.Parse("2006-01-02", req.SaleDate)
	if err != nil {
		return fail(c, http.StatusBadRequest, "sale_date must be YYYY-MM-DD")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Sales.Create(ctx, repository.CreateSaleInput{
		PropertyID: req.PropertyID,
		SellerID:   req.SellerID,
		BuyerName:  req.BuyerName,
		BuyerEmail: req.BuyerEmail,
		BuyerPhone: req.BuyerPhone,
		SaleAmount: req.SaleAmount,
		Commission: req.Commission,
		SaleDate:   saleDate,
		Status:     req.Status,
	})
	switch err {
	case nil:
	case repository.ErrPropertySold:
		return fail(c, http.StatusConflict, "property is already sold")
	case sql.ErrNoRows:
		return fail(c, http.StatusNotFound, "property not found")
	default:
		return fail(c, http.StatusInternalServerError, "create sale failed")
	}

	go h.announce(s)

	return created(c, s, "sale recorded")
}

// announce fans the committed sale out to Slack and the broker. Failures
// are logged only; the sale is already durable.
func (h *SaleHandler) announce(s repository.SaleDetail) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	property := ""
	location := ""
	if s.PropertyTitle != nil {
		property = *s.PropertyTitle
	}
	if s.PropertyLocation != nil {
		location = *s.PropertyLocation
	}
	seller := ""
	if s.SellerName != nil {
		seller = *s.SellerName
	}

	if r := h.Slack.SaleRecorded(ctx, property, s.BuyerName, s.SaleAmount.String()); r.Err != nil {
		log.Printf("slack: sale notification failed: %v", r.Err)
	}

	_ = queue.PublishSaleRecorded(ctx, queue.SaleRecordedEvent{
		SaleID:           s.ID,
		PropertyID:       s.PropertyID,
		PropertyTitle:    property,
		PropertyLocation: location,
		SellerID:         s.SellerID,
		SellerName:       seller,
		BuyerName:        s.BuyerName,
		SaleAmount:       s.SaleAmount.String(),
		Commission:       s.Commission.String(),
		SaleDate:         s.SaleDate.Format("2006-01-02"),
		RecordedAt:       time.Now().UTC().Format(time.RFC3339),
	})
}

// Update applies a partial update to a sale.
func (h *SaleHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var p repository.SalePatch
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Sales.Update(ctx, id, p)
	switch err {
	case nil:
		return ok(c, s)
	case repository.ErrNoFieldsToUpdate:
		return fail(c, http.StatusBadRequest, "no fields to update")
	case sql.ErrNoRows:
		return fail(c, http.StatusNotFound, "sale not found")
	default:
		if _, ok := err.(*time.ParseError); ok {
			return fail(c, http.StatusBadRequest, "sale_date must be YYYY-MM-DD")
		}
		return fail(c, http.StatusInternalServerError, "update failed")
	}
}

// Delete removes a sale from the ledger.
func (h *SaleHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Sales.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "sale not found")
		}
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
	return okMsg(c, "sale deleted")
}

// Stats aggregates the ledger for ?period= week, month or year
// (default month).
func (h *SaleHandler) Stats(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = "month"
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Sales.Stats(ctx, period)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, s)
}

// Trends returns the 12-month aggregation.
func (h *SaleHandler) Trends(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	trends, err := h.Sales.MonthlyTrends(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, trends)
}
