package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/terrasale/terrasale-api/internal/notify"
	"github.com/terrasale/terrasale-api/internal/repository"
)

// PropertyHandler bundles dependencies for property endpoints.
type PropertyHandler struct {
	Properties *repository.PropertyRepo
	Slack      *notify.Client
}

func NewPropertyHandler(p *repository.PropertyRepo, s *notify.Client) *PropertyHandler {
	return &PropertyHandler{Properties: p, Slack: s}
}

type createPropertyReq struct {
	Title        string          `json:"title"`
	Location     string          `json:"location"`
	Size         string          `json:"size"`
	Price        decimal.Decimal `json:"price"`
	Description  *string         `json:"description"`
	PropertyType string          `json:"property_type"`
	SellerID     *uint64         `json:"seller_id"`
	Latitude     *float64        `json:"latitude"`
	Longitude    *float64        `json:"longitude"`
	Features     []string        `json:"features"`
}

// List returns available listings; ?include_sold=true includes sold ones.
func (h *PropertyHandler) List(c echo.Context) error {
	includeSold := c.QueryParam("include_sold") == "true"

	ctx, cancel := dbCtx(c)
	defer cancel()

	props, err := h.Properties.List(ctx, includeSold)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, props)
}

// Get fetches one property with seller info, features and images. Sold
// listings stay readable here.
func (h *PropertyHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "property not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, p)
}

// Create lists a property together with its feature tags.
func (h *PropertyHandler) Create(c echo.Context) error {
	var req createPropertyReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Location) == "" || strings.TrimSpace(req.Size) == "" {
		return fail(c, http.StatusBadRequest, "title, location and size are required")
	}
	if !req.Price.IsPositive() {
		return fail(c, http.StatusBadRequest, "price must be positive")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Properties.Create(ctx, repository.CreatePropertyInput{
		Title:        req.Title,
		Location:     req.Location,
		Size:         req.Size,
		Price:        req.Price,
		Description:  req.Description,
		PropertyType: req.PropertyType,
		SellerID:     req.SellerID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Features:     req.Features,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "create property failed")
	}

	go func() {
		if r := h.Slack.PropertyCreated(context.Background(), p.Title, p.Location, p.Price.String()); r.Err != nil {
			log.Printf("slack: property created notification failed: %v", r.Err)
		}
	}()

	return created(c, p, "property created")
}

// Delete removes a listing. Properties referenced by sales are refused.
func (h *PropertyHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	switch err := h.Properties.Delete(ctx, id); err {
	case nil:
		return okMsg(c, "property deleted")
	case repository.ErrConflict:
		return fail(c, http.StatusBadRequest, "property has recorded sales and cannot be deleted")
	case sql.ErrNoRows:
		return fail(c, http.StatusNotFound, "property not found")
	default:
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
}

// Stats groups listing counts by status.
func (h *PropertyHandler) Stats(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Properties.Stats(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, s)
}
