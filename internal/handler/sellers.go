package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/terrasale/terrasale-api/internal/config"
	"github.com/terrasale/terrasale-api/internal/notify"
	"github.com/terrasale/terrasale-api/internal/repository"
)

// SellerHandler bundles dependencies for seller endpoints.
type SellerHandler struct {
	Cfg     config.Config
	Sellers *repository.SellerRepo
	Slack   *notify.Client
}

func NewSellerHandler(cfg config.Config, s *repository.SellerRepo, sl *notify.Client) *SellerHandler {
	return &SellerHandler{Cfg: cfg, Sellers: s, Slack: sl}
}

type createSellerReq struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

func validSellerName(name string) bool {
	return len(strings.TrimSpace(name)) >= 2
}

func validSellerEmail(email string) bool {
	return strings.Contains(email, "@")
}

// List returns active sellers; with ?search= it filters by name/email.
func (h *SellerHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	var (
		sellers []repository.User
		err     error
	)
	if term := strings.TrimSpace(c.QueryParam("search")); term != "" {
		sellers, err = h.Sellers.Search(ctx, term)
	} else {
		sellers, err = h.Sellers.ListActive(ctx)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, sellers)
}

// Get fetches one active seller by id.
func (h *SellerHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Sellers.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "seller not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, s)
}

// Create registers a seller account.
func (h *SellerHandler) Create(c echo.Context) error {
	var req createSellerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !validSellerName(req.Name) {
		return fail(c, http.StatusBadRequest, "name must be at least 2 characters")
	}
	if !validSellerEmail(req.Email) {
		return fail(c, http.StatusBadRequest, "a valid email is required")
	}
	if req.Password == "" {
		return fail(c, http.StatusBadRequest, "password is required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Sellers.Create(ctx, req.Name, req.Email, req.Password, req.Phone, req.Address, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return fail(c, http.StatusConflict, "email already exists")
		}
		return fail(c, http.StatusInternalServerError, "create seller failed")
	}

	go func() {
		if r := h.Slack.NewUser(context.Background(), s.Name, s.Email, "seller"); r.Err != nil {
			log.Printf("slack: new seller notification failed: %v", r.Err)
		}
	}()

	return created(c, s, "seller created")
}

// Update applies a partial update under the seller role predicate.
func (h *SellerHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var p repository.UserPatch
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if p.Name != nil && !validSellerName(*p.Name) {
		return fail(c, http.StatusBadRequest, "name must be at least 2 characters")
	}
	if p.Email != nil && !validSellerEmail(*p.Email) {
		return fail(c, http.StatusBadRequest, "a valid email is required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Sellers.Update(ctx, id, p)
	switch err {
	case nil:
		return ok(c, s)
	case repository.ErrNoFieldsToUpdate:
		return fail(c, http.StatusBadRequest, "no fields to update")
	case repository.ErrEmailExists:
		return fail(c, http.StatusConflict, "email already exists")
	case sql.ErrNoRows:
		return fail(c, http.StatusNotFound, "seller not found")
	default:
		return fail(c, http.StatusInternalServerError, "update failed")
	}
}

// Delete soft-deletes a seller. Sales and property references survive.
func (h *SellerHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Sellers.Deactivate(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "seller not found")
		}
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
	return okMsg(c, "seller deactivated")
}

// Activate restores a deactivated seller.
func (h *SellerHandler) Activate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Sellers.Activate(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "seller not found")
		}
		return fail(c, http.StatusInternalServerError, "activate failed")
	}
	return okMsg(c, "seller activated")
}

// Convert flips an existing user's role to seller.
func (h *SellerHandler) Convert(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Sellers.ConvertToSeller(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "convert failed")
	}
	return okMsg(c, "user converted to seller")
}

// Stats returns total/active/inactive seller counts.
func (h *SellerHandler) Stats(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Sellers.Stats(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, s)
}
