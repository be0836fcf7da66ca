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

// UserHandler bundles dependencies for user endpoints.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Slack *notify.Client
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, s *notify.Client) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Slack: s}
}

type createUserReq struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// List returns active users; with ?search= it filters by name/email/phone.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	var (
		users []repository.User
		err   error
	)
	if term := strings.TrimSpace(c.QueryParam("search")); term != "" {
		users, err = h.Users.Search(ctx, term)
	} else {
		users, err = h.Users.ListActive(ctx)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, users)
}

// Get fetches one active user by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, u)
}

// Create registers a new account with role 'admin'.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "name, email and password are required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, req.Phone, req.Address, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return fail(c, http.StatusConflict, "email already exists")
		}
		return fail(c, http.StatusInternalServerError, "create user failed")
	}

	go func() {
		if r := h.Slack.NewUser(context.Background(), u.Name, u.Email, u.Role); r.Err != nil {
			log.Printf("slack: new user notification failed: %v", r.Err)
		}
	}()

	return created(c, u, "user created")
}

// Update applies a partial update to name/email/phone/address.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var p repository.UserPatch
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.Update(ctx, id, p)
	switch err {
	case nil:
		return ok(c, u)
	case repository.ErrNoFieldsToUpdate:
		return fail(c, http.StatusBadRequest, "no fields to update")
	case repository.ErrEmailExists:
		return fail(c, http.StatusConflict, "email already exists")
	case sql.ErrNoRows:
		return fail(c, http.StatusNotFound, "user not found")
	default:
		return fail(c, http.StatusInternalServerError, "update failed")
	}
}

// Delete soft-deletes a user. A second call finds no active row and
// answers 404.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.Deactivate(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
	return okMsg(c, "user deactivated")
}

// UpdateLogin stamps the user's last_login.
func (h *UserHandler) UpdateLogin(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.UpdateLastLogin(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	return okMsg(c, "last login updated")
}

// Stats returns total/active/inactive counts.
func (h *UserHandler) Stats(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Users.Stats(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, s)
}
