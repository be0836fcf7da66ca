package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/terrasale/terrasale-api/internal/config"
	"github.com/terrasale/terrasale-api/internal/repository"
	"github.com/terrasale/terrasale-api/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User  repository.User `json:"user"`
	Token tokenPart       `json:"token"`
}

// Login verifies credentials against the stored bcrypt hash and returns a
// signed token on success. Unknown email and wrong password answer the
// same way so the endpoint does not leak which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email and password are required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusUnauthorized, "invalid credentials")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.NewAuthToken(h.Cfg.JWTSecret, u.ID, u.Email)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue token failed")
	}

	// A failed stamp is not worth failing the login over.
	_ = h.Users.UpdateLastLogin(ctx, u.ID)

	return ok(c, authResp{
		User:  u,
		Token: tokenPart{Token: token.Token, Expires: token.Exp},
	})
}
