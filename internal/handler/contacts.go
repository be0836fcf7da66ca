package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/terrasale/terrasale-api/internal/notify"
	"github.com/terrasale/terrasale-api/internal/repository"
)

// ContactHandler bundles dependencies for contact endpoints.
type ContactHandler struct {
	Contacts *repository.ContactRepo
	Slack    *notify.Client
}

func NewContactHandler(ct *repository.ContactRepo, s *notify.Client) *ContactHandler {
	return &ContactHandler{Contacts: ct, Slack: s}
}

// emailShape is a loose sanity check, not RFC validation. It rejects the
// obviously broken input before any store write.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type createContactReq struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	Message     *string `json:"message"`
	PropertyID  *uint64 `json:"property_id"`
	ContactType string  `json:"contact_type"`
}

type contactStatusReq struct {
	Status string `json:"status"`
}

// List returns all contacts; with ?search= it filters across
// name/email/phone/message.
func (h *ContactHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	var (
		contacts []repository.ContactDetail
		err      error
	)
	if term := strings.TrimSpace(c.QueryParam("search")); term != "" {
		contacts, err = h.Contacts.Search(ctx, term)
	} else {
		contacts, err = h.Contacts.List(ctx)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, contacts)
}

// Get fetches one contact with joined property info.
func (h *ContactHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	ct, err := h.Contacts.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "contact not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, ct)
}

// ByStatus lists contacts in one lead state.
func (h *ContactHandler) ByStatus(c echo.Context) error {
	status := c.Param("status")
	if !repository.ValidContactStatus(status) {
		return fail(c, http.StatusBadRequest, "invalid status")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	contacts, err := h.Contacts.ByStatus(ctx, status)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, contacts)
}

// ByType lists contacts of one type.
func (h *ContactHandler) ByType(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	contacts, err := h.Contacts.ByType(ctx, c.Param("type"))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, contacts)
}

// Recent lists contacts from the last 7 days, capped by ?limit=.
func (h *ContactHandler) Recent(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := dbCtx(c)
	defer cancel()

	contacts, err := h.Contacts.Recent(ctx, limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, contacts)
}

// ByDateRange lists contacts created between ?start= and ?end= (YYYY-MM-DD).
func (h *ContactHandler) ByDateRange(c echo.Context) error {
	start := c.QueryParam("start")
	end := c.QueryParam("end")
	if start == "" || end == "" {
		return fail(c, http.StatusBadRequest, "start and end are required")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	contacts, err := h.Contacts.ByDateRange(ctx, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, contacts)
}

// Create records a lead. Name and a plausible email are required before
// anything reaches the store.
func (h *ContactHandler) Create(c echo.Context) error {
	var req createContactReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.Name) == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	if req.Email == "" || !emailShape.MatchString(req.Email) {
		return fail(c, http.StatusBadRequest, "a valid email is required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	ct, err := h.Contacts.Create(ctx, repository.CreateContactInput{
		Name:        req.Name,
		Email:       &req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
		PropertyID:  req.PropertyID,
		ContactType: req.ContactType,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "create contact failed")
	}

	go func() {
		property := ""
		if ct.PropertyTitle != nil {
			property = *ct.PropertyTitle
		}
		email := ""
		if ct.Email != nil {
			email = *ct.Email
		}
		if r := h.Slack.ContactRequest(context.Background(), ct.Name, email, property); r.Err != nil {
			log.Printf("slack: contact notification failed: %v", r.Err)
		}
	}()

	return created(c, ct, "contact created")
}

// Update applies a full partial update to a contact.
func (h *ContactHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var p repository.ContactPatch
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if p.Email != nil && !emailShape.MatchString(strings.TrimSpace(*p.Email)) {
		return fail(c, http.StatusBadRequest, "a valid email is required")
	}
	if p.Status != nil && !repository.ValidContactStatus(*p.Status) {
		return fail(c, http.StatusBadRequest, "invalid status")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	ct, err := h.Contacts.Update(ctx, id, p)
	switch err {
	case nil:
		return ok(c, ct)
	case repository.ErrNoFieldsToUpdate:
		return fail(c, http.StatusBadRequest, "no fields to update")
	case sql.ErrNoRows:
		return fail(c, http.StatusNotFound, "contact not found")
	default:
		return fail(c, http.StatusInternalServerError, "update failed")
	}
}

// UpdateStatus changes only the lead state, enum-checked here.
func (h *ContactHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req contactStatusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if !repository.ValidContactStatus(req.Status) {
		return fail(c, http.StatusBadRequest, "invalid status")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	ct, err := h.Contacts.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "contact not found")
		}
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	return ok(c, ct)
}

// Delete removes a contact permanently.
func (h *ContactHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Contacts.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "contact not found")
		}
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
	return okMsg(c, "contact deleted")
}

// Stats returns lead totals plus grouped status/type counts.
func (h *ContactHandler) Stats(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Contacts.Stats(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return ok(c, s)
}
