package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/terrasale/terrasale-api/internal/notify"
)

// SlackHandler relays typed notifications straight to the Slack webhook.
type SlackHandler struct {
	Slack *notify.Client
}

func NewSlackHandler(s *notify.Client) *SlackHandler {
	return &SlackHandler{Slack: s}
}

type slackWebhookReq struct {
	Type string `json:"type"`
	Data struct {
		Title    string   `json:"title"`
		Location string   `json:"location"`
		Price    string   `json:"price"`
		Changed  []string `json:"changed"`
		Name     string   `json:"name"`
		Email    string   `json:"email"`
		Role     string   `json:"role"`
		Property string   `json:"property"`
		Message  string   `json:"message"`
	} `json:"data"`
}

// Webhook composes a message from the typed payload and forwards it.
// Unknown or missing types are rejected before any network call; a failed
// delivery answers 502 since forwarding is this endpoint's whole job.
func (h *SlackHandler) Webhook(c echo.Context) error {
	var req slackWebhookReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	var res notify.Result
	switch req.Type {
	case "property_created":
		if req.Data.Title == "" {
			return fail(c, http.StatusBadRequest, "data.title is required")
		}
		res = h.Slack.PropertyCreated(ctx, req.Data.Title, req.Data.Location, req.Data.Price)
	case "property_updated":
		if req.Data.Title == "" {
			return fail(c, http.StatusBadRequest, "data.title is required")
		}
		res = h.Slack.PropertyUpdated(ctx, req.Data.Title, req.Data.Changed)
	case "contact_request":
		if req.Data.Name == "" {
			return fail(c, http.StatusBadRequest, "data.name is required")
		}
		res = h.Slack.ContactRequest(ctx, req.Data.Name, req.Data.Email, req.Data.Property)
	case "new_user":
		if req.Data.Name == "" || req.Data.Email == "" {
			return fail(c, http.StatusBadRequest, "data.name and data.email are required")
		}
		role := req.Data.Role
		if role == "" {
			role = "user"
		}
		res = h.Slack.NewUser(ctx, req.Data.Name, req.Data.Email, role)
	case "custom_message":
		if strings.TrimSpace(req.Data.Message) == "" {
			return fail(c, http.StatusBadRequest, "data.message is required")
		}
		res = h.Slack.Send(ctx, req.Data.Message)
	case "":
		return fail(c, http.StatusBadRequest, "type is required")
	default:
		return fail(c, http.StatusBadRequest, "unknown notification type")
	}

	if !res.OK {
		if res.Err != nil {
			return fail(c, http.StatusBadGateway, "slack delivery failed")
		}
		return fail(c, http.StatusBadGateway, "slack webhook is not configured")
	}
	return okMsg(c, "notification sent")
}
