package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrasale/terrasale-api/internal/notify"
)

func TestSlackWebhookRejectsUnknownType(t *testing.T) {
	h := NewSlackHandler(notify.NewClient("http://example.invalid/hook", "#deals"))

	e := echo.New()
	c, rec := postJSON(e, "/api/slack/webhook", `{"type":"teleport","data":{}}`)

	require.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlackWebhookRequiresType(t *testing.T) {
	h := NewSlackHandler(notify.NewClient("http://example.invalid/hook", "#deals"))

	e := echo.New()
	c, rec := postJSON(e, "/api/slack/webhook", `{"data":{"message":"hi"}}`)

	require.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlackWebhookValidatesTypedData(t *testing.T) {
	h := NewSlackHandler(notify.NewClient("http://example.invalid/hook", "#deals"))
	e := echo.New()

	for _, body := range []string{
		`{"type":"property_created","data":{}}`,
		`{"type":"contact_request","data":{}}`,
		`{"type":"new_user","data":{"name":"Ada"}}`,
		`{"type":"custom_message","data":{"message":"   "}}`,
	} {
		c, rec := postJSON(e, "/api/slack/webhook", body)
		require.NoError(t, h.Webhook(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestSlackWebhookUnconfiguredIs502(t *testing.T) {
	h := NewSlackHandler(notify.NewClient("", ""))

	e := echo.New()
	c, rec := postJSON(e, "/api/slack/webhook", `{"type":"custom_message","data":{"message":"deal closed"}}`)

	require.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSlackWebhookRelaysCustomMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := NewSlackHandler(notify.NewClient(srv.URL, "#deals"))

	e := echo.New()
	c, rec := postJSON(e, "/api/slack/webhook", `{"type":"custom_message","data":{"message":"deal closed"}}`)

	require.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
}

func TestSlackWebhookDeliveryFailureIs502(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	h := NewSlackHandler(notify.NewClient(srv.URL, "#deals"))

	e := echo.New()
	c, rec := postJSON(e, "/api/slack/webhook", `{"type":"custom_message","data":{"message":"deal closed"}}`)

	require.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
