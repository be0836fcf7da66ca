// Package router defines how HTTP routes are registered for the API.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/terrasale/terrasale-api/internal/handler"
)

// Handlers collects the handler bundles the router mounts. Everything
// lives under /api except the root index.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Sellers    *handler.SellerHandler
	Properties *handler.PropertyHandler
	Contacts   *handler.ContactHandler
	Sales      *handler.SaleHandler
	Slack      *handler.SlackHandler
}

// Register mounts every route on the provided Echo instance. None of the
// routes require authentication; the JWT middleware is available for
// deployments that front this API publicly.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/", handler.Index)

	api := e.Group("/api")
	api.GET("/health", handler.Health)

	// ---- Auth ----
	api.POST("/auth/login", h.Auth.Login)

	// ---- Users ----
	api.GET("/users", h.Users.List)
	api.POST("/users", h.Users.Create)
	api.GET("/users/stats", h.Users.Stats)
	api.GET("/users/:id", h.Users.Get)
	api.PUT("/users/:id", h.Users.Update)
	api.DELETE("/users/:id", h.Users.Delete)
	api.POST("/users/:id/update-login", h.Users.UpdateLogin)

	// ---- Sellers ----
	api.GET("/sellers", h.Sellers.List)
	api.POST("/sellers", h.Sellers.Create)
	api.GET("/sellers/stats", h.Sellers.Stats)
	api.GET("/sellers/:id", h.Sellers.Get)
	api.PUT("/sellers/:id", h.Sellers.Update)
	api.DELETE("/sellers/:id", h.Sellers.Delete)
	api.PATCH("/sellers/:id/activate", h.Sellers.Activate)
	api.POST("/sellers/:id/convert", h.Sellers.Convert)

	// ---- Properties ----
	api.GET("/properties", h.Properties.List)
	api.POST("/properties", h.Properties.Create)
	api.GET("/properties/stats", h.Properties.Stats)
	api.GET("/properties/:id", h.Properties.Get)
	api.DELETE("/properties/:id", h.Properties.Delete)

	// ---- Contacts ----
	api.GET("/contacts", h.Contacts.List)
	api.POST("/contacts", h.Contacts.Create)
	api.GET("/contacts/stats", h.Contacts.Stats)
	api.GET("/contacts/recent", h.Contacts.Recent)
	api.GET("/contacts/date-range", h.Contacts.ByDateRange)
	api.GET("/contacts/status/:status", h.Contacts.ByStatus)
	api.GET("/contacts/type/:type", h.Contacts.ByType)
	api.GET("/contacts/:id", h.Contacts.Get)
	api.PUT("/contacts/:id", h.Contacts.Update)
	api.PATCH("/contacts/:id/status", h.Contacts.UpdateStatus)
	api.DELETE("/contacts/:id", h.Contacts.Delete)

	// ---- Sales ----
	api.GET("/sales", h.Sales.List)
	api.POST("/sales", h.Sales.Create)
	api.GET("/sales/stats", h.Sales.Stats)
	api.GET("/sales/trends", h.Sales.Trends)
	api.GET("/sales/seller/:id", h.Sales.BySeller)
	api.GET("/sales/:id", h.Sales.Get)
	api.PUT("/sales/:id", h.Sales.Update)
	api.DELETE("/sales/:id", h.Sales.Delete)

	// ---- Slack relay ----
	api.POST("/slack/webhook", h.Slack.Webhook)
}

// NewErrorHandler returns a global error handler that answers everything,
// including unmatched routes, with the standard envelope. Internal error
// detail leaks only outside production.
func NewErrorHandler(env string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			}
			if code == http.StatusNotFound {
				msg = "route not found"
			}
		}
		if code == http.StatusInternalServerError && env != "production" {
			msg = err.Error()
		}

		_ = c.JSON(code, echo.Map{"success": false, "error": msg})
	}
}
