package handler // HTTP handlers for the back-office API

import (
	"net/http" // status codes and response helpers
	"time"

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: echo.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}})
}

// Index answers the API root with a short service description.
func Index(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: echo.Map{
		"service": "terrasale-api",
		"health":  "/api/health",
	}})
}
