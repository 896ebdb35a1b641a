package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health reports liveness (GET /health). It does not touch the database.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
