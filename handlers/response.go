package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform response shape: a status string, a human-readable
// message and an optional data payload.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c echo.Context, code int, message string, data any) error {
	status := "success"
	if code >= 400 {
		status = "error"
	}
	return c.JSON(code, Envelope{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func success(c echo.Context, message string, data any) error {
	return respond(c, http.StatusOK, message, data)
}

func created(c echo.Context, message string, data any) error {
	return respond(c, http.StatusCreated, message, data)
}

func fail(c echo.Context, code int, message string) error {
	return respond(c, code, message, nil)
}
