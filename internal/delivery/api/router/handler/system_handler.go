package handler

import (
	"net/http"

	"jobconnect/internal/delivery/api/response"
	deliverycontext "jobconnect/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// SystemHandler serves the unauthenticated operational endpoints.
type SystemHandler struct{}

// NewSystemHandler creates a new SystemHandler instance
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// Health reports liveness. It also echoes the caller's role when a valid token is sent,
// which makes it a cheap way to check the auth middleware end to end.
func (h *SystemHandler) Health(c echo.Context) error {
	body := map[string]any{"status": "ok"}
	if principal, ok := deliverycontext.GetPrincipal(c); ok {
		body["role"] = principal.Role
	}

	return response.Success(c, http.StatusOK, body)
}
