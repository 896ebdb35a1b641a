package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/folio/internal/domain"
)

// Credentials registers the admin and exchanges passwords for tokens.
type Credentials interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

// AuthHandler handles the admin bootstrap and login endpoints.
type AuthHandler struct {
	creds Credentials
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(creds Credentials) *AuthHandler {
	return &AuthHandler{creds: creds}
}

// Register handles POST /api/auth/register. It only succeeds while no admin exists.
func (h *AuthHandler) Register(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("Invalid request format.", err)
	}

	if err := h.creds.Register(c.Request().Context(), req.Username, req.Password); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, MessageResponse{Message: "Admin user registered successfully."})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("Invalid request format.", err)
	}

	token, err := h.creds.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}
