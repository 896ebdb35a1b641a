package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/folio/internal/domain"
	"github.com/nfrund/folio/internal/middleware"
	"github.com/nfrund/folio/internal/portfolio"
)

// PortfolioHandler serves the portfolio document and its nested editors.
type PortfolioHandler struct {
	svc         *portfolio.Service
	uploader    Uploader
	maxUploadSz int64
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(svc *portfolio.Service, uploader Uploader, maxUploadBytes int64) *PortfolioHandler {
	return &PortfolioHandler{
		svc:         svc,
		uploader:    uploader,
		maxUploadSz: maxUploadBytes,
	}
}

// GetPortfolio returns the whole document (GET /api/portfolio-data).
func (h *PortfolioHandler) GetPortfolio(c echo.Context) error {
	doc, err := h.svc.EnsureExists(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// ReplacePortfolio overwrites the whole document (PUT /api/portfolio-data).
func (h *PortfolioHandler) ReplacePortfolio(c echo.Context) error {
	var doc domain.Portfolio
	if err := c.Bind(&doc); err != nil {
		return domain.Validation("Invalid request format.", err)
	}

	stored, err := h.svc.Replace(c.Request().Context(), &doc)
	if err != nil {
		return err
	}

	middleware.FromContext(c.Request().Context()).Info("Portfolio replaced", "event", "portfolio_replaced")
	return c.JSON(http.StatusOK, stored)
}
