package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/folio/internal/domain"
)

func bindExperience(c echo.Context) (ExperienceRequest, error) {
	var req ExperienceRequest
	if err := c.Bind(&req); err != nil {
		return req, domain.Validation("Invalid request format.", err)
	}
	if err := c.Validate(&req); err != nil {
		return req, domain.Validation(err.Error(), err)
	}
	return req, nil
}

// AddExperience handles POST /api/experience. The target section is named
// in the body.
func (h *PortfolioHandler) AddExperience(c echo.Context) error {
	req, err := bindExperience(c)
	if err != nil {
		return err
	}

	exp, err := h.svc.AddExperience(c.Request().Context(), req.Section, req.input())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, ExperienceResponse{
		Message:    "Experience added successfully",
		Experience: exp,
	})
}

// UpdateExperience handles PUT /api/experience/:id.
func (h *PortfolioHandler) UpdateExperience(c echo.Context) error {
	req, err := bindExperience(c)
	if err != nil {
		return err
	}

	exp, err := h.svc.UpdateExperience(c.Request().Context(), req.Section, c.Param("id"), req.input())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ExperienceResponse{
		Message:    "Experience updated successfully",
		Experience: exp,
	})
}

// DeleteExperience handles DELETE /api/experience/:id. The section comes
// from the body or the query string.
func (h *PortfolioHandler) DeleteExperience(c echo.Context) error {
	req, err := bindExperience(c)
	if err != nil {
		return err
	}
	if req.Section == "" {
		req.Section = c.QueryParam("section")
	}

	exp, err := h.svc.DeleteExperience(c.Request().Context(), req.Section, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ExperienceResponse{
		Message:    "Experience deleted successfully",
		Experience: exp,
	})
}
