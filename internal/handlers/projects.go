package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/folio/internal/domain"
)

// bindProject reads the project fields and, when present, uploads the
// "image" file. Field errors are reported before any upload happens.
func (h *PortfolioHandler) bindProject(c echo.Context) (ProjectRequest, *domain.AssetRef, error) {
	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		if isTooLarge(err) {
			return req, nil, FileTooLarge(h.maxUploadSz)
		}
		return req, nil, domain.Validation("Invalid request format.", err)
	}
	if err := c.Validate(&req); err != nil {
		return req, nil, domain.Validation(err.Error(), err)
	}

	image, err := uploadField(c, h.uploader, "image", h.maxUploadSz)
	if err != nil {
		return req, nil, err
	}
	return req, image, nil
}

// AddProject handles POST /api/projects.
func (h *PortfolioHandler) AddProject(c echo.Context) error {
	req, image, err := h.bindProject(c)
	if err != nil {
		return err
	}

	project, projects, err := h.svc.AddProject(c.Request().Context(), req.input(), image)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, ProjectResponse{
		Message:  "Project added successfully",
		Project:  project,
		Projects: projects,
	})
}

// UpdateProject handles PUT /api/projects/:id. Without a new image the
// current one is kept.
func (h *PortfolioHandler) UpdateProject(c echo.Context) error {
	req, image, err := h.bindProject(c)
	if err != nil {
		return err
	}

	project, projects, err := h.svc.UpdateProject(c.Request().Context(), c.Param("id"), req.input(), image)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ProjectResponse{
		Message:  "Project updated successfully",
		Project:  project,
		Projects: projects,
	})
}

// DeleteProject handles DELETE /api/projects/:id.
func (h *PortfolioHandler) DeleteProject(c echo.Context) error {
	projects, err := h.svc.DeleteProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ProjectsResponse{
		Message:  "Project deleted successfully",
		Projects: projects,
	})
}
