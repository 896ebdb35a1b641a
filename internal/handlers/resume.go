package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// UpdateResume handles PUT /api/resume with an optional "resume" file.
// Without a file the current link is returned unchanged.
func (h *PortfolioHandler) UpdateResume(c echo.Context) error {
	resume, err := uploadField(c, h.uploader, "resume", h.maxUploadSz)
	if err != nil {
		return err
	}

	url, err := h.svc.UpdateResume(c.Request().Context(), resume)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ResumeResponse{
		Message:   "Resume updated successfully",
		ResumeURL: url,
	})
}
