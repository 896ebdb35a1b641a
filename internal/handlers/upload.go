package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/folio/internal/assets"
	"github.com/nfrund/folio/internal/domain"
	"github.com/nfrund/folio/internal/middleware"
)

const msgInvalidFileType = "Invalid file type. Only images, PDFs, and Word documents are allowed."

// Uploader stores an accepted upload and describes the stored asset.
type Uploader interface {
	Upload(ctx context.Context, up assets.Upload) (*domain.AssetRef, error)
}

// FileTooLarge is the client error for uploads over the size limit.
func FileTooLarge(maxBytes int64) *domain.Error {
	return domain.Validation(fmt.Sprintf("File too large. Maximum size is %dMB.", maxBytes>>20), nil)
}

// uploadField buffers the multipart file named field and pushes it through
// the uploader. It returns (nil, nil) when the request carries no file.
// Declared types outside images, PDFs and Word documents are rejected before
// the asset store is contacted.
func uploadField(c echo.Context, uploader Uploader, field string, maxBytes int64) (*domain.AssetRef, error) {
	fh, err := c.FormFile(field)
	switch {
	case err == nil:
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	case isTooLarge(err):
		return nil, FileTooLarge(maxBytes)
	default:
		return nil, domain.Validation("File upload error: "+err.Error(), err)
	}

	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, FileTooLarge(maxBytes)
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if !assets.AllowedContentType(contentType) {
		middleware.FromContext(c.Request().Context()).Warn("Upload rejected by type filter",
			"event", "upload_rejected",
			"field", field,
			"filename", fh.Filename,
			"content_type", contentType)
		return nil, domain.Validation(msgInvalidFileType, domain.ErrUnsupportedFile)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}

	return uploader.Upload(c.Request().Context(), assets.Upload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	})
}

func isTooLarge(err error) bool {
	var he *echo.HTTPError
	return errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge
}
