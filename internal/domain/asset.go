package domain

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// Using a single instance is more efficient as it caches struct information.
var validatorInstance = validator.New()

func init() {
	_ = validatorInstance.RegisterValidation("safepath", validateSafePath)
}

// validateSafePath rejects keys that could escape the asset folder.
func validateSafePath(fl validator.FieldLevel) bool {
	path := fl.Field().String()

	if strings.Contains(path, "..") ||
		strings.Contains(path, "~") ||
		strings.HasPrefix(path, "/") ||
		strings.Contains(path, "\\") {
		return false
	}

	// Catches things like "portfolio/./../file".
	return path == filepath.Clean(path)
}

// AssetKind is the content category an upload was classified into.
type AssetKind string

const (
	AssetImage       AssetKind = "image"
	AssetDocument    AssetKind = "document"
	AssetUnsupported AssetKind = "unsupported"
)

// AssetRef describes a file held by the asset store. ID is the store key and
// is what a later delete needs; URL is what clients render.
type AssetRef struct {
	ID     string    `json:"id" validate:"required,safepath"`
	URL    string    `json:"url" validate:"required,url"`
	Format string    `json:"format"`
	Kind   AssetKind `json:"kind" validate:"required,oneof=image document"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
	Bytes  int64     `json:"bytes"`
}

// Validate runs the struct-tag checks on the reference.
func (a *AssetRef) Validate() error {
	return validatorInstance.Struct(a)
}
