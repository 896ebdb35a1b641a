package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/nfrund/folio/internal/portfolio"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// CredentialsRequest is the body of the register and login endpoints.
type CredentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// ProjectRequest carries the text fields of a project. It arrives as
// multipart form fields next to the optional "image" file, or as JSON.
type ProjectRequest struct {
	Title       string `json:"title" form:"title" validate:"max=200"`
	Description string `json:"description" form:"description" validate:"max=5000"`
	ButtonText  string `json:"buttonText" form:"buttonText" validate:"max=100"`
	ButtonLink  string `json:"buttonLink" form:"buttonLink" validate:"max=2048"`
}

func (r ProjectRequest) input() portfolio.ProjectInput {
	return portfolio.ProjectInput{
		Title:       r.Title,
		Description: r.Description,
		ButtonText:  r.ButtonText,
		ButtonLink:  r.ButtonLink,
	}
}

// ExperienceRequest names the target section and the item fields. On
// DELETE the section may also be given as a query parameter.
type ExperienceRequest struct {
	Section      string `json:"section" form:"section" query:"section"`
	Company      string `json:"company" form:"company"`
	Organization string `json:"organization" form:"organization"`
	Role         string `json:"role" form:"role"`
	Duration     string `json:"duration" form:"duration"`
	Description  string `json:"description" form:"description" validate:"max=5000"`
}

func (r ExperienceRequest) input() portfolio.ExperienceInput {
	return portfolio.ExperienceInput{
		Company:      r.Company,
		Organization: r.Organization,
		Role:         r.Role,
		Duration:     r.Duration,
		Description:  r.Description,
	}
}
