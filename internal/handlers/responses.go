package handlers

import (
	"github.com/nfrund/folio/internal/domain"
)

// ErrorResponse is the format of every API error.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse acknowledges an operation without further data.
type MessageResponse struct {
	Message string `json:"message"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// ProjectResponse is returned by project add and update.
type ProjectResponse struct {
	Message  string           `json:"message"`
	Project  *domain.Project  `json:"project"`
	Projects []domain.Project `json:"projects"`
}

type ProjectsResponse struct {
	Message  string           `json:"message"`
	Projects []domain.Project `json:"projects"`
}

// ExperienceResponse returns the whole experience block after an edit.
type ExperienceResponse struct {
	Message    string             `json:"message"`
	Experience *domain.Experience `json:"experience"`
}

type ResumeResponse struct {
	Message   string `json:"message"`
	ResumeURL string `json:"resumeUrl"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
