package server

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/folio/internal/handlers"
	"github.com/nfrund/folio/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	requireAdmin := middleware.BearerAuth(s.authSvc)
	rateLimiter := middleware.RateLimiter()

	s.E.GET("/health", handlers.Health)
	s.E.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: s.Gatherer(),
	}))

	if s.localAssets != nil && s.localAssets.BasePath() != "/" {
		base := s.localAssets.BasePath()
		files := echo.WrapHandler(http.StripPrefix(base, s.localAssets.Handler()))
		s.E.GET(base+"/*", files)
		s.E.HEAD(base+"/*", files)
	}

	api := s.E.Group("/api")

	api.POST("/auth/register", s.authHandler.Register, rateLimiter)
	api.POST("/auth/login", s.authHandler.Login, rateLimiter)

	api.GET("/portfolio-data", s.portfolioHandler.GetPortfolio)
	api.PUT("/portfolio-data", s.portfolioHandler.ReplacePortfolio, requireAdmin)

	api.POST("/projects", s.portfolioHandler.AddProject, requireAdmin)
	api.PUT("/projects/:id", s.portfolioHandler.UpdateProject, requireAdmin)
	api.DELETE("/projects/:id", s.portfolioHandler.DeleteProject, requireAdmin)

	api.POST("/experience", s.portfolioHandler.AddExperience, requireAdmin)
	api.PUT("/experience/:id", s.portfolioHandler.UpdateExperience, requireAdmin)
	api.DELETE("/experience/:id", s.portfolioHandler.DeleteExperience, requireAdmin)

	api.PUT("/resume", s.portfolioHandler.UpdateResume, requireAdmin)
}
