package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Review API (called by the bot collaborator)
	s.echo.POST("/api/reviews", s.handleSubmitReview)
	s.echo.GET("/api/leaderboard", s.handleLeaderboard)
	s.echo.GET("/api/users/:id/reviews", s.handleUserReviews)
	s.echo.GET("/api/authors/:id/reviews", s.handleAuthorReviews)
	s.echo.DELETE("/api/messages/:id", s.handleMessageDeleted)
}
