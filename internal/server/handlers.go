package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/LoneDev6/review-user-bot/internal/app"
	"github.com/LoneDev6/review-user-bot/internal/domain"
)

func (s *Server) handleSubmitReview(c echo.Context) error {
	var sub domain.Submission
	if err := c.Bind(&sub); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	rec, err := s.app.SubmitReview(c.Request().Context(), sub)
	if err != nil {
		if status, ok := rejectionStatus(err); ok {
			// Policy rejections are surfaced verbatim as the failure reason.
			return c.JSON(status, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to submit review"})
	}

	return c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleLeaderboard(c echo.Context) error {
	limit := app.DefaultLeaderboardLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		limit = parsed
	}

	ranking, err := s.app.Leaderboard(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to compute leaderboard"})
	}

	return c.JSON(http.StatusOK, map[string]any{"leaderboard": ranking})
}

func (s *Server) handleUserReviews(c echo.Context) error {
	reviews, err := s.app.UserReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load reviews"})
	}
	return c.JSON(http.StatusOK, map[string]any{"reviews": reviews})
}

func (s *Server) handleAuthorReviews(c echo.Context) error {
	reviews, err := s.app.AuthorReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load reviews"})
	}
	return c.JSON(http.StatusOK, map[string]any{"reviews": reviews})
}

func (s *Server) handleMessageDeleted(c echo.Context) error {
	if err := s.app.HandleMessageDeleted(c.Request().Context(), c.Param("id")); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete review"})
	}
	return c.NoContent(http.StatusNoContent)
}

// rejectionStatus maps policy rejections to HTTP statuses. Anything else is a
// server-side failure.
func rejectionStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidRating), errors.Is(err, domain.ErrSelfReview):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrTargetNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrDuplicateSameDay):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrCooldownActive):
		return http.StatusTooManyRequests, true
	default:
		return 0, false
	}
}
