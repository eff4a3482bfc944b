package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/LoneDev6/review-user-bot/internal/domain"
	"github.com/LoneDev6/review-user-bot/internal/logging"
	"github.com/LoneDev6/review-user-bot/internal/metrics"
	"github.com/LoneDev6/review-user-bot/internal/review"
)

const DefaultLeaderboardLimit = 10

// Service orchestrates the review use cases: guarded submission, leaderboard
// and history queries, and deletion sync.
type Service struct {
	store            domain.ReviewRepository
	notifier         domain.ReviewNotifier
	cache            domain.LeaderboardCache // nil when Redis is not configured
	clock            clockwork.Clock
	leaderboardGroup singleflight.Group
}

// NewService creates the application layer service. cache may be nil.
func NewService(store domain.ReviewRepository, notifier domain.ReviewNotifier, cache domain.LeaderboardCache, clock clockwork.Clock) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		cache:    cache,
		clock:    clock,
	}
}

// SubmitReview runs the guarded submission flow: snapshot the relevant
// history, evaluate the eligibility policy, broadcast, then persist with the
// broadcast message id as the natural key. Save happens only after a
// successful broadcast; a save failure leaves a broadcast message without a
// record, which the reconciliation sweep heals on the next startup.
func (s *Service) SubmitReview(ctx context.Context, sub domain.Submission) (*domain.Review, error) {
	targetReviews, err := s.store.GetByUser(ctx, sub.UserID)
	if err != nil {
		metrics.ReviewSubmissionsTotal.WithLabelValues(metrics.OutcomeStorageError).Inc()
		return nil, fmt.Errorf("failed to load target history: %w", err)
	}

	lastByAuthor, err := s.store.GetLastByAuthor(ctx, sub.AuthorID)
	if err != nil {
		metrics.ReviewSubmissionsTotal.WithLabelValues(metrics.OutcomeStorageError).Inc()
		return nil, fmt.Errorf("failed to load author history: %w", err)
	}

	if err := review.Evaluate(sub, targetReviews, lastByAuthor, s.clock.Now()); err != nil {
		metrics.ReviewSubmissionsTotal.WithLabelValues(rejectionOutcome(err)).Inc()
		return nil, err
	}

	messageID, err := s.notifier.PublishReview(ctx, sub)
	if err != nil {
		metrics.ReviewSubmissionsTotal.WithLabelValues(metrics.OutcomeBroadcastError).Inc()
		return nil, fmt.Errorf("failed to broadcast review: %w", err)
	}

	rec := &domain.Review{
		GuildID:               sub.GuildID,
		UserID:                sub.UserID,
		AuthorID:              sub.AuthorID,
		Rating:                sub.Rating,
		Review:                sub.Feedback,
		CreatedAt:             s.clock.Now().UTC(),
		NotificationMessageID: messageID,
	}

	if err := s.store.Save(ctx, rec); err != nil {
		metrics.ReviewSubmissionsTotal.WithLabelValues(metrics.OutcomeStorageError).Inc()
		logging.WithAuthor(sub.AuthorID).Warn("Review broadcast exists without a stored record; reconciliation will backfill it",
			"notification_message_id", messageID, "error", err)
		return nil, err
	}

	metrics.ReviewSubmissionsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	s.invalidateLeaderboard(ctx)
	return rec, nil
}

// Leaderboard returns up to limit ranked users, served from the cache when
// possible. Concurrent cache misses for the same limit collapse into a single
// store query.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]domain.RankedUser, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	if s.cache != nil {
		if ranking, ok := s.cache.Get(ctx, limit); ok {
			return ranking, nil
		}
	}

	result, err, _ := s.leaderboardGroup.Do(fmt.Sprintf("top:%d", limit), func() (any, error) {
		ranking, err := s.store.TopRanked(ctx, limit)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.Set(ctx, limit, ranking)
		}
		return ranking, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute leaderboard: %w", err)
	}
	return result.([]domain.RankedUser), nil
}

// UserReviews returns the target's reviews in creation order. The platform
// glue paginates them for display in pages of 10.
func (s *Service) UserReviews(ctx context.Context, userID string) ([]domain.Review, error) {
	return s.store.GetByUser(ctx, userID)
}

// AuthorReviews returns all reviews written by an author.
func (s *Service) AuthorReviews(ctx context.Context, authorID string) ([]domain.Review, error) {
	return s.store.GetByAuthor(ctx, authorID)
}

// HandleMessageDeleted removes the review tied to a deleted broadcast message.
// No-op when the message never carried a review.
func (s *Service) HandleMessageDeleted(ctx context.Context, messageID string) error {
	if err := s.store.DeleteByMessageID(ctx, messageID); err != nil {
		return fmt.Errorf("failed to delete review for message %s: %w", messageID, err)
	}
	metrics.ReviewsDeletedTotal.Inc()
	s.invalidateLeaderboard(ctx)
	return nil
}

func (s *Service) invalidateLeaderboard(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func rejectionOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRating):
		return metrics.OutcomeInvalidRating
	case errors.Is(err, domain.ErrTargetNotFound):
		return metrics.OutcomeTargetNotFound
	case errors.Is(err, domain.ErrSelfReview):
		return metrics.OutcomeSelfReview
	case errors.Is(err, domain.ErrDuplicateSameDay):
		return metrics.OutcomeDuplicateDay
	case errors.Is(err, domain.ErrCooldownActive):
		return metrics.OutcomeCooldown
	default:
		return metrics.OutcomeStorageError
	}
}
