package review

import (
	"time"

	"github.com/LoneDev6/review-user-bot/internal/domain"
)

// SubmissionCooldown is the global per-author cooldown between reviews,
// regardless of target. The rejection boundary is exclusive: a submission
// exactly SubmissionCooldown after the author's last review is accepted.
const SubmissionCooldown = 2 * time.Hour

const (
	MinRating = 1
	MaxRating = 5
)

// Evaluate decides whether a submission becomes a persisted review.
// targetReviews is the target user's existing review history and lastByAuthor
// the author's most recent review against any target (nil when none).
// Rules run in order, first failure wins; a nil return means accept.
func Evaluate(sub domain.Submission, targetReviews []domain.Review, lastByAuthor *domain.Review, now time.Time) error {
	if sub.Rating < MinRating || sub.Rating > MaxRating {
		return domain.ErrInvalidRating
	}

	if !sub.TargetResolvable {
		return domain.ErrTargetNotFound
	}

	if sub.AuthorID == sub.UserID {
		return domain.ErrSelfReview
	}

	for _, r := range targetReviews {
		if r.AuthorID == sub.AuthorID && SameCalendarDay(r.CreatedAt, now) {
			return domain.ErrDuplicateSameDay
		}
	}

	if lastByAuthor != nil && now.Sub(lastByAuthor.CreatedAt) < SubmissionCooldown {
		return domain.ErrCooldownActive
	}

	return nil
}

// SameCalendarDay compares UTC calendar dates, not 24h windows. The same
// definition backs the duplicate-day rule here and the reconciliation dedup
// probe in the stores.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
