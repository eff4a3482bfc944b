package domain

import (
	"context"
	"time"
)

// Review is one member's rating of another, persisted after the public
// broadcast succeeded. NotificationMessageID is the broadcast message's id and
// acts as the natural key: Save upserts on it, deletion sync removes by it.
type Review struct {
	GuildID               string    `json:"guild_id"`
	UserID                string    `json:"user_id"`
	AuthorID              string    `json:"author_id"`
	Rating                int       `json:"rating"`
	Review                string    `json:"review"`
	CreatedAt             time.Time `json:"created_at"`
	NotificationMessageID string    `json:"notification_message_id"`
}

// RankedUser is one leaderboard row. AdjustedScore is
// sum(rating) / ln(review_count + 1): higher averages and higher volume both
// help, but raw volume sees diminishing returns through the log denominator.
type RankedUser struct {
	UserID        string  `json:"user_id"`
	AvgRating     float64 `json:"avg_rating"`
	ReviewCount   int     `json:"review_count"`
	AdjustedScore float64 `json:"adjusted_score"`
}

// Submission is a candidate review pending eligibility evaluation. The
// platform glue resolves the target before calling in; TargetResolvable
// carries the result of that membership check.
type Submission struct {
	GuildID          string `json:"guild_id"`
	AuthorID         string `json:"author_id"`
	UserID           string `json:"user_id"`
	Rating           int    `json:"rating"`
	Feedback         string `json:"feedback"`
	TargetResolvable bool   `json:"target_resolvable"`
}

// ReviewRepository is the durable review store.
type ReviewRepository interface {
	// Save upserts by NotificationMessageID: replaying the same message id
	// overwrites, never duplicates.
	Save(ctx context.Context, review *Review) error

	// GetByUser returns the target's reviews in ascending creation order.
	GetByUser(ctx context.Context, userID string) ([]Review, error)

	// GetByAuthor returns all reviews written by an author.
	GetByAuthor(ctx context.Context, authorID string) ([]Review, error)

	// GetLastByAuthor returns the author's most recent review, or nil.
	GetLastByAuthor(ctx context.Context, authorID string) (*Review, error)

	// DeleteByMessageID removes the review tied to a broadcast message.
	// No-op when absent.
	DeleteByMessageID(ctx context.Context, messageID string) error

	// TopRanked returns up to limit leaderboard rows ordered by adjusted
	// score desc, review count desc, user id asc.
	TopRanked(ctx context.Context, limit int) ([]RankedUser, error)

	// ExistsOnDay reports whether a (guild, user, author) review exists whose
	// creation timestamp falls on the same UTC calendar date as day.
	ExistsOnDay(ctx context.Context, guildID, userID, authorID string, day time.Time) (bool, error)
}

// ReviewNotifier broadcasts an accepted submission to the public review
// channel and returns the created message's id. Save only happens after the
// broadcast succeeded.
type ReviewNotifier interface {
	PublishReview(ctx context.Context, sub Submission) (messageID string, err error)
}

// LeaderboardCache is an optional read-through cache in front of TopRanked.
type LeaderboardCache interface {
	Get(ctx context.Context, limit int) ([]RankedUser, bool)
	Set(ctx context.Context, limit int, ranking []RankedUser)
	Invalidate(ctx context.Context)
}
