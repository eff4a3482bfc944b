package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LoneDev6/review-user-bot/internal/domain"
)

// reviewColumns must match the Scan order in scanReview.
const reviewColumns = `notification_message_id, guild_id, user_id, author_id, rating, review, created_at`

// ReviewRepo implements domain.ReviewRepository backed by PostgreSQL.
type ReviewRepo struct {
	pool *pgxpool.Pool
}

var _ domain.ReviewRepository = (*ReviewRepo)(nil)

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

// Pool exposes the underlying connection pool for health checks.
func (r *ReviewRepo) Pool() *pgxpool.Pool {
	return r.pool
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var r domain.Review
	err := row.Scan(
		&r.NotificationMessageID, &r.GuildID, &r.UserID, &r.AuthorID,
		&r.Rating, &r.Review, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *ReviewRepo) Save(ctx context.Context, review *domain.Review) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reviews (notification_message_id, guild_id, user_id, author_id, rating, review, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (notification_message_id) DO UPDATE SET
			guild_id = EXCLUDED.guild_id,
			user_id = EXCLUDED.user_id,
			author_id = EXCLUDED.author_id,
			rating = EXCLUDED.rating,
			review = EXCLUDED.review,
			created_at = EXCLUDED.created_at
	`, review.NotificationMessageID, review.GuildID, review.UserID, review.AuthorID,
		review.Rating, review.Review, review.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

func (r *ReviewRepo) GetByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (r *ReviewRepo) GetByAuthor(ctx context.Context, authorID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE author_id = $1 ORDER BY created_at`, authorID)
}

func (r *ReviewRepo) list(ctx context.Context, query string, arg any) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}
	return reviews, nil
}

func (r *ReviewRepo) GetLastByAuthor(ctx context.Context, authorID string) (*domain.Review, error) {
	review, err := scanReview(r.pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE author_id = $1 ORDER BY created_at DESC LIMIT 1`, authorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last review by author: %w", err)
	}
	return review, nil
}

func (r *ReviewRepo) DeleteByMessageID(ctx context.Context, messageID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE notification_message_id = $1`, messageID); err != nil {
		return fmt.Errorf("failed to delete review by message id: %w", err)
	}
	return nil
}

// TopRanked aggregates in SQL. LN is the natural log, matching
// review.AdjustedScore so the memory store ranks identically.
func (r *ReviewRepo) TopRanked(ctx context.Context, limit int) ([]domain.RankedUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id,
		       AVG(rating)::float8 AS avg_rating,
		       COUNT(*) AS review_count,
		       SUM(rating)::float8 / LN(COUNT(*) + 1) AS adjusted_score
		FROM reviews
		GROUP BY user_id
		ORDER BY adjusted_score DESC, review_count DESC, user_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	ranking := make([]domain.RankedUser, 0, limit)
	for rows.Next() {
		var u domain.RankedUser
		var count int64
		if err := rows.Scan(&u.UserID, &u.AvgRating, &count, &u.AdjustedScore); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		u.ReviewCount = int(count)
		ranking = append(ranking, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	return ranking, nil
}

// ExistsOnDay compares UTC dates on both sides. The parameter must go through
// AT TIME ZONE too: a bare ::date cast on a timestamptz uses the session
// TimeZone, which shifts the date near UTC midnight on non-UTC servers.
func (r *ReviewRepo) ExistsOnDay(ctx context.Context, guildID, userID, authorID string, day time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reviews
			WHERE guild_id = $1 AND user_id = $2 AND author_id = $3
			  AND (created_at AT TIME ZONE 'UTC')::date = ($4 AT TIME ZONE 'UTC')::date
		)
	`, guildID, userID, authorID, day.UTC()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check same-day review: %w", err)
	}
	return exists, nil
}
