package app

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/LoneDev6/review-user-bot/internal/domain"
	"github.com/LoneDev6/review-user-bot/internal/logging"
	"github.com/LoneDev6/review-user-bot/internal/metrics"
	"github.com/LoneDev6/review-user-bot/internal/review"
)

const reconcilePageSize = 100

// Embed field names of the broadcast layout. A historical message missing any
// of them is not a review and is skipped.
const (
	fieldRating       = "Rating"
	fieldFeedback     = "Feedback"
	fieldReviewedUser = "Reviewed User"
	fieldReviewer     = "Reviewer"
)

// ratingPattern matches the "(n/5)" suffix of the Rating field text.
var ratingPattern = regexp.MustCompile(`\((\d)/5\)`)

// Reconciler backfills reviews whose only record is a previously-sent
// broadcast message, recovering from store data loss or missed writes. It runs
// once after startup, pages backward through the channel history, and is
// fire-and-forget: a failed fetch aborts the sweep, never the process.
type Reconciler struct {
	store   domain.ReviewRepository
	source  domain.MessageSource
	guildID string
}

func NewReconciler(store domain.ReviewRepository, source domain.MessageSource, guildID string) *Reconciler {
	return &Reconciler{
		store:   store,
		source:  source,
		guildID: guildID,
	}
}

// Run walks the channel history newest to oldest in pages of 100 and inserts
// any review missing from the store, deduplicated by (guild, user, author)
// per UTC calendar day. Backfilled rows keep the message's own creation
// timestamp and id.
func (r *Reconciler) Run(ctx context.Context) {
	sweepID := uuid.NewString()
	log := logging.WithGuild(r.guildID).With("sweep_id", sweepID)
	log.Info("Reconciliation sweep started")

	var processed, backfilled, skipped int
	before := ""

	for {
		messages, err := r.source.Messages(ctx, before, reconcilePageSize)
		if err != nil {
			metrics.ReconcileSweepFailures.Inc()
			log.Error("Reconciliation sweep aborted: history fetch failed",
				"processed", processed, "backfilled", backfilled, "error", err)
			return
		}

		for _, msg := range messages {
			processed++
			metrics.ReconcileMessagesScanned.Inc()

			parsed, ok := parseReviewEmbed(msg)
			if !ok {
				skipped++
				metrics.ReconcileParseSkips.Inc()
				continue
			}

			exists, err := r.store.ExistsOnDay(ctx, r.guildID, parsed.userID, parsed.authorID, msg.CreatedAt)
			if err != nil {
				log.Warn("Duplicate-day check failed, skipping message", "message_id", msg.ID, "error", err)
				continue
			}
			if exists {
				continue
			}

			rec := &domain.Review{
				GuildID:               r.guildID,
				UserID:                parsed.userID,
				AuthorID:              parsed.authorID,
				Rating:                parsed.rating,
				Review:                parsed.feedback,
				CreatedAt:             msg.CreatedAt.UTC(),
				NotificationMessageID: msg.ID,
			}
			if err := r.store.Save(ctx, rec); err != nil {
				log.Warn("Failed to backfill review", "message_id", msg.ID, "error", err)
				continue
			}
			backfilled++
			metrics.ReconcileReviewsBackfilled.Inc()
		}

		// A short page means we reached the oldest message.
		if len(messages) < reconcilePageSize {
			break
		}
		before = messages[len(messages)-1].ID
	}

	log.Info("Reconciliation sweep finished",
		"processed", processed, "backfilled", backfilled, "skipped", skipped)
}

type parsedReview struct {
	userID   string
	authorID string
	rating   int
	feedback string
}

// parseReviewEmbed extracts the review fields from a historical broadcast
// message. Returns false for messages without embeds, with a primary embed
// missing any expected field, or with unparseable ids or rating.
func parseReviewEmbed(msg domain.ChannelMessage) (parsedReview, bool) {
	if len(msg.Embeds) == 0 {
		return parsedReview{}, false
	}

	fields := make(map[string]string, len(msg.Embeds[0].Fields))
	for _, f := range msg.Embeds[0].Fields {
		fields[f.Name] = f.Value
	}

	ratingText, hasRating := fields[fieldRating]
	feedback, hasFeedback := fields[fieldFeedback]
	reviewedText, hasReviewed := fields[fieldReviewedUser]
	reviewerText, hasReviewer := fields[fieldReviewer]
	if !hasRating || !hasFeedback || !hasReviewed || !hasReviewer {
		return parsedReview{}, false
	}

	userID := stripMention(reviewedText)
	authorID := stripMention(reviewerText)
	if userID == "" || authorID == "" {
		return parsedReview{}, false
	}

	m := ratingPattern.FindStringSubmatch(ratingText)
	if m == nil {
		return parsedReview{}, false
	}
	rating, err := strconv.Atoi(m[1])
	if err != nil || rating < review.MinRating || rating > review.MaxRating {
		return parsedReview{}, false
	}

	return parsedReview{
		userID:   userID,
		authorID: authorID,
		rating:   rating,
		feedback: feedback,
	}, true
}

// stripMention removes the <@id> / <@!id> decoration around a user id.
func stripMention(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "<@")
	s = strings.TrimPrefix(s, "!")
	s = strings.TrimSuffix(s, ">")
	return s
}
