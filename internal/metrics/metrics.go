package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission Metrics
var (
	// ReviewSubmissionsTotal tracks submission outcomes (accepted, policy rejections, failures)
	ReviewSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_submissions_total",
			Help: "Review submissions by outcome",
		},
		[]string{"outcome"},
	)

	// ReviewsDeletedTotal tracks reviews removed via deletion sync
	ReviewsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_deleted_total",
			Help: "Reviews removed after their broadcast message was deleted",
		},
	)
)

// Submission outcome label values.
const (
	OutcomeAccepted       = "accepted"
	OutcomeInvalidRating  = "invalid_rating"
	OutcomeTargetNotFound = "target_not_found"
	OutcomeSelfReview     = "self_review"
	OutcomeDuplicateDay   = "duplicate_same_day"
	OutcomeCooldown       = "cooldown_active"
	OutcomeBroadcastError = "broadcast_error"
	OutcomeStorageError   = "storage_error"
)

// Reconciliation Metrics
var (
	// ReconcileMessagesScanned tracks channel messages examined by the sweep
	ReconcileMessagesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_messages_scanned_total",
			Help: "Channel messages examined by the reconciliation sweep",
		},
	)

	// ReconcileReviewsBackfilled tracks reviews recovered from channel history
	ReconcileReviewsBackfilled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_reviews_backfilled_total",
			Help: "Reviews inserted from channel history by the reconciliation sweep",
		},
	)

	// ReconcileParseSkips tracks malformed historical messages skipped by the sweep
	ReconcileParseSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_parse_skips_total",
			Help: "Historical messages skipped because their embed was missing or unparseable",
		},
	)

	// ReconcileSweepFailures tracks sweeps aborted by a failed history fetch
	ReconcileSweepFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_sweep_failures_total",
			Help: "Reconciliation sweeps aborted by a failed history fetch",
		},
	)
)

// Leaderboard Cache Metrics
var (
	// LeaderboardCacheHits tracks leaderboard reads served from Redis
	LeaderboardCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_hits_total",
			Help: "Leaderboard reads served from the Redis cache",
		},
	)

	// LeaderboardCacheMisses tracks leaderboard reads that fell through to the store
	LeaderboardCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_misses_total",
			Help: "Leaderboard reads that fell through to the review store",
		},
	)
)
