package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoneDev6/review-user-bot/internal/domain"
	"github.com/LoneDev6/review-user-bot/internal/metrics"
	"github.com/LoneDev6/review-user-bot/internal/review"
)

var serviceNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

// mockNotifier records broadcasts and returns a configurable message id.
type mockNotifier struct {
	publishFn func(ctx context.Context, sub domain.Submission) (string, error)
	calls     int
}

func (m *mockNotifier) PublishReview(ctx context.Context, sub domain.Submission) (string, error) {
	m.calls++
	if m.publishFn != nil {
		return m.publishFn(ctx, sub)
	}
	return "msg-broadcast-1", nil
}

// mockCache records cache traffic; Get serves the hit field when set.
type mockCache struct {
	hit         []domain.RankedUser
	sets        int
	invalidates int
}

func (m *mockCache) Get(context.Context, int) ([]domain.RankedUser, bool) {
	return m.hit, m.hit != nil
}

func (m *mockCache) Set(context.Context, int, []domain.RankedUser) {
	m.sets++
}

func (m *mockCache) Invalidate(context.Context) {
	m.invalidates++
}

// countingStore wraps a repository and counts TopRanked queries.
type countingStore struct {
	domain.ReviewRepository
	topRankedCalls int
}

func (c *countingStore) TopRanked(ctx context.Context, limit int) ([]domain.RankedUser, error) {
	c.topRankedCalls++
	return c.ReviewRepository.TopRanked(ctx, limit)
}

// failingSaveStore wraps a repository and fails every Save.
type failingSaveStore struct {
	domain.ReviewRepository
}

func (f *failingSaveStore) Save(context.Context, *domain.Review) error {
	return errors.New("disk full")
}

func submission() domain.Submission {
	return domain.Submission{
		GuildID:          "guild-1",
		AuthorID:         "author-1",
		UserID:           "user-1",
		Rating:           4,
		Feedback:         "smooth trade and quick responses, exactly as described in the listing",
		TargetResolvable: true,
	}
}

func newTestService(store domain.ReviewRepository, notifier *mockNotifier) *Service {
	return NewService(store, notifier, nil, clockwork.NewFakeClockAt(serviceNow))
}

func TestSubmitReview_AcceptedBroadcastsThenSaves(t *testing.T) {
	store := review.NewInMemoryStore()
	notifier := &mockNotifier{}
	svc := newTestService(store, notifier)

	initialAccepted := testutil.ToFloat64(metrics.ReviewSubmissionsTotal.WithLabelValues(metrics.OutcomeAccepted))

	rec, err := svc.SubmitReview(context.Background(), submission())
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, "msg-broadcast-1", rec.NotificationMessageID)
	assert.Equal(t, serviceNow, rec.CreatedAt)

	stored, err := store.GetByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "msg-broadcast-1", stored[0].NotificationMessageID)

	assert.Equal(t, initialAccepted+1, testutil.ToFloat64(metrics.ReviewSubmissionsTotal.WithLabelValues(metrics.OutcomeAccepted)))
}

func TestSubmitReview_RejectionNeverBroadcasts(t *testing.T) {
	store := review.NewInMemoryStore()
	notifier := &mockNotifier{}
	svc := newTestService(store, notifier)

	sub := submission()
	sub.UserID = sub.AuthorID

	_, err := svc.SubmitReview(context.Background(), sub)
	assert.ErrorIs(t, err, domain.ErrSelfReview)
	assert.Equal(t, 0, notifier.calls)

	stored, err := store.GetByUser(context.Background(), sub.UserID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSubmitReview_CooldownFromStoredHistory(t *testing.T) {
	store := review.NewInMemoryStore()
	notifier := &mockNotifier{}
	svc := newTestService(store, notifier)

	previous := &domain.Review{
		GuildID:               "guild-1",
		UserID:                "user-other",
		AuthorID:              "author-1",
		Rating:                5,
		CreatedAt:             serviceNow.Add(-119 * time.Minute),
		NotificationMessageID: "msg-old",
	}
	require.NoError(t, store.Save(context.Background(), previous))

	_, err := svc.SubmitReview(context.Background(), submission())
	assert.ErrorIs(t, err, domain.ErrCooldownActive)
	assert.Equal(t, 0, notifier.calls)
}

func TestSubmitReview_BroadcastFailurePreventsSave(t *testing.T) {
	store := review.NewInMemoryStore()
	notifier := &mockNotifier{
		publishFn: func(context.Context, domain.Submission) (string, error) {
			return "", errors.New("webhook unreachable")
		},
	}
	svc := newTestService(store, notifier)

	_, err := svc.SubmitReview(context.Background(), submission())
	require.Error(t, err)

	stored, err := store.GetByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSubmitReview_StorageFailureAfterBroadcast(t *testing.T) {
	// The broadcast already happened; the missing record is the documented
	// inconsistency healed by the reconciliation sweep.
	notifier := &mockNotifier{}
	svc := newTestService(&failingSaveStore{review.NewInMemoryStore()}, notifier)

	_, err := svc.SubmitReview(context.Background(), submission())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidRating)
	assert.Equal(t, 1, notifier.calls)
}

func TestLeaderboard_DefaultsLimit(t *testing.T) {
	store := review.NewInMemoryStore()
	svc := newTestService(store, &mockNotifier{})

	ranking, err := svc.Leaderboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, ranking)
}

func TestLeaderboard_CacheHitSkipsStore(t *testing.T) {
	store := &countingStore{ReviewRepository: review.NewInMemoryStore()}
	cached := []domain.RankedUser{{UserID: "user-1", AvgRating: 5, ReviewCount: 1, AdjustedScore: 7.21}}
	cache := &mockCache{hit: cached}
	svc := NewService(store, &mockNotifier{}, cache, clockwork.NewFakeClockAt(serviceNow))

	ranking, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, cached, ranking)
	assert.Equal(t, 0, store.topRankedCalls)
}

func TestLeaderboard_CacheMissQueriesStoreAndFills(t *testing.T) {
	store := &countingStore{ReviewRepository: review.NewInMemoryStore()}
	cache := &mockCache{}
	svc := NewService(store, &mockNotifier{}, cache, clockwork.NewFakeClockAt(serviceNow))

	_, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, store.topRankedCalls)
	assert.Equal(t, 1, cache.sets)
}

func TestCacheInvalidatedOnWrites(t *testing.T) {
	store := review.NewInMemoryStore()
	cache := &mockCache{}
	svc := NewService(store, &mockNotifier{}, cache, clockwork.NewFakeClockAt(serviceNow))

	rec, err := svc.SubmitReview(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidates)

	require.NoError(t, svc.HandleMessageDeleted(context.Background(), rec.NotificationMessageID))
	assert.Equal(t, 2, cache.invalidates)
}

func TestCacheNotInvalidatedOnRejection(t *testing.T) {
	store := review.NewInMemoryStore()
	cache := &mockCache{}
	svc := NewService(store, &mockNotifier{}, cache, clockwork.NewFakeClockAt(serviceNow))

	sub := submission()
	sub.Rating = 0
	_, err := svc.SubmitReview(context.Background(), sub)
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
	assert.Equal(t, 0, cache.invalidates)
}

func TestHandleMessageDeleted(t *testing.T) {
	store := review.NewInMemoryStore()
	notifier := &mockNotifier{}
	svc := newTestService(store, notifier)

	rec, err := svc.SubmitReview(context.Background(), submission())
	require.NoError(t, err)

	require.NoError(t, svc.HandleMessageDeleted(context.Background(), rec.NotificationMessageID))

	stored, err := store.GetByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, stored)

	// Unknown message ids are a no-op
	require.NoError(t, svc.HandleMessageDeleted(context.Background(), "msg-unknown"))
}
