package review

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoneDev6/review-user-bot/internal/domain"
)

func reviewsFor(userID string, ratings ...int) []domain.Review {
	reviews := make([]domain.Review, len(ratings))
	for i, rating := range ratings {
		reviews[i] = domain.Review{
			GuildID:               "guild-1",
			UserID:                userID,
			AuthorID:              "author",
			Rating:                rating,
			CreatedAt:             time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			NotificationMessageID: userID + string(rune('a'+i)),
		}
	}
	return reviews
}

func TestAdjustedScore(t *testing.T) {
	assert.Equal(t, 0.0, AdjustedScore(0, 0))
	assert.InDelta(t, 5/math.Log(2), AdjustedScore(5, 1), 1e-9)
	assert.InDelta(t, 40/math.Log(11), AdjustedScore(40, 10), 1e-9)
}

func TestRank_VolumeOutranksSingleFiveStar(t *testing.T) {
	// A: one 5-star. B: ten 4-star. B's adjusted score (~16.68) beats A's
	// (~7.21) despite A's perfect average.
	reviews := append(reviewsFor("user-a", 5), reviewsFor("user-b", 4, 4, 4, 4, 4, 4, 4, 4, 4, 4)...)

	ranking := Rank(reviews, 10)
	require.Len(t, ranking, 2)

	assert.Equal(t, "user-b", ranking[0].UserID)
	assert.Equal(t, 10, ranking[0].ReviewCount)
	assert.InDelta(t, 4.0, ranking[0].AvgRating, 1e-9)
	assert.InDelta(t, 40/math.Log(11), ranking[0].AdjustedScore, 1e-9)

	assert.Equal(t, "user-a", ranking[1].UserID)
	assert.InDelta(t, 5.0, ranking[1].AvgRating, 1e-9)
	assert.InDelta(t, 5/math.Log(2), ranking[1].AdjustedScore, 1e-9)
}

func TestRank_TieBreaksByCountThenUserID(t *testing.T) {
	// Identical ratings give identical scores; equal counts fall back to
	// user id order so runs are reproducible.
	reviews := append(reviewsFor("user-b", 3, 3), reviewsFor("user-a", 3, 3)...)

	ranking := Rank(reviews, 10)
	require.Len(t, ranking, 2)
	assert.Equal(t, "user-a", ranking[0].UserID)
	assert.Equal(t, "user-b", ranking[1].UserID)
}

func TestRank_Limit(t *testing.T) {
	reviews := append(reviewsFor("user-a", 5), reviewsFor("user-b", 4)...)
	reviews = append(reviews, reviewsFor("user-c", 3)...)

	ranking := Rank(reviews, 2)
	assert.Len(t, ranking, 2)
}

func TestRank_Empty(t *testing.T) {
	ranking := Rank(nil, 10)
	assert.Empty(t, ranking)
	assert.NotNil(t, ranking)
}
