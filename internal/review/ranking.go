package review

import (
	"math"
	"sort"

	"github.com/LoneDev6/review-user-bot/internal/domain"
)

// AdjustedScore computes totalRating / ln(count + 1). Natural log, matching
// the LN() aggregate in the postgres store so both rankings agree. A user with
// a single 5-star review scores 5/ln(2) ~ 7.21 while ten 4-star reviews score
// 40/ln(11) ~ 16.68, so sustained volume outranks a lucky single rating.
func AdjustedScore(totalRating, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalRating) / math.Log(float64(count)+1)
}

// Rank aggregates reviews per reviewed user and orders them by adjusted score
// desc, review count desc, then user id asc for a reproducible tail.
// Returns an empty slice when there are no reviews.
func Rank(reviews []domain.Review, limit int) []domain.RankedUser {
	type agg struct {
		total int
		count int
	}
	byUser := make(map[string]*agg)
	for _, r := range reviews {
		a, ok := byUser[r.UserID]
		if !ok {
			a = &agg{}
			byUser[r.UserID] = a
		}
		a.total += r.Rating
		a.count++
	}

	ranking := make([]domain.RankedUser, 0, len(byUser))
	for userID, a := range byUser {
		ranking = append(ranking, domain.RankedUser{
			UserID:        userID,
			AvgRating:     float64(a.total) / float64(a.count),
			ReviewCount:   a.count,
			AdjustedScore: AdjustedScore(a.total, a.count),
		})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].AdjustedScore != ranking[j].AdjustedScore {
			return ranking[i].AdjustedScore > ranking[j].AdjustedScore
		}
		if ranking[i].ReviewCount != ranking[j].ReviewCount {
			return ranking[i].ReviewCount > ranking[j].ReviewCount
		}
		return ranking[i].UserID < ranking[j].UserID
	})

	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}
