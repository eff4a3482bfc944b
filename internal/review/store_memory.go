package review

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LoneDev6/review-user-bot/internal/domain"
)

// InMemoryStore provides review storage for single-instance dev mode and
// tests. Guarded by a mutex since echo handlers run on separate goroutines.
type InMemoryStore struct {
	mu      sync.RWMutex
	byMsgID map[string]*domain.Review
	order   []string // message ids in first-insert order
}

var _ domain.ReviewRepository = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byMsgID: make(map[string]*domain.Review),
	}
}

func (s *InMemoryStore) Save(_ context.Context, review *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *review
	if _, exists := s.byMsgID[r.NotificationMessageID]; !exists {
		s.order = append(s.order, r.NotificationMessageID)
	}
	s.byMsgID[r.NotificationMessageID] = &r
	return nil
}

func (s *InMemoryStore) GetByUser(_ context.Context, userID string) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reviews []domain.Review
	for _, id := range s.order {
		if r := s.byMsgID[id]; r.UserID == userID {
			reviews = append(reviews, *r)
		}
	}
	sortByCreation(reviews)
	return reviews, nil
}

func (s *InMemoryStore) GetByAuthor(_ context.Context, authorID string) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reviews []domain.Review
	for _, id := range s.order {
		if r := s.byMsgID[id]; r.AuthorID == authorID {
			reviews = append(reviews, *r)
		}
	}
	sortByCreation(reviews)
	return reviews, nil
}

func (s *InMemoryStore) GetLastByAuthor(_ context.Context, authorID string) (*domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last *domain.Review
	for _, id := range s.order {
		r := s.byMsgID[id]
		if r.AuthorID != authorID {
			continue
		}
		if last == nil || r.CreatedAt.After(last.CreatedAt) {
			last = r
		}
	}
	if last == nil {
		return nil, nil
	}
	cpy := *last
	return &cpy, nil
}

func (s *InMemoryStore) DeleteByMessageID(_ context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byMsgID[messageID]; !exists {
		return nil
	}
	delete(s.byMsgID, messageID)
	for i, id := range s.order {
		if id == messageID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemoryStore) TopRanked(_ context.Context, limit int) ([]domain.RankedUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews := make([]domain.Review, 0, len(s.order))
	for _, id := range s.order {
		reviews = append(reviews, *s.byMsgID[id])
	}
	return Rank(reviews, limit), nil
}

func (s *InMemoryStore) ExistsOnDay(_ context.Context, guildID, userID, authorID string, day time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.byMsgID {
		if r.GuildID == guildID && r.UserID == userID && r.AuthorID == authorID && SameCalendarDay(r.CreatedAt, day) {
			return true, nil
		}
	}
	return false, nil
}

func sortByCreation(reviews []domain.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
	})
}
