package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"shopfront/internal/models"

	"github.com/google/uuid"
)

// MockReviewRepository is an in-memory implementation of ReviewRepository.
// The (user, product) uniqueness check runs under the write lock, so
// concurrent duplicate submissions cannot both succeed.
type MockReviewRepository struct {
	reviews  map[string]models.Review
	byAuthor map[string]string // userID|productID -> review ID
	mu       sync.RWMutex
}

// NewMockReviewRepository creates a new instance of MockReviewRepository.
func NewMockReviewRepository() *MockReviewRepository {
	return &MockReviewRepository{
		reviews:  make(map[string]models.Review),
		byAuthor: make(map[string]string),
	}
}

func authorKey(userID, productID string) string {
	return userID + "|" + productID
}

// Create stores a review.
func (r *MockReviewRepository) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := authorKey(review.UserID, review.ProductID)
	if _, exists := r.byAuthor[key]; exists {
		return fmt.Errorf("review by user %s for product %s: %w", review.UserID, review.ProductID, ErrDuplicate)
	}
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	r.reviews[review.ID] = *review
	r.byAuthor[key] = review.ID
	return nil
}

// GetByUserAndProduct returns the user's review of a product.
func (r *MockReviewRepository) GetByUserAndProduct(_ context.Context, userID, productID string) (*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAuthor[authorKey(userID, productID)]
	if !ok {
		return nil, fmt.Errorf("review by user %s for product %s: %w", userID, productID, ErrNotFound)
	}
	review := r.reviews[id]
	return &review, nil
}

// GetByProduct returns all reviews of a product, newest first.
func (r *MockReviewRepository) GetByProduct(_ context.Context, productID string) ([]models.Review, error) {
	reviews := r.filter(func(rv models.Review) bool { return rv.ProductID == productID })
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

// GetByUser returns all reviews written by a user.
func (r *MockReviewRepository) GetByUser(_ context.Context, userID string) ([]models.Review, error) {
	return r.filter(func(rv models.Review) bool { return rv.UserID == userID }), nil
}

func (r *MockReviewRepository) filter(keep func(models.Review) bool) []models.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviewList := make([]models.Review, 0)
	for _, review := range r.reviews {
		if keep(review) {
			reviewList = append(reviewList, review)
		}
	}
	return reviewList
}
