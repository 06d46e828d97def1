package repositories

import (
	"context"

	"shopfront/internal/models"
)

// ReviewRepository defines the interface for review data access.
// Create must reject a second review for the same (user, product) pair with ErrDuplicate.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByUserAndProduct(ctx context.Context, userID, productID string) (*models.Review, error)
	// GetByProduct returns the product's reviews, newest first.
	GetByProduct(ctx context.Context, productID string) ([]models.Review, error)
	GetByUser(ctx context.Context, userID string) ([]models.Review, error)
}
