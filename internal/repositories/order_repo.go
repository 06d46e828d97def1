package repositories

import (
	"context"

	"shopfront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByUser(ctx context.Context, userID string) ([]models.Order, error)
	GetByUserAndStatus(ctx context.Context, userID, status string) ([]models.Order, error)
	GetUnviewed(ctx context.Context) ([]models.Order, error)
	CountUnviewed(ctx context.Context) (int64, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status string) error
	SetPayment(ctx context.Context, id string, paid bool) error
	// MarkViewed flags the given orders as seen and returns how many matched.
	MarkViewed(ctx context.Context, ids []string) (int64, error)
}
