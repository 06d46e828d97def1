package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shopfront/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
	now    func() time.Time
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		now:    time.Now,
	}
}

// WithClock replaces the time source used for CreatedAt/UpdatedAt.
func (r *MockOrderRepository) WithClock(now func() time.Time) *MockOrderRepository {
	r.now = now
	return r
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll(_ context.Context) ([]models.Order, error) {
	return r.filter(func(models.Order) bool { return true }), nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	order = cloneOrder(order)
	return &order, nil
}

// GetByUser returns every order placed by userID.
func (r *MockOrderRepository) GetByUser(_ context.Context, userID string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.UserID == userID }), nil
}

// GetByUserAndStatus returns the orders of userID currently in status.
func (r *MockOrderRepository) GetByUserAndStatus(_ context.Context, userID, status string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.UserID == userID && o.Status == status }), nil
}

// GetUnviewed returns orders not yet seen by an admin.
func (r *MockOrderRepository) GetUnviewed(_ context.Context) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return !o.Viewed }), nil
}

// CountUnviewed counts orders not yet seen by an admin.
func (r *MockOrderRepository) CountUnviewed(ctx context.Context) (int64, error) {
	unviewed, _ := r.GetUnviewed(ctx)
	return int64(len(unviewed)), nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := r.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id string, status string) error {
	return r.update(id, func(o *models.Order) {
		o.Status = status
		o.UpdatedAt = r.now()
	})
}

// SetPayment records whether the order has been paid.
func (r *MockOrderRepository) SetPayment(_ context.Context, id string, paid bool) error {
	return r.update(id, func(o *models.Order) {
		o.Payment = paid
		o.UpdatedAt = r.now()
	})
}

// MarkViewed sets viewed on every known id; unknown ids are ignored.
func (r *MockOrderRepository) MarkViewed(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched int64
	for _, id := range ids {
		order, ok := r.orders[id]
		if !ok {
			continue
		}
		order.Viewed = true
		r.orders[id] = order
		matched++
	}
	return matched, nil
}

func (r *MockOrderRepository) update(id string, fn func(*models.Order)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	fn(&order)
	r.orders[id] = order
	return nil
}

func (r *MockOrderRepository) filter(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			orderList = append(orderList, cloneOrder(order))
		}
	}
	return orderList
}

func cloneOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.Image = append([]string(nil), item.Image...)
		items[i] = item
	}
	o.Items = items
	if o.Address != nil {
		addr := make(models.Address, len(o.Address))
		for k, v := range o.Address {
			addr[k] = v
		}
		o.Address = addr
	}
	return o
}
