package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"shopfront/internal/analytics"
	"shopfront/internal/apperror"
	"shopfront/internal/models"
	"shopfront/internal/repositories"
	"shopfront/pkg/payment"
	"shopfront/pkg/rabbitmq"

	"go.uber.org/zap"
)

// OrderItemInput is a cart line submitted at checkout.
type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrderInput carries everything needed to place an order.
type PlaceOrderInput struct {
	UserID        string
	Items         []OrderItemInput
	Address       models.Address
	PaymentMethod string
}

// OrderEvent is the payload of every order.* event.
type OrderEvent struct {
	OrderID string  `json:"orderId"`
	UserID  string  `json:"userId"`
	Status  string  `json:"status"`
	Amount  float64 `json:"amount"`
	Payment bool    `json:"payment"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	reviewRepo  repositories.ReviewRepository
	events      EventPublisher
	checkout    CheckoutGateway
	log         *zap.Logger
	now         func() time.Time
}

// NewOrderService creates a new OrderService. events and checkout may be nil.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	reviewRepo repositories.ReviewRepository,
	events EventPublisher,
	checkout CheckoutGateway,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		events:      events,
		checkout:    checkout,
		log:         log,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for order dates and filters.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// ListOrders returns every order matching filter, newest first.
func (s *OrderService) ListOrders(ctx context.Context, filter analytics.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !models.IsValidStatus(filter.Status) {
		return nil, apperror.Validation("Invalid order status")
	}

	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to list orders", err)
	}

	orders = analytics.FilterOrders(orders, filter, s.now())
	sortByDateDesc(orders)
	return orders, nil
}

// UpdateStatus overwrites the status of an order. Any status may follow any other.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	if orderID == "" {
		return apperror.Validation("orderId is required")
	}
	if !models.IsValidStatus(status) {
		return apperror.Validation("Invalid order status")
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("Order not found")
		}
		return apperror.Internal("Failed to update order status", err)
	}

	s.log.Info("order status updated", zap.String("order_id", orderID), zap.String("status", status))
	s.publishOrder(ctx, rabbitmq.RoutingOrderStatusUpdated, orderID)
	return nil
}

// MarkViewed flags orders as seen in the admin notification feed.
func (s *OrderService) MarkViewed(ctx context.Context, orderIDs []string) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, apperror.Validation("orderIds must be a non-empty list")
	}

	matched, err := s.orderRepo.MarkViewed(ctx, orderIDs)
	if err != nil {
		return 0, apperror.Internal("Failed to mark orders as viewed", err)
	}
	return matched, nil
}

// CountUnviewed returns the number of orders an admin has not seen.
func (s *OrderService) CountUnviewed(ctx context.Context) (int64, error) {
	count, err := s.orderRepo.CountUnviewed(ctx)
	if err != nil {
		return 0, apperror.Internal("Failed to count unviewed orders", err)
	}
	return count, nil
}

// ListUnviewed returns the orders an admin has not seen, newest first.
func (s *OrderService) ListUnviewed(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orderRepo.GetUnviewed(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to list unviewed orders", err)
	}
	sortByDateDesc(orders)
	return orders, nil
}

// PlaceOrder resolves each cart line against the catalog and persists the
// order. The amount is fixed here as the sum of price × quantity.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if input.UserID == "" {
		return nil, apperror.Unauthenticated("Not Authorized Login Again")
	}
	if len(input.Items) == 0 {
		return nil, apperror.Validation("Order must contain at least one item")
	}
	if !models.IsValidPaymentMethod(input.PaymentMethod) {
		return nil, apperror.Validation("Invalid payment method")
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, apperror.Validation("Item quantity must be greater than zero")
		}

		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apperror.NotFound(fmt.Sprintf("Product %s not found", line.ProductID))
			}
			return nil, apperror.Internal("Failed to load product", err)
		}

		items = append(items, models.OrderItem{
			ProductID:  product.ID,
			Name:       product.Name,
			Image:      product.Image,
			Price:      product.Price,
			Quantity:   line.Quantity,
			Size:       line.Size,
			SellerName: product.SellerName,
		})
	}

	order := &models.Order{
		UserID:        input.UserID,
		Items:         items,
		Address:       input.Address,
		Status:        models.StatusOrderPlaced,
		PaymentMethod: input.PaymentMethod,
		// Payment flips only after an external verification; COD stays unpaid.
		Payment: false,
		Date:    s.now(),
	}
	order.Amount = order.ItemsTotal()

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, apperror.Internal("Failed to place order", err)
	}

	s.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Float64("amount", order.Amount),
		zap.String("payment_method", order.PaymentMethod))
	s.publish(ctx, rabbitmq.RoutingOrderCreated, orderEvent(order))
	return order, nil
}

// PlaceOrderStripe places a card order and opens a checkout session for it,
// returning the order and the session URL.
func (s *OrderService) PlaceOrderStripe(ctx context.Context, input PlaceOrderInput) (*models.Order, string, error) {
	if s.checkout == nil {
		return nil, "", apperror.Internal("Card payments are not configured", nil)
	}

	input.PaymentMethod = models.PaymentCard
	order, err := s.PlaceOrder(ctx, input)
	if err != nil {
		return nil, "", err
	}

	lines := make([]payment.LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, payment.LineItem{Name: item.Name, UnitPrice: item.Price, Quantity: item.Quantity})
	}

	url, err := s.checkout.CreateCheckoutSession(order.ID, lines)
	if err != nil {
		s.cancelUnpaid(ctx, order.ID)
		return nil, "", apperror.Internal("Failed to create checkout session", err)
	}
	return order, url, nil
}

// cancelUnpaid cancels an order whose checkout could not be opened.
func (s *OrderService) cancelUnpaid(ctx context.Context, orderID string) {
	if err := s.orderRepo.UpdateStatus(ctx, orderID, models.StatusCancelled); err != nil {
		s.log.Error("failed to cancel order after checkout failure", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	s.log.Warn("checkout session failed, order cancelled", zap.String("order_id", orderID))
	s.publishOrder(ctx, rabbitmq.RoutingOrderStatusUpdated, orderID)
}

// ListUserOrders returns the user's orders, newest first, with each item's
// reviewed flag derived from the user's reviews.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orderRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Failed to list orders", err)
	}

	reviewed, err := reviewedProducts(ctx, s.reviewRepo, userID)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for j := range orders[i].Items {
			_, orders[i].Items[j].Reviewed = reviewed[orders[i].Items[j].ProductID]
		}
	}
	sortByDateDesc(orders)
	return orders, nil
}

// VerifyPayment records the outcome of a hosted checkout. A successful payment
// marks the order paid; a failed one cancels it.
func (s *OrderService) VerifyPayment(ctx context.Context, userID, orderID string, success bool) error {
	if orderID == "" {
		return apperror.Validation("orderId is required")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("Order not found")
		}
		return apperror.Internal("Failed to load order", err)
	}
	if order.UserID != userID {
		return apperror.NotFound("Order not found")
	}

	if !success {
		if err := s.orderRepo.UpdateStatus(ctx, orderID, models.StatusCancelled); err != nil {
			return apperror.Internal("Failed to cancel order", err)
		}
		s.log.Info("payment failed, order cancelled", zap.String("order_id", orderID))
		s.publishOrder(ctx, rabbitmq.RoutingOrderStatusUpdated, orderID)
		return nil
	}

	if err := s.orderRepo.SetPayment(ctx, orderID, true); err != nil {
		return apperror.Internal("Failed to record payment", err)
	}
	s.log.Info("payment verified", zap.String("order_id", orderID))
	s.publishOrder(ctx, rabbitmq.RoutingOrderPaid, orderID)
	return nil
}

// publishOrder reloads the order so the event carries its current state.
func (s *OrderService) publishOrder(ctx context.Context, routingKey, orderID string) {
	if s.events == nil {
		return
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.log.Warn("failed to load order for event", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	s.publish(ctx, routingKey, orderEvent(order))
}

func (s *OrderService) publish(ctx context.Context, routingKey string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, routingKey, payload); err != nil {
		s.log.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func orderEvent(o *models.Order) OrderEvent {
	return OrderEvent{OrderID: o.ID, UserID: o.UserID, Status: o.Status, Amount: o.Amount, Payment: o.Payment}
}

func sortByDateDesc(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Date.After(orders[j].Date) })
}

// reviewedProducts returns the set of product ids the user has reviewed.
func reviewedProducts(ctx context.Context, repo repositories.ReviewRepository, userID string) (map[string]struct{}, error) {
	reviews, err := repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Failed to load reviews", err)
	}
	set := make(map[string]struct{}, len(reviews))
	for _, r := range reviews {
		set[r.ProductID] = struct{}{}
	}
	return set, nil
}
