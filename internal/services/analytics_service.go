package services

import (
	"context"
	"time"

	"shopfront/internal/analytics"
	"shopfront/internal/apperror"
	"shopfront/internal/models"
	"shopfront/internal/repositories"

	"golang.org/x/sync/errgroup"
)

// AnalyticsService loads orders and the catalog and hands them to the
// analytics package.
type AnalyticsService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	now         func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository) *AnalyticsService {
	return &AnalyticsService{orderRepo: orderRepo, productRepo: productRepo, now: time.Now}
}

// WithClock replaces the time source used for date windows.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// Summary computes the analytics summary over the orders matching filter.
func (s *AnalyticsService) Summary(ctx context.Context, filter analytics.OrderFilter) (*analytics.Summary, error) {
	orders, products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	summary := analytics.BuildSummary(orders, products, filter, s.now())
	return &summary, nil
}

// Dashboard computes the admin dashboard overview.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*analytics.Dashboard, error) {
	orders, products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	dashboard := analytics.BuildDashboard(orders, products, s.now())
	return &dashboard, nil
}

// SellerPerformance returns per-seller revenue over the trailing days, or
// over every order when days is zero.
func (s *AnalyticsService) SellerPerformance(ctx context.Context, days int) ([]analytics.SellerStats, error) {
	if days < 0 {
		return nil, apperror.Validation("days must not be negative")
	}
	orders, products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := analytics.FilterOrders(orders, analytics.OrderFilter{Days: days}, s.now())
	return analytics.SellerPerformance(filtered, products), nil
}

func (s *AnalyticsService) load(ctx context.Context) ([]models.Order, []models.Product, error) {
	var (
		orders   []models.Order
		products []models.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orderRepo.GetAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.productRepo.GetAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, apperror.Internal("Failed to load analytics data", err)
	}
	return orders, products, nil
}
