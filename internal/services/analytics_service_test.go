package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopfront/internal/analytics"
	"shopfront/internal/apperror"
	"shopfront/internal/models"
	"shopfront/internal/repositories"
	"shopfront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsService(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	orders := repositories.NewMockOrderRepository()
	products := repositories.NewMockProductRepository()
	require.NoError(t, products.Create(ctx, &models.Product{ID: "p1", Name: "Linen Shirt", Category: "Men", SellerName: "Acme"}))
	require.NoError(t, products.Create(ctx, &models.Product{ID: "p2", Name: "Kids Tee", Category: "Kids", SellerName: "Tiny Co"}))

	for _, o := range []*models.Order{
		{Status: models.StatusDelivered, PaymentMethod: models.PaymentCOD, Date: now.AddDate(0, 0, -2), Amount: 200,
			Items: []models.OrderItem{{ProductID: "p1", Price: 100, Quantity: 2}}},
		{Status: models.StatusShipped, PaymentMethod: models.PaymentCard, Date: now.AddDate(0, 0, -40), Amount: 30,
			Items: []models.OrderItem{{ProductID: "p2", Price: 30, Quantity: 1}}},
	} {
		require.NoError(t, orders.Create(ctx, o))
	}

	service := services.NewAnalyticsService(orders, products).WithClock(func() time.Time { return now })

	summary, err := service.Summary(ctx, analytics.OrderFilter{Days: 30})
	require.NoError(t, err)
	assert.Equal(t, analytics.GroupSales{Name: "Men", Revenue: 200, Quantity: 2}, summary.SalesByCategory[0])
	assert.Equal(t, []analytics.StatusCount{{Status: models.StatusDelivered, Count: 1}}, summary.OrderStatusDistribution)
	assert.Len(t, summary.MonthlyTrends, 6)

	sellers, err := service.SellerPerformance(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sellers, 2)
	assert.Equal(t, 200.0, sellers[0].Revenue)
	assert.Equal(t, 30.0, sellers[1].Revenue)

	sellers, err = service.SellerPerformance(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sellers[1].Revenue)

	_, err = service.SellerPerformance(ctx, -1)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	dashboard, err := service.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 230.0, dashboard.TotalRevenue)
	assert.Equal(t, 2, dashboard.TotalOrders)
}

type failingOrderRepository struct {
	repositories.OrderRepository
}

func (failingOrderRepository) GetAll(context.Context) ([]models.Order, error) {
	return nil, errors.New("connection reset")
}

func TestAnalyticsService_LoadFailure(t *testing.T) {
	service := services.NewAnalyticsService(failingOrderRepository{}, repositories.NewMockProductRepository())

	_, err := service.Dashboard(context.Background())
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))
}
