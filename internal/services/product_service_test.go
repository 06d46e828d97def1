package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shopfront/internal/apperror"
	"shopfront/internal/models"
	"shopfront/internal/repositories"
	"shopfront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestProductService_GetAllProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, zap.NewNop())

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", Price: 10.0, Category: "Men"},
		{ID: "2", Name: "Product B", Price: 20.0, Category: "Women"},
	}

	mockRepo.On("GetAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(ctx)

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, zap.NewNop())

	expectedProduct := &models.Product{ID: "1", Name: "Product A", Price: 10.0}

	// Test successful retrieval
	mockRepo.On("GetByID", ctx, "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)
	mockRepo.AssertExpectations(t)

	// Test product not found
	mockRepo.On("GetByID", ctx, "99").Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrNotFound)).Once()
	product, err = service.GetProductByID(ctx, "99")
	assert.Nil(t, product)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	mockRepo.AssertExpectations(t)

	// Test missing id
	_, err = service.GetProductByID(ctx, "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, zap.NewNop())

	newProduct := &models.Product{Name: "New Product", Price: 15.0, Category: "Kids", SellerName: "Acme"}

	mockRepo.On("Create", ctx, newProduct).Return(nil).Once()
	err := service.CreateProduct(ctx, newProduct)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Invalid products never reach the repository
	err = service.CreateProduct(ctx, &models.Product{Name: "No", Price: 0})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, zap.NewNop())

	listed := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	id := "7c1e8d8a-3a4b-4c2d-9e1f-0a1b2c3d4e5f"
	product := &models.Product{ID: id, Name: "Updated Product", Price: 25.0, Category: "Men"}

	mockRepo.On("GetByID", ctx, id).Return(&models.Product{ID: id, Date: listed}, nil).Once()
	mockRepo.On("Update", ctx, product).Return(nil).Once()
	assert.NoError(t, service.UpdateProduct(ctx, product))
	assert.Equal(t, listed, product.Date)
	mockRepo.AssertExpectations(t)

	missing := &models.Product{ID: "0f0e0d0c-0b0a-4909-8807-060504030201", Name: "Gone Product", Price: 5.0, Category: "Men"}
	mockRepo.On("GetByID", ctx, missing.ID).Return(nil, fmt.Errorf("product: %w", repositories.ErrNotFound)).Once()
	err := service.UpdateProduct(ctx, missing)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	mockRepo.AssertNumberOfCalls(t, "Update", 1)
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, zap.NewNop())

	mockRepo.On("Delete", ctx, "1").Return(nil).Once()
	assert.NoError(t, service.DeleteProduct(ctx, "1"))
	mockRepo.AssertExpectations(t)

	mockRepo.On("Delete", ctx, "99").Return(fmt.Errorf("product with ID 99: %w", repositories.ErrNotFound)).Once()
	err := service.DeleteProduct(ctx, "99")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	mockRepo.AssertExpectations(t)
}
