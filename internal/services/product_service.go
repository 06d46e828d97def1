package services

import (
	"context"
	"errors"

	"shopfront/internal/apperror"
	"shopfront/internal/models"
	"shopfront/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
	log      *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, log *zap.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: validator.New(),
		log:      log,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to list products", err)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if id == "" {
		return nil, apperror.Validation("productId is required")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productError(err, "Failed to load product")
	}
	return product, nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return apperror.InvalidInput(err)
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return apperror.Internal("Failed to add product", err)
	}
	s.log.Info("product added", zap.String("product_id", product.ID), zap.String("seller", product.SellerName))
	return nil
}

// UpdateProduct replaces an existing product. The listing date is kept when
// the update does not carry one.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		return apperror.Validation("id is required")
	}
	if err := s.validate.Struct(product); err != nil {
		return apperror.InvalidInput(err)
	}

	existing, err := s.repo.GetByID(ctx, product.ID)
	if err != nil {
		return productError(err, "Failed to load product")
	}
	if product.Date.IsZero() {
		product.Date = existing.Date
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return productError(err, "Failed to update product")
	}
	s.log.Info("product updated", zap.String("product_id", product.ID))
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return apperror.Validation("id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return productError(err, "Failed to remove product")
	}
	s.log.Info("product removed", zap.String("product_id", id))
	return nil
}

func productError(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.NotFound("Product not found")
	}
	return apperror.Internal(msg, err)
}
