package handlers

import (
	"shopfront/internal/models"
	"shopfront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service, validate: validator.New()}
}

// RegisterRoutes registers the product routes. Mutations require an admin token.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, adminAuth fiber.Handler) {
	productRoutes := router.Group("/product")
	productRoutes.Get("/list", h.HandleListProducts)
	productRoutes.Post("/single", h.HandleSingleProduct)
	productRoutes.Post("/add", adminAuth, h.HandleAddProduct)
	productRoutes.Post("/update", adminAuth, h.HandleUpdateProduct)
	productRoutes.Post("/remove", adminAuth, h.HandleRemoveProduct)
}

// HandleListProducts returns the whole catalog.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"products": products})
}

type singleProductRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// HandleSingleProduct returns one product.
func (h *ProductHandler) HandleSingleProduct(c *fiber.Ctx) error {
	var req singleProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	product, err := h.service.GetProductByID(c.UserContext(), req.ProductID)
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"product": product})
}

// HandleAddProduct adds a product to the catalog.
func (h *ProductHandler) HandleAddProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := bind(c, h.validate, &product); err != nil {
		return err
	}
	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return err
	}
	return success(c, fiber.Map{"message": "Product Added", "product": product})
}

// HandleUpdateProduct replaces a catalog product identified by its _id.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := bind(c, h.validate, &product); err != nil {
		return err
	}
	if err := h.service.UpdateProduct(c.UserContext(), &product); err != nil {
		return err
	}
	return success(c, fiber.Map{"message": "Product Updated", "product": product})
}

type removeProductRequest struct {
	ID string `json:"id" validate:"required"`
}

// HandleRemoveProduct removes a product from the catalog.
func (h *ProductHandler) HandleRemoveProduct(c *fiber.Ctx) error {
	var req removeProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	if err := h.service.DeleteProduct(c.UserContext(), req.ID); err != nil {
		return err
	}
	return success(c, fiber.Map{"message": "Product Removed"})
}
