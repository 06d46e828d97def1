package handlers

import (
	"mime/multipart"
	"strconv"
	"strings"

	"shopfront/internal/apperror"
	"shopfront/internal/middleware"
	"shopfront/internal/services"

	"github.com/gofiber/fiber/v2"
)

const maxReviewImageBytes = 5 << 20

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	service *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes registers the review routes.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, userAuth fiber.Handler) {
	reviewRoutes := router.Group("/review")
	reviewRoutes.Post("/add", userAuth, h.HandleAddReview)
	reviewRoutes.Get("/product/:productId", h.HandleProductReviews)
	reviewRoutes.Get("/eligible", userAuth, h.HandleEligible)
}

// HandleAddReview accepts a multipart form with productId, optional orderId,
// rating, comment and an optional image file.
func (h *ReviewHandler) HandleAddReview(c *fiber.Ctx) error {
	input := services.AddReviewInput{
		UserID:    middleware.UserID(c),
		ProductID: strings.TrimSpace(c.FormValue("productId")),
		OrderID:   strings.TrimSpace(c.FormValue("orderId")),
		Comment:   c.FormValue("comment"),
	}

	if raw := strings.TrimSpace(c.FormValue("rating")); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			return apperror.Validation("Rating must be a whole number between 1 and 5")
		}
		input.Rating = &rating
	}

	file, err := reviewImage(c)
	if err != nil {
		return err
	}
	if file != nil {
		body, err := file.Open()
		if err != nil {
			return apperror.Validation("Could not read uploaded image")
		}
		defer body.Close()

		input.Image = &services.ImageUpload{
			Filename:    file.Filename,
			ContentType: file.Header.Get(fiber.HeaderContentType),
			Size:        file.Size,
			Body:        body,
		}
	}

	review, err := h.service.AddReview(c.UserContext(), input)
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"message": "Review added successfully", "review": review})
}

// reviewImage returns the uploaded "image" part, or nil when the request
// carries none.
func reviewImage(c *fiber.Ctx) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperror.Validation("Invalid multipart form")
	}
	files := form.File["image"]
	if len(files) == 0 {
		return nil, nil
	}

	file := files[0]
	if !strings.HasPrefix(file.Header.Get(fiber.HeaderContentType), "image/") {
		return nil, apperror.Validation("Only image files are allowed")
	}
	if file.Size > maxReviewImageBytes {
		return nil, apperror.Validation("Image must be 5MB or smaller")
	}
	return file, nil
}

// HandleProductReviews lists a product's reviews with count and average rating.
func (h *ReviewHandler) HandleProductReviews(c *fiber.Ctx) error {
	summary, err := h.service.ListReviewsForProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		return err
	}
	return success(c, fiber.Map{
		"reviews":       summary.Reviews,
		"totalReviews":  summary.TotalReviews,
		"averageRating": summary.AverageRating,
	})
}

// HandleEligible lists the delivered products the user can still review.
func (h *ReviewHandler) HandleEligible(c *fiber.Ctx) error {
	products, err := h.service.EligibleProducts(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"products": products})
}
