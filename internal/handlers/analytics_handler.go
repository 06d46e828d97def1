package handlers

import (
	"shopfront/internal/analytics"
	"shopfront/internal/apperror"
	"shopfront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const defaultAnalyticsDays = 30

// AnalyticsHandler serves the admin analytics and seller performance views.
type AnalyticsHandler struct {
	service  *services.AnalyticsService
	validate *validator.Validate
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(service *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, validate: validator.New()}
}

// RegisterRoutes registers the admin-only analytics routes.
func (h *AnalyticsHandler) RegisterRoutes(router fiber.Router, adminAuth fiber.Handler) {
	router.Get("/analytics/summary", adminAuth, h.HandleSummary)
	router.Get("/analytics/dashboard", adminAuth, h.HandleDashboard)
	router.Get("/seller/performance", adminAuth, h.HandleSellerPerformance)
}

// HandleSummary accepts days (default 30), status, paymentMethod and dateRange
// query parameters.
func (h *AnalyticsHandler) HandleSummary(c *fiber.Ctx) error {
	filter := analytics.OrderFilter{Days: defaultAnalyticsDays}
	if err := c.QueryParser(&filter); err != nil {
		return apperror.Validation("Invalid query parameters")
	}
	if err := h.validate.Struct(filter); err != nil {
		return apperror.InvalidInput(err)
	}

	summary, err := h.service.Summary(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"analytics": summary})
}

// HandleDashboard returns the dashboard overview.
func (h *AnalyticsHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"dashboard": dashboard})
}

// HandleSellerPerformance returns per-seller revenue, over every order unless
// days is given.
func (h *AnalyticsHandler) HandleSellerPerformance(c *fiber.Ctx) error {
	days := c.QueryInt("days", 0)
	sellers, err := h.service.SellerPerformance(c.UserContext(), days)
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"sellers": sellers})
}
