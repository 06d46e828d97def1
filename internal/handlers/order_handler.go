package handlers

import (
	"encoding/json"
	"strconv"

	"shopfront/internal/analytics"
	"shopfront/internal/middleware"
	"shopfront/internal/models"
	"shopfront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes. Admin routes and user routes
// are guarded by their respective token checks.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, userAuth, adminAuth fiber.Handler) {
	orderRoutes := router.Group("/order")

	orderRoutes.Post("/list", adminAuth, h.HandleListOrders)
	orderRoutes.Post("/status", adminAuth, h.HandleUpdateStatus)
	orderRoutes.Get("/unviewed-count", adminAuth, h.HandleUnviewedCount)
	orderRoutes.Get("/unviewed", adminAuth, h.HandleUnviewed)
	orderRoutes.Post("/mark-viewed", adminAuth, h.HandleMarkViewed)

	orderRoutes.Post("/place", userAuth, h.HandlePlaceOrder)
	orderRoutes.Post("/stripe", userAuth, h.HandlePlaceOrderStripe)
	orderRoutes.Post("/userOrders", userAuth, h.HandleUserOrders)
	orderRoutes.Post("/verifyStripe", userAuth, h.HandleVerifyStripe)
}

// HandleListOrders returns every order, optionally filtered by
// {status, paymentMethod, dateRange}.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	var filter analytics.OrderFilter
	if len(c.Body()) > 0 {
		if err := bind(c, h.validate, &filter); err != nil {
			return err
		}
	}

	orders, err := h.service.ListOrders(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"orders": orders})
}

type updateStatusRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

// HandleUpdateStatus sets the status of an order.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	if err := h.service.UpdateStatus(c.UserContext(), req.OrderID, req.Status); err != nil {
		return err
	}
	return success(c, fiber.Map{"message": "Status Updated"})
}

// HandleUnviewedCount returns the admin notification badge count.
func (h *OrderHandler) HandleUnviewedCount(c *fiber.Ctx) error {
	count, err := h.service.CountUnviewed(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"count": count})
}

// HandleUnviewed returns the orders behind the notification badge.
func (h *OrderHandler) HandleUnviewed(c *fiber.Ctx) error {
	orders, err := h.service.ListUnviewed(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"orders": orders})
}

type markViewedRequest struct {
	OrderIDs []string `json:"orderIds" validate:"required,min=1,dive,required"`
}

// HandleMarkViewed flags orders as seen.
func (h *OrderHandler) HandleMarkViewed(c *fiber.Ctx) error {
	var req markViewedRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	if _, err := h.service.MarkViewed(c.UserContext(), req.OrderIDs); err != nil {
		return err
	}
	return success(c, nil)
}

type placeOrderRequest struct {
	Items         []services.OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Address       models.Address            `json:"address" validate:"required"`
	PaymentMethod string                    `json:"paymentMethod" validate:"required"`
}

func (r placeOrderRequest) input(userID string) services.PlaceOrderInput {
	return services.PlaceOrderInput{
		UserID:        userID,
		Items:         r.Items,
		Address:       r.Address,
		PaymentMethod: r.PaymentMethod,
	}
}

// HandlePlaceOrder places an order for the authenticated user.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req placeOrderRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	order, err := h.service.PlaceOrder(c.UserContext(), req.input(middleware.UserID(c)))
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"message": "Order Placed", "orderId": order.ID})
}

// HandlePlaceOrderStripe places a card order and returns the checkout URL.
func (h *OrderHandler) HandlePlaceOrderStripe(c *fiber.Ctx) error {
	var req placeOrderRequest
	req.PaymentMethod = models.PaymentCard
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	order, url, err := h.service.PlaceOrderStripe(c.UserContext(), req.input(middleware.UserID(c)))
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"orderId": order.ID, "session_url": url})
}

// HandleUserOrders returns the authenticated user's orders.
func (h *OrderHandler) HandleUserOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListUserOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"orders": orders})
}

// flag accepts a JSON boolean or its string form, as sent by the
// storefront's verify page.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*f = flag(b)
	return nil
}

type verifyStripeRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Success flag   `json:"success"`
}

// HandleVerifyStripe records the outcome of a Stripe checkout.
func (h *OrderHandler) HandleVerifyStripe(c *fiber.Ctx) error {
	var req verifyStripeRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	if err := h.service.VerifyPayment(c.UserContext(), middleware.UserID(c), req.OrderID, bool(req.Success)); err != nil {
		return err
	}
	if !req.Success {
		return c.JSON(fiber.Map{"success": false, "message": "Payment was not completed"})
	}
	return success(c, nil)
}
