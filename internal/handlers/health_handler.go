package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports the reachability of the service's dependencies.
type HealthHandler struct {
	checks        map[string]HealthCheck
	exposeDetails bool
}

// NewHealthHandler creates a new HealthHandler. Failed checks report their
// error text only when exposeDetails is set, and "down" otherwise.
func NewHealthHandler(checks map[string]HealthCheck, exposeDetails bool) *HealthHandler {
	return &HealthHandler{checks: checks, exposeDetails: exposeDetails}
}

// HandleHealth runs every check and answers 503 when any fails.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := fiber.StatusOK
	deps := fiber.Map{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			deps[name] = "down"
			if h.exposeDetails {
				deps[name] = err.Error()
			}
			status = fiber.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	return c.Status(status).JSON(fiber.Map{
		"success":      status == fiber.StatusOK,
		"time":         time.Now().Format(time.RFC3339),
		"dependencies": deps,
	})
}
