package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Checker-Finance/bonds-service/internal/store"
)

// RegisterRoutes registers all HTTP routes on the Fiber app.
func RegisterRoutes(app *fiber.App, st store.Store, h *Handler, ah *AdminHandler) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		status := "ok"
		code := fiber.StatusOK
		checks := map[string]string{"store": "ok"}
		if err := st.HealthCheck(healthCtx); err != nil {
			checks["store"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// API routes. Static segments are registered before the :id routes so
	// /bonds/compare and friends never match as an id.
	v1 := app.Group("/api/v1")
	v1.Get("/bonds", h.ListBonds)
	v1.Get("/bonds/filter-options", h.FilterOptions)
	v1.Get("/bonds/category/:name", h.ListBondsByCategory)
	v1.Get("/bonds/type/:type", h.ListBondsByType)
	v1.Get("/bonds/issuer/:company/popular", h.IssuerPopularBonds)
	v1.Get("/bonds/recommended/:term", h.RecommendedBonds)
	v1.Post("/bonds/compare", h.CompareBonds)
	v1.Get("/bonds/:id", h.GetBond)
	v1.Get("/bonds/:id/compare-picks", h.ComparePicks)

	v1.Post("/bonds/categories", requireAdmin, ah.UpdateCategory)
	v1.Post("/sync", requireAdmin, ah.TriggerSync)
}
