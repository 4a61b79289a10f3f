package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/internal/bonds"
	"github.com/Checker-Finance/bonds-service/pkg/model"
)

// CategoryService defines the category maintenance operation.
type CategoryService interface {
	UpdateCategory(ctx context.Context, name string, addIDs, removeIDs []int64) (*model.BondCategory, bool, error)
}

// SyncRunner triggers a single reconciliation run.
type SyncRunner interface {
	ReconcileOnce(ctx context.Context) (*model.SyncSummary, error)
}

// AdminHandler handles the mutating endpoints. Callers reach these through
// the platform gateway, which injects the caller's role header.
type AdminHandler struct {
	logger     *zap.Logger
	categories CategoryService
	syncer     SyncRunner
}

func NewAdminHandler(logger *zap.Logger, categories CategoryService, syncer SyncRunner) *AdminHandler {
	return &AdminHandler{logger: logger, categories: categories, syncer: syncer}
}

// requireAdmin gates a handler on the gateway-injected role header.
func requireAdmin(c *fiber.Ctx) error {
	if c.Get("X-User-Role") != "admin" {
		return failure(c, fiber.StatusForbidden, "admin role required")
	}
	return c.Next()
}

// UpdateCategory handles POST /api/v1/bonds/categories.
func (h *AdminHandler) UpdateCategory(c *fiber.Ctx) error {
	var req CategoryUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	cat, created, err := h.categories.UpdateCategory(c.Context(), req.CategoryName, req.AddIDs, req.RemoveIDs)
	if err != nil {
		if !bonds.IsValidation(err) {
			h.logger.Error("api.update_category_failed",
				zap.String("category", req.CategoryName),
				zap.Error(err))
		}
		return failureFor(c, err)
	}

	code := fiber.StatusOK
	msg := "category updated"
	if created {
		code = fiber.StatusCreated
		msg = "category created"
	}
	return successMsg(c, code, msg, cat)
}

// TriggerSync handles POST /api/v1/sync. A run already in flight yields 409.
func (h *AdminHandler) TriggerSync(c *fiber.Ctx) error {
	summary, err := h.syncer.ReconcileOnce(c.Context())
	if err != nil {
		h.logger.Error("api.sync_trigger_failed", zap.Error(err))
		return failureFor(c, err)
	}
	return successMsg(c, fiber.StatusOK, "sync complete", summary)
}
