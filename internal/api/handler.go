package api

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/internal/bonds"
	"github.com/Checker-Finance/bonds-service/pkg/model"
)

// BondService defines the catalog operations the handler exposes.
type BondService interface {
	ListBonds(ctx context.Context, req bonds.ListRequest) (*bonds.ListResult, error)
	GetBondByID(ctx context.Context, id int64) (*model.Bond, error)
	GetBondsByCategory(ctx context.Context, req bonds.ListRequest) (*bonds.ListResult, error)
	GetBondListByType(ctx context.Context, typ, userID string, page, limit int) (*bonds.ListResult, error)
	GetIssuerPopularBonds(ctx context.Context, companyRef string, page, limit int) (*bonds.SummaryListResult, error)
	CompareBonds(ctx context.Context, ids []int64) (*bonds.ComparisonResult, error)
	GetRecommendedBonds(ctx context.Context, term string, page, limit int) (*bonds.ListResult, error)
	GetComparePicks(ctx context.Context, id int64) (*bonds.ComparePicksResult, error)
	GetFilterOptions(ctx context.Context, companyName string) (*bonds.FilterOptions, error)
}

// Handler handles the catalog's read-side HTTP requests.
type Handler struct {
	logger  *zap.Logger
	service BondService
}

func NewHandler(logger *zap.Logger, service BondService) *Handler {
	return &Handler{logger: logger, service: service}
}

// queryDecimal parses an optional decimal query parameter.
func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &bonds.ValidationError{Msg: key + " must be a number"}
	}
	return &d, nil
}

// queryIntPtr parses an optional integer query parameter.
func queryIntPtr(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &bonds.ValidationError{Msg: key + " must be an integer"}
	}
	return &n, nil
}

// parseListRequest collects the common filter/sort/pagination query
// parameters shared by the listing endpoints.
func parseListRequest(c *fiber.Ctx) (bonds.ListRequest, error) {
	req := bonds.ListRequest{
		FinanceCompanyName: c.Query("financeCompanyName"),
		Rating:             c.Query("rating"),
		SortBy:             c.Query("sortBy"),
		SortOrder:          c.Query("sortOrder"),
		Page:               c.QueryInt("page", 1),
		Limit:              c.QueryInt("limit", 0),
	}

	var err error
	if req.MinInterestRate, err = queryDecimal(c, "minInterestRate"); err != nil {
		return req, err
	}
	if req.MaxInterestRate, err = queryDecimal(c, "maxInterestRate"); err != nil {
		return req, err
	}
	if req.MinEffectiveYield, err = queryDecimal(c, "minEffectiveYield"); err != nil {
		return req, err
	}
	if req.MaxEffectiveYield, err = queryDecimal(c, "maxEffectiveYield"); err != nil {
		return req, err
	}
	if req.TenureMonths, err = queryIntPtr(c, "tenureMonths"); err != nil {
		return req, err
	}
	return req, nil
}

// paramBondID parses the :id path segment.
func paramBondID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &bonds.ValidationError{Msg: "id must be a positive integer"}
	}
	return id, nil
}

// ListBonds handles GET /api/v1/bonds.
func (h *Handler) ListBonds(c *fiber.Ctx) error {
	req, err := parseListRequest(c)
	if err != nil {
		return failureFor(c, err)
	}

	res, err := h.service.ListBonds(c.Context(), req)
	if err != nil {
		h.logger.Error("api.list_bonds_failed", zap.Error(err))
		return failureFor(c, err)
	}
	return success(c, fiber.StatusOK, res)
}

// GetBond handles GET /api/v1/bonds/:id.
func (h *Handler) GetBond(c *fiber.Ctx) error {
	id, err := paramBondID(c)
	if err != nil {
		return failureFor(c, err)
	}

	b, err := h.service.GetBondByID(c.Context(), id)
	if err != nil {
		if !bonds.IsNotFound(err) {
			h.logger.Error("api.get_bond_failed", zap.Int64("bond_id", id), zap.Error(err))
		}
		return failureFor(c, err)
	}
	return success(c, fiber.StatusOK, b)
}

// ListBondsByCategory handles GET /api/v1/bonds/category/:name. The exclude
// query flag flips the mode from inclusion to exclusion.
func (h *Handler) ListBondsByCategory(c *fiber.Ctx) error {
	req, err := parseListRequest(c)
	if err != nil {
		return failureFor(c, err)
	}
	req.CategoryName = c.Params("name")
	req.IncludeCategory = !c.QueryBool("exclude", false)

	res, err := h.service.GetBondsByCategory(c.Context(), req)
	if err != nil {
		if !bonds.IsValidation(err) {
			h.logger.Error("api.list_by_category_failed",
				zap.String("category", req.CategoryName),
				zap.Error(err))
		}
		return failureFor(c, err)
	}
	return success(c, fiber.StatusOK, res)
}

// ListBondsByType handles GET /api/v1/bonds/type/:type.
func (h *Handler) ListBondsByType(c *fiber.Ctx) error {
	typ := c.Params("type")
	userID := c.Get("X-User-Id", c.Query("userId"))

	res, err := h.service.GetBondListByType(c.Context(), typ, userID,
		c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		if !bonds.IsValidation(err) {
			h.logger.Error("api.list_by_type_failed", zap.String("type", typ), zap.Error(err))
		}
		return failureFor(c, err)
	}
	return success(c, fiber.StatusOK, res)
}

// IssuerPopularBonds handles GET /api/v1/bonds/issuer/:company/popular.
func (h *Handler) IssuerPopularBonds(c *fiber.Ctx) error {
	companyRef := c.Params("company")

	res, err := h.service.GetIssuerPopularBonds(c.Context(), companyRef,
		c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		if !bonds.IsNotFound(err) {
			h.logger.Error("api.issuer_popular_failed",
				zap.String("company", companyRef),
				zap.Error(err))
		}
		return failureFor(c, err)
	}
	return success(c, fiber.StatusOK, res)
}

// CompareBonds handles POST /api/v1/bonds/compare.
func (h *Handler) CompareBonds(c *fiber.Ctx) error {
	var req CompareRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	res, err := h.service.CompareBonds(c.Context(), req.BondIDs)
	if err != nil {
		if !bonds.IsValidation(err) {
			h.logger.Error("api.compare_failed", zap.Error(err))
		}
		return failureFor(c, err)
	}
	return successMsg(c, fiber.StatusOK, res.Message, res)
}

// RecommendedBonds handles GET /api/v1/bonds/recommended/:term.
func (h *Handler) RecommendedBonds(c *fiber.Ctx) error {
	term := c.Params("term")

	res, err := h.service.GetRecommendedBonds(c.Context(), term,
		c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		if !bonds.IsValidation(err) {
			h.logger.Error("api.recommended_failed", zap.String("term", term), zap.Error(err))
		}
		return failureFor(c, err)
	}
	return success(c, fiber.StatusOK, res)
}

// ComparePicks handles GET /api/v1/bonds/:id/compare-picks.
func (h *Handler) ComparePicks(c *fiber.Ctx) error {
	id, err := paramBondID(c)
	if err != nil {
		return failureFor(c, err)
	}

	res, err := h.service.GetComparePicks(c.Context(), id)
	if err != nil {
		if !bonds.IsNotFound(err) {
			h.logger.Error("api.compare_picks_failed", zap.Int64("bond_id", id), zap.Error(err))
		}
		return failureFor(c, err)
	}
	return success(c, fiber.StatusOK, res)
}

// FilterOptions handles GET /api/v1/bonds/filter-options.
func (h *Handler) FilterOptions(c *fiber.Ctx) error {
	res, err := h.service.GetFilterOptions(c.Context(), c.Query("financeCompanyName"))
	if err != nil {
		h.logger.Error("api.filter_options_failed", zap.Error(err))
		return failureFor(c, err)
	}
	return success(c, fiber.StatusOK, res)
}
