package directory

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/internal/store"
	"github.com/Checker-Finance/bonds-service/pkg/model"
	"github.com/Checker-Finance/bonds-service/pkg/secrets"
)

// Backend is the subset of the store the resolver reads: the platform's
// cached company list out of Redis, and the catalog itself as a fallback.
type Backend interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	DistinctStrings(ctx context.Context, field string, f store.BondFilter) ([]string, error)
}

// Resolver canonicalizes a finance-company reference (directory id or
// display name) into a Company record. The company list is maintained by
// the platform's company service and shared through Redis.
type Resolver struct {
	logger  *zap.Logger
	backend Backend
	listKey string
	cache   *secrets.Cache[model.Company]
}

func NewResolver(logger *zap.Logger, backend Backend, listKey string) *Resolver {
	return &Resolver{
		logger:  logger,
		backend: backend,
		listKey: listKey,
		cache:   secrets.NewCache[model.Company](5 * time.Minute),
	}
}

// Resolve returns the canonical company record for idOrName, or (nil, nil)
// when no company matches. Hits are cached in-process briefly so repeated
// lookups for the same issuer skip the Redis round trip.
func (r *Resolver) Resolve(ctx context.Context, idOrName string) (*model.Company, error) {
	needle := strings.TrimSpace(idOrName)
	if needle == "" {
		return nil, nil
	}

	cacheKey := strings.ToLower(needle)
	if c, ok := r.cache.Get(cacheKey); ok {
		return &c, nil
	}

	var companies []model.Company
	found, err := r.backend.GetJSON(ctx, r.listKey, &companies)
	if err != nil {
		return nil, err
	}
	if found {
		for _, c := range companies {
			if c.ID == needle ||
				strings.EqualFold(c.Name, needle) ||
				strings.EqualFold(c.DisplayName, needle) {
				r.cache.Put(cacheKey, c)
				return &c, nil
			}
		}
		return nil, nil
	}

	// Cache key absent: fall back to the issuer names present in the catalog.
	r.logger.Debug("directory.company_list_miss", zap.String("key", r.listKey))
	names, err := r.backend.DistinctStrings(ctx, "financeCompanyName", store.ActiveOnly())
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if strings.EqualFold(name, needle) {
			c := model.Company{Name: name, DisplayName: name}
			r.cache.Put(cacheKey, c)
			return &c, nil
		}
	}
	return nil, nil
}
