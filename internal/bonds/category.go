package bonds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/internal/metrics"
	"github.com/Checker-Finance/bonds-service/pkg/model"
)

// UpdateCategory applies an idempotent batch of membership changes to a
// named category: removals first, then additions, with duplicates collapsed
// keeping first occurrence. A category that does not exist yet is created.
// The full updated membership is returned along with whether the category
// was newly created.
func (s *Service) UpdateCategory(ctx context.Context, name string, addIDs, removeIDs []int64) (*model.BondCategory, bool, error) {
	defer metrics.ObserveQuery("update_category", time.Now())

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, false, &ValidationError{Msg: "categoryName is required"}
	}
	if len(addIDs) == 0 && len(removeIDs) == 0 {
		return nil, false, &ValidationError{Msg: "at least one of addIds or removeIds is required"}
	}

	cat, err := s.store.GetCategory(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("get category: %w", err)
	}

	created := cat == nil
	if created {
		cat = &model.BondCategory{CategoryName: name}
	}

	drop := make(map[int64]struct{}, len(removeIDs))
	for _, id := range removeIDs {
		drop[id] = struct{}{}
	}

	next := make([]int64, 0, len(cat.BondIDs)+len(addIDs))
	kept := make(map[int64]struct{}, len(cat.BondIDs)+len(addIDs))
	for _, id := range cat.BondIDs {
		if _, gone := drop[id]; gone {
			continue
		}
		if _, dup := kept[id]; dup {
			continue
		}
		kept[id] = struct{}{}
		next = append(next, id)
	}
	// Removals apply before additions, so an id in both lists ends up added.
	for _, id := range addIDs {
		if _, dup := kept[id]; dup {
			continue
		}
		kept[id] = struct{}{}
		next = append(next, id)
	}
	cat.BondIDs = next

	if err := s.store.SaveCategory(ctx, *cat); err != nil {
		return nil, false, fmt.Errorf("save category: %w", err)
	}

	s.logger.Info("bonds.category_updated",
		zap.String("category", name),
		zap.Bool("created", created),
		zap.Int("members", len(cat.BondIDs)))
	return cat, created, nil
}
