package bonds

import (
	"context"
	"sync"
	"time"

	"github.com/Checker-Finance/bonds-service/internal/store"
	"github.com/Checker-Finance/bonds-service/pkg/model"
)

// mockStore implements store.Store with overridable behavior per test and
// records mutating calls for assertions.
type mockStore struct {
	mu sync.Mutex

	getBondFn         func(ctx context.Context, id int64, activeOnly bool) (*model.Bond, error)
	findFn            func(ctx context.Context, q store.BondQuery) ([]model.Bond, int, error)
	upsertFn          func(ctx context.Context, b model.Bond, forceActive bool) (bool, error)
	bulkInactivateFn  func(ctx context.Context, keepIDs []int64) (int64, error)
	distinctStringsFn func(ctx context.Context, field string, f store.BondFilter) ([]string, error)
	distinctIntsFn    func(ctx context.Context, field string, f store.BondFilter) ([]int, error)
	aggregateFn       func(ctx context.Context, field string, f store.BondFilter) (store.NumericRange, error)
	getCategoryFn     func(ctx context.Context, name string) (*model.BondCategory, error)
	saveCategoryFn    func(ctx context.Context, cat model.BondCategory) error
	getJSONFn         func(ctx context.Context, key string, dest any) (bool, error)
	setJSONFn         func(ctx context.Context, key string, value any, ttl time.Duration) error

	upserts         []model.Bond
	inactivateCalls [][]int64
	savedCategories []model.BondCategory
	queries         []store.BondQuery
}

func (m *mockStore) GetBondByID(ctx context.Context, id int64, activeOnly bool) (*model.Bond, error) {
	if m.getBondFn != nil {
		return m.getBondFn(ctx, id, activeOnly)
	}
	return nil, nil
}

func (m *mockStore) FindBonds(ctx context.Context, q store.BondQuery) ([]model.Bond, int, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	if m.findFn != nil {
		return m.findFn(ctx, q)
	}
	return nil, 0, nil
}

func (m *mockStore) UpsertBond(ctx context.Context, b model.Bond, forceActive bool) (bool, error) {
	m.mu.Lock()
	m.upserts = append(m.upserts, b)
	m.mu.Unlock()
	if m.upsertFn != nil {
		return m.upsertFn(ctx, b, forceActive)
	}
	return true, nil
}

func (m *mockStore) BulkInactivate(ctx context.Context, keepIDs []int64) (int64, error) {
	m.mu.Lock()
	m.inactivateCalls = append(m.inactivateCalls, keepIDs)
	m.mu.Unlock()
	if m.bulkInactivateFn != nil {
		return m.bulkInactivateFn(ctx, keepIDs)
	}
	return 0, nil
}

func (m *mockStore) DistinctStrings(ctx context.Context, field string, f store.BondFilter) ([]string, error) {
	if m.distinctStringsFn != nil {
		return m.distinctStringsFn(ctx, field, f)
	}
	return nil, nil
}

func (m *mockStore) DistinctInts(ctx context.Context, field string, f store.BondFilter) ([]int, error) {
	if m.distinctIntsFn != nil {
		return m.distinctIntsFn(ctx, field, f)
	}
	return nil, nil
}

func (m *mockStore) AggregateRange(ctx context.Context, field string, f store.BondFilter) (store.NumericRange, error) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, field, f)
	}
	return store.NumericRange{}, nil
}

func (m *mockStore) GetCategory(ctx context.Context, name string) (*model.BondCategory, error) {
	if m.getCategoryFn != nil {
		return m.getCategoryFn(ctx, name)
	}
	return nil, nil
}

func (m *mockStore) SaveCategory(ctx context.Context, cat model.BondCategory) error {
	m.mu.Lock()
	m.savedCategories = append(m.savedCategories, cat)
	m.mu.Unlock()
	if m.saveCategoryFn != nil {
		return m.saveCategoryFn(ctx, cat)
	}
	return nil
}

func (m *mockStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if m.setJSONFn != nil {
		return m.setJSONFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if m.getJSONFn != nil {
		return m.getJSONFn(ctx, key, dest)
	}
	return false, nil
}

func (m *mockStore) HealthCheck(context.Context) error { return nil }
func (m *mockStore) Close() error                      { return nil }

func (m *mockStore) lastQuery() store.BondQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[len(m.queries)-1]
}
