package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/pkg/model"
)

// NumericRange is the result of a min/max aggregation. Valid is false when
// the filter matched no rows.
type NumericRange struct {
	Min   decimal.Decimal
	Max   decimal.Decimal
	Valid bool
}

// Store defines the persistence contract for the bond catalog: the bond
// collection, the category index, and the Redis cache side.
type Store interface {
	GetBondByID(ctx context.Context, id int64, activeOnly bool) (*model.Bond, error)
	FindBonds(ctx context.Context, q BondQuery) ([]model.Bond, int, error)
	UpsertBond(ctx context.Context, b model.Bond, forceActive bool) (inserted bool, err error)
	BulkInactivate(ctx context.Context, keepIDs []int64) (int64, error)
	DistinctStrings(ctx context.Context, field string, f BondFilter) ([]string, error)
	DistinctInts(ctx context.Context, field string, f BondFilter) ([]int, error)
	AggregateRange(ctx context.Context, field string, f BondFilter) (NumericRange, error)

	GetCategory(ctx context.Context, name string) (*model.BondCategory, error)
	SaveCategory(ctx context.Context, cat model.BondCategory) error

	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)

	HealthCheck(ctx context.Context) error
	Close() error
}

// HybridStore is a Postgres-backed store with a Redis cache side.
type HybridStore struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid connects to Redis and Postgres and returns the combined store.
func NewHybrid(redisAddr string, redisDB int, redisPass, pgURL string, poolCfg PGPoolConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		DB:       redisDB,
		Password: redisPass,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	cfg, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		return nil, fmt.Errorf("invalid pg config: %w", err)
	}
	if poolCfg.MaxConns > 0 {
		cfg.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		cfg.MinConns = poolCfg.MinConns
	}
	if poolCfg.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = poolCfg.MaxConnLifetime
	}
	if poolCfg.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = poolCfg.MaxConnIdleTime
	}
	if poolCfg.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = poolCfg.HealthCheckPeriod
	}
	pgPool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &HybridStore{redis: rdb, PG: pgPool, logger: logger}, nil
}

const bondSelectColumns = `
	id, name, scheme_name, description,
	interest_rate, effective_yield, min_amount, max_amount,
	tenure_months, tenure_days,
	finance_company_name, logo, rating,
	category, product_category, product_sub_category, finance_product_type,
	min_lots, max_lots, investment_amount,
	badges, isin, returns_type, status, subtitle,
	original_data, created_at, updated_at`

func scanBond(row pgx.Row) (*model.Bond, error) {
	var (
		b      model.Bond
		status string
	)
	err := row.Scan(
		&b.ID, &b.Name, &b.SchemeName, &b.Description,
		&b.InterestRate, &b.EffectiveYield, &b.MinAmount, &b.MaxAmount,
		&b.TenureMonths, &b.TenureDays,
		&b.FinanceCompanyName, &b.Logo, &b.Rating,
		&b.Category, &b.ProductCategory, &b.ProductSubCategory, &b.FinanceProductType,
		&b.MinLots, &b.MaxLots, &b.InvestmentAmount,
		&b.Badges, &b.ISIN, &b.ReturnsType, &status, &b.Subtitle,
		&b.OriginalData, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = model.BondStatus(status)
	return &b, nil
}

// GetBondByID looks a bond up by its external id. Returns (nil, nil) when no
// matching row exists.
func (s *HybridStore) GetBondByID(ctx context.Context, id int64, activeOnly bool) (*model.Bond, error) {
	q := `SELECT` + bondSelectColumns + `
		FROM catalog.bonds
		WHERE id = $1`
	args := []any{id}
	if activeOnly {
		q += ` AND status = $2`
		args = append(args, string(model.BondActive))
	}
	q += ` LIMIT 1;`

	b, err := scanBond(s.PG.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetBondByID scan failed: %w", err)
	}
	return b, nil
}

// FindBonds runs the general filter/sort/paginate query and returns the page
// of records plus the total count for the same filter.
func (s *HybridStore) FindBonds(ctx context.Context, q BondQuery) ([]model.Bond, int, error) {
	where, args := whereClause(q.Filter)

	countSQL := `SELECT COUNT(*) FROM catalog.bonds WHERE ` + where
	var total int
	if err := s.PG.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("FindBonds count failed: %w", err)
	}

	sql := `SELECT` + bondSelectColumns + ` FROM catalog.bonds WHERE ` + where
	if order := orderClause(q.Sort); order != "" {
		sql += " " + order
	}
	if q.Limit > 0 {
		sql += fmt.Sprintf(" OFFSET %d LIMIT %d", q.Offset, q.Limit)
	}

	rows, err := s.PG.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("FindBonds query failed: %w", err)
	}
	defer rows.Close()

	var bonds []model.Bond
	for rows.Next() {
		b, err := scanBond(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("FindBonds scan failed: %w", err)
		}
		bonds = append(bonds, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return bonds, total, nil
}

// UpsertBond inserts the bond or overwrites all mutable fields of the row
// with the same external id. The update never touches status unless
// forceActive is set; lifecycle transitions are the caller's decision.
func (s *HybridStore) UpsertBond(ctx context.Context, b model.Bond, forceActive bool) (bool, error) {
	if b.Status == "" {
		b.Status = model.BondActive
	}

	statusUpdate := ""
	if forceActive {
		statusUpdate = `status = 'ACTIVE',`
	}

	q := `
		INSERT INTO catalog.bonds (
			id, name, scheme_name, description,
			interest_rate, effective_yield, min_amount, max_amount,
			tenure_months, tenure_days,
			finance_company_name, logo, rating,
			category, product_category, product_sub_category, finance_product_type,
			min_lots, max_lots, investment_amount,
			badges, isin, returns_type, status, subtitle,
			original_data, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			scheme_name = EXCLUDED.scheme_name,
			description = EXCLUDED.description,
			interest_rate = EXCLUDED.interest_rate,
			effective_yield = EXCLUDED.effective_yield,
			min_amount = EXCLUDED.min_amount,
			max_amount = EXCLUDED.max_amount,
			tenure_months = EXCLUDED.tenure_months,
			tenure_days = EXCLUDED.tenure_days,
			finance_company_name = EXCLUDED.finance_company_name,
			logo = EXCLUDED.logo,
			rating = EXCLUDED.rating,
			category = EXCLUDED.category,
			product_category = EXCLUDED.product_category,
			product_sub_category = EXCLUDED.product_sub_category,
			finance_product_type = EXCLUDED.finance_product_type,
			min_lots = EXCLUDED.min_lots,
			max_lots = EXCLUDED.max_lots,
			investment_amount = EXCLUDED.investment_amount,
			badges = EXCLUDED.badges,
			isin = EXCLUDED.isin,
			returns_type = EXCLUDED.returns_type, ` + statusUpdate + `
			subtitle = EXCLUDED.subtitle,
			original_data = EXCLUDED.original_data,
			updated_at = now()
		RETURNING (xmax = 0) AS inserted;`

	originalData, err := json.Marshal(b.OriginalData)
	if err != nil {
		return false, fmt.Errorf("marshal original_data: %w", err)
	}

	var inserted bool
	err = s.PG.QueryRow(ctx, q,
		b.ID, b.Name, b.SchemeName, b.Description,
		b.InterestRate, b.EffectiveYield, b.MinAmount, b.MaxAmount,
		b.TenureMonths, b.TenureDays,
		b.FinanceCompanyName, b.Logo, b.Rating,
		b.Category, b.ProductCategory, b.ProductSubCategory, b.FinanceProductType,
		b.MinLots, b.MaxLots, b.InvestmentAmount,
		b.Badges, b.ISIN, b.ReturnsType, string(b.Status), b.Subtitle,
		originalData,
	).Scan(&inserted)
	if err != nil {
		s.logger.Error("store.pg.upsert_bond_failed",
			zap.Int64("bond_id", b.ID),
			zap.Error(err))
		return false, err
	}
	return inserted, nil
}

// BulkInactivate flips every currently-ACTIVE bond whose external id is not
// in keepIDs to INACTIVE and returns the number of rows changed.
func (s *HybridStore) BulkInactivate(ctx context.Context, keepIDs []int64) (int64, error) {
	tag, err := s.PG.Exec(ctx, `
		UPDATE catalog.bonds
		SET status = 'INACTIVE', updated_at = now()
		WHERE status = 'ACTIVE' AND NOT (id = ANY($1));
	`, keepIDs)
	if err != nil {
		s.logger.Error("store.pg.bulk_inactivate_failed", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DistinctStrings returns the distinct non-empty values of a queryable text
// field under the given filter, sorted ascending.
func (s *HybridStore) DistinctStrings(ctx context.Context, field string, f BondFilter) ([]string, error) {
	col, ok := ColumnFor(field)
	if !ok {
		return nil, fmt.Errorf("field %q is not queryable", field)
	}
	where, args := whereClause(f)

	q := fmt.Sprintf(`
		SELECT DISTINCT %s FROM catalog.bonds
		WHERE %s AND %s IS NOT NULL AND %s <> ''
		ORDER BY %s;`, col, where, col, col, col)

	rows, err := s.PG.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// DistinctInts returns the distinct non-zero values of a queryable integer
// field under the given filter, sorted ascending.
func (s *HybridStore) DistinctInts(ctx context.Context, field string, f BondFilter) ([]int, error) {
	col, ok := ColumnFor(field)
	if !ok {
		return nil, fmt.Errorf("field %q is not queryable", field)
	}
	where, args := whereClause(f)

	q := fmt.Sprintf(`
		SELECT DISTINCT %s FROM catalog.bonds
		WHERE %s AND %s IS NOT NULL AND %s <> 0
		ORDER BY %s;`, col, where, col, col, col)

	rows, err := s.PG.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// AggregateRange returns the min/max of a queryable numeric field under the
// given filter. Valid is false when no rows match.
func (s *HybridStore) AggregateRange(ctx context.Context, field string, f BondFilter) (NumericRange, error) {
	col, ok := ColumnFor(field)
	if !ok {
		return NumericRange{}, fmt.Errorf("field %q is not queryable", field)
	}
	where, args := whereClause(f)

	q := fmt.Sprintf(`SELECT MIN(%s), MAX(%s) FROM catalog.bonds WHERE %s;`, col, col, where)

	var minVal, maxVal *decimal.Decimal
	if err := s.PG.QueryRow(ctx, q, args...).Scan(&minVal, &maxVal); err != nil {
		return NumericRange{}, err
	}
	if minVal == nil || maxVal == nil {
		return NumericRange{}, nil
	}
	return NumericRange{Min: *minVal, Max: *maxVal, Valid: true}, nil
}

// GetCategory resolves a category by its lowercased name. Returns (nil, nil)
// when the category does not exist.
func (s *HybridStore) GetCategory(ctx context.Context, name string) (*model.BondCategory, error) {
	var cat model.BondCategory
	err := s.PG.QueryRow(ctx, `
		SELECT category_name, bond_ids, created_at, updated_at
		FROM catalog.bond_categories
		WHERE category_name = $1
		LIMIT 1;
	`, name).Scan(&cat.CategoryName, &cat.BondIDs, &cat.CreatedAt, &cat.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetCategory scan failed: %w", err)
	}
	return &cat, nil
}

// SaveCategory upserts the category row, replacing its member list.
func (s *HybridStore) SaveCategory(ctx context.Context, cat model.BondCategory) error {
	_, err := s.PG.Exec(ctx, `
		INSERT INTO catalog.bond_categories (category_name, bond_ids, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (category_name) DO UPDATE SET
			bond_ids = EXCLUDED.bond_ids,
			updated_at = now();
	`, cat.CategoryName, cat.BondIDs)
	if err != nil {
		s.logger.Error("store.pg.save_category_failed",
			zap.String("category", cat.CategoryName),
			zap.Error(err))
	}
	return err
}

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

// GetJSON reads a cached JSON value. The bool result is false on cache miss.
func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
