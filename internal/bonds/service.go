package bonds

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/internal/metrics"
	"github.com/Checker-Finance/bonds-service/internal/store"
	"github.com/Checker-Finance/bonds-service/pkg/model"
)

const (
	newlyAddedWindow = 30 * 24 * time.Hour
	comparePicksMax  = 2

	compareTip = "Bonds with the same tenure can pay very different yields depending on the issuer. " +
		"Compare the rating alongside the yield before you pick."

	filterOptionsCacheKey = "BOND_FILTER_OPTIONS"
)

// Conservative investors are limited to top-grade paper.
var conservativeRatings = []string{"AAA", "AA+"}

// CompanyResolver canonicalizes a finance-company reference before the
// catalog is filtered by company.
type CompanyResolver interface {
	Resolve(ctx context.Context, idOrName string) (*model.Company, error)
}

// Options carries the service's tunables out of config.
type Options struct {
	ProfileKeyPrefix string
	FilterOptionsTTL time.Duration
	DefaultPageLimit int
}

// Service is the catalog query engine: it translates listing requests into
// store queries and shapes every response uniformly. It reads the Bond Store
// and Category Index but never mutates them.
type Service struct {
	logger    *zap.Logger
	store     store.Store
	directory CompanyResolver
	opts      Options
}

func NewService(logger *zap.Logger, st store.Store, directory CompanyResolver, opts Options) *Service {
	if opts.DefaultPageLimit <= 0 {
		opts.DefaultPageLimit = 20
	}
	if opts.FilterOptionsTTL <= 0 {
		opts.FilterOptionsTTL = 5 * time.Minute
	}
	if opts.ProfileKeyPrefix == "" {
		opts.ProfileKeyPrefix = "WC_USER_DETAILS"
	}
	return &Service{
		logger:    logger,
		store:     st,
		directory: directory,
		opts:      opts,
	}
}

// page normalizes a 1-indexed page/limit pair into an offset window.
func (s *Service) page(page, limit int) (offset, lim int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.opts.DefaultPageLimit
	}
	return (page - 1) * limit, limit
}

// totalPages computes ceil(total/limit); limit is always positive here.
func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}

// baseFilter translates the request's optional criteria into a store filter,
// always restricted to active bonds.
func baseFilter(req ListRequest) store.BondFilter {
	f := store.ActiveOnly()
	f.MinInterestRate = req.MinInterestRate
	f.MaxInterestRate = req.MaxInterestRate
	f.MinEffectiveYield = req.MinEffectiveYield
	f.MaxEffectiveYield = req.MaxEffectiveYield
	f.FinanceCompanyName = req.FinanceCompanyName
	f.Rating = req.Rating
	f.TenureMonthsEQ = req.TenureMonths
	return f
}

// sortKeys validates the requested sort and falls back to effectiveYield
// descending, matching the catalog default.
func sortKeys(req ListRequest) []store.SortKey {
	field := req.SortBy
	switch field {
	case "interestRate", "effectiveYield", "tenureMonths":
	default:
		field = "effectiveYield"
	}
	desc := !strings.EqualFold(req.SortOrder, "asc")
	return []store.SortKey{{Field: field, Desc: desc}}
}

// run executes a composed query and shapes the uniform listing result.
func (s *Service) run(ctx context.Context, q store.BondQuery) (*ListResult, error) {
	items, total, err := s.store.FindBonds(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find bonds: %w", err)
	}
	if items == nil {
		items = []model.Bond{}
	}
	return &ListResult{
		Items:      items,
		TotalCount: total,
		TotalPages: totalPages(total, q.Limit),
	}, nil
}

// ListBonds is the general catalog query entry point: optional filters, sort,
// and pagination over the active catalog.
func (s *Service) ListBonds(ctx context.Context, req ListRequest) (*ListResult, error) {
	defer metrics.ObserveQuery("list", time.Now())

	offset, limit := s.page(req.Page, req.Limit)
	return s.run(ctx, store.BondQuery{
		Filter: baseFilter(req),
		Sort:   sortKeys(req),
		Offset: offset,
		Limit:  limit,
	})
}

// GetBondByID returns the active bond with the given external id.
func (s *Service) GetBondByID(ctx context.Context, id int64) (*model.Bond, error) {
	defer metrics.ObserveQuery("get_by_id", time.Now())

	b, err := s.store.GetBondByID(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("get bond: %w", err)
	}
	if b == nil {
		return nil, &NotFoundError{Resource: "bond", Ref: strconv.FormatInt(id, 10)}
	}
	return b, nil
}

// GetBondsByCategory lists bonds restricted to (inclusion mode) or excluding
// (exclusion mode) the named category's members, with the usual filters on
// top. A missing category yields an empty result in inclusion mode and an
// unscoped one in exclusion mode.
func (s *Service) GetBondsByCategory(ctx context.Context, req ListRequest) (*ListResult, error) {
	defer metrics.ObserveQuery("by_category", time.Now())

	name := strings.ToLower(strings.TrimSpace(req.CategoryName))
	if req.IncludeCategory && name == "" {
		return nil, &ValidationError{Msg: "categoryName is required"}
	}

	f := baseFilter(req)
	if name != "" {
		cat, err := s.store.GetCategory(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("get category: %w", err)
		}
		if req.IncludeCategory {
			f.HasIDIn = true
			if cat != nil {
				f.IDIn = cat.BondIDs
			}
		} else if cat != nil {
			f.IDNotIn = cat.BondIDs
		}
	}

	offset, limit := s.page(req.Page, req.Limit)
	return s.run(ctx, store.BondQuery{
		Filter: f,
		Sort:   sortKeys(req),
		Offset: offset,
		Limit:  limit,
	})
}

// GetBondListByType maps a fixed vocabulary of type tags onto filter + sort
// presets. Unknown tags are a validation error.
func (s *Service) GetBondListByType(ctx context.Context, typ, userID string, page, limit int) (*ListResult, error) {
	defer metrics.ObserveQuery("by_type", time.Now())

	offset, lim := s.page(page, limit)
	f := store.ActiveOnly()
	var keys []store.SortKey

	switch typ {
	case TypeHighReturns:
		keys = []store.SortKey{{Field: "effectiveYield", Desc: true}}
	case TypeShortTerm:
		val := 12
		f.TenureMonthsLTE = &val
		keys = []store.SortKey{
			{Field: "tenureMonths"},
			{Field: "effectiveYield", Desc: true},
		}
	case TypeLongTerm:
		val := 12
		f.TenureMonthsGT = &val
		keys = []store.SortKey{{Field: "tenureMonths"}}
	case TypeNewlyAdded:
		since := time.Now().Add(-newlyAddedWindow)
		f.CreatedAfter = &since
		keys = []store.SortKey{{Field: "createdAt", Desc: true}}
	case TypeChachaPicks:
		return s.GetPersonalizedPicks(ctx, userID, page, limit)
	default:
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid bond type: %s", typ)}
	}

	return s.run(ctx, store.BondQuery{Filter: f, Sort: keys, Offset: offset, Limit: lim})
}

// GetPersonalizedPicks lists active bonds shaped by the user's cached
// investment profile (preferred tenure, preferred issuer, risk appetite).
// Without a user or profile it degrades to the plain yield-ranked catalog.
func (s *Service) GetPersonalizedPicks(ctx context.Context, userID string, page, limit int) (*ListResult, error) {
	defer metrics.ObserveQuery("personalized_picks", time.Now())

	f := store.ActiveOnly()

	if userID != "" {
		var profile investorProfile
		found, err := s.store.GetJSON(ctx, s.opts.ProfileKeyPrefix+":"+userID, &profile)
		if err != nil {
			s.logger.Warn("bonds.profile_read_failed",
				zap.String("user_id", userID),
				zap.Error(err))
		} else if found {
			if profile.PreferredTenure > 0 {
				t := profile.PreferredTenure
				f.TenureMonthsEQ = &t
			}
			if profile.PreferredIssuer != "" {
				f.FinanceCompanyName = profile.PreferredIssuer
			}
			if strings.EqualFold(profile.Risk, "conservative") {
				f.RatingIn = conservativeRatings
			}
		}
	}

	offset, lim := s.page(page, limit)
	return s.run(ctx, store.BondQuery{
		Filter: f,
		Sort:   []store.SortKey{{Field: "effectiveYield", Desc: true}},
		Offset: offset,
		Limit:  lim,
	})
}

// GetIssuerPopularBonds lists an issuer's bonds ranked by yield, projected to
// the reduced list shape. The issuer reference is canonicalized through the
// company directory first.
func (s *Service) GetIssuerPopularBonds(ctx context.Context, companyRef string, page, limit int) (*SummaryListResult, error) {
	defer metrics.ObserveQuery("issuer_popular", time.Now())

	company, err := s.directory.Resolve(ctx, companyRef)
	if err != nil {
		return nil, &UpstreamError{Op: "resolve company", Err: err}
	}
	if company == nil {
		return nil, &NotFoundError{Resource: "company", Ref: companyRef}
	}

	f := store.ActiveOnly()
	f.FinanceCompanyName = company.Name

	offset, lim := s.page(page, limit)
	res, err := s.run(ctx, store.BondQuery{
		Filter: f,
		Sort: []store.SortKey{
			{Field: "effectiveYield", Desc: true},
			{Field: "tenureMonths"},
		},
		Offset: offset,
		Limit:  lim,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]model.BondSummary, 0, len(res.Items))
	for _, b := range res.Items {
		summaries = append(summaries, b.Summary())
	}
	return &SummaryListResult{
		Items:      summaries,
		TotalCount: res.TotalCount,
		TotalPages: res.TotalPages,
	}, nil
}

// CompareBonds partitions the requested ids into found-and-active (full
// records, interest rate descending), found-but-inactive, and not-found.
// Duplicated ids are collapsed; the three groups always cover every
// requested id exactly once.
func (s *Service) CompareBonds(ctx context.Context, ids []int64) (*ComparisonResult, error) {
	defer metrics.ObserveQuery("compare", time.Now())

	if len(ids) == 0 {
		return nil, &ValidationError{Msg: "at least one bond id is required"}
	}

	seen := make(map[int64]struct{}, len(ids))
	requested := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		requested = append(requested, id)
	}

	found, _, err := s.store.FindBonds(ctx, store.BondQuery{
		Filter: store.BondFilter{IDIn: requested, HasIDIn: true},
	})
	if err != nil {
		return nil, fmt.Errorf("compare bonds: %w", err)
	}

	byID := make(map[int64]model.Bond, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}

	result := &ComparisonResult{
		Active:   []model.Bond{},
		Inactive: []int64{},
		NotFound: []int64{},
	}
	for _, id := range requested {
		b, ok := byID[id]
		switch {
		case !ok:
			result.NotFound = append(result.NotFound, id)
		case b.Status == model.BondActive:
			result.Active = append(result.Active, b)
		default:
			result.Inactive = append(result.Inactive, id)
		}
	}

	sort.SliceStable(result.Active, func(i, j int) bool {
		return result.Active[i].InterestRate.GreaterThan(result.Active[j].InterestRate)
	})

	var notes []string
	if len(result.Active) < 2 {
		notes = append(notes, "select at least two active bonds for a comparison")
	}
	if n := len(result.Inactive); n > 0 {
		notes = append(notes, fmt.Sprintf("%d bond(s) are no longer active", n))
	}
	if n := len(result.NotFound); n > 0 {
		notes = append(notes, fmt.Sprintf("%d bond(s) were not found", n))
	}
	if len(notes) == 0 {
		result.Message = "Comparison ready"
	} else {
		result.Message = strings.Join(notes, "; ")
	}
	return result, nil
}

// GetRecommendedBonds lists active bonds in a tenure-term bucket, ranked by
// yield. Unknown terms are a validation error.
func (s *Service) GetRecommendedBonds(ctx context.Context, term string, page, limit int) (*ListResult, error) {
	defer metrics.ObserveQuery("recommended", time.Now())

	f := store.ActiveOnly()
	switch term {
	case TermShort:
		val := 12
		f.TenureMonthsLTE = &val
	case TermMedium:
		lo, hi := 12, 36
		f.TenureMonthsGT = &lo
		f.TenureMonthsLTE = &hi
	case TermLong:
		val := 36
		f.TenureMonthsGT = &val
	case TermFlexible:
		f.RequireTenure = true
	default:
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid tenure term: %s", term)}
	}

	offset, lim := s.page(page, limit)
	return s.run(ctx, store.BondQuery{
		Filter: f,
		Sort:   []store.SortKey{{Field: "effectiveYield", Desc: true}},
		Offset: offset,
		Limit:  lim,
	})
}

// GetComparePicks builds a same-tenure, cross-issuer comparison set around
// one bond: up to two other active bonds with the same tenure from different
// issuers, unioned with the original and ranked by yield.
func (s *Service) GetComparePicks(ctx context.Context, id int64) (*ComparePicksResult, error) {
	defer metrics.ObserveQuery("compare_picks", time.Now())

	original, err := s.GetBondByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f := store.ActiveOnly()
	f.TenureMonthsEQ = &original.TenureMonths
	f.ExcludeCompany = original.FinanceCompanyName
	f.ExcludeID = &original.ID

	peers, _, err := s.store.FindBonds(ctx, store.BondQuery{
		Filter: f,
		Sort:   []store.SortKey{{Field: "effectiveYield", Desc: true}},
		Limit:  comparePicksMax,
	})
	if err != nil {
		return nil, fmt.Errorf("compare picks: %w", err)
	}

	set := append(peers, *original)
	sort.SliceStable(set, func(i, j int) bool {
		return set[i].EffectiveYield.GreaterThan(set[j].EffectiveYield)
	})

	return &ComparePicksResult{Bonds: set, Tip: compareTip}, nil
}

// GetFilterOptions reports the currently available filter values for the
// active catalog, optionally scoping the rate/yield ranges and ratings to
// one finance company. Results are cached briefly in Redis.
func (s *Service) GetFilterOptions(ctx context.Context, companyName string) (*FilterOptions, error) {
	defer metrics.ObserveQuery("filter_options", time.Now())

	// The SQL filter matches the company name case-sensitively, so the
	// cache key must too or case variants would alias to one entry.
	cacheKey := filterOptionsCacheKey
	if companyName != "" {
		cacheKey += ":" + companyName
	}
	var cached FilterOptions
	if found, err := s.store.GetJSON(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	base := store.ActiveOnly()
	scoped := base
	scoped.FinanceCompanyName = companyName

	rateRange, err := s.store.AggregateRange(ctx, "interestRate", scoped)
	if err != nil {
		return nil, fmt.Errorf("interest rate range: %w", err)
	}
	yieldRange, err := s.store.AggregateRange(ctx, "effectiveYield", scoped)
	if err != nil {
		return nil, fmt.Errorf("effective yield range: %w", err)
	}
	companies, err := s.store.DistinctStrings(ctx, "financeCompanyName", base)
	if err != nil {
		return nil, fmt.Errorf("distinct companies: %w", err)
	}
	ratings, err := s.store.DistinctStrings(ctx, "rating", scoped)
	if err != nil {
		return nil, fmt.Errorf("distinct ratings: %w", err)
	}
	tenures, err := s.store.DistinctInts(ctx, "tenureMonths", base)
	if err != nil {
		return nil, fmt.Errorf("distinct tenures: %w", err)
	}

	opts := &FilterOptions{
		InterestRate:        RateRange{MaxRate: decimal.NewFromInt(15)},
		EffectiveYield:      YieldRange{MaxYield: decimal.NewFromInt(15)},
		FinanceCompanyNames: companies,
		Ratings:             ratings,
		TenureMonths:        tenures,
	}
	if rateRange.Valid {
		opts.InterestRate = RateRange{MinRate: rateRange.Min, MaxRate: rateRange.Max}
	}
	if yieldRange.Valid {
		opts.EffectiveYield = YieldRange{MinYield: yieldRange.Min, MaxYield: yieldRange.Max}
	}

	if err := s.store.SetJSON(ctx, cacheKey, opts, s.opts.FilterOptionsTTL); err != nil {
		s.logger.Debug("bonds.filter_options_cache_failed", zap.Error(err))
	}
	return opts, nil
}
