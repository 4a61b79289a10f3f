package bonds

import (
	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/bonds-service/pkg/model"
)

// Type tags accepted by GetBondListByType.
const (
	TypeHighReturns string = "high-returns"
	TypeShortTerm   string = "short-term"
	TypeLongTerm    string = "long-term"
	TypeNewlyAdded  string = "newly-added"
	TypeChachaPicks string = "chacha-picks"
)

// Tenure-term buckets accepted by GetRecommendedBonds.
const (
	TermShort    string = "short-term"
	TermMedium   string = "medium-term"
	TermLong     string = "long-term"
	TermFlexible string = "flexible"
)

// ListRequest is the common input for every listing operation: optional
// filter criteria, a sort key + direction, and a 1-indexed pagination window.
type ListRequest struct {
	CategoryName string
	// IncludeCategory selects inclusion mode (only bonds in the category)
	// versus exclusion mode (everything but the category's bonds).
	IncludeCategory bool

	MinInterestRate   *decimal.Decimal
	MaxInterestRate   *decimal.Decimal
	MinEffectiveYield *decimal.Decimal
	MaxEffectiveYield *decimal.Decimal

	FinanceCompanyName string
	Rating             string
	TenureMonths       *int

	SortBy    string // interestRate | effectiveYield | tenureMonths
	SortOrder string // asc | desc

	Page  int
	Limit int
}

// ListResult is the uniform listing response shape. TotalPages is computed
// from TotalCount and the requested limit even when Items is empty.
type ListResult struct {
	Items      []model.Bond `json:"items"`
	TotalCount int          `json:"totalCount"`
	TotalPages int          `json:"totalPages"`
}

// SummaryListResult is ListResult projected to the reduced list-display shape.
type SummaryListResult struct {
	Items      []model.BondSummary `json:"items"`
	TotalCount int                 `json:"totalCount"`
	TotalPages int                 `json:"totalPages"`
}

// ComparisonResult partitions the requested bond ids into three disjoint
// groups. Active bonds come back in full, sorted by interest rate
// descending; the other two groups are ids only.
type ComparisonResult struct {
	Active   []model.Bond `json:"active"`
	Inactive []int64      `json:"inactive"`
	NotFound []int64      `json:"notFound"`
	Message  string       `json:"message"`
}

// ComparePicksResult is a same-tenure, cross-issuer comparison set built
// around one bond, with an educational tip for the list footer.
type ComparePicksResult struct {
	Bonds []model.Bond `json:"bonds"`
	Tip   string       `json:"tip"`
}

// RateRange and YieldRange carry min/max bounds for the filter UI sliders.
type RateRange struct {
	MinRate decimal.Decimal `json:"minRate"`
	MaxRate decimal.Decimal `json:"maxRate"`
}

type YieldRange struct {
	MinYield decimal.Decimal `json:"minYield"`
	MaxYield decimal.Decimal `json:"maxYield"`
}

// FilterOptions describes the currently available filter values across the
// active catalog.
type FilterOptions struct {
	InterestRate        RateRange  `json:"interestRate"`
	EffectiveYield      YieldRange `json:"effectiveYield"`
	FinanceCompanyNames []string   `json:"financeCompanyNames"`
	Ratings             []string   `json:"ratings"`
	TenureMonths        []int      `json:"tenureMonths"`
}

// investorProfile is the slice of the platform's cached user details the
// personalized-picks operation reads.
type investorProfile struct {
	PreferredTenure int    `json:"preferredTenure"`
	PreferredIssuer string `json:"preferredIssuer"`
	Risk            string `json:"risk"`
}
