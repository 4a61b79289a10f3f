package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BondStatus is the lifecycle state of a bond offering.
type BondStatus string

const (
	BondActive   BondStatus = "ACTIVE"
	BondInactive BondStatus = "INACTIVE"
)

// Defaults applied when the upstream feed omits a field.
const (
	DefaultRating             = "Unrated"
	DefaultFinanceProductType = "Bonds"
	DefaultReturnsType        = "Yield"
)

// Bond is a single fixed-income product offering. ID is the external,
// feed-assigned identifier and is the canonical lookup key; the internal
// storage row id is never exposed.
type Bond struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	SchemeName  string `json:"schemeName"`
	Description string `json:"description"`

	InterestRate   decimal.Decimal `json:"interestRate"`
	EffectiveYield decimal.Decimal `json:"effectiveYield"`
	MinAmount      int64           `json:"minAmount"`
	MaxAmount      int64           `json:"maxAmount"`

	TenureMonths int `json:"tenureMonths"`
	TenureDays   int `json:"tenureDays"`

	FinanceCompanyName string `json:"financeCompanyName"`
	Logo               string `json:"logo"`
	Rating             string `json:"rating"`

	Category           string `json:"category"`
	ProductCategory    string `json:"productCategory"`
	ProductSubCategory string `json:"productSubCategory"`
	FinanceProductType string `json:"financeProductType"`

	MinLots          int   `json:"minLots"`
	MaxLots          int   `json:"maxLots"`
	InvestmentAmount int64 `json:"investmentAmount"`

	Badges      []string   `json:"badges"`
	ISIN        string     `json:"isin"`
	ReturnsType string     `json:"returnsType"`
	Status      BondStatus `json:"status"`
	Subtitle    string     `json:"subtitle"`

	// OriginalData preserves the full upstream record verbatim for fields
	// not modeled explicitly. Stored as jsonb.
	OriginalData map[string]any `json:"originalData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BondSummary is the reduced projection used by list displays.
type BondSummary struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	SchemeName         string          `json:"schemeName"`
	FinanceCompanyName string          `json:"financeCompanyName"`
	Logo               string          `json:"logo"`
	Rating             string          `json:"rating"`
	InterestRate       decimal.Decimal `json:"interestRate"`
	EffectiveYield     decimal.Decimal `json:"effectiveYield"`
	TenureMonths       int             `json:"tenureMonths"`
	MinAmount          int64           `json:"minAmount"`
	Subtitle           string          `json:"subtitle"`
}

// Summary projects a bond onto its list display shape.
func (b Bond) Summary() BondSummary {
	return BondSummary{
		ID:                 b.ID,
		Name:               b.Name,
		SchemeName:         b.SchemeName,
		FinanceCompanyName: b.FinanceCompanyName,
		Logo:               b.Logo,
		Rating:             b.Rating,
		InterestRate:       b.InterestRate,
		EffectiveYield:     b.EffectiveYield,
		TenureMonths:       b.TenureMonths,
		MinAmount:          b.MinAmount,
		Subtitle:           b.Subtitle,
	}
}

// BondCategory is a named, curated grouping of bonds. CategoryName is
// normalized to lowercase; BondIDs is an ordered set (no duplicates).
type BondCategory struct {
	CategoryName string    `json:"categoryName"`
	BondIDs      []int64   `json:"bondIds"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Contains reports whether id is a member of the category.
func (c BondCategory) Contains(id int64) bool {
	for _, v := range c.BondIDs {
		if v == id {
			return true
		}
	}
	return false
}

// SyncSummary is the outcome of one reconciliation run against the
// upstream feed.
type SyncSummary struct {
	RunID         uuid.UUID     `json:"runId"`
	TotalReceived int           `json:"totalReceived"`
	Stored        int           `json:"stored"`
	Updated       int           `json:"updated"`
	Inactivated   int           `json:"inactivated"`
	Errors        int           `json:"errors"`
	StartedAt     time.Time     `json:"startedAt"`
	Duration      time.Duration `json:"duration"`
}

// Company is a finance-company directory record resolved from the
// platform's company service.
type Company struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Logo        string `json:"logo"`
}
