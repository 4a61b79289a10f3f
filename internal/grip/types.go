package grip

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// feedListResponse is the envelope returned by the Grip product-list API.
// Data items are kept raw so the full upstream record can be preserved
// verbatim alongside the modeled fields.
type feedListResponse struct {
	Data         []json.RawMessage `json:"data"`
	TotalSchemes int               `json:"totalSchemes"`
}

// feedBond carries the modeled subset of an upstream bond record.
type feedBond struct {
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

	Badges      []string `json:"badges"`
	ISIN        string   `json:"isin"`
	ReturnsType string   `json:"returnsType"`
}

// gripErrorResponse is the error body returned on 4xx responses.
type gripErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
