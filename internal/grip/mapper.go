package grip

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/bonds-service/pkg/model"
)

var (
	yieldHigh = decimal.NewFromInt(12)
	yieldGood = decimal.NewFromInt(10)
)

// ParseRecord decodes one raw feed record into a Bond. The full upstream
// payload is preserved verbatim in OriginalData; modeled fields get their
// documented defaults when the feed omits them.
func ParseRecord(raw json.RawMessage) (model.Bond, error) {
	var fb feedBond
	if err := json.Unmarshal(raw, &fb); err != nil {
		return model.Bond{}, fmt.Errorf("decode feed record: %w", err)
	}
	if fb.ID == 0 {
		return model.Bond{}, fmt.Errorf("feed record missing id")
	}

	var original map[string]any
	if err := json.Unmarshal(raw, &original); err != nil {
		return model.Bond{}, fmt.Errorf("decode feed record payload: %w", err)
	}

	b := model.Bond{
		ID:                 fb.ID,
		Name:               fb.Name,
		SchemeName:         fb.SchemeName,
		Description:        fb.Description,
		InterestRate:       fb.InterestRate,
		EffectiveYield:     fb.EffectiveYield,
		MinAmount:          fb.MinAmount,
		MaxAmount:          fb.MaxAmount,
		TenureMonths:       fb.TenureMonths,
		TenureDays:         fb.TenureDays,
		FinanceCompanyName: fb.FinanceCompanyName,
		Logo:               fb.Logo,
		Rating:             fb.Rating,
		Category:           fb.Category,
		ProductCategory:    fb.ProductCategory,
		ProductSubCategory: fb.ProductSubCategory,
		FinanceProductType: fb.FinanceProductType,
		MinLots:            fb.MinLots,
		MaxLots:            fb.MaxLots,
		InvestmentAmount:   fb.InvestmentAmount,
		Badges:             fb.Badges,
		ISIN:               fb.ISIN,
		ReturnsType:        fb.ReturnsType,
		Status:             model.BondActive,
		OriginalData:       original,
	}

	if b.Rating == "" {
		b.Rating = model.DefaultRating
	}
	if b.FinanceProductType == "" {
		b.FinanceProductType = model.DefaultFinanceProductType
	}
	if b.ReturnsType == "" {
		b.ReturnsType = model.DefaultReturnsType
	}
	if b.MinLots == 0 {
		b.MinLots = 1
	}
	if b.MaxLots == 0 {
		b.MaxLots = 1
	}
	if b.Badges == nil {
		b.Badges = []string{}
	}
	b.Subtitle = buildSubtitle(b)

	return b, nil
}

// buildSubtitle derives the two-part display subtitle shown under a bond in
// list views: category/rating first, then a returns or term tag.
func buildSubtitle(b model.Bond) string {
	var parts []string

	if b.Category != "" {
		parts = append(parts, strings.ToUpper(b.Category))
	}
	if b.Rating != "" && b.Rating != model.DefaultRating {
		parts = append(parts, b.Rating)
	}

	switch {
	case b.EffectiveYield.GreaterThan(yieldHigh):
		parts = append(parts, "High Returns")
	case b.EffectiveYield.GreaterThan(yieldGood):
		parts = append(parts, "Good Returns")
	default:
		parts = append(parts, "Safe Returns")
	}

	if b.TenureMonths > 0 && b.TenureMonths <= 12 {
		parts = append(parts, "Short Term")
	} else if b.TenureMonths > 36 {
		parts = append(parts, "Long Term")
	}

	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, " · ")
}
