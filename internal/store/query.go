package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/bonds-service/pkg/model"
)

// bondColumns maps API-level field names onto catalog.bonds columns. Only
// fields listed here may be used for sorting, distinct queries, and range
// aggregation; everything else is rejected before reaching SQL.
var bondColumns = map[string]string{
	"interestRate":       "interest_rate",
	"effectiveYield":     "effective_yield",
	"tenureMonths":       "tenure_months",
	"createdAt":          "created_at",
	"financeCompanyName": "finance_company_name",
	"rating":             "rating",
	"minAmount":          "min_amount",
}

// ColumnFor resolves an API field name to its column, or false when the
// field is not queryable.
func ColumnFor(field string) (string, bool) {
	col, ok := bondColumns[field]
	return col, ok
}

// BondFilter is the composable set of optional predicates every listing
// operation is built from. Nil/zero fields impose no constraint; range
// bounds are additive (both set means both apply).
type BondFilter struct {
	Status *model.BondStatus

	MinInterestRate   *decimal.Decimal
	MaxInterestRate   *decimal.Decimal
	MinEffectiveYield *decimal.Decimal
	MaxEffectiveYield *decimal.Decimal

	FinanceCompanyName string
	ExcludeCompany     string
	Rating             string
	RatingIn           []string

	TenureMonthsEQ  *int
	TenureMonthsLTE *int
	TenureMonthsGT  *int
	RequireTenure   bool

	CreatedAfter *time.Time

	// IDIn is a membership constraint on the external id. HasIDIn
	// distinguishes "restrict to this (possibly empty) set" from "no
	// constraint": an empty set with HasIDIn matches nothing.
	IDIn    []int64
	HasIDIn bool
	IDNotIn []int64

	ExcludeID *int64
}

// ActiveOnly is the filter shared by every public listing operation.
func ActiveOnly() BondFilter {
	st := model.BondActive
	return BondFilter{Status: &st}
}

// SortKey orders results by a queryable field.
type SortKey struct {
	Field string
	Desc  bool
}

// BondQuery is a full find request: filter + sort + pagination window.
type BondQuery struct {
	Filter BondFilter
	Sort   []SortKey
	Offset int
	Limit  int
}

// whereClause compiles the filter to a parameterized WHERE body. The
// returned clause never includes the "WHERE" keyword; args align with
// placeholders starting at $1.
func whereClause(f BondFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(format string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if f.Status != nil {
		add("status = $%d", string(*f.Status))
	}
	if f.MinInterestRate != nil {
		add("interest_rate >= $%d", *f.MinInterestRate)
	}
	if f.MaxInterestRate != nil {
		add("interest_rate <= $%d", *f.MaxInterestRate)
	}
	if f.MinEffectiveYield != nil {
		add("effective_yield >= $%d", *f.MinEffectiveYield)
	}
	if f.MaxEffectiveYield != nil {
		add("effective_yield <= $%d", *f.MaxEffectiveYield)
	}
	if f.FinanceCompanyName != "" {
		add("finance_company_name = $%d", f.FinanceCompanyName)
	}
	if f.ExcludeCompany != "" {
		add("finance_company_name <> $%d", f.ExcludeCompany)
	}
	if f.Rating != "" {
		add("rating = $%d", f.Rating)
	}
	if len(f.RatingIn) > 0 {
		add("rating = ANY($%d)", f.RatingIn)
	}
	if f.TenureMonthsEQ != nil {
		add("tenure_months = $%d", *f.TenureMonthsEQ)
	}
	if f.TenureMonthsLTE != nil {
		add("tenure_months <= $%d", *f.TenureMonthsLTE)
	}
	if f.TenureMonthsGT != nil {
		add("tenure_months > $%d", *f.TenureMonthsGT)
	}
	if f.RequireTenure {
		conds = append(conds, "tenure_months > 0")
	}
	if f.CreatedAfter != nil {
		add("created_at >= $%d", *f.CreatedAfter)
	}
	if f.HasIDIn {
		if len(f.IDIn) == 0 {
			// Restricted to an empty set: matches nothing.
			conds = append(conds, "FALSE")
		} else {
			add("id = ANY($%d)", f.IDIn)
		}
	}
	if len(f.IDNotIn) > 0 {
		add("NOT (id = ANY($%d))", f.IDNotIn)
	}
	if f.ExcludeID != nil {
		add("id <> $%d", *f.ExcludeID)
	}

	if len(conds) == 0 {
		return "TRUE", nil
	}
	return strings.Join(conds, " AND "), args
}

// orderClause compiles sort keys, silently dropping fields that are not
// queryable. Returns "" when nothing valid remains.
func orderClause(sort []SortKey) string {
	var parts []string
	for _, s := range sort {
		col, ok := ColumnFor(s.Field)
		if !ok {
			continue
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return ""
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}
