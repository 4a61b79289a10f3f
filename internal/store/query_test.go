package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereClause_Empty(t *testing.T) {
	clause, args := whereClause(BondFilter{})
	assert.Equal(t, "TRUE", clause)
	assert.Nil(t, args)
}

func TestWhereClause_ActiveOnly(t *testing.T) {
	clause, args := whereClause(ActiveOnly())
	assert.Equal(t, "status = $1", clause)
	require.Len(t, args, 1)
	assert.Equal(t, "ACTIVE", args[0])
}

func TestWhereClause_RangesAreAdditive(t *testing.T) {
	min := decimal.NewFromFloat(8.5)
	max := decimal.NewFromFloat(12)
	clause, args := whereClause(BondFilter{
		MinInterestRate: &min,
		MaxInterestRate: &max,
	})
	assert.Equal(t, "interest_rate >= $1 AND interest_rate <= $2", clause)
	assert.Len(t, args, 2)
}

func TestWhereClause_PlaceholdersStayAligned(t *testing.T) {
	min := decimal.NewFromInt(9)
	tenure := 24
	clause, args := whereClause(BondFilter{
		MinEffectiveYield:  &min,
		FinanceCompanyName: "Acme Finance",
		TenureMonthsEQ:     &tenure,
	})
	assert.Equal(t,
		"effective_yield >= $1 AND finance_company_name = $2 AND tenure_months = $3",
		clause)
	require.Len(t, args, 3)
	assert.Equal(t, "Acme Finance", args[1])
	assert.Equal(t, 24, args[2])
}

func TestWhereClause_EmptyIDSetMatchesNothing(t *testing.T) {
	clause, args := whereClause(BondFilter{HasIDIn: true})
	assert.Equal(t, "FALSE", clause)
	assert.Nil(t, args)
}

func TestWhereClause_IDInVsNoConstraint(t *testing.T) {
	clause, args := whereClause(BondFilter{HasIDIn: true, IDIn: []int64{1, 2, 3}})
	assert.Equal(t, "id = ANY($1)", clause)
	require.Len(t, args, 1)
	assert.Equal(t, []int64{1, 2, 3}, args[0])

	// Without HasIDIn an id list imposes nothing.
	clause, args = whereClause(BondFilter{IDIn: []int64{1, 2, 3}})
	assert.Equal(t, "TRUE", clause)
	assert.Nil(t, args)
}

func TestWhereClause_ExclusionSet(t *testing.T) {
	clause, args := whereClause(BondFilter{IDNotIn: []int64{7, 9}})
	assert.Equal(t, "NOT (id = ANY($1))", clause)
	assert.Len(t, args, 1)
}

func TestWhereClause_TenureBuckets(t *testing.T) {
	lo, hi := 12, 36
	clause, _ := whereClause(BondFilter{TenureMonthsGT: &lo, TenureMonthsLTE: &hi})
	assert.Equal(t, "tenure_months <= $1 AND tenure_months > $2", clause)

	clause, args := whereClause(BondFilter{RequireTenure: true})
	assert.Equal(t, "tenure_months > 0", clause)
	assert.Nil(t, args)
}

func TestWhereClause_CreatedAfter(t *testing.T) {
	since := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	clause, args := whereClause(BondFilter{CreatedAfter: &since})
	assert.Equal(t, "created_at >= $1", clause)
	require.Len(t, args, 1)
	assert.Equal(t, since, args[0])
}

func TestWhereClause_CompareAroundBond(t *testing.T) {
	tenure := 24
	id := int64(55)
	f := ActiveOnly()
	f.TenureMonthsEQ = &tenure
	f.ExcludeCompany = "Acme Finance"
	f.ExcludeID = &id

	clause, args := whereClause(f)
	assert.Equal(t,
		"status = $1 AND finance_company_name <> $2 AND tenure_months = $3 AND id <> $4",
		clause)
	assert.Len(t, args, 4)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "", orderClause(nil))
	assert.Equal(t, "ORDER BY effective_yield DESC",
		orderClause([]SortKey{{Field: "effectiveYield", Desc: true}}))
	assert.Equal(t, "ORDER BY tenure_months ASC, effective_yield DESC",
		orderClause([]SortKey{
			{Field: "tenureMonths"},
			{Field: "effectiveYield", Desc: true},
		}))
}

func TestOrderClause_DropsUnknownFields(t *testing.T) {
	// Unknown fields never reach SQL.
	assert.Equal(t, "", orderClause([]SortKey{{Field: "status; DROP TABLE bonds"}}))
	assert.Equal(t, "ORDER BY interest_rate ASC",
		orderClause([]SortKey{{Field: "bogus"}, {Field: "interestRate"}}))
}

func TestColumnFor(t *testing.T) {
	col, ok := ColumnFor("effectiveYield")
	assert.True(t, ok)
	assert.Equal(t, "effective_yield", col)

	_, ok = ColumnFor("originalData")
	assert.False(t, ok)
}
