package directory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/internal/store"
	"github.com/Checker-Finance/bonds-service/pkg/model"
)

type mockBackend struct {
	companies     []model.Company
	haveList      bool
	issuerNames   []string
	getJSONCalls  int
	distinctCalls int
}

func (m *mockBackend) GetJSON(_ context.Context, _ string, dest any) (bool, error) {
	m.getJSONCalls++
	if !m.haveList {
		return false, nil
	}
	data, _ := json.Marshal(m.companies)
	return true, json.Unmarshal(data, dest)
}

func (m *mockBackend) DistinctStrings(_ context.Context, _ string, _ store.BondFilter) ([]string, error) {
	m.distinctCalls++
	return m.issuerNames, nil
}

func newTestResolver(backend Backend) *Resolver {
	return NewResolver(zap.NewNop(), backend, "FC_LIST")
}

func TestResolve_ByID(t *testing.T) {
	backend := &mockBackend{
		haveList: true,
		companies: []model.Company{
			{ID: "fc-1", Name: "Acme Finance", DisplayName: "Acme"},
		},
	}

	c, err := newTestResolver(backend).Resolve(context.Background(), "fc-1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Acme Finance", c.Name)
}

func TestResolve_ByNameCaseInsensitive(t *testing.T) {
	backend := &mockBackend{
		haveList: true,
		companies: []model.Company{
			{ID: "fc-1", Name: "Acme Finance", DisplayName: "Acme"},
		},
	}
	r := newTestResolver(backend)

	for _, needle := range []string{"acme finance", "ACME", "Acme"} {
		c, err := r.Resolve(context.Background(), needle)
		require.NoError(t, err)
		require.NotNil(t, c, "needle %q", needle)
		assert.Equal(t, "fc-1", c.ID)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	backend := &mockBackend{
		haveList:  true,
		companies: []model.Company{{ID: "fc-1", Name: "Acme Finance"}},
	}

	c, err := newTestResolver(backend).Resolve(context.Background(), "Unknown Corp")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestResolve_EmptyReference(t *testing.T) {
	backend := &mockBackend{}
	c, err := newTestResolver(backend).Resolve(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Zero(t, backend.getJSONCalls)
}

func TestResolve_FallsBackToCatalogIssuers(t *testing.T) {
	backend := &mockBackend{
		haveList:    false,
		issuerNames: []string{"Acme Finance", "Bharat Capital"},
	}

	c, err := newTestResolver(backend).Resolve(context.Background(), "bharat capital")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Bharat Capital", c.Name)
	assert.Equal(t, 1, backend.distinctCalls)
}

func TestResolve_CachesHits(t *testing.T) {
	backend := &mockBackend{
		haveList:  true,
		companies: []model.Company{{ID: "fc-1", Name: "Acme Finance"}},
	}
	r := newTestResolver(backend)

	for i := 0; i < 3; i++ {
		c, err := r.Resolve(context.Background(), "Acme Finance")
		require.NoError(t, err)
		require.NotNil(t, c)
	}
	assert.Equal(t, 1, backend.getJSONCalls, "repeat lookups must hit the in-process cache")
}
