package grip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/internal/rate"
)

func newTestRateManager() *rate.Manager {
	return rate.NewManager(rate.Config{RequestsPerSecond: 100, Burst: 100})
}

func TestFetchAllBonds_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/partner-api/bonds/list", r.URL.Path)
		assert.Equal(t, "acct-42", r.URL.Query().Get("account"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": 1, "name": "Bond A"},
				{"id": 2, "name": "Bond B"}
			],
			"totalSchemes": 2
		}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), newTestRateManager(), srv.URL, "test-key")
	records, err := c.FetchAllBonds(context.Background(), "acct-42")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"id": 1, "name": "Bond A"}`, string(records[0]))
}

func TestFetchAllBonds_EmptySnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": [], "totalSchemes": 0}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), newTestRateManager(), srv.URL, "test-key")
	records, err := c.FetchAllBonds(context.Background(), "acct-42")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchAllBonds_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "unauthorized", "message": "bad api key"}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), newTestRateManager(), srv.URL, "wrong-key")
	_, err := c.FetchAllBonds(context.Background(), "acct-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad api key")
}

func TestFetchAllBonds_RetriesServerError(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data": [{"id": 1}], "totalSchemes": 1}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), newTestRateManager(), srv.URL, "test-key")
	records, err := c.FetchAllBonds(context.Background(), "acct-42")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 2, hits)
}
