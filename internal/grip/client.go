package grip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/internal/httpclient"
	"github.com/Checker-Finance/bonds-service/internal/rate"
)

// Client wraps HTTP communication with the Grip bond feed. The feed is a
// full snapshot of the current offerable-bond universe, not a delta.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
	apiKey  string
}

// NewClient constructs a Grip feed client.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager, baseURL, apiKey string) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	exec := httpclient.New(logger, rateMgr, httpClient, 2, "grip", func(status int, body []byte) error {
		var errResp gripErrorResponse
		_ = json.Unmarshal(body, &errResp)

		logger.Warn("grip.client_error",
			zap.Int("status", status),
			zap.String("error", errResp.Error),
			zap.String("message", errResp.Message))

		errMsg := errResp.Message
		if errMsg == "" {
			errMsg = errResp.Error
		}
		if errMsg == "" {
			errMsg = string(body)
		}
		return fmt.Errorf("grip returned %d: %s", status, errMsg)
	})
	return &Client{
		logger:  logger,
		exec:    exec,
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// FetchAllBonds retrieves the full bond snapshot for the given account.
// Records are returned raw so per-record decode failures can be isolated by
// the caller instead of failing the whole fetch.
func (c *Client) FetchAllBonds(ctx context.Context, accountRef string) ([]json.RawMessage, error) {
	url := fmt.Sprintf("%s/partner-api/bonds/list?account=%s", c.baseURL, accountRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	var resp feedListResponse
	if err := c.exec.DoJSON(ctx, req, "grip:"+accountRef, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("grip.feed_fetched",
		zap.Int("records", len(resp.Data)),
		zap.Int("total_schemes", resp.TotalSchemes))
	return resp.Data, nil
}
