package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// restClient is the shared HTTP plumbing for the protocol rate APIs: one
// base URL, a bounded client, request logging, and status mapping.
type restClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func newRESTClient(baseURL string, timeout time.Duration, logger *zap.Logger) restClient {
	return restClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c restClient) getJSON(ctx context.Context, path string, out interface{}) error {
	endpoint := c.baseURL + path
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("rate api request failed", zap.String("url", endpoint), zap.Error(err))
		return err
	}
	defer response.Body.Close()

	c.logger.Debug("rate api request complete",
		zap.String("url", endpoint),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("rate api error: status %d", response.StatusCode)
	}
	return json.NewDecoder(response.Body).Decode(out)
}
