package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/domain/entities"
)

// httpAPI is the shared transport for the upstream JSON services. Each
// call carries its own timeout; a timeout is indistinguishable from any
// other provider error at this layer.
type httpAPI struct {
	baseURL string
	name    entities.ClientName
	timeout time.Duration
	client  *http.Client
	logger  *zap.Logger
}

func newHTTPAPI(baseURL string, name entities.ClientName, timeout time.Duration, logger *zap.Logger) httpAPI {
	return httpAPI{
		baseURL: baseURL,
		name:    name,
		timeout: timeout,
		client:  &http.Client{},
		logger:  logger,
	}
}

// getJSON issues a GET with the per-call timeout and decodes the body
func (a httpAPI) getJSON(ctx context.Context, path string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// logFailure records a failed upstream call. Failure never aborts
// sibling calls; it is folded into the wallet's source status instead.
func (a httpAPI) logFailure(address string, err error) {
	a.logger.Warn("Upstream call failed",
		zap.String("client", string(a.name)),
		zap.String("address", address),
		zap.Error(err),
	)
}
