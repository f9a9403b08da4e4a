package providers

import (
	"context"

	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/config"
	"github.com/defidash/portfolio-engine/internal/domain/entities"
	domainproviders "github.com/defidash/portfolio-engine/internal/domain/providers"
)

// Ensure TaxClient implements TaxOptimizer
var _ domainproviders.TaxOptimizer = (*TaxClient)(nil)

// TaxClient queries the HarvestPro tax-lot analysis service
type TaxClient struct {
	api httpAPI
}

// NewTaxClient creates a new tax optimization client
func NewTaxClient(cfg config.ProvidersConfig, logger *zap.Logger) *TaxClient {
	return &TaxClient{
		api: newHTTPAPI(cfg.TaxURL, entities.ClientTax, cfg.TaxTimeout, logger),
	}
}

// taxResponse is the analysis service's wire format
type taxResponse struct {
	Recommendations []struct {
		ID               string  `json:"id"`
		Action           string  `json:"action"`
		TokenSymbol      string  `json:"token_symbol"`
		EstimatedSavings float64 `json:"estimated_savings"`
	} `json:"recommendations"`
	Partial bool `json:"partial"`
}

// RecommendForWallet returns harvest/rebalance recommendations with
// their estimated savings for one wallet.
func (c *TaxClient) RecommendForWallet(ctx context.Context, address string) domainproviders.TaxResult {
	var resp taxResponse
	if err := c.api.getJSON(ctx, "/v1/wallets/"+address+"/recommendations", &resp); err != nil {
		c.api.logFailure(address, err)
		return domainproviders.TaxResult{Status: entities.StatusFailed}
	}

	recs := make([]entities.TaxRecommendation, 0, len(resp.Recommendations))
	for _, rec := range resp.Recommendations {
		recs = append(recs, entities.TaxRecommendation{
			ID:               rec.ID,
			Action:           rec.Action,
			TokenSymbol:      rec.TokenSymbol,
			EstimatedSavings: rec.EstimatedSavings,
			WalletAddress:    address,
		})
	}

	status := entities.StatusOK
	if resp.Partial {
		status = entities.StatusPartial
	}

	return domainproviders.TaxResult{
		Recommendations: recs,
		Status:          status,
	}
}
