package providers

import (
	"context"

	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/config"
	"github.com/defidash/portfolio-engine/internal/domain/entities"
	domainproviders "github.com/defidash/portfolio-engine/internal/domain/providers"
)

// Ensure OpportunityClient implements OpportunityFinder
var _ domainproviders.OpportunityFinder = (*OpportunityClient)(nil)

// OpportunityClient queries the Hunter opportunity discovery service
type OpportunityClient struct {
	api httpAPI
}

// NewOpportunityClient creates a new opportunity client
func NewOpportunityClient(cfg config.ProvidersConfig, logger *zap.Logger) *OpportunityClient {
	return &OpportunityClient{
		api: newHTTPAPI(cfg.OpportunityURL, entities.ClientOpportunity, cfg.OpportunityTimeout, logger),
	}
}

// opportunityResponse is the discovery service's wire format
type opportunityResponse struct {
	Opportunities []struct {
		ID           string  `json:"id"`
		Protocol     string  `json:"protocol"`
		Pool         string  `json:"pool"`
		APR          float64 `json:"apr"`
		TrustScore   float64 `json:"trust_score"`
		OpenPosition bool    `json:"open_position"`
	} `json:"opportunities"`
	Partial bool `json:"partial"`
}

// FindForWallet returns ranked opportunities and open positions for a
// wallet, each tagged with the wallet it was found for.
func (c *OpportunityClient) FindForWallet(ctx context.Context, address string) domainproviders.OpportunityResult {
	var resp opportunityResponse
	if err := c.api.getJSON(ctx, "/v1/wallets/"+address+"/opportunities", &resp); err != nil {
		c.api.logFailure(address, err)
		return domainproviders.OpportunityResult{Status: entities.StatusFailed}
	}

	opps := make([]entities.Opportunity, 0, len(resp.Opportunities))
	for _, o := range resp.Opportunities {
		opps = append(opps, entities.Opportunity{
			ID:            o.ID,
			Protocol:      o.Protocol,
			Pool:          o.Pool,
			APR:           o.APR,
			TrustScore:    o.TrustScore,
			OpenPosition:  o.OpenPosition,
			WalletAddress: address,
		})
	}

	status := entities.StatusOK
	if resp.Partial {
		status = entities.StatusPartial
	}

	return domainproviders.OpportunityResult{
		Opportunities: opps,
		Status:        status,
	}
}
