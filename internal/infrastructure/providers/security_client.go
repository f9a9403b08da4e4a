package providers

import (
	"context"

	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/config"
	"github.com/defidash/portfolio-engine/internal/domain/entities"
	domainproviders "github.com/defidash/portfolio-engine/internal/domain/providers"
)

// Ensure SecurityClient implements SecurityScanner
var _ domainproviders.SecurityScanner = (*SecurityClient)(nil)

// SecurityClient queries the Guardian wallet risk scanning service
type SecurityClient struct {
	api httpAPI
}

// NewSecurityClient creates a new security scan client
func NewSecurityClient(cfg config.ProvidersConfig, logger *zap.Logger) *SecurityClient {
	return &SecurityClient{
		api: newHTTPAPI(cfg.SecurityURL, entities.ClientSecurity, cfg.SecurityTimeout, logger),
	}
}

// securityResponse is the scanner's wire format. Partial is set when
// the scanner could not cover every approval contract.
type securityResponse struct {
	TrustScore int `json:"trust_score"`
	Flags      []struct {
		Severity    string `json:"severity"`
		Description string `json:"description"`
	} `json:"flags"`
	Approvals []struct {
		TokenSymbol string `json:"token_symbol"`
		Spender     string `json:"spender"`
		Amount      string `json:"amount"`
		Unlimited   bool   `json:"unlimited"`
	} `json:"approvals"`
	Partial bool `json:"partial"`
}

// ScanWallet runs a risk scan for one wallet. No internal retries;
// retry policy belongs to the caller.
func (c *SecurityClient) ScanWallet(ctx context.Context, address string) domainproviders.SecurityResult {
	var resp securityResponse
	if err := c.api.getJSON(ctx, "/v1/wallets/"+address+"/scan", &resp); err != nil {
		c.api.logFailure(address, err)
		return domainproviders.SecurityResult{Status: entities.StatusFailed}
	}

	findings := entities.SecurityFindings{
		TrustScore: resp.TrustScore,
		Flags:      make([]entities.RiskFlag, 0, len(resp.Flags)),
		Approvals:  make([]entities.TokenApproval, 0, len(resp.Approvals)),
	}
	for _, f := range resp.Flags {
		findings.Flags = append(findings.Flags, entities.RiskFlag{
			Severity:    f.Severity,
			Description: f.Description,
		})
	}
	for _, a := range resp.Approvals {
		findings.Approvals = append(findings.Approvals, entities.TokenApproval{
			TokenSymbol: a.TokenSymbol,
			Spender:     a.Spender,
			Amount:      a.Amount,
			Unlimited:   a.Unlimited,
		})
	}

	status := entities.StatusOK
	if resp.Partial {
		status = entities.StatusPartial
	}

	return domainproviders.SecurityResult{
		Findings: findings,
		Status:   status,
	}
}
