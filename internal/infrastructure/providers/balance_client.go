package providers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/config"
	"github.com/defidash/portfolio-engine/internal/domain/entities"
	domainproviders "github.com/defidash/portfolio-engine/internal/domain/providers"
)

// Ensure BalanceClient implements BalanceProvider
var _ domainproviders.BalanceProvider = (*BalanceClient)(nil)

// BalanceClient reads indexed token balances over HTTP. When an
// on-chain reader is configured the native ETH balance is read from the
// node as well; a reader failure degrades to the indexed result only.
type BalanceClient struct {
	api     httpAPI
	onchain *OnchainReader
	logger  *zap.Logger
}

// NewBalanceClient creates a new balance client
func NewBalanceClient(cfg config.ProvidersConfig, onchain *OnchainReader, logger *zap.Logger) *BalanceClient {
	return &BalanceClient{
		api:     newHTTPAPI(cfg.BalanceURL, entities.ClientBalance, cfg.BalanceTimeout, logger),
		onchain: onchain,
		logger:  logger,
	}
}

// balanceResponse is the provider's wire format
type balanceResponse struct {
	Tokens []struct {
		Symbol   string  `json:"symbol"`
		Quantity float64 `json:"quantity"`
	} `json:"tokens"`
	ValuedAt time.Time `json:"valued_at"`
}

// FetchBalances reads the token balances for a wallet. Provider errors
// and timeouts come back as a StatusFailed result, never as an error.
func (c *BalanceClient) FetchBalances(ctx context.Context, address string) domainproviders.BalanceResult {
	var resp balanceResponse
	if err := c.api.getJSON(ctx, "/v1/wallets/"+address+"/balances", &resp); err != nil {
		c.api.logFailure(address, err)
		return domainproviders.BalanceResult{Status: entities.StatusFailed}
	}

	tokens := make([]domainproviders.RawBalance, 0, len(resp.Tokens)+1)
	for _, t := range resp.Tokens {
		tokens = append(tokens, domainproviders.RawBalance{
			Symbol:   t.Symbol,
			Quantity: t.Quantity,
		})
	}

	if c.onchain != nil {
		if eth, err := c.onchain.NativeBalance(ctx, address); err != nil {
			c.logger.Debug("On-chain native balance read failed",
				zap.String("address", address),
				zap.Error(err),
			)
		} else if eth > 0 {
			tokens = mergeNativeBalance(tokens, eth)
		}
	}

	valuedAt := resp.ValuedAt
	if valuedAt.IsZero() {
		valuedAt = time.Now().UTC()
	}

	return domainproviders.BalanceResult{
		Tokens:   tokens,
		ValuedAt: valuedAt,
		Status:   entities.StatusOK,
	}
}

// mergeNativeBalance prefers the node's ETH reading over the indexed
// one, which can lag behind the chain head.
func mergeNativeBalance(tokens []domainproviders.RawBalance, eth float64) []domainproviders.RawBalance {
	for i, t := range tokens {
		if t.Symbol == "ETH" {
			tokens[i].Quantity = eth
			return tokens
		}
	}
	return append(tokens, domainproviders.RawBalance{Symbol: "ETH", Quantity: eth})
}
