package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/domain/entities"
	domainproviders "github.com/defidash/portfolio-engine/internal/domain/providers"
)

// ValuationService converts raw token balances into fiat using the
// price oracle.
type ValuationService struct {
	oracle domainproviders.PriceOracle
	logger *zap.Logger
}

// NewValuationService creates a new valuation service
func NewValuationService(oracle domainproviders.PriceOracle, logger *zap.Logger) *ValuationService {
	return &ValuationService{
		oracle: oracle,
		logger: logger,
	}
}

// Value prices a wallet's raw balance result. A token with no known
// price stays in the list but is excluded from the fiat total, and the
// valuation status drops to partial. A failed balance read passes
// through as failed with an empty token list.
func (s *ValuationService) Value(ctx context.Context, raw domainproviders.BalanceResult) (entities.WalletBalances, entities.SourceStatus) {
	if raw.Status == entities.StatusFailed {
		return entities.WalletBalances{Tokens: []entities.TokenBalance{}}, entities.StatusFailed
	}

	symbols := make([]string, 0, len(raw.Tokens))
	for _, t := range raw.Tokens {
		symbols = append(symbols, t.Symbol)
	}
	prices := s.oracle.GetPrices(ctx, symbols)

	status := raw.Status
	balances := entities.WalletBalances{
		Tokens:   make([]entities.TokenBalance, 0, len(raw.Tokens)),
		ValuedAt: raw.ValuedAt,
	}

	for _, t := range raw.Tokens {
		symbol := strings.ToUpper(t.Symbol)
		tb := entities.TokenBalance{
			Symbol:   symbol,
			Quantity: t.Quantity,
		}

		if price, known := prices[symbol]; known {
			tb.PriceUSD = price.USD
			tb.PriceKnown = true
			tb.FiatValue = t.Quantity * price.USD
			balances.TotalFiat += tb.FiatValue
			balances.Delta24h += tb.FiatValue * price.Change24h / 100
		} else {
			s.logger.Debug("No price for token, excluding from total",
				zap.String("symbol", symbol),
			)
			status = entities.StatusPartial
		}

		balances.Tokens = append(balances.Tokens, tb)
	}

	return balances, status
}
