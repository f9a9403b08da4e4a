package providers

import (
	"context"
	"time"

	"github.com/defidash/portfolio-engine/internal/domain/entities"
)

// Upstream client contracts. Every client converts its own failures
// (timeouts, HTTP errors, malformed payloads) into a result tagged
// StatusFailed; callers never receive an error from these interfaces.

// RawBalance is an unvalued token quantity read from the balance provider
type RawBalance struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

// BalanceResult is the outcome of one balance read for one wallet
type BalanceResult struct {
	Tokens   []RawBalance
	ValuedAt time.Time
	Status   entities.SourceStatus
}

// BalanceProvider reads token balances for a wallet
type BalanceProvider interface {
	FetchBalances(ctx context.Context, address string) BalanceResult
}

// SecurityResult is the outcome of one wallet risk scan
type SecurityResult struct {
	Findings entities.SecurityFindings
	Status   entities.SourceStatus
}

// SecurityScanner queries the wallet risk scanning service
type SecurityScanner interface {
	ScanWallet(ctx context.Context, address string) SecurityResult
}

// OpportunityResult is the outcome of one opportunity discovery call
type OpportunityResult struct {
	Opportunities []entities.Opportunity
	Status        entities.SourceStatus
}

// OpportunityFinder queries the yield/opportunity discovery service
type OpportunityFinder interface {
	FindForWallet(ctx context.Context, address string) OpportunityResult
}

// TaxResult is the outcome of one tax-lot analysis call
type TaxResult struct {
	Recommendations []entities.TaxRecommendation
	Status          entities.SourceStatus
}

// TaxOptimizer queries the tax-lot analysis service
type TaxOptimizer interface {
	RecommendForWallet(ctx context.Context, address string) TaxResult
}

// PriceSource is a single quote provider. Unlike the wallet clients it
// returns an error so the oracle can decide when to fail over.
type PriceSource interface {
	Name() string
	GetPrices(ctx context.Context, symbols []string) (map[string]entities.TokenPrice, error)
}

// PriceOracle resolves fiat prices for a symbol set, batching and
// caching internally. Symbols no source can quote are omitted from the
// result map; a missing key means "unknown", never "zero".
type PriceOracle interface {
	GetPrices(ctx context.Context, symbols []string) map[string]entities.TokenPrice
}
