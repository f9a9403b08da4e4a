package entities

import "time"

// SourceStatus records the outcome of one upstream client call
type SourceStatus string

const (
	StatusOK      SourceStatus = "ok"
	StatusPartial SourceStatus = "partial"
	StatusFailed  SourceStatus = "failed"
)

// Weight returns the contribution of this status to the confidence
// score: ok counts as a full success, partial as half, failed as zero.
func (s SourceStatus) Weight() float64 {
	switch s {
	case StatusOK:
		return 1.0
	case StatusPartial:
		return 0.5
	default:
		return 0
	}
}

// ClientName identifies one of the upstream data sources
type ClientName string

const (
	ClientBalance     ClientName = "balance"
	ClientSecurity    ClientName = "security"
	ClientOpportunity ClientName = "opportunity"
	ClientTax         ClientName = "tax"
)

// AllClients is the fixed set of upstream clients fanned out per wallet
var AllClients = []ClientName{ClientBalance, ClientSecurity, ClientOpportunity, ClientTax}

// TokenBalance is a single token position within one wallet
type TokenBalance struct {
	Symbol     string  `json:"symbol"`
	Quantity   float64 `json:"quantity"`
	PriceUSD   float64 `json:"price_usd"`
	PriceKnown bool    `json:"price_known"`
	FiatValue  float64 `json:"fiat_value"`
}

// WalletBalances holds the valued token list for one wallet
type WalletBalances struct {
	Tokens    []TokenBalance `json:"tokens"`
	TotalFiat float64        `json:"total_fiat"`
	Delta24h  float64        `json:"delta_24h"`
	ValuedAt  time.Time      `json:"valued_at"`
}

// RiskFlag is a single security finding raised against a wallet
type RiskFlag struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// TokenApproval is an outstanding spend approval found by the scanner
type TokenApproval struct {
	TokenSymbol string `json:"token_symbol"`
	Spender     string `json:"spender"`
	Amount      string `json:"amount"`
	Unlimited   bool   `json:"unlimited"`
}

// SecurityFindings is the scanner result for one wallet.
// TrustScore is 0-100, higher meaning safer.
type SecurityFindings struct {
	TrustScore int             `json:"trust_score"`
	Flags      []RiskFlag      `json:"flags"`
	Approvals  []TokenApproval `json:"approvals"`
}

// RiskScore derives a 0-100 risk from the trust score (inverse scale)
func (f SecurityFindings) RiskScore() int {
	risk := 100 - f.TrustScore
	if risk < 0 {
		return 0
	}
	if risk > 100 {
		return 100
	}
	return risk
}

// Opportunity is one yield/strategy candidate returned by the
// discovery service, tagged with the wallet it was found for.
type Opportunity struct {
	ID            string  `json:"id"`
	Protocol      string  `json:"protocol"`
	Pool          string  `json:"pool"`
	APR           float64 `json:"apr"`
	TrustScore    float64 `json:"trust_score"`
	OpenPosition  bool    `json:"open_position"`
	WalletAddress string  `json:"wallet_address"`
}

// TaxRecommendation is one harvest/rebalance action with its
// estimated savings, tagged with the wallet it applies to.
type TaxRecommendation struct {
	ID               string  `json:"id"`
	Action           string  `json:"action"`
	TokenSymbol      string  `json:"token_symbol"`
	EstimatedSavings float64 `json:"estimated_savings"`
	WalletAddress    string  `json:"wallet_address"`
}

// PerWalletResult collects the four client outcomes for one resolved
// address. It exists only between fan-out and merge; only the merged
// snapshot is cached.
type PerWalletResult struct {
	Address            string
	Balances           WalletBalances
	Security           SecurityFindings
	Opportunities      []Opportunity
	TaxRecommendations []TaxRecommendation
	SourceStatus       map[ClientName]SourceStatus
}
