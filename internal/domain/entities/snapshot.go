package entities

import "time"

// Position is a token holding in the merged snapshot, tagged with the
// wallet it came from.
type Position struct {
	WalletAddress string  `json:"wallet_address"`
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	PriceUSD      float64 `json:"price_usd"`
	PriceKnown    bool    `json:"price_known"`
	FiatValue     float64 `json:"fiat_value"`
}

// WalletBreakdown reports each wallet's contribution and per-client
// outcomes. A wallet that failed on every client still appears here
// with zero contribution so the total is never silently understated.
type WalletBreakdown struct {
	Address      string                      `json:"address"`
	TotalFiat    float64                     `json:"total_fiat"`
	SourceStatus map[ClientName]SourceStatus `json:"source_status"`
}

// PortfolioSnapshot is the merged aggregate over all resolved wallets
type PortfolioSnapshot struct {
	NetWorthUSD        float64             `json:"net_worth_usd"`
	Delta24hUSD        float64             `json:"delta_24h_usd"`
	Positions          []Position          `json:"positions"`
	RiskScore          int                 `json:"risk_score"`
	RiskFlags          []RiskFlag          `json:"risk_flags"`
	Approvals          []TokenApproval     `json:"approvals"`
	SecurityDegraded   []string            `json:"security_degraded,omitempty"`
	Opportunities      []Opportunity       `json:"opportunities"`
	TaxRecommendations []TaxRecommendation `json:"tax_recommendations"`
	Wallets            []WalletBreakdown   `json:"wallets"`
	Confidence         float64             `json:"confidence"`
	DegradedMode       bool                `json:"degraded_mode"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// EmptySnapshot is returned when a scope resolves to no wallets.
// Confidence zero keeps it out of any long-lived cache slot.
func EmptySnapshot(now time.Time) PortfolioSnapshot {
	return PortfolioSnapshot{
		Positions:          []Position{},
		RiskFlags:          []RiskFlag{},
		Approvals:          []TokenApproval{},
		Opportunities:      []Opportunity{},
		TaxRecommendations: []TaxRecommendation{},
		Wallets:            []WalletBreakdown{},
		Confidence:         0,
		DegradedMode:       true,
		GeneratedAt:        now,
	}
}

// CacheEntry wraps a snapshot in the cache with its risk-adjusted TTL
type CacheEntry struct {
	Snapshot   PortfolioSnapshot `json:"snapshot"`
	Confidence float64           `json:"confidence"`
	CachedAt   time.Time         `json:"cached_at"`
	TTLSeconds int64             `json:"ttl_seconds"`
}

// Expired reports whether the entry must be treated as a cache miss
func (e CacheEntry) Expired(now time.Time) bool {
	return now.After(e.CachedAt.Add(time.Duration(e.TTLSeconds) * time.Second))
}
