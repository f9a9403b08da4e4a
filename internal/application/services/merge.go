package services

import (
	"sort"
	"time"

	"github.com/defidash/portfolio-engine/internal/domain/entities"
)

// mergeResults folds per-wallet results into one snapshot. The fold is
// commutative and associative over its inputs: everything is re-sorted
// on stable keys at the end, so upstream completion order never changes
// the output. Confidence and degraded-mode are set by the caller.
func mergeResults(results []entities.PerWalletResult, now time.Time) entities.PortfolioSnapshot {
	snap := entities.EmptySnapshot(now)
	snap.DegradedMode = false

	sorted := make([]entities.PerWalletResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Address < sorted[j].Address
	})

	maxRisk := 0
	for _, r := range sorted {
		snap.NetWorthUSD += r.Balances.TotalFiat
		snap.Delta24hUSD += r.Balances.Delta24h

		for _, t := range r.Balances.Tokens {
			snap.Positions = append(snap.Positions, entities.Position{
				WalletAddress: r.Address,
				Symbol:        t.Symbol,
				Quantity:      t.Quantity,
				PriceUSD:      t.PriceUSD,
				PriceKnown:    t.PriceKnown,
				FiatValue:     t.FiatValue,
			})
		}

		// Worst-case risk wins. Wallets whose security call failed are
		// excluded from the max but recorded as degraded.
		switch r.SourceStatus[entities.ClientSecurity] {
		case entities.StatusOK, entities.StatusPartial:
			if risk := r.Security.RiskScore(); risk > maxRisk {
				maxRisk = risk
			}
			snap.RiskFlags = append(snap.RiskFlags, r.Security.Flags...)
			snap.Approvals = append(snap.Approvals, r.Security.Approvals...)
		case entities.StatusFailed:
			snap.SecurityDegraded = append(snap.SecurityDegraded, r.Address)
		}

		snap.Opportunities = append(snap.Opportunities, r.Opportunities...)
		snap.TaxRecommendations = append(snap.TaxRecommendations, r.TaxRecommendations...)

		// Every resolved wallet appears in the breakdown, including one
		// that failed on all four clients; dropping it would silently
		// understate the net worth.
		snap.Wallets = append(snap.Wallets, entities.WalletBreakdown{
			Address:      r.Address,
			TotalFiat:    r.Balances.TotalFiat,
			SourceStatus: r.SourceStatus,
		})
	}
	snap.RiskScore = maxRisk

	sort.Slice(snap.Positions, func(i, j int) bool {
		a, b := snap.Positions[i], snap.Positions[j]
		if a.FiatValue != b.FiatValue {
			return a.FiatValue > b.FiatValue
		}
		if a.WalletAddress != b.WalletAddress {
			return a.WalletAddress < b.WalletAddress
		}
		return a.Symbol < b.Symbol
	})

	sort.Slice(snap.Opportunities, func(i, j int) bool {
		a, b := snap.Opportunities[i], snap.Opportunities[j]
		if a.TrustScore != b.TrustScore {
			return a.TrustScore > b.TrustScore
		}
		if a.WalletAddress != b.WalletAddress {
			return a.WalletAddress < b.WalletAddress
		}
		return a.ID < b.ID
	})

	sort.Slice(snap.TaxRecommendations, func(i, j int) bool {
		a, b := snap.TaxRecommendations[i], snap.TaxRecommendations[j]
		if a.EstimatedSavings != b.EstimatedSavings {
			return a.EstimatedSavings > b.EstimatedSavings
		}
		if a.WalletAddress != b.WalletAddress {
			return a.WalletAddress < b.WalletAddress
		}
		return a.ID < b.ID
	})

	return snap
}

// computeConfidence is the ratio of successful-weighted upstream calls
// to total attempted calls: ok counts 1, partial 0.5, failed 0.
func computeConfidence(results []entities.PerWalletResult) float64 {
	attempted := 0
	weighted := 0.0
	for _, r := range results {
		for _, client := range entities.AllClients {
			attempted++
			weighted += r.SourceStatus[client].Weight()
		}
	}
	if attempted == 0 {
		return 0
	}
	return weighted / float64(attempted)
}
