package testutil

import (
	"time"

	"github.com/defidash/portfolio-engine/internal/domain/entities"
	domainproviders "github.com/defidash/portfolio-engine/internal/domain/providers"
)

// Common test addresses and identifiers
const (
	AliceWallet = "0x1111111111111111111111111111111111111111"
	BobWallet   = "0x2222222222222222222222222222222222222222"
	CarolWallet = "0x3333333333333333333333333333333333333333"
	TestUserID  = "user-42"
)

// Token builds a raw balance entry
func Token(symbol string, quantity float64) domainproviders.RawBalance {
	return domainproviders.RawBalance{Symbol: symbol, Quantity: quantity}
}

// Balances builds a successful balance result with the given tokens
func Balances(tokens ...domainproviders.RawBalance) domainproviders.BalanceResult {
	return domainproviders.BalanceResult{
		Tokens:   tokens,
		ValuedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Status:   entities.StatusOK,
	}
}

// FailedBalances builds a failed balance result
func FailedBalances() domainproviders.BalanceResult {
	return domainproviders.BalanceResult{Status: entities.StatusFailed}
}

// CleanScan builds a successful security result with the given trust score
func CleanScan(trustScore int) domainproviders.SecurityResult {
	return domainproviders.SecurityResult{
		Findings: entities.SecurityFindings{TrustScore: trustScore},
		Status:   entities.StatusOK,
	}
}

// FailedScan builds a failed security result
func FailedScan() domainproviders.SecurityResult {
	return domainproviders.SecurityResult{Status: entities.StatusFailed}
}

// Prices builds a flat price map (no 24h movement) from symbol/value pairs
func Prices(pairs map[string]float64) map[string]entities.TokenPrice {
	prices := make(map[string]entities.TokenPrice, len(pairs))
	for symbol, usd := range pairs {
		prices[symbol] = entities.TokenPrice{USD: usd}
	}
	return prices
}
