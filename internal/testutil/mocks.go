package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/defidash/portfolio-engine/internal/domain/entities"
	domainproviders "github.com/defidash/portfolio-engine/internal/domain/providers"
	"github.com/defidash/portfolio-engine/internal/domain/repositories"
	"github.com/defidash/portfolio-engine/internal/infrastructure/cache"
)

// MockCall records one invocation on a mock
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockWalletRegistry is a mock implementation of WalletRegistry
type MockWalletRegistry struct {
	mu sync.Mutex

	ListWalletsForUserFunc func(ctx context.Context, userID string) ([]repositories.RegisteredWallet, error)

	Calls []MockCall
}

func NewMockWalletRegistry() *MockWalletRegistry {
	return &MockWalletRegistry{}
}

func (m *MockWalletRegistry) ListWalletsForUser(ctx context.Context, userID string) ([]repositories.RegisteredWallet, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "ListWalletsForUser", Args: []interface{}{userID}})
	m.mu.Unlock()

	if m.ListWalletsForUserFunc != nil {
		return m.ListWalletsForUserFunc(ctx, userID)
	}
	return nil, nil
}

// MockBalanceProvider is a mock implementation of BalanceProvider
type MockBalanceProvider struct {
	mu sync.Mutex

	FetchBalancesFunc func(ctx context.Context, address string) domainproviders.BalanceResult

	Calls []MockCall
}

func NewMockBalanceProvider() *MockBalanceProvider {
	return &MockBalanceProvider{}
}

func (m *MockBalanceProvider) FetchBalances(ctx context.Context, address string) domainproviders.BalanceResult {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FetchBalances", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.FetchBalancesFunc != nil {
		return m.FetchBalancesFunc(ctx, address)
	}
	return domainproviders.BalanceResult{
		Tokens:   []domainproviders.RawBalance{},
		ValuedAt: time.Now().UTC(),
		Status:   entities.StatusOK,
	}
}

func (m *MockBalanceProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockSecurityScanner is a mock implementation of SecurityScanner
type MockSecurityScanner struct {
	mu sync.Mutex

	ScanWalletFunc func(ctx context.Context, address string) domainproviders.SecurityResult

	Calls []MockCall
}

func NewMockSecurityScanner() *MockSecurityScanner {
	return &MockSecurityScanner{}
}

func (m *MockSecurityScanner) ScanWallet(ctx context.Context, address string) domainproviders.SecurityResult {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "ScanWallet", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.ScanWalletFunc != nil {
		return m.ScanWalletFunc(ctx, address)
	}
	return domainproviders.SecurityResult{
		Findings: entities.SecurityFindings{TrustScore: 100},
		Status:   entities.StatusOK,
	}
}

func (m *MockSecurityScanner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockOpportunityFinder is a mock implementation of OpportunityFinder
type MockOpportunityFinder struct {
	mu sync.Mutex

	FindForWalletFunc func(ctx context.Context, address string) domainproviders.OpportunityResult

	Calls []MockCall
}

func NewMockOpportunityFinder() *MockOpportunityFinder {
	return &MockOpportunityFinder{}
}

func (m *MockOpportunityFinder) FindForWallet(ctx context.Context, address string) domainproviders.OpportunityResult {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FindForWallet", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.FindForWalletFunc != nil {
		return m.FindForWalletFunc(ctx, address)
	}
	return domainproviders.OpportunityResult{
		Opportunities: []entities.Opportunity{},
		Status:        entities.StatusOK,
	}
}

func (m *MockOpportunityFinder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockTaxOptimizer is a mock implementation of TaxOptimizer
type MockTaxOptimizer struct {
	mu sync.Mutex

	RecommendForWalletFunc func(ctx context.Context, address string) domainproviders.TaxResult

	Calls []MockCall
}

func NewMockTaxOptimizer() *MockTaxOptimizer {
	return &MockTaxOptimizer{}
}

func (m *MockTaxOptimizer) RecommendForWallet(ctx context.Context, address string) domainproviders.TaxResult {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "RecommendForWallet", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.RecommendForWalletFunc != nil {
		return m.RecommendForWalletFunc(ctx, address)
	}
	return domainproviders.TaxResult{
		Recommendations: []entities.TaxRecommendation{},
		Status:          entities.StatusOK,
	}
}

func (m *MockTaxOptimizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockPriceOracle is a mock implementation of PriceOracle
type MockPriceOracle struct {
	mu sync.Mutex

	GetPricesFunc func(ctx context.Context, symbols []string) map[string]entities.TokenPrice

	Calls []MockCall
}

func NewMockPriceOracle() *MockPriceOracle {
	return &MockPriceOracle{}
}

func (m *MockPriceOracle) GetPrices(ctx context.Context, symbols []string) map[string]entities.TokenPrice {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetPrices", Args: []interface{}{symbols}})
	m.mu.Unlock()

	if m.GetPricesFunc != nil {
		return m.GetPricesFunc(ctx, symbols)
	}
	return map[string]entities.TokenPrice{}
}

// MockSnapshotCache is an in-memory snapshot cache with hooks
type MockSnapshotCache struct {
	mu      sync.Mutex
	entries map[string]entities.CacheEntry

	GetFunc func(ctx context.Context, key string) (*entities.CacheEntry, error)
	SetFunc func(ctx context.Context, key string, entry entities.CacheEntry) error

	GetCalls int
	SetCalls int
}

func NewMockSnapshotCache() *MockSnapshotCache {
	return &MockSnapshotCache{
		entries: make(map[string]entities.CacheEntry),
	}
}

func (m *MockSnapshotCache) Get(ctx context.Context, key string) (*entities.CacheEntry, error) {
	m.mu.Lock()
	m.GetCalls++
	m.mu.Unlock()

	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok || entry.Expired(time.Now()) {
		return nil, cache.ErrCacheMiss
	}
	return &entry, nil
}

func (m *MockSnapshotCache) Set(ctx context.Context, key string, entry entities.CacheEntry) error {
	m.mu.Lock()
	m.SetCalls++
	m.mu.Unlock()

	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
	return nil
}
