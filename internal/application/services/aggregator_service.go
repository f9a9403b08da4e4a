package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/defidash/portfolio-engine/internal/config"
	"github.com/defidash/portfolio-engine/internal/domain/entities"
	domainproviders "github.com/defidash/portfolio-engine/internal/domain/providers"
	"github.com/defidash/portfolio-engine/internal/infrastructure/cache"
)

// SnapshotCache abstracts the snapshot cache store. A nil cache is
// legal everywhere; an unreachable cache degrades to always-recompute,
// never to a failed request.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (*entities.CacheEntry, error)
	Set(ctx context.Context, key string, entry entities.CacheEntry) error
}

// SnapshotResponse wraps a snapshot for API consumers
type SnapshotResponse struct {
	Snapshot     entities.PortfolioSnapshot `json:"snapshot"`
	Confidence   float64                    `json:"confidence"`
	DegradedMode bool                       `json:"degraded_mode"`
	CachedAt     time.Time                  `json:"cached_at"`
}

// AggregatorService orchestrates the snapshot pipeline: resolve the
// scope, fan out to the upstream clients per wallet, merge, score, and
// cache with a confidence-scaled TTL.
type AggregatorService struct {
	resolver      *ResolverService
	valuer        *ValuationService
	balances      domainproviders.BalanceProvider
	security      domainproviders.SecurityScanner
	opportunities domainproviders.OpportunityFinder
	tax           domainproviders.TaxOptimizer
	cache         SnapshotCache
	cfg           config.AggregatorConfig
	logger        *zap.Logger
	flight        singleflight.Group
}

// NewAggregatorService creates a new snapshot aggregator
func NewAggregatorService(
	resolver *ResolverService,
	valuer *ValuationService,
	balances domainproviders.BalanceProvider,
	security domainproviders.SecurityScanner,
	opportunities domainproviders.OpportunityFinder,
	tax domainproviders.TaxOptimizer,
	snapshotCache SnapshotCache,
	cfg config.AggregatorConfig,
	logger *zap.Logger,
) *AggregatorService {
	return &AggregatorService{
		resolver:      resolver,
		valuer:        valuer,
		balances:      balances,
		security:      security,
		opportunities: opportunities,
		tax:           tax,
		cache:         snapshotCache,
		cfg:           cfg,
		logger:        logger,
	}
}

// GetSnapshot returns the portfolio snapshot for a wallet scope.
// Only a malformed scope is an error; every upstream problem resolves
// to a best-effort snapshot with an honest confidence score.
func (s *AggregatorService) GetSnapshot(ctx context.Context, scope entities.WalletScope) (*SnapshotResponse, error) {
	addresses, err := s.resolver.Resolve(ctx, scope)
	if err != nil {
		return nil, err
	}

	if len(addresses) == 0 {
		// No wallets registered: explicit empty state, no upstream calls.
		now := time.Now().UTC()
		return &SnapshotResponse{
			Snapshot:     entities.EmptySnapshot(now),
			Confidence:   0,
			DegradedMode: true,
			CachedAt:     now,
		}, nil
	}

	// The cache key doubles as the coalescing key: concurrent callers
	// for the same uncached scope attach to one in-flight aggregation.
	key := fmt.Sprintf("snapshot:%s:%s", scope.Key(), addresses.Hash())

	v, err, shared := s.flight.Do(key, func() (interface{}, error) {
		return s.snapshotForKey(ctx, key, addresses)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		coalescedRequests.Inc()
	}

	return v.(*SnapshotResponse), nil
}

// snapshotForKey serves from cache when possible, otherwise runs the
// full fan-out and stores the result.
func (s *AggregatorService) snapshotForKey(ctx context.Context, key string, addresses entities.ResolvedAddressSet) (*SnapshotResponse, error) {
	if s.cache != nil {
		entry, err := s.cache.Get(ctx, key)
		if err == nil {
			snapshotCacheHits.Inc()
			s.logger.Debug("Snapshot cache hit", zap.String("key", key))
			// The cached entry keeps its original timestamp; a hit never
			// refreshes it.
			return responseFromEntry(entry), nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Snapshot cache unavailable, recomputing", zap.Error(err))
		}
		snapshotCacheMisses.Inc()
	}

	now := time.Now().UTC()
	start := time.Now()
	results := s.fanOut(ctx, addresses)
	fanoutDuration.Observe(time.Since(start).Seconds())

	snapshot := mergeResults(results, now)
	confidence := computeConfidence(results)
	snapshot.Confidence = confidence
	snapshot.DegradedMode = confidence < 1.0
	snapshotConfidence.Observe(confidence)

	s.observeUpstreamOutcomes(results)

	ttl := s.snapshotTTL(confidence)
	entry := entities.CacheEntry{
		Snapshot:   snapshot,
		Confidence: confidence,
		CachedAt:   now,
		TTLSeconds: int64(ttl.Seconds()),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, entry); err != nil {
			s.logger.Warn("Failed to cache snapshot", zap.String("key", key), zap.Error(err))
		}
	}

	s.logger.Info("Snapshot aggregated",
		zap.Int("wallets", len(addresses)),
		zap.Float64("confidence", confidence),
		zap.Duration("ttl", ttl),
	)

	return responseFromEntry(&entry), nil
}

// fanOut runs all address x client calls through one bounded task
// pool. A failed or timed-out call never cancels its siblings; each
// outcome lands in its own slot.
func (s *AggregatorService) fanOut(ctx context.Context, addresses entities.ResolvedAddressSet) []entities.PerWalletResult {
	type walletSlots struct {
		balances      entities.WalletBalances
		balanceStatus entities.SourceStatus
		security      domainproviders.SecurityResult
		opportunity   domainproviders.OpportunityResult
		tax           domainproviders.TaxResult
	}
	slots := make([]walletSlots, len(addresses))

	g := new(errgroup.Group)
	if s.cfg.FanoutLimit > 0 {
		g.SetLimit(s.cfg.FanoutLimit)
	}

	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			raw := s.balances.FetchBalances(ctx, addr)
			slots[i].balances, slots[i].balanceStatus = s.valuer.Value(ctx, raw)
			return nil
		})
		g.Go(func() error {
			slots[i].security = s.security.ScanWallet(ctx, addr)
			return nil
		})
		g.Go(func() error {
			slots[i].opportunity = s.opportunities.FindForWallet(ctx, addr)
			return nil
		})
		g.Go(func() error {
			slots[i].tax = s.tax.RecommendForWallet(ctx, addr)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]entities.PerWalletResult, len(addresses))
	for i, addr := range addresses {
		results[i] = entities.PerWalletResult{
			Address:            addr,
			Balances:           slots[i].balances,
			Security:           slots[i].security.Findings,
			Opportunities:      slots[i].opportunity.Opportunities,
			TaxRecommendations: slots[i].tax.Recommendations,
			SourceStatus: map[entities.ClientName]entities.SourceStatus{
				entities.ClientBalance:     slots[i].balanceStatus,
				entities.ClientSecurity:    slots[i].security.Status,
				entities.ClientOpportunity: slots[i].opportunity.Status,
				entities.ClientTax:         slots[i].tax.Status,
			},
		}
	}

	return results
}

// snapshotTTL scales the base TTL by confidence so low-confidence
// snapshots expire faster, clamped to [MinTTL, MaxTTL].
func (s *AggregatorService) snapshotTTL(confidence float64) time.Duration {
	ttl := time.Duration(confidence * float64(s.cfg.BaseTTL))
	if ttl < s.cfg.MinTTL {
		return s.cfg.MinTTL
	}
	if ttl > s.cfg.MaxTTL {
		return s.cfg.MaxTTL
	}
	return ttl
}

func (s *AggregatorService) observeUpstreamOutcomes(results []entities.PerWalletResult) {
	for _, r := range results {
		for _, client := range entities.AllClients {
			upstreamCallsTotal.WithLabelValues(string(client), string(r.SourceStatus[client])).Inc()
		}
	}
}

func responseFromEntry(entry *entities.CacheEntry) *SnapshotResponse {
	return &SnapshotResponse{
		Snapshot:     entry.Snapshot,
		Confidence:   entry.Confidence,
		DegradedMode: entry.Snapshot.DegradedMode,
		CachedAt:     entry.CachedAt,
	}
}
