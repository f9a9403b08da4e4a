package providers

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/config"
	"github.com/defidash/portfolio-engine/internal/domain/entities"
	domainproviders "github.com/defidash/portfolio-engine/internal/domain/providers"
)

// Ensure HTTPPriceSource implements PriceSource
var _ domainproviders.PriceSource = (*HTTPPriceSource)(nil)

// HTTPPriceSource fetches quotes from a REST price provider. One call
// with N symbols issues exactly one provider request.
type HTTPPriceSource struct {
	api  httpAPI
	name string
}

// NewHTTPPriceSource creates a price source for one provider endpoint
func NewHTTPPriceSource(name, baseURL string, cfg config.ProvidersConfig, logger *zap.Logger) *HTTPPriceSource {
	return &HTTPPriceSource{
		api:  newHTTPAPI(baseURL, entities.ClientName("price_"+name), cfg.PriceTimeout, logger),
		name: name,
	}
}

// Name identifies this source in logs and failover metrics
func (s *HTTPPriceSource) Name() string {
	return s.name
}

// priceResponse is the provider's wire format
type priceResponse struct {
	Prices map[string]struct {
		USD       float64 `json:"usd"`
		Change24h float64 `json:"change_24h"`
	} `json:"prices"`
}

// GetPrices fetches quotes for the symbol set in a single request.
// Symbols the provider does not know are simply absent from the map.
func (s *HTTPPriceSource) GetPrices(ctx context.Context, symbols []string) (map[string]entities.TokenPrice, error) {
	var resp priceResponse
	path := "/v1/prices?symbols=" + strings.Join(symbols, ",")
	if err := s.api.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	prices := make(map[string]entities.TokenPrice, len(resp.Prices))
	for symbol, p := range resp.Prices {
		prices[strings.ToUpper(symbol)] = entities.TokenPrice{
			USD:       p.USD,
			Change24h: p.Change24h,
		}
	}

	return prices, nil
}

// Ensure CachingOracle implements PriceOracle
var _ domainproviders.PriceOracle = (*CachingOracle)(nil)

// CachingOracle resolves prices through a primary source with failover
// to a secondary, caching each symbol for a short TTL. A symbol neither
// source can quote is omitted from the result, never zeroed.
type CachingOracle struct {
	primary   domainproviders.PriceSource
	secondary domainproviders.PriceSource
	cache     *gocache.Cache
	logger    *zap.Logger
}

// NewCachingOracle creates a price oracle over the two sources
func NewCachingOracle(primary, secondary domainproviders.PriceSource, ttl time.Duration, logger *zap.Logger) *CachingOracle {
	return &CachingOracle{
		primary:   primary,
		secondary: secondary,
		cache:     gocache.New(ttl, 2*ttl),
		logger:    logger,
	}
}

// GetPrices resolves the symbol set, serving cached quotes first and
// batching the remainder into at most one request per source.
func (o *CachingOracle) GetPrices(ctx context.Context, symbols []string) map[string]entities.TokenPrice {
	result := make(map[string]entities.TokenPrice, len(symbols))

	var missing []string
	seen := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(symbol)
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}

		if cached, ok := o.cache.Get(symbol); ok {
			result[symbol] = cached.(entities.TokenPrice)
			continue
		}
		missing = append(missing, symbol)
	}

	if len(missing) == 0 {
		return result
	}

	fetched := o.fetchWithFailover(ctx, missing)
	for symbol, price := range fetched {
		o.cache.SetDefault(symbol, price)
		result[symbol] = price
	}

	return result
}

// fetchWithFailover queries the primary source and falls over to the
// secondary for the same symbol set when the primary call fails.
func (o *CachingOracle) fetchWithFailover(ctx context.Context, symbols []string) map[string]entities.TokenPrice {
	for _, source := range []domainproviders.PriceSource{o.primary, o.secondary} {
		if source == nil {
			continue
		}
		prices, err := source.GetPrices(ctx, symbols)
		if err != nil {
			o.logger.Warn("Price source failed",
				zap.String("source", source.Name()),
				zap.Int("symbols", len(symbols)),
				zap.Error(err),
			)
			continue
		}
		return prices
	}

	o.logger.Warn("All price sources failed", zap.Strings("symbols", symbols))
	return nil
}
