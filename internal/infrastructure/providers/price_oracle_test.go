package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/config"
	"github.com/defidash/portfolio-engine/internal/domain/entities"
)

// fakeSource is a scriptable in-memory price source
type fakeSource struct {
	name   string
	prices map[string]entities.TokenPrice
	err    error
	calls  int32
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) GetPrices(ctx context.Context, symbols []string) (map[string]entities.TokenPrice, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]entities.TokenPrice)
	for _, symbol := range symbols {
		if p, ok := s.prices[symbol]; ok {
			out[symbol] = p
		}
	}
	return out, nil
}

func (s *fakeSource) callCount() int {
	return int(atomic.LoadInt32(&s.calls))
}

func TestHTTPPriceSource_GetPrices(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("batches all symbols into one request", func(t *testing.T) {
		var requests int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requests, 1)
			if got := r.URL.Query().Get("symbols"); got != "ETH,USDC,SOL" {
				t.Errorf("expected symbols=ETH,USDC,SOL, got %q", got)
			}
			w.Write([]byte(`{"prices":{"eth":{"usd":2000,"change_24h":1.5},"usdc":{"usd":1},"sol":{"usd":150,"change_24h":-2}}}`))
		}))
		defer server.Close()

		source := NewHTTPPriceSource("primary", server.URL, config.ProvidersConfig{PriceTimeout: 2 * time.Second}, logger)
		prices, err := source.GetPrices(ctx, []string{"ETH", "USDC", "SOL"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := atomic.LoadInt32(&requests); n != 1 {
			t.Errorf("expected 1 provider request, got %d", n)
		}
		if len(prices) != 3 {
			t.Fatalf("expected 3 prices, got %d", len(prices))
		}
		if p := prices["ETH"]; p.USD != 2000 || p.Change24h != 1.5 {
			t.Errorf("unexpected ETH price: %+v", p)
		}
	})

	t.Run("upper-cases provider symbol keys", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"prices":{"eth":{"usd":2000}}}`))
		}))
		defer server.Close()

		source := NewHTTPPriceSource("primary", server.URL, config.ProvidersConfig{PriceTimeout: 2 * time.Second}, logger)
		prices, err := source.GetPrices(ctx, []string{"ETH"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := prices["ETH"]; !ok {
			t.Errorf("expected ETH key in %v", prices)
		}
	})

	t.Run("non-200 surfaces as an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		source := NewHTTPPriceSource("primary", server.URL, config.ProvidersConfig{PriceTimeout: 2 * time.Second}, logger)
		if _, err := source.GetPrices(ctx, []string{"ETH"}); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestCachingOracle_GetPrices(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	eth := entities.TokenPrice{USD: 2000, Change24h: 1.5}
	usdc := entities.TokenPrice{USD: 1}

	t.Run("serves from the primary source", func(t *testing.T) {
		primary := &fakeSource{name: "primary", prices: map[string]entities.TokenPrice{"ETH": eth, "USDC": usdc}}
		secondary := &fakeSource{name: "secondary"}
		oracle := NewCachingOracle(primary, secondary, time.Minute, logger)

		prices := oracle.GetPrices(ctx, []string{"ETH", "USDC"})
		if len(prices) != 2 {
			t.Fatalf("expected 2 prices, got %d", len(prices))
		}
		if secondary.callCount() != 0 {
			t.Errorf("secondary should not be consulted when primary succeeds")
		}
	})

	t.Run("fails over to the secondary source", func(t *testing.T) {
		primary := &fakeSource{name: "primary", err: errors.New("rate limited")}
		secondary := &fakeSource{name: "secondary", prices: map[string]entities.TokenPrice{"ETH": eth}}
		oracle := NewCachingOracle(primary, secondary, time.Minute, logger)

		prices := oracle.GetPrices(ctx, []string{"ETH"})
		if p, ok := prices["ETH"]; !ok || p.USD != 2000 {
			t.Fatalf("expected ETH from secondary, got %v", prices)
		}
		if primary.callCount() != 1 || secondary.callCount() != 1 {
			t.Errorf("expected one call to each source, got %d/%d",
				primary.callCount(), secondary.callCount())
		}
	})

	t.Run("omits symbols when both sources fail", func(t *testing.T) {
		primary := &fakeSource{name: "primary", err: errors.New("down")}
		secondary := &fakeSource{name: "secondary", err: errors.New("down")}
		oracle := NewCachingOracle(primary, secondary, time.Minute, logger)

		prices := oracle.GetPrices(ctx, []string{"ETH", "USDC"})
		if len(prices) != 0 {
			t.Errorf("expected no prices, got %v", prices)
		}
	})

	t.Run("cached symbols skip the sources", func(t *testing.T) {
		primary := &fakeSource{name: "primary", prices: map[string]entities.TokenPrice{"ETH": eth}}
		oracle := NewCachingOracle(primary, nil, time.Minute, logger)

		oracle.GetPrices(ctx, []string{"ETH"})
		oracle.GetPrices(ctx, []string{"ETH"})
		if primary.callCount() != 1 {
			t.Errorf("expected 1 source call for a cached symbol, got %d", primary.callCount())
		}
	})

	t.Run("only uncached symbols reach the source", func(t *testing.T) {
		primary := &fakeSource{name: "primary", prices: map[string]entities.TokenPrice{"ETH": eth, "USDC": usdc}}
		oracle := NewCachingOracle(primary, nil, time.Minute, logger)

		oracle.GetPrices(ctx, []string{"ETH"})
		prices := oracle.GetPrices(ctx, []string{"ETH", "USDC"})
		if len(prices) != 2 {
			t.Fatalf("expected 2 prices, got %d", len(prices))
		}
		if primary.callCount() != 2 {
			t.Errorf("expected 2 source calls, got %d", primary.callCount())
		}
	})

	t.Run("dedupes repeated and mixed-case symbols", func(t *testing.T) {
		primary := &fakeSource{name: "primary", prices: map[string]entities.TokenPrice{"ETH": eth}}
		oracle := NewCachingOracle(primary, nil, time.Minute, logger)

		prices := oracle.GetPrices(ctx, []string{"eth", "ETH", "Eth"})
		if len(prices) != 1 {
			t.Errorf("expected 1 price, got %v", prices)
		}
	})
}
