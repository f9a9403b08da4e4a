package services

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/domain/entities"
	"github.com/defidash/portfolio-engine/internal/testutil"
)

func TestValuationService_Value(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("values all tokens when every price is known", func(t *testing.T) {
		oracle := testutil.NewMockPriceOracle()
		oracle.GetPricesFunc = func(ctx context.Context, symbols []string) map[string]entities.TokenPrice {
			return map[string]entities.TokenPrice{
				"ETH":  {USD: 2000, Change24h: 10},
				"USDC": {USD: 1},
			}
		}
		valuer := NewValuationService(oracle, logger)

		balances, status := valuer.Value(ctx, testutil.Balances(
			testutil.Token("ETH", 2),
			testutil.Token("USDC", 500),
		))

		if status != entities.StatusOK {
			t.Errorf("expected status ok, got %s", status)
		}
		if balances.TotalFiat != 4500 {
			t.Errorf("expected total 4500, got %v", balances.TotalFiat)
		}
		// 10% move on the 4000 USD ETH stake
		if balances.Delta24h != 400 {
			t.Errorf("expected 24h delta 400, got %v", balances.Delta24h)
		}
	})

	t.Run("missing price keeps token listed but unvalued", func(t *testing.T) {
		oracle := testutil.NewMockPriceOracle()
		oracle.GetPricesFunc = func(ctx context.Context, symbols []string) map[string]entities.TokenPrice {
			return map[string]entities.TokenPrice{"ETH": {USD: 2000}}
		}
		valuer := NewValuationService(oracle, logger)

		balances, status := valuer.Value(ctx, testutil.Balances(
			testutil.Token("ETH", 1),
			testutil.Token("DUST", 9999),
		))

		if status != entities.StatusPartial {
			t.Errorf("expected status partial, got %s", status)
		}
		if balances.TotalFiat != 2000 {
			t.Errorf("expected unpriced token excluded from total, got %v", balances.TotalFiat)
		}
		if len(balances.Tokens) != 2 {
			t.Fatalf("expected both tokens retained, got %d", len(balances.Tokens))
		}
		for _, tb := range balances.Tokens {
			if tb.Symbol == "DUST" && tb.PriceKnown {
				t.Error("expected DUST price to be unknown")
			}
		}
	})

	t.Run("failed balance read passes through as failed", func(t *testing.T) {
		oracle := testutil.NewMockPriceOracle()
		valuer := NewValuationService(oracle, logger)

		balances, status := valuer.Value(ctx, testutil.FailedBalances())

		if status != entities.StatusFailed {
			t.Errorf("expected status failed, got %s", status)
		}
		if len(balances.Tokens) != 0 || balances.TotalFiat != 0 {
			t.Errorf("expected empty balances, got %+v", balances)
		}
		if len(oracle.Calls) != 0 {
			t.Error("expected no oracle call for a failed balance read")
		}
	})

	t.Run("uppercases symbols before lookup", func(t *testing.T) {
		oracle := testutil.NewMockPriceOracle()
		oracle.GetPricesFunc = func(ctx context.Context, symbols []string) map[string]entities.TokenPrice {
			return map[string]entities.TokenPrice{"WBTC": {USD: 60000}}
		}
		valuer := NewValuationService(oracle, logger)

		balances, status := valuer.Value(ctx, testutil.Balances(testutil.Token("wbtc", 0.5)))

		if status != entities.StatusOK {
			t.Errorf("expected status ok, got %s", status)
		}
		if balances.TotalFiat != 30000 {
			t.Errorf("expected total 30000, got %v", balances.TotalFiat)
		}
	})
}
