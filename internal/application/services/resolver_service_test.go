package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/domain/entities"
	"github.com/defidash/portfolio-engine/internal/domain/repositories"
	"github.com/defidash/portfolio-engine/internal/testutil"
)

func TestResolverService_Resolve(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("resolves a single address lowercased", func(t *testing.T) {
		resolver := NewResolverService(testutil.NewMockWalletRegistry(), logger)

		set, err := resolver.Resolve(ctx, entities.WalletScope{
			Mode:    entities.ScopeSingle,
			Address: "0xABCDEF1234567890123456789012345678901234",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(set) != 1 || set[0] != "0xabcdef1234567890123456789012345678901234" {
			t.Errorf("expected lowercased one-element set, got %v", set)
		}
	})

	t.Run("rejects a malformed single address", func(t *testing.T) {
		resolver := NewResolverService(testutil.NewMockWalletRegistry(), logger)

		_, err := resolver.Resolve(ctx, entities.WalletScope{
			Mode:    entities.ScopeSingle,
			Address: "vitalik.eth.invalid",
		})
		if !errors.Is(err, ErrInvalidScope) {
			t.Fatalf("expected ErrInvalidScope, got %v", err)
		}
	})

	t.Run("rejects an unknown mode", func(t *testing.T) {
		resolver := NewResolverService(testutil.NewMockWalletRegistry(), logger)

		_, err := resolver.Resolve(ctx, entities.WalletScope{Mode: "everything"})
		if !errors.Is(err, ErrInvalidScope) {
			t.Fatalf("expected ErrInvalidScope, got %v", err)
		}
	})

	t.Run("rejects all mode without a user id", func(t *testing.T) {
		resolver := NewResolverService(testutil.NewMockWalletRegistry(), logger)

		_, err := resolver.Resolve(ctx, entities.WalletScope{Mode: entities.ScopeAll})
		if !errors.Is(err, ErrInvalidScope) {
			t.Fatalf("expected ErrInvalidScope, got %v", err)
		}
	})

	t.Run("deduplicates case-insensitively preserving registration order", func(t *testing.T) {
		registry := testutil.NewMockWalletRegistry()
		registry.ListWalletsForUserFunc = func(ctx context.Context, userID string) ([]repositories.RegisteredWallet, error) {
			return []repositories.RegisteredWallet{
				{Address: testutil.BobWallet},
				{Address: "0x1111111111111111111111111111111111111111"},
				{Address: "0x1111111111111111111111111111111111111111"},
				{Address: testutil.BobWallet},
			}, nil
		}
		resolver := NewResolverService(registry, logger)

		set, err := resolver.Resolve(ctx, entities.WalletScope{Mode: entities.ScopeAll, UserID: testutil.TestUserID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := entities.ResolvedAddressSet{testutil.BobWallet, testutil.AliceWallet}
		if len(set) != 2 || set[0] != want[0] || set[1] != want[1] {
			t.Errorf("expected %v, got %v", want, set)
		}
	})

	t.Run("empty registry resolves to empty set without error", func(t *testing.T) {
		registry := testutil.NewMockWalletRegistry()
		registry.ListWalletsForUserFunc = func(ctx context.Context, userID string) ([]repositories.RegisteredWallet, error) {
			return []repositories.RegisteredWallet{}, nil
		}
		resolver := NewResolverService(registry, logger)

		set, err := resolver.Resolve(ctx, entities.WalletScope{Mode: entities.ScopeAll, UserID: testutil.TestUserID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(set) != 0 {
			t.Errorf("expected empty set, got %v", set)
		}
	})

	t.Run("registry error propagates", func(t *testing.T) {
		registry := testutil.NewMockWalletRegistry()
		registry.ListWalletsForUserFunc = func(ctx context.Context, userID string) ([]repositories.RegisteredWallet, error) {
			return nil, errors.New("connection refused")
		}
		resolver := NewResolverService(registry, logger)

		_, err := resolver.Resolve(ctx, entities.WalletScope{Mode: entities.ScopeAll, UserID: testutil.TestUserID})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if errors.Is(err, ErrInvalidScope) {
			t.Error("registry failure must not be reported as an invalid scope")
		}
	})

	t.Run("skips malformed registered addresses", func(t *testing.T) {
		registry := testutil.NewMockWalletRegistry()
		registry.ListWalletsForUserFunc = func(ctx context.Context, userID string) ([]repositories.RegisteredWallet, error) {
			return []repositories.RegisteredWallet{
				{Address: testutil.AliceWallet},
				{Address: "corrupted-row"},
			}, nil
		}
		resolver := NewResolverService(registry, logger)

		set, err := resolver.Resolve(ctx, entities.WalletScope{Mode: entities.ScopeAll, UserID: testutil.TestUserID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(set) != 1 || set[0] != testutil.AliceWallet {
			t.Errorf("expected only the well-formed address, got %v", set)
		}
	})
}
