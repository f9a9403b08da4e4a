package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/defidash/portfolio-engine/internal/domain/entities"
	"github.com/defidash/portfolio-engine/internal/domain/repositories"
)

// ErrInvalidScope indicates a malformed wallet scope. It is the only
// snapshot failure surfaced to the caller as an error.
var ErrInvalidScope = errors.New("invalid wallet scope")

// ResolverService turns a wallet scope into a concrete address set
type ResolverService struct {
	registry repositories.WalletRegistry
	logger   *zap.Logger
}

// NewResolverService creates a new address resolver
func NewResolverService(registry repositories.WalletRegistry, logger *zap.Logger) *ResolverService {
	return &ResolverService{
		registry: registry,
		logger:   logger,
	}
}

// Resolve returns the ordered, deduplicated, lowercase address set for
// a scope. An empty set is not an error: it is the explicit no-wallets
// state the caller renders as a connect-wallet prompt.
func (s *ResolverService) Resolve(ctx context.Context, scope entities.WalletScope) (entities.ResolvedAddressSet, error) {
	switch scope.Mode {
	case entities.ScopeSingle:
		if !common.IsHexAddress(scope.Address) {
			return nil, fmt.Errorf("%w: malformed address %q", ErrInvalidScope, scope.Address)
		}
		return entities.ResolvedAddressSet{strings.ToLower(scope.Address)}, nil

	case entities.ScopeAll:
		if scope.UserID == "" {
			return nil, fmt.Errorf("%w: missing user id", ErrInvalidScope)
		}

		wallets, err := s.registry.ListWalletsForUser(ctx, scope.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to list wallets: %w", err)
		}

		seen := make(map[string]struct{}, len(wallets))
		set := make(entities.ResolvedAddressSet, 0, len(wallets))
		for _, w := range wallets {
			addr := strings.ToLower(w.Address)
			if !common.IsHexAddress(addr) {
				s.logger.Warn("Skipping malformed registered address",
					zap.String("user_id", scope.UserID),
					zap.String("address", w.Address),
				)
				continue
			}
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}
			set = append(set, addr)
		}

		return set, nil

	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidScope, scope.Mode)
	}
}
