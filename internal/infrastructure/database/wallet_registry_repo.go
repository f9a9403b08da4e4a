package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/defidash/portfolio-engine/internal/domain/repositories"
)

// Ensure WalletRegistryRepo implements WalletRegistry
var _ repositories.WalletRegistry = (*WalletRegistryRepo)(nil)

// WalletRegistryRepo implements WalletRegistry using PostgreSQL
type WalletRegistryRepo struct {
	db *sqlx.DB
}

// NewWalletRegistryRepo creates a new wallet registry repository
func NewWalletRegistryRepo(db *sqlx.DB) *WalletRegistryRepo {
	return &WalletRegistryRepo{db: db}
}

// walletRow holds the result of the registry query
type walletRow struct {
	Address string `db:"address"`
	Label   string `db:"label"`
}

// ListWalletsForUser returns the user's registered wallets in
// registration order. An unknown user yields an empty slice, not an
// error; the resolver turns that into the no-wallets empty state.
func (r *WalletRegistryRepo) ListWalletsForUser(ctx context.Context, userID string) ([]repositories.RegisteredWallet, error) {
	query := `
		SELECT address, COALESCE(label, '') AS label
		FROM user_wallets
		WHERE user_id = $1
		ORDER BY registered_at ASC, id ASC
	`

	var rows []walletRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list wallets for user: %w", err)
	}

	wallets := make([]repositories.RegisteredWallet, len(rows))
	for i, row := range rows {
		wallets[i] = repositories.RegisteredWallet{
			Address: row.Address,
			Label:   row.Label,
		}
	}

	return wallets, nil
}
