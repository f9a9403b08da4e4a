package repositories

import "context"

// RegisteredWallet is one row in a user's wallet registry
type RegisteredWallet struct {
	Address string
	Label   string
}

// WalletRegistry defines access to the user wallet registry store
type WalletRegistry interface {
	// ListWalletsForUser returns the user's wallets in registration order
	ListWalletsForUser(ctx context.Context, userID string) ([]RegisteredWallet, error)
}
