package providers

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// weiPerEther as a float for display-precision conversion. Snapshot
// valuations are fiat estimates, not accounting values, so float64 is
// acceptable here.
var weiPerEther = new(big.Float).SetFloat64(1e18)

// OnchainReader reads native balances straight from an Ethereum node
type OnchainReader struct {
	client *ethclient.Client
	logger *zap.Logger
}

// NewOnchainReader dials the configured RPC endpoint
func NewOnchainReader(rpcURL string, logger *zap.Logger) (*OnchainReader, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial Ethereum RPC: %w", err)
	}

	logger.Info("Connected to Ethereum RPC", zap.String("url", rpcURL))

	return &OnchainReader{
		client: client,
		logger: logger,
	}, nil
}

// Close releases the RPC connection
func (r *OnchainReader) Close() {
	r.client.Close()
}

// NativeBalance returns the wallet's ETH balance at the latest block
func (r *OnchainReader) NativeBalance(ctx context.Context, address string) (float64, error) {
	wei, err := r.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	eth, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEther).Float64()
	return eth, nil
}
