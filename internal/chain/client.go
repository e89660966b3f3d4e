package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"

	"transferScope/internal/felt"
	"transferScope/internal/model"
)

// Client talks to a Starknet JSON-RPC node over go-ethereum's RPC client.
type Client struct {
	rpcClient *rpc.Client

	mu      sync.RWMutex
	chainID *felt.Felt
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return NewClientWithRPC(rpcClient), nil
}

// NewClientWithRPC wraps an existing RPC client.
func NewClientWithRPC(rpcClient *rpc.Client) *Client {
	return &Client{rpcClient: rpcClient}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// BlockNumber returns the most recent accepted block number.
func (c *Client) BlockNumber(ctx context.Context) (model.BlockNumber, error) {
	var number uint64
	if err := c.rpcClient.CallContext(ctx, &number, "starknet_blockNumber"); err != nil {
		return 0, fmt.Errorf("starknet_blockNumber: %w", err)
	}
	return model.BlockNumber(number), nil
}

// ChainID returns the network's chain id, cached after the first call.
func (c *Client) ChainID(ctx context.Context) (felt.Felt, error) {
	c.mu.RLock()
	cached := c.chainID
	c.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	var id felt.Felt
	if err := c.rpcClient.CallContext(ctx, &id, "starknet_chainId"); err != nil {
		return felt.Felt{}, fmt.Errorf("starknet_chainId: %w", err)
	}

	c.mu.Lock()
	c.chainID = &id
	c.mu.Unlock()
	return id, nil
}
