package chain

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transferScope/internal/felt"
	"transferScope/internal/model"
)

type starknetService struct {
	head        uint64
	chainIDHits int
}

func (s *starknetService) BlockNumber() uint64 {
	return s.head
}

func (s *starknetService) ChainId() string {
	s.chainIDHits++
	return "0x534e5f4d41494e"
}

func newTestClient(t *testing.T, service *starknetService) *Client {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("starknet", service))
	t.Cleanup(server.Stop)

	client := NewClientWithRPC(rpc.DialInProc(server))
	t.Cleanup(client.Close)
	return client
}

func TestBlockNumber(t *testing.T) {
	client := newTestClient(t, &starknetService{head: 123456})

	head, err := client.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.BlockNumber(123456), head)
}

func TestChainIDIsCached(t *testing.T) {
	service := &starknetService{}
	client := newTestClient(t, service)

	for i := 0; i < 3; i++ {
		id, err := client.ChainID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, felt.MustParseHex("0x534e5f4d41494e"), id)
	}
	assert.Equal(t, 1, service.chainIDHits)
}
