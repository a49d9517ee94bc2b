// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package ethclient

import (
	"context"
	"encoding/json"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/evmfork/chaincore/chainspec"
	"github.com/evmfork/chaincore/core/types"
	"github.com/evmfork/chaincore/ethapi"
	"github.com/evmfork/chaincore/ethdb/pebble"
	"github.com/evmfork/chaincore/remote"
	"github.com/golang/snappy"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	testBlockHash = common.HexToHash("0x5a1e1c8d9b0c2f6e7d8a9b0c1d2e3f405162738495a6b7c8d9e0f1a2b3c4d5e6")
	testTxHashes  = []common.Hash{{0x01}, {0x02}}
	testChainID   = big.NewInt(1)
)

func hexBig(v int64) *hexutil.Big { return (*hexutil.Big)(big.NewInt(v)) }

func testTransaction(i int) ethapi.Transaction {
	to := common.Address{0xde, 0xad}
	index := hexutil.Uint64(i)
	return ethapi.Transaction{
		BlockHash:        &testBlockHash,
		BlockNumber:      hexBig(100),
		From:             common.Address{0x01},
		Gas:              21000,
		GasPrice:         hexBig(1_000_000_000),
		Hash:             testTxHashes[i],
		Nonce:            hexutil.Uint64(i),
		To:               &to,
		TransactionIndex: &index,
		Value:            hexBig(1),
		V:                hexBig(27),
		R:                hexBig(1),
		S:                hexBig(2),
	}
}

func testRPCBlock() *ethapi.Block[ethapi.Transaction] {
	miner := common.Address{0xcc}
	nonce := types.EncodeNonce(0)
	mix := common.Hash{}
	block := &ethapi.Block[ethapi.Transaction]{
		Hash:       &testBlockHash,
		ParentHash: common.Hash{0xaa},
		Miner:      &miner,
		Difficulty: hexBig(0),
		Number:     hexBig(100),
		GasLimit:   30_000_000,
		Timestamp:  1_700_000_000,
		MixHash:    &mix,
		Nonce:      &nonce,
		Uncles:     []common.Hash{},
	}
	for i := range testTxHashes {
		block.Transactions = append(block.Transactions, testTransaction(i))
	}
	return block
}

func testReceipt(i int) *ethapi.Receipt {
	status := hexutil.Uint64(types.ReceiptStatusSuccessful)
	return &ethapi.Receipt{
		Status:            &status,
		CumulativeGasUsed: hexutil.Uint64(21000 * (i + 1)),
		Logs:              []*types.Log{},
		TxHash:            testTxHashes[i],
		GasUsed:           21000,
		BlockHash:         testBlockHash,
		BlockNumber:       hexBig(100),
		TransactionIndex:  hexutil.Uint(i),
	}
}

// backend serves a single block over the eth namespace. It does not provide
// eth_getBlockReceipts, see receiptsBackend.
type backend struct {
	block        *ethapi.Block[ethapi.Transaction]
	blockCalls   atomic.Int32
	receiptCalls atomic.Int32
}

func (b *backend) ChainId() *hexutil.Big {
	return (*hexutil.Big)(testChainID)
}

func (b *backend) GetBlockByNumber(number rpc.BlockNumber, full bool) (*ethapi.Block[ethapi.Transaction], error) {
	b.blockCalls.Add(1)
	if number == rpc.LatestBlockNumber || number.Int64() == 100 {
		return b.block, nil
	}
	return nil, nil
}

func (b *backend) GetBlockByHash(hash common.Hash, full bool) (*ethapi.Block[ethapi.Transaction], error) {
	b.blockCalls.Add(1)
	if hash == testBlockHash {
		return b.block, nil
	}
	return nil, nil
}

func (b *backend) GetTransactionByHash(hash common.Hash) (*ethapi.Transaction, error) {
	for i, h := range testTxHashes {
		if h == hash {
			tx := testTransaction(i)
			return &tx, nil
		}
	}
	return nil, nil
}

func (b *backend) GetTransactionReceipt(hash common.Hash) (*ethapi.Receipt, error) {
	b.receiptCalls.Add(1)
	for i, h := range testTxHashes {
		if h == hash {
			return testReceipt(i), nil
		}
	}
	return nil, nil
}

type receiptsBackend struct {
	*backend
}

func (b receiptsBackend) GetBlockReceipts(hash common.Hash) ([]*ethapi.Receipt, error) {
	b.receiptCalls.Add(1)
	if hash != testBlockHash {
		return nil, nil
	}
	return []*ethapi.Receipt{testReceipt(0), testReceipt(1)}, nil
}

func newTestServer(t *testing.T, service interface{}) *rpc.Client {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", service))
	client := rpc.DialInProc(server)
	t.Cleanup(func() {
		client.Close()
		server.Stop()
	})
	return client
}

func newTestClient(t *testing.T, service interface{}, opts ...Option) *Client[ethapi.Transaction] {
	t.Helper()
	ec, err := NewClient[ethapi.Transaction](newTestServer(t, service), opts...)
	require.NoError(t, err)
	return ec
}

func TestChainID(t *testing.T) {
	ec := newTestClient(t, &backend{block: testRPCBlock()})

	id, err := ec.ChainID(context.Background())
	require.NoError(t, err)
	require.Equal(t, testChainID, id)
}

func TestGetBlock(t *testing.T) {
	ec := newTestClient(t, &backend{block: testRPCBlock()})
	ctx := context.Background()

	block, err := ec.BlockByNumber(ctx, rpc.BlockNumber(100))
	require.NoError(t, err)
	require.Equal(t, testBlockHash, *block.Hash)
	require.Len(t, block.Transactions, 2)
	require.Equal(t, testTxHashes[1], block.Transactions[1].Hash)

	block, err = ec.BlockByNumber(ctx, rpc.LatestBlockNumber)
	require.NoError(t, err)
	require.Equal(t, testBlockHash, *block.Hash)

	_, err = ec.BlockByNumber(ctx, rpc.BlockNumber(101))
	require.ErrorIs(t, err, ethereum.NotFound)

	block, err = ec.BlockByHash(ctx, testBlockHash)
	require.NoError(t, err)
	require.Equal(t, uint64(100), block.Number.ToInt().Uint64())

	_, err = ec.BlockByHash(ctx, common.Hash{0xff})
	require.ErrorIs(t, err, ethereum.NotFound)
}

func TestTransactionAndReceiptLookup(t *testing.T) {
	ec := newTestClient(t, &backend{block: testRPCBlock()})
	ctx := context.Background()

	tx, err := ec.TransactionByHash(ctx, testTxHashes[0])
	require.NoError(t, err)
	require.Equal(t, testTxHashes[0], tx.Hash)

	_, err = ec.TransactionByHash(ctx, common.Hash{0xff})
	require.ErrorIs(t, err, ethereum.NotFound)

	receipt, err := ec.TransactionReceipt(ctx, testTxHashes[1])
	require.NoError(t, err)
	require.Equal(t, hexutil.Uint64(42000), receipt.CumulativeGasUsed)

	receipt, err = ec.TransactionReceipt(ctx, common.Hash{0xff})
	require.NoError(t, err)
	require.Nil(t, receipt)
}

func TestBlockReceiptsMethodNotFound(t *testing.T) {
	ec := newTestClient(t, &backend{block: testRPCBlock()})

	_, err := ec.BlockReceipts(context.Background(), testBlockHash)
	var rpcErr rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, -32601, rpcErr.ErrorCode())
}

func TestMemoryCache(t *testing.T) {
	b := &backend{block: testRPCBlock()}
	ec := newTestClient(t, b, WithMemoryCache(8))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		block, err := ec.BlockByHash(ctx, testBlockHash)
		require.NoError(t, err)
		require.Equal(t, testBlockHash, *block.Hash)
	}
	require.Equal(t, int32(1), b.blockCalls.Load())

	// Lookups by number may change across reorgs and are never cached.
	for i := 0; i < 2; i++ {
		_, err := ec.BlockByNumber(ctx, rpc.BlockNumber(100))
		require.NoError(t, err)
	}
	require.Equal(t, int32(3), b.blockCalls.Load())

	// Misses are not cached either.
	for i := 0; i < 2; i++ {
		_, err := ec.BlockByHash(ctx, common.Hash{0xff})
		require.ErrorIs(t, err, ethereum.NotFound)
	}
	require.Equal(t, int32(5), b.blockCalls.Load())
}

func TestDiskCache(t *testing.T) {
	db, err := pebble.New(t.TempDir(), 16, 16, "ethclient/test/", false)
	require.NoError(t, err)
	defer db.Close()

	b := receiptsBackend{&backend{block: testRPCBlock()}}
	ctx := context.Background()

	ec := newTestClient(t, b, WithDiskCache(db))
	_, err = ec.BlockByHash(ctx, testBlockHash)
	require.NoError(t, err)
	receipts, err := ec.BlockReceipts(ctx, testBlockHash)
	require.NoError(t, err)
	require.Len(t, receipts, 2)

	// A second client sharing the store answers from disk.
	ec2 := newTestClient(t, b, WithMemoryCache(0), WithDiskCache(db))
	block, err := ec2.BlockByHash(ctx, testBlockHash)
	require.NoError(t, err)
	require.Equal(t, testBlockHash, *block.Hash)
	receipts, err = ec2.BlockReceipts(ctx, testBlockHash)
	require.NoError(t, err)
	require.Equal(t, testTxHashes[1], receipts[1].TxHash)

	require.Equal(t, int32(1), b.blockCalls.Load())
	require.Equal(t, int32(1), b.receiptCalls.Load())

	// Entries are snappy compressed JSON.
	key, err := cacheKey("eth_getBlockByHash", []interface{}{testBlockHash, true})
	require.NoError(t, err)
	enc, err := db.Get(key[:])
	require.NoError(t, err)
	raw, err := snappy.Decode(nil, enc)
	require.NoError(t, err)
	require.True(t, json.Valid(raw))
}

func TestCorruptDiskEntryIsRefetched(t *testing.T) {
	db, err := pebble.New(t.TempDir(), 16, 16, "ethclient/corrupt/", false)
	require.NoError(t, err)
	defer db.Close()

	key, err := cacheKey("eth_getBlockByHash", []interface{}{testBlockHash, true})
	require.NoError(t, err)
	require.NoError(t, db.Put(key[:], []byte{0xff, 0xff, 0xff}))

	b := &backend{block: testRPCBlock()}
	ec := newTestClient(t, b, WithDiskCache(db))
	block, err := ec.BlockByHash(context.Background(), testBlockHash)
	require.NoError(t, err)
	require.Equal(t, testBlockHash, *block.Hash)
	require.Equal(t, int32(1), b.blockCalls.Load())
}

func TestRemoteBlockReceipts(t *testing.T) {
	tests := []struct {
		name         string
		service      func(*backend) interface{}
		receiptCalls int32
	}{
		{"block receipts", func(b *backend) interface{} { return receiptsBackend{b} }, 1},
		{"per transaction fallback", func(b *backend) interface{} { return b }, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &backend{block: testRPCBlock()}
			ec := newTestClient(t, tt.service(b))
			ctx := context.Background()

			rpcBlock, err := ec.BlockByNumber(ctx, rpc.LatestBlockNumber)
			require.NoError(t, err)

			rt := remote.NewRuntime(ctx, 2)
			block, err := chainspec.L1{}.NewRemoteBlock(rpcBlock, ec, rt)
			require.NoError(t, err)
			require.Equal(t, testBlockHash, block.Hash())
			require.Len(t, block.Transactions(), 2)

			receipts, err := block.Receipts(ctx)
			require.NoError(t, err)
			require.Len(t, receipts, 2)
			for i, r := range receipts {
				require.Equal(t, testTxHashes[i], r.TxHash)
				require.Equal(t, types.ReceiptStatusSuccessful, r.Status)
			}
			require.Equal(t, tt.receiptCalls, b.receiptCalls.Load())
		})
	}
}
