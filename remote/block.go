// Copyright 2024 The go-ethereum Authors
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

// Package remote materializes blocks fetched from a JSON-RPC endpoint into
// typed blocks whose receipts are loaded on demand.
package remote

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/evmfork/chaincore/core/types"
	"github.com/evmfork/chaincore/ethapi"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMissingMiner  = errors.New("remote block has no miner")
	ErrMissingNumber = errors.New("remote block has no number")
	ErrMissingNonce  = errors.New("remote block has no nonce")
	ErrMissingHash   = errors.New("remote block has no hash")

	// ErrBlockReceiptsUnsupported is returned by clients whose endpoint cannot
	// serve all receipts of a block in one call.
	ErrBlockReceiptsUnsupported = errors.New("block receipts not supported by endpoint")

	// ErrMissingReceipt is returned when the endpoint has no receipt for a
	// transaction of the block.
	ErrMissingReceipt = errors.New("receipt not found")
)

// errCodeMethodNotFound is the JSON-RPC error code of an unknown method.
const errCodeMethodNotFound = -32601

var (
	blockReceiptsCounter   = metrics.NewRegisteredCounter("chaincore/remote/receipts/block", nil)
	receiptFallbackCounter = metrics.NewRegisteredCounter("chaincore/remote/receipts/fallback", nil)
)

// Transaction is what a remote block needs to know about its transactions.
type Transaction interface {
	Hash() common.Hash
}

// Client is the JSON-RPC collaborator remote blocks are fetched through. R is
// the chain's RPC transaction record.
type Client[R any] interface {
	BlockByNumber(ctx context.Context, number rpc.BlockNumber) (*ethapi.Block[R], error)
	BlockByHash(ctx context.Context, hash common.Hash) (*ethapi.Block[R], error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*R, error)
	receiptClient
}

type receiptClient interface {
	BlockReceipts(ctx context.Context, hash common.Hash) ([]*ethapi.Receipt, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*ethapi.Receipt, error)
}

// Block is a block fetched from a remote node. Its header and transactions are
// materialized eagerly, receipts on first use.
type Block[T Transaction] struct {
	header       *types.Header
	hash         common.Hash
	transactions []T
	uncles       []common.Hash
	withdrawals  []*types.Withdrawal

	client receiptClient
	rt     *Runtime

	mu       sync.Mutex
	receipts []*types.Receipt
	fetched  bool
}

// NewBlock materializes an RPC block. Transactions are converted in order with
// convert and the first failure aborts. A nil runtime uses a default one.
func NewBlock[T Transaction, R any](block *ethapi.Block[R], convert func(*R) (T, error), client Client[R], rt *Runtime) (*Block[T], error) {
	switch {
	case block.Miner == nil:
		return nil, ErrMissingMiner
	case block.Number == nil:
		return nil, ErrMissingNumber
	case block.Nonce == nil:
		return nil, ErrMissingNonce
	case block.Hash == nil:
		return nil, ErrMissingHash
	}
	if rt == nil {
		rt = NewRuntime(context.Background(), DefaultConcurrency)
	}
	header := &types.Header{
		ParentHash:       block.ParentHash,
		UncleHash:        block.UncleHash,
		Coinbase:         *block.Miner,
		Root:             block.Root,
		TxHash:           block.TxHash,
		ReceiptHash:      block.ReceiptHash,
		Bloom:            block.Bloom,
		Difficulty:       new(big.Int),
		Number:           new(big.Int).Set((*big.Int)(block.Number)),
		GasLimit:         uint64(block.GasLimit),
		GasUsed:          uint64(block.GasUsed),
		Time:             uint64(block.Timestamp),
		Extra:            common.CopyBytes(block.ExtraData),
		Nonce:            *block.Nonce,
		WithdrawalsHash:  block.WithdrawalsRoot,
		ParentBeaconRoot: block.ParentBeaconRoot,
	}
	if block.Difficulty != nil {
		header.Difficulty.Set((*big.Int)(block.Difficulty))
	}
	if block.MixHash != nil {
		header.MixDigest = *block.MixHash
	}
	if block.BaseFee != nil {
		header.BaseFee = new(big.Int).Set((*big.Int)(block.BaseFee))
	}
	if block.BlobGasUsed != nil && block.ExcessBlobGas != nil {
		header.BlobGas = &types.BlobGas{
			GasUsed:   uint64(*block.BlobGasUsed),
			ExcessGas: uint64(*block.ExcessBlobGas),
		}
	}
	txs := make([]T, len(block.Transactions))
	for i := range block.Transactions {
		tx, err := convert(&block.Transactions[i])
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		txs[i] = tx
	}
	return &Block[T]{
		header:       header,
		hash:         *block.Hash,
		transactions: txs,
		uncles:       slices.Clone(block.Uncles),
		withdrawals:  slices.Clone(block.Withdrawals),
		client:       client,
		rt:           rt,
	}, nil
}

// Header returns a copy of the block header.
func (b *Block[T]) Header() *types.Header { return b.header.Copy() }

// Hash returns the block hash reported by the node.
func (b *Block[T]) Hash() common.Hash { return b.hash }

// Number returns the block number.
func (b *Block[T]) Number() uint64 { return b.header.Number.Uint64() }

// Time returns the block timestamp.
func (b *Block[T]) Time() uint64 { return b.header.Time }

// Transactions returns the block's transactions in block order.
func (b *Block[T]) Transactions() []T { return slices.Clone(b.transactions) }

// Uncles returns the hashes of the block's ommers.
func (b *Block[T]) Uncles() []common.Hash { return slices.Clone(b.uncles) }

// Withdrawals returns the block's withdrawals, nil before Shanghai.
func (b *Block[T]) Withdrawals() []*types.Withdrawal { return slices.Clone(b.withdrawals) }

// Receipts returns the receipts of the block's transactions, fetching them on
// the first call. Failed fetches are not cached.
func (b *Block[T]) Receipts(ctx context.Context) ([]*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fetched {
		return slices.Clone(b.receipts), nil
	}
	ctx, cancel := b.rt.bind(ctx)
	defer cancel()

	receipts, err := b.fetchReceipts(ctx)
	if err != nil {
		return nil, err
	}
	b.receipts, b.fetched = receipts, true
	return slices.Clone(receipts), nil
}

func (b *Block[T]) fetchReceipts(ctx context.Context) ([]*types.Receipt, error) {
	var records []*ethapi.Receipt
	err := b.rt.do(ctx, func(ctx context.Context) (err error) {
		records, err = b.client.BlockReceipts(ctx, b.hash)
		return err
	})
	switch {
	case err == nil:
		blockReceiptsCounter.Inc(1)
		if len(records) != len(b.transactions) {
			return nil, fmt.Errorf("block %s: got %d receipts for %d transactions", b.hash.Hex(), len(records), len(b.transactions))
		}
		return convertReceipts(records)
	case errors.Is(err, ErrBlockReceiptsUnsupported) || isMethodNotFound(err):
		log.Debug("Fetching receipts per transaction", "block", b.hash, "txs", len(b.transactions))
		receiptFallbackCounter.Inc(1)
		return b.fetchTransactionReceipts(ctx)
	default:
		return nil, err
	}
}

// fetchTransactionReceipts loads receipts one transaction at a time, running
// as many requests concurrently as the runtime allows.
func (b *Block[T]) fetchTransactionReceipts(ctx context.Context) ([]*types.Receipt, error) {
	records := make([]*ethapi.Receipt, len(b.transactions))
	g, gctx := errgroup.WithContext(ctx)
	for i, tx := range b.transactions {
		hash := tx.Hash()
		g.Go(func() error {
			return b.rt.do(gctx, func(ctx context.Context) error {
				rec, err := b.client.TransactionReceipt(ctx, hash)
				if err != nil {
					return err
				}
				if rec == nil {
					return fmt.Errorf("%w: %s", ErrMissingReceipt, hash.Hex())
				}
				records[i] = rec
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return convertReceipts(records)
}

func convertReceipts(records []*ethapi.Receipt) ([]*types.Receipt, error) {
	receipts := make([]*types.Receipt, len(records))
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("receipt %d: %w", i, ErrMissingReceipt)
		}
		receipt, err := rec.ToReceipt()
		if err != nil {
			return nil, fmt.Errorf("receipt %d: %w", i, err)
		}
		receipts[i] = receipt
	}
	return receipts, nil
}

func isMethodNotFound(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == errCodeMethodNotFound
}
