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

// Package ethclient provides a typed client for the Ethereum JSON-RPC methods
// blocks and receipts are materialized from.
package ethclient

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/evmfork/chaincore/ethapi"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client defines typed wrappers for the Ethereum RPC API. R is the chain's RPC
// transaction record.
type Client[R any] struct {
	c      *rpc.Client
	cache  *responseCache
	tracer trace.Tracer
}

// Dial connects a client to the given URL.
func Dial[R any](rawurl string, opts ...Option) (*Client[R], error) {
	return DialContext[R](context.Background(), rawurl, opts...)
}

// DialContext connects a client to the given URL with context.
func DialContext[R any](ctx context.Context, rawurl string, opts ...Option) (*Client[R], error) {
	c, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	ec, err := NewClient[R](c, opts...)
	if err != nil {
		c.Close()
		return nil, err
	}
	return ec, nil
}

// NewClient creates a client that uses the given RPC client.
func NewClient[R any](c *rpc.Client, opts ...Option) (*Client[R], error) {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}
	cache, err := newResponseCache(cfg.memorySize, cfg.disk)
	if err != nil {
		return nil, err
	}
	return &Client[R]{c: c, cache: cache, tracer: otel.Tracer("chaincore/ethclient")}, nil
}

// Close closes the underlying RPC connection.
func (ec *Client[R]) Close() {
	ec.c.Close()
}

// Client gets the underlying RPC client.
func (ec *Client[R]) Client() *rpc.Client {
	return ec.c
}

// ChainID retrieves the current chain ID for transaction replay protection.
func (ec *Client[R]) ChainID(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := ec.call(ctx, &result, false, "eth_chainId"); err != nil {
		return nil, err
	}
	return (*big.Int)(&result), nil
}

// BlockByNumber returns the block with the given number and its full
// transaction objects. Labels such as latest are resolved by the endpoint.
func (ec *Client[R]) BlockByNumber(ctx context.Context, number rpc.BlockNumber) (*ethapi.Block[R], error) {
	var block *ethapi.Block[R]
	err := ec.call(ctx, &block, false, "eth_getBlockByNumber", number, true)
	if err == nil && block == nil {
		return nil, ethereum.NotFound
	}
	return block, err
}

// BlockByHash returns the block with the given hash and its full transaction
// objects.
func (ec *Client[R]) BlockByHash(ctx context.Context, hash common.Hash) (*ethapi.Block[R], error) {
	var block *ethapi.Block[R]
	err := ec.call(ctx, &block, true, "eth_getBlockByHash", hash, true)
	if err == nil && block == nil {
		return nil, ethereum.NotFound
	}
	return block, err
}

// TransactionByHash returns the transaction with the given hash.
func (ec *Client[R]) TransactionByHash(ctx context.Context, hash common.Hash) (*R, error) {
	var tx *R
	err := ec.call(ctx, &tx, false, "eth_getTransactionByHash", hash)
	if err == nil && tx == nil {
		return nil, ethereum.NotFound
	}
	return tx, err
}

// BlockReceipts returns the receipts of all transactions in the block with
// the given hash.
func (ec *Client[R]) BlockReceipts(ctx context.Context, hash common.Hash) ([]*ethapi.Receipt, error) {
	var receipts []*ethapi.Receipt
	err := ec.call(ctx, &receipts, true, "eth_getBlockReceipts", hash)
	if err == nil && receipts == nil {
		return nil, ethereum.NotFound
	}
	return receipts, err
}

// TransactionReceipt returns the receipt of a mined transaction. A nil receipt
// and nil error are returned if the endpoint does not know the transaction.
func (ec *Client[R]) TransactionReceipt(ctx context.Context, hash common.Hash) (*ethapi.Receipt, error) {
	var r *ethapi.Receipt
	err := ec.call(ctx, &r, false, "eth_getTransactionReceipt", hash)
	return r, err
}

// call performs a traced RPC call. Responses of immutable, hash-addressed
// calls go through the response cache.
func (ec *Client[R]) call(ctx context.Context, result interface{}, cacheable bool, method string, args ...interface{}) (err error) {
	ctx, span := ec.tracer.Start(ctx, method, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("rpc.method", method)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !cacheable || ec.cache == nil {
		return ec.c.CallContext(ctx, result, method, args...)
	}
	key, err := cacheKey(method, args)
	if err != nil {
		return err
	}
	if ok, err := ec.cache.get(key, result); ok || err != nil {
		span.SetAttributes(attribute.Bool("cache.hit", ok))
		return err
	}
	var raw rawResponse
	if err := ec.c.CallContext(ctx, &raw, method, args...); err != nil {
		return err
	}
	if err := raw.decode(result); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if !raw.isNull() {
		ec.cache.add(key, raw)
	}
	return nil
}
