// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/evmfork/chaincore/chainspec"
	"github.com/evmfork/chaincore/core/types"
	"github.com/evmfork/chaincore/ethapi"
	"github.com/evmfork/chaincore/ethclient"
	"github.com/evmfork/chaincore/ethdb/pebble"
	"github.com/evmfork/chaincore/optimism"
	"github.com/evmfork/chaincore/params"
	"github.com/evmfork/chaincore/remote"
)

const (
	chainL1       = "l1"
	chainOptimism = "optimism"
)

// chainRunner executes the commands of one chain family.
type chainRunner interface {
	decode(w io.Writer, raw []byte) error
	tx(ctx context.Context, w io.Writer, cfg *chaintoolConfig, hash common.Hash) error
	block(ctx context.Context, w io.Writer, cfg *chaintoolConfig, id blockID, opts blockOptions) error
	hardfork(w io.Writer, chainID, number, time uint64) error
	chains(w io.Writer) error
}

var chainRunners = map[string]chainRunner{
	chainL1: &runner[*types.Transaction, ethapi.Transaction, params.SpecID]{
		spec:     chainspec.L1{},
		chainIDs: params.L1ChainIDs,
	},
	chainOptimism: &runner[*optimism.Transaction, optimism.RPCTransaction, optimism.SpecID]{
		spec:     optimism.ChainSpec{},
		chainIDs: optimism.ChainIDs,
	},
}

type blockID struct {
	hash   *common.Hash
	number rpc.BlockNumber
}

type blockOptions struct {
	receipts bool
	dump     bool
}

type runner[T chainspec.Transaction, R any, H params.Hardfork] struct {
	spec     chainspec.ChainSpec[T, R, H]
	chainIDs func() []uint64
}

func (r *runner[T, R, H]) decode(w io.Writer, raw []byte) error {
	tx, err := r.spec.DecodeTransaction(raw)
	if err != nil {
		return err
	}
	return writeTransaction(w, tx)
}

func (r *runner[T, R, H]) tx(ctx context.Context, w io.Writer, cfg *chaintoolConfig, hash common.Hash) error {
	client, closeFn, err := dialClient[R](ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	rec, err := client.TransactionByHash(ctx, hash)
	if err != nil {
		return err
	}
	tx, err := r.spec.ConvertTransaction(rec)
	if err != nil {
		return err
	}
	return writeTransaction(w, tx)
}

func (r *runner[T, R, H]) block(ctx context.Context, w io.Writer, cfg *chaintoolConfig, id blockID, opts blockOptions) error {
	client, closeFn, err := dialClient[R](ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	var rpcBlock *ethapi.Block[R]
	if id.hash != nil {
		rpcBlock, err = client.BlockByHash(ctx, *id.hash)
	} else {
		rpcBlock, err = client.BlockByNumber(ctx, id.number)
	}
	if err != nil {
		return err
	}
	block, err := r.spec.NewRemoteBlock(rpcBlock, client, remote.NewRuntime(ctx, int64(cfg.RPC.Concurrency)))
	if err != nil {
		return err
	}
	header := block.Header()
	fmt.Fprintf(w, "block %v %s\n", header.Number, block.Hash().Hex())
	fmt.Fprintf(w, "parent     %s\n", header.ParentHash.Hex())
	fmt.Fprintf(w, "timestamp  %d\n", header.Time)
	fmt.Fprintf(w, "gas        %d/%d\n", header.GasUsed, header.GasLimit)
	if chainID, err := client.ChainID(ctx); err == nil {
		if fork, ok := chainspec.HardforkAt(r.spec, chainID.Uint64(), header.Number.Uint64(), header.Time); ok {
			fmt.Fprintf(w, "hardfork   %v\n", fork)
		}
	} else {
		log.Debug("Chain id unavailable", "err", err)
	}
	if opts.dump {
		spew.Fdump(w, header)
	}

	var receipts []*types.Receipt
	if opts.receipts {
		if receipts, err = block.Receipts(ctx); err != nil {
			return err
		}
	}
	for i, tx := range block.Transactions() {
		fmt.Fprintf(w, "tx %d type=%d hash=%s", i, tx.Type(), tx.Hash().Hex())
		if receipts != nil {
			fmt.Fprintf(w, " status=%d gasUsed=%d", receipts[i].Status, receipts[i].GasUsed)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (r *runner[T, R, H]) hardfork(w io.Writer, chainID, number, time uint64) error {
	name, ok := r.spec.ChainName(chainID)
	if !ok {
		return fmt.Errorf("unknown chain id %d", chainID)
	}
	fork, ok := chainspec.HardforkAt(r.spec, chainID, number, time)
	if !ok {
		return fmt.Errorf("no hardfork active on %s at block %d, time %d", name, number, time)
	}
	fmt.Fprintf(w, "%s %v\n", name, fork)
	return nil
}

func (r *runner[T, R, H]) chains(w io.Writer) error {
	for _, id := range r.chainIDs() {
		name, _ := r.spec.ChainName(id)
		fmt.Fprintf(w, "%s (%d)\n", name, id)
		for _, entry := range r.spec.ChainHardforkActivations(id).Entries() {
			fmt.Fprintf(w, "  %-16v %v\n", entry.Fork, entry.Condition)
		}
	}
	return nil
}

// dialClient connects to the configured endpoint with the configured response
// caches. The returned function releases the client and its caches.
func dialClient[R any](ctx context.Context, cfg *chaintoolConfig) (*ethclient.Client[R], func(), error) {
	var (
		opts []ethclient.Option
		db   *pebble.Database
	)
	if cfg.Cache.Size > 0 {
		opts = append(opts, ethclient.WithMemoryCache(cfg.Cache.Size))
	}
	if cfg.Cache.Dir != "" {
		var err error
		db, err = pebble.New(cfg.Cache.Dir, cfg.Cache.DiskMB, cfg.Cache.Handles, "chaintool/cache/", false)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open response cache: %w", err)
		}
		opts = append(opts, ethclient.WithDiskCache(db))
	}
	client, err := ethclient.DialContext[R](ctx, cfg.RPC.URL, opts...)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, err
	}
	return client, func() {
		client.Close()
		if db != nil {
			if err := db.Close(); err != nil {
				log.Warn("Failed to close response cache", "err", err)
			}
		}
	}, nil
}

func writeTransaction(w io.Writer, tx chainspec.Transaction) error {
	out, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n", out); err != nil {
		return err
	}
	from, err := tx.Sender()
	if err != nil {
		log.Warn("Cannot recover sender", "hash", tx.Hash(), "err", err)
		return nil
	}
	_, err = fmt.Fprintf(w, "sender %s\n", from.Hex())
	return err
}
