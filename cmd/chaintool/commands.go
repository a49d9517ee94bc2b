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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/evmfork/chaincore/ethclient"
	"github.com/urfave/cli/v2"
)

var (
	receiptsFlag = &cli.BoolFlag{
		Name:  "receipts",
		Usage: "Fetch and print the receipts of the block",
	}
	dumpFlag = &cli.BoolFlag{
		Name:  "dump",
		Usage: "Dump the full block header",
	}
	chainIDFlag = &cli.Uint64Flag{
		Name:  "chainid",
		Usage: "Chain id to resolve the hardfork on (default: queried from --rpc)",
	}
	numberFlag = &cli.Uint64Flag{
		Name:  "number",
		Usage: "Block number",
	}
	timeFlag = &cli.Uint64Flag{
		Name:  "time",
		Usage: "Block timestamp",
	}
)

var (
	decodeCommand = &cli.Command{
		Name:      "decode",
		Usage:     "Decode a transaction from its canonical encoding",
		ArgsUsage: "<hex>",
		Action:    decodeTx,
	}
	txCommand = &cli.Command{
		Name:      "tx",
		Usage:     "Fetch a transaction from the RPC endpoint",
		ArgsUsage: "<hash>",
		Action:    fetchTx,
	}
	blockCommand = &cli.Command{
		Name:      "block",
		Usage:     "Fetch and materialize a block from the RPC endpoint",
		ArgsUsage: "<number|hash|latest>",
		Flags:     []cli.Flag{receiptsFlag, dumpFlag},
		Action:    fetchBlock,
	}
	hardforkCommand = &cli.Command{
		Name:   "hardfork",
		Usage:  "Resolve the hardfork active at a block",
		Flags:  []cli.Flag{chainIDFlag, numberFlag, timeFlag},
		Action: resolveHardfork,
	}
	chainsCommand = &cli.Command{
		Name:   "chains",
		Usage:  "List the known chains and their hardfork activations",
		Action: listChains,
	}
)

var errMissingArg = errors.New("missing argument")

// setup resolves the configuration and the runner of the selected chain.
func setup(ctx *cli.Context) (*chaintoolConfig, chainRunner, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	return &cfg, chainRunners[cfg.Chain], nil
}

func decodeTx(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("%w: transaction hex", errMissingArg)
	}
	_, r, err := setup(ctx)
	if err != nil {
		return err
	}
	raw, err := hexutil.Decode(strings.TrimSpace(ctx.Args().First()))
	if err != nil {
		return fmt.Errorf("invalid transaction hex: %w", err)
	}
	return r.decode(ctx.App.Writer, raw)
}

func fetchTx(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("%w: transaction hash", errMissingArg)
	}
	cfg, r, err := setup(ctx)
	if err != nil {
		return err
	}
	hash, err := parseHash(ctx.Args().First())
	if err != nil {
		return err
	}
	return r.tx(ctx.Context, ctx.App.Writer, cfg, hash)
}

func fetchBlock(ctx *cli.Context) error {
	cfg, r, err := setup(ctx)
	if err != nil {
		return err
	}
	arg := "latest"
	if ctx.NArg() > 0 {
		arg = ctx.Args().First()
	}
	id, err := parseBlockID(arg)
	if err != nil {
		return err
	}
	opts := blockOptions{receipts: ctx.Bool(receiptsFlag.Name), dump: ctx.Bool(dumpFlag.Name)}
	return r.block(ctx.Context, ctx.App.Writer, cfg, id, opts)
}

func resolveHardfork(ctx *cli.Context) error {
	cfg, r, err := setup(ctx)
	if err != nil {
		return err
	}
	chainID := ctx.Uint64(chainIDFlag.Name)
	if !ctx.IsSet(chainIDFlag.Name) {
		if chainID, err = queryChainID(ctx.Context, cfg.RPC.URL); err != nil {
			return fmt.Errorf("cannot query chain id: %w", err)
		}
	}
	return r.hardfork(ctx.App.Writer, chainID, ctx.Uint64(numberFlag.Name), ctx.Uint64(timeFlag.Name))
}

func listChains(ctx *cli.Context) error {
	_, r, err := setup(ctx)
	if err != nil {
		return err
	}
	return r.chains(ctx.App.Writer)
}

func queryChainID(ctx context.Context, url string) (uint64, error) {
	client, err := ethclient.DialContext[struct{}](ctx, url)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	id, err := client.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

func parseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid hash %q", s)
	}
	return common.BytesToHash(b), nil
}

// parseBlockID accepts a block hash, a decimal or hex block number, or one of
// the block tags understood by the endpoint.
func parseBlockID(s string) (blockID, error) {
	if len(s) == 2+2*common.HashLength {
		hash, err := parseHash(s)
		if err != nil {
			return blockID{}, err
		}
		return blockID{hash: &hash}, nil
	}
	if n, err := strconv.ParseUint(s, 10, 63); err == nil {
		return blockID{number: rpc.BlockNumber(n)}, nil
	}
	var number rpc.BlockNumber
	if err := number.UnmarshalJSON([]byte(strconv.Quote(s))); err != nil {
		return blockID{}, fmt.Errorf("invalid block %q: %w", s, err)
	}
	return blockID{number: number}, nil
}
