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


// chaintool decodes transactions, inspects remote blocks and resolves the
// hardforks of Ethereum and OP Stack chains.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/evmfork/chaincore/internal/telemetry/tracesetup"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: "CHAINTOOL",
	}
	verbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: "LOGGING AND DEBUGGING",
	}
	chainFlag = &cli.StringFlag{
		Name:     "chain",
		Usage:    "Chain family of the endpoint (l1, optimism)",
		Value:    chainL1,
		Category: "CHAINTOOL",
	}
	rpcFlag = &cli.StringFlag{
		Name:     "rpc",
		Usage:    "JSON-RPC endpoint to fetch blocks and transactions from",
		Value:    "http://localhost:8545",
		Category: "RPC",
	}
	rpcConcurrencyFlag = &cli.IntFlag{
		Name:     "rpc.concurrency",
		Usage:    "Maximum number of concurrent receipt requests",
		Category: "RPC",
	}
	cacheSizeFlag = &cli.IntFlag{
		Name:     "cache.size",
		Usage:    "Number of RPC responses cached in memory (0 disables)",
		Category: "CACHE",
	}
	cacheDirFlag = &cli.StringFlag{
		Name:     "cache.dir",
		Usage:    "Directory of the on-disk RPC response cache",
		Category: "CACHE",
	}
	otlpEndpointFlag = &cli.StringFlag{
		Name:     "otlp.endpoint",
		Usage:    "OTLP/HTTP collector URL spans are exported to",
		Category: "TELEMETRY",
	}
	otlpSampleRatioFlag = &cli.Float64Flag{
		Name:     "otlp.sampleratio",
		Usage:    "Fraction of traces to sample",
		Category: "TELEMETRY",
	}
	metricsFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Print collected metrics on exit",
		Category: "TELEMETRY",
	}
)

var telemetry *tracesetup.Service

func newApp() *cli.App {
	return &cli.App{
		Name:  "chaintool",
		Usage: "Ethereum and OP Stack chain inspection tool",
		Flags: []cli.Flag{
			configFileFlag,
			verbosityFlag,
			chainFlag,
			rpcFlag,
			rpcConcurrencyFlag,
			cacheSizeFlag,
			cacheDirFlag,
			otlpEndpointFlag,
			otlpSampleRatioFlag,
			metricsFlag,
		},
		Commands: []*cli.Command{
			decodeCommand,
			txCommand,
			blockCommand,
			hardforkCommand,
			chainsCommand,
			{
				Name:   "dumpconfig",
				Usage:  "Export configuration values in a TOML format",
				Action: dumpConfig,
			},
		},
		Before: func(ctx *cli.Context) error {
			setupLogging(ctx.Int(verbosityFlag.Name))
			cfg, err := makeConfig(ctx)
			if err != nil {
				return err
			}
			telemetry, err = tracesetup.StartTelemetry(ctx.Context, cfg.Telemetry)
			return err
		},
		After: func(ctx *cli.Context) error {
			if ctx.Bool(metricsFlag.Name) {
				metrics.WriteOnce(metrics.DefaultRegistry, ctx.App.ErrWriter)
			}
			return telemetry.Stop()
		},
	}
}

func setupLogging(verbosity int) {
	var (
		output   io.Writer = os.Stderr
		usecolor           = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	)
	if usecolor {
		output = colorable.NewColorableStderr()
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(output, log.FromLegacyLevel(verbosity), usecolor)))
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
