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
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/evmfork/chaincore/internal/telemetry/tracesetup"
	"github.com/evmfork/chaincore/remote"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, id, link)
	},
}

// RPCConfig selects the JSON-RPC endpoint blocks are fetched from.
type RPCConfig struct {
	URL         string
	Concurrency int // maximum number of concurrent requests of one block
}

// CacheConfig configures the RPC response cache.
type CacheConfig struct {
	Size    int    // responses kept in memory, 0 disables the memory cache
	Dir     string `toml:",omitempty"` // pebble directory, empty disables the disk cache
	DiskMB  int    // pebble block cache in megabytes
	Handles int    // pebble file handles
}

type chaintoolConfig struct {
	Chain     string
	RPC       RPCConfig
	Cache     CacheConfig
	Telemetry tracesetup.Config
}

func defaultConfig() chaintoolConfig {
	return chaintoolConfig{
		Chain: chainL1,
		RPC: RPCConfig{
			URL:         "http://localhost:8545",
			Concurrency: remote.DefaultConcurrency,
		},
		Cache: CacheConfig{
			Size:    1024,
			DiskMB:  64,
			Handles: 64,
		},
		Telemetry: tracesetup.DefaultConfig,
	}
}

func loadConfig(file string, cfg *chaintoolConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	var lineErr *toml.LineError
	if errors.As(err, &lineErr) {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the configuration file, if any, and applies the command
// line flags on top of it.
func makeConfig(ctx *cli.Context) (chaintoolConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet(chainFlag.Name) {
		cfg.Chain = ctx.String(chainFlag.Name)
	}
	if ctx.IsSet(rpcFlag.Name) {
		cfg.RPC.URL = ctx.String(rpcFlag.Name)
	}
	if ctx.IsSet(rpcConcurrencyFlag.Name) {
		cfg.RPC.Concurrency = ctx.Int(rpcConcurrencyFlag.Name)
	}
	if ctx.IsSet(cacheSizeFlag.Name) {
		cfg.Cache.Size = ctx.Int(cacheSizeFlag.Name)
	}
	if ctx.IsSet(cacheDirFlag.Name) {
		cfg.Cache.Dir = ctx.String(cacheDirFlag.Name)
	}
	if ctx.IsSet(otlpEndpointFlag.Name) {
		cfg.Telemetry.Endpoint = ctx.String(otlpEndpointFlag.Name)
	}
	if ctx.IsSet(otlpSampleRatioFlag.Name) {
		cfg.Telemetry.SampleRatio = ctx.Float64(otlpSampleRatioFlag.Name)
	}
	if _, ok := chainRunners[cfg.Chain]; !ok {
		return cfg, fmt.Errorf("unknown chain %q", cfg.Chain)
	}
	if cfg.RPC.Concurrency <= 0 {
		return cfg, fmt.Errorf("invalid rpc concurrency %d", cfg.RPC.Concurrency)
	}
	return cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(out)
	return err
}
