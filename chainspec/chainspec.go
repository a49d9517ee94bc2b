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

// Package chainspec defines how a chain plugs its transaction model, RPC records
// and hardfork history into the generic machinery of this module.
package chainspec

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/evmfork/chaincore/core/types"
	"github.com/evmfork/chaincore/ethapi"
	"github.com/evmfork/chaincore/params"
	"github.com/evmfork/chaincore/remote"
)

// Transaction is the set of operations every chain's transaction type offers.
type Transaction interface {
	Type() uint8
	Hash() common.Hash
	Sender() (common.Address, error)
	Nonce() uint64
	Gas() uint64
	GasPrice() *big.Int
	GasTipCap() *big.Int
	GasFeeCap() *big.Int
	To() *common.Address
	Value() *big.Int
	Data() []byte
	AccessList() types.AccessList
	ChainId() *big.Int
	BlobHashes() []common.Hash
	BlobGasFeeCap() *big.Int
	Protected() bool
	MarshalBinary() ([]byte, error)
	SetGas(gas uint64)
}

// ChainSpec binds the types of one chain family. T is its transaction type, R
// the transaction record its RPC endpoints serve and H its hardfork identifier.
//
// Implementations document the errors they return: block conversion fails with
// one of the remote.ErrMissing* errors or with a transaction conversion error.
type ChainSpec[T Transaction, R any, H params.Hardfork] interface {
	// ChainHardforkActivations returns the hardfork history of a chain, or nil
	// if the chain is unknown.
	ChainHardforkActivations(chainID uint64) *params.Activations[H]

	// ChainName returns the human readable name of a chain.
	ChainName(chainID uint64) (string, bool)

	// ConvertTransaction turns an RPC record into a transaction.
	ConvertTransaction(rec *R) (T, error)

	// DecodeTransaction decodes the canonical encoding of a transaction.
	DecodeTransaction(b []byte) (T, error)

	// NewRemoteBlock materializes an RPC block fetched through client.
	NewRemoteBlock(block *ethapi.Block[R], client remote.Client[R], rt *remote.Runtime) (*remote.Block[T], error)
}

// HardforkAt resolves the hardfork active on a chain at the given block number
// and timestamp. It reports false for unknown chains and for points preceding
// the chain's first hardfork.
func HardforkAt[T Transaction, R any, H params.Hardfork](spec ChainSpec[T, R, H], chainID, number, time uint64) (H, bool) {
	table := spec.ChainHardforkActivations(chainID)
	if table == nil {
		var zero H
		return zero, false
	}
	return table.HardforkAt(number, time)
}

// L1 is the chain binding of Ethereum. Transaction conversion fails with
// *ethapi.ConversionError.
type L1 struct{}

var _ ChainSpec[*types.Transaction, ethapi.Transaction, params.SpecID] = L1{}

func (L1) ChainHardforkActivations(chainID uint64) *params.Activations[params.SpecID] {
	return params.L1ChainActivations(chainID)
}

func (L1) ChainName(chainID uint64) (string, bool) {
	return params.L1ChainName(chainID)
}

func (L1) ConvertTransaction(rec *ethapi.Transaction) (*types.Transaction, error) {
	return rec.ToTransaction()
}

func (L1) DecodeTransaction(b []byte) (*types.Transaction, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return tx, nil
}

func (spec L1) NewRemoteBlock(block *ethapi.Block[ethapi.Transaction], client remote.Client[ethapi.Transaction], rt *remote.Runtime) (*remote.Block[*types.Transaction], error) {
	return remote.NewBlock(block, spec.ConvertTransaction, client, rt)
}
