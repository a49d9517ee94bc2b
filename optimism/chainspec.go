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

package optimism

import (
	"github.com/evmfork/chaincore/chainspec"
	"github.com/evmfork/chaincore/ethapi"
	"github.com/evmfork/chaincore/params"
	"github.com/evmfork/chaincore/remote"
)

// ChainSpec is the chain binding of OP Stack chains. Transaction
// conversion fails with ErrMissingSourceHash or *ethapi.ConversionError.
type ChainSpec struct{}

var _ chainspec.ChainSpec[*Transaction, RPCTransaction, SpecID] = ChainSpec{}

func (ChainSpec) ChainHardforkActivations(chainID uint64) *params.Activations[SpecID] {
	return ChainActivations(chainID)
}

func (ChainSpec) ChainName(chainID uint64) (string, bool) {
	return ChainName(chainID)
}

func (ChainSpec) ConvertTransaction(rec *RPCTransaction) (*Transaction, error) {
	return rec.ToTransaction()
}

func (ChainSpec) DecodeTransaction(b []byte) (*Transaction, error) {
	tx := new(Transaction)
	if err := tx.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return tx, nil
}

func (spec ChainSpec) NewRemoteBlock(block *ethapi.Block[RPCTransaction], client remote.Client[RPCTransaction], rt *remote.Runtime) (*remote.Block[*Transaction], error) {
	return remote.NewBlock(block, spec.ConvertTransaction, client, rt)
}
