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
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/evmfork/chaincore/core/types"
	"github.com/evmfork/chaincore/ethapi"
)

// ErrMissingSourceHash is returned for deposit records without a source hash.
var ErrMissingSourceHash = errors.New("deposit transaction is missing sourceHash")

// TxTypes are the transaction types of OP Stack chains.
var TxTypes = []uint8{
	types.LegacyTxType,
	types.AccessListTxType,
	types.DynamicFeeTxType,
	types.BlobTxType,
	DepositTxType,
}

// RPCTransaction is a transaction record served by OP Stack nodes. Deposits add
// their source, mint and system flag to the Ethereum fields.
type RPCTransaction struct {
	ethapi.Transaction
	SourceHash *common.Hash `json:"sourceHash,omitempty"`
	Mint       *hexutil.Big `json:"mint,omitempty"`
	IsSystemTx *bool        `json:"isSystemTx,omitempty"`
}

// ToTransaction converts the record into a transaction. Unknown types are
// converted as legacy transactions.
//
// Deposits without a source hash fail with ErrMissingSourceHash. A missing mint
// is zero and a missing system flag is false. Every other failure is an
// *ethapi.ConversionError.
func (rec *RPCTransaction) ToTransaction() (*Transaction, error) {
	res := rec.ResolveType(TxTypes)
	if res.Type == DepositTxType {
		return rec.toDeposit()
	}
	inner, err := rec.ConvertAs(res.Type)
	if err != nil {
		return nil, err
	}
	return NewL1Tx(inner), nil
}

// ConvertTransaction is ToTransaction in function form.
func ConvertTransaction(rec *RPCTransaction) (*Transaction, error) {
	return rec.ToTransaction()
}

func (rec *RPCTransaction) toDeposit() (*Transaction, error) {
	if rec.SourceHash == nil {
		return nil, ErrMissingSourceHash
	}
	deposit := &DepositTx{
		SourceHash:          *rec.SourceHash,
		From:                rec.From,
		To:                  rec.To,
		Mint:                new(big.Int),
		Value:               new(big.Int),
		Gas:                 uint64(rec.Gas),
		IsSystemTransaction: rec.IsSystemTx != nil && *rec.IsSystemTx,
		Data:                rec.Input,
	}
	if rec.Mint != nil {
		deposit.Mint.Set((*big.Int)(rec.Mint))
	}
	if rec.Value != nil {
		deposit.Value.Set((*big.Int)(rec.Value))
	}
	// The deposit is copied by the constructor.
	return newRemoteDeposit(deposit, rec.Hash), nil
}
