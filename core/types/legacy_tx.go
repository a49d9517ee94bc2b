// Copyright 2020 The go-ethereum Authors
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

package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// LegacyTx is the transaction data of a legacy transaction signed without
// replay protection (v is 27 or 28).
type LegacyTx struct {
	Nonce    uint64          // nonce of sender account
	GasPrice *big.Int        // wei per gas
	Gas      uint64          // gas limit
	To       *common.Address `rlp:"nil"` // nil means contract creation
	Value    *big.Int        // wei amount
	Data     []byte          // contract invocation input data
	V, R, S  *big.Int        // signature values
}

// NewTransaction creates an unsigned legacy transaction.
func NewTransaction(nonce uint64, to common.Address, amount *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte) *Transaction {
	return NewTx(&LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amount,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
}

// NewContractCreation creates an unsigned legacy transaction deploying code.
func NewContractCreation(nonce uint64, amount *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte) *Transaction {
	return NewTx(&LegacyTx{
		Nonce:    nonce,
		Value:    amount,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *LegacyTx) copy() TxData {
	cpy := &LegacyTx{
		Nonce: tx.Nonce,
		To:    copyAddressPtr(tx.To),
		Data:  common.CopyBytes(tx.Data),
		Gas:   tx.Gas,
		// These are initialized below.
		Value:    new(big.Int),
		GasPrice: new(big.Int),
		V:        new(big.Int),
		R:        new(big.Int),
		S:        new(big.Int),
	}
	if tx.Value != nil {
		cpy.Value.Set(tx.Value)
	}
	if tx.GasPrice != nil {
		cpy.GasPrice.Set(tx.GasPrice)
	}
	if tx.V != nil {
		cpy.V.Set(tx.V)
	}
	if tx.R != nil {
		cpy.R.Set(tx.R)
	}
	if tx.S != nil {
		cpy.S.Set(tx.S)
	}
	return cpy
}

// accessors for innerTx.
func (tx *LegacyTx) txType() byte              { return LegacyTxType }
func (tx *LegacyTx) protected() bool           { return false }
func (tx *LegacyTx) chainID() *big.Int         { return nil }
func (tx *LegacyTx) accessList() AccessList    { return nil }
func (tx *LegacyTx) data() []byte              { return tx.Data }
func (tx *LegacyTx) gas() uint64               { return tx.Gas }
func (tx *LegacyTx) gasPrice() *big.Int        { return tx.GasPrice }
func (tx *LegacyTx) gasTipCap() *big.Int       { return nil }
func (tx *LegacyTx) gasFeeCap() *big.Int       { return nil }
func (tx *LegacyTx) value() *big.Int           { return tx.Value }
func (tx *LegacyTx) nonce() uint64             { return tx.Nonce }
func (tx *LegacyTx) to() *common.Address       { return tx.To }
func (tx *LegacyTx) blobHashes() []common.Hash { return nil }
func (tx *LegacyTx) blobGasFeeCap() *big.Int   { return nil }
func (tx *LegacyTx) setGas(gas uint64)         { tx.Gas = gas }

func (tx *LegacyTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *LegacyTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.V, tx.R, tx.S = v, r, s
}

func (tx *LegacyTx) sigHash(*big.Int) common.Hash {
	return rlpHash([]any{
		tx.Nonce,
		tx.GasPrice,
		tx.Gas,
		tx.To,
		tx.Value,
		tx.Data,
	})
}

// EIP155Tx is the transaction data of a legacy transaction whose signature commits
// to a chain id. Its encoding is identical to LegacyTx; only v differs.
type EIP155Tx LegacyTx

func (tx *EIP155Tx) copy() TxData {
	return (*EIP155Tx)((*LegacyTx)(tx).copy().(*LegacyTx))
}

func (tx *EIP155Tx) txType() byte              { return LegacyTxType }
func (tx *EIP155Tx) protected() bool           { return true }
func (tx *EIP155Tx) accessList() AccessList    { return nil }
func (tx *EIP155Tx) data() []byte              { return tx.Data }
func (tx *EIP155Tx) gas() uint64               { return tx.Gas }
func (tx *EIP155Tx) gasPrice() *big.Int        { return tx.GasPrice }
func (tx *EIP155Tx) gasTipCap() *big.Int       { return nil }
func (tx *EIP155Tx) gasFeeCap() *big.Int       { return nil }
func (tx *EIP155Tx) value() *big.Int           { return tx.Value }
func (tx *EIP155Tx) nonce() uint64             { return tx.Nonce }
func (tx *EIP155Tx) to() *common.Address       { return tx.To }
func (tx *EIP155Tx) blobHashes() []common.Hash { return nil }
func (tx *EIP155Tx) blobGasFeeCap() *big.Int   { return nil }
func (tx *EIP155Tx) setGas(gas uint64)         { tx.Gas = gas }

func (tx *EIP155Tx) chainID() *big.Int {
	if tx.V == nil {
		return new(big.Int)
	}
	return deriveChainId(tx.V)
}

func (tx *EIP155Tx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *EIP155Tx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.V, tx.R, tx.S = v, r, s
}

func (tx *EIP155Tx) sigHash(chainID *big.Int) common.Hash {
	if chainID == nil {
		chainID = tx.chainID()
	}
	return rlpHash([]any{
		tx.Nonce,
		tx.GasPrice,
		tx.Gas,
		tx.To,
		tx.Value,
		tx.Data,
		chainID, uint(0), uint(0),
	})
}
