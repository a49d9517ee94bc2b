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

// Package optimism implements the OP Stack flavour of the chain core: deposit
// transactions and the OP Stack hardfork history, tied together by ChainSpec.
package optimism

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DepositTxType is the EIP-2718 type of deposit transactions.
const DepositTxType = 0x7e

// DepositTx is a transaction derived from an L1 deposit event. Deposits are not
// signed; their sender is authenticated by the L1 event itself.
type DepositTx struct {
	// SourceHash uniquely identifies the source of the deposit.
	SourceHash common.Hash
	// From is exposed through the sender of the transaction.
	From common.Address
	// nil means contract creation
	To *common.Address `rlp:"nil"`
	// Mint is minted on L2, locked on L1. A nil value encodes as zero.
	Mint *big.Int
	// Value is transferred from L2 balance, executed after Mint.
	Value *big.Int
	// gas limit
	Gas uint64
	// Field indicating if this transaction is exempt from the L2 gas limit.
	IsSystemTransaction bool
	// Normal tx data
	Data []byte
}

// copy creates a deep copy of the deposit and initializes all fields.
func (tx *DepositTx) copy() *DepositTx {
	cpy := &DepositTx{
		SourceHash:          tx.SourceHash,
		From:                tx.From,
		Mint:                new(big.Int),
		Value:               new(big.Int),
		Gas:                 tx.Gas,
		IsSystemTransaction: tx.IsSystemTransaction,
		Data:                common.CopyBytes(tx.Data),
	}
	if tx.To != nil {
		to := *tx.To
		cpy.To = &to
	}
	if tx.Mint != nil {
		cpy.Mint.Set(tx.Mint)
	}
	if tx.Value != nil {
		cpy.Value.Set(tx.Value)
	}
	return cpy
}
