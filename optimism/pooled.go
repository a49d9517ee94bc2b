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

	"github.com/evmfork/chaincore/core/types"
)

// PooledTransaction is the network form of an OP Stack transaction. Blob
// transactions carry their sidecar, everything else equals the canonical form.
type PooledTransaction struct {
	l1      *types.PooledTransaction
	deposit *Transaction
}

// NewPooledTransaction bundles a transaction with its blob sidecar. Deposits
// never carry one.
func NewPooledTransaction(tx *Transaction, sidecar *types.BlobTxSidecar) (*PooledTransaction, error) {
	if tx.IsDeposit() {
		if sidecar != nil {
			return nil, types.ErrUnexpectedSidecar
		}
		return &PooledTransaction{deposit: tx}, nil
	}
	pooled, err := types.NewPooledTransaction(tx.L1(), sidecar)
	if err != nil {
		return nil, err
	}
	return &PooledTransaction{l1: pooled}, nil
}

// Transaction returns the canonical transaction without any sidecar.
func (p *PooledTransaction) Transaction() *Transaction {
	if p.deposit != nil {
		return p.deposit
	}
	return NewL1Tx(p.l1.Transaction())
}

// Sidecar returns the blob sidecar, nil for anything but blob transactions.
func (p *PooledTransaction) Sidecar() *types.BlobTxSidecar {
	if p.l1 == nil {
		return nil
	}
	return p.l1.Sidecar()
}

// MarshalBinary returns the network encoding of the transaction.
func (p *PooledTransaction) MarshalBinary() ([]byte, error) {
	if p.deposit != nil {
		return p.deposit.MarshalBinary()
	}
	return p.l1.MarshalBinary()
}

// UnmarshalBinary decodes the network encoding of a transaction.
func (p *PooledTransaction) UnmarshalBinary(b []byte) error {
	pooled := new(types.PooledTransaction)
	err := pooled.UnmarshalBinary(b)
	if err == nil {
		p.l1, p.deposit = pooled, nil
		return nil
	}
	if !errors.Is(err, types.ErrTxTypeNotSupported) {
		return err
	}
	tx := new(Transaction)
	if err := tx.UnmarshalBinary(b); err != nil {
		return err
	}
	p.l1, p.deposit = nil, tx
	return nil
}
