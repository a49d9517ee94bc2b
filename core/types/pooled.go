// Copyright 2023 The go-ethereum Authors
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
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto/kzg4844"
	"github.com/ethereum/go-ethereum/rlp"
)

var (
	ErrMissingSidecar    = errors.New("blob transaction without sidecar")
	ErrUnexpectedSidecar = errors.New("sidecar attached to non-blob transaction")
)

// PooledTransaction is a transaction in the form it is exchanged between
// transaction pools. Blob transactions travel together with their blobs,
// commitments and proofs; every other type is identical to its canonical form.
type PooledTransaction struct {
	tx      *Transaction
	sidecar *BlobTxSidecar
}

// blobTxWithBlobs is the network encoding of a pooled blob transaction.
type blobTxWithBlobs struct {
	BlobTx      *BlobTx
	Blobs       []kzg4844.Blob
	Commitments []kzg4844.Commitment
	Proofs      []kzg4844.Proof
}

// NewPooledTransaction bundles a transaction with its sidecar. The sidecar must
// be given for blob transactions and match their blob hashes, and must be nil
// otherwise.
func NewPooledTransaction(tx *Transaction, sidecar *BlobTxSidecar) (*PooledTransaction, error) {
	if tx.Type() != BlobTxType {
		if sidecar != nil {
			return nil, ErrUnexpectedSidecar
		}
		return &PooledTransaction{tx: tx}, nil
	}
	if sidecar == nil {
		return nil, ErrMissingSidecar
	}
	if err := sidecar.ValidateBlobCommitmentHashes(tx.BlobHashes()); err != nil {
		return nil, err
	}
	return &PooledTransaction{tx: tx, sidecar: sidecar}, nil
}

// Transaction returns the canonical transaction, without any sidecar.
func (p *PooledTransaction) Transaction() *Transaction { return p.tx }

// Sidecar returns the blob sidecar of a pooled blob transaction, nil otherwise.
func (p *PooledTransaction) Sidecar() *BlobTxSidecar { return p.sidecar }

// Hash returns the hash of the canonical transaction. Sidecars are not hashed.
func (p *PooledTransaction) Hash() common.Hash { return p.tx.Hash() }

// MarshalBinary returns the network encoding of the transaction.
func (p *PooledTransaction) MarshalBinary() ([]byte, error) {
	if p.sidecar == nil {
		return p.tx.MarshalBinary()
	}
	blobtx, ok := p.tx.inner.(*BlobTx)
	if !ok {
		return nil, ErrUnexpectedSidecar
	}
	var buf bytes.Buffer
	buf.WriteByte(BlobTxType)
	err := rlp.Encode(&buf, &blobTxWithBlobs{
		BlobTx:      blobtx,
		Blobs:       p.sidecar.Blobs,
		Commitments: p.sidecar.Commitments,
		Proofs:      p.sidecar.Proofs,
	})
	return buf.Bytes(), err
}

// UnmarshalBinary decodes the network encoding of a transaction.
func (p *PooledTransaction) UnmarshalBinary(b []byte) error {
	if len(b) == 0 || b[0] != BlobTxType {
		tx := new(Transaction)
		if err := tx.UnmarshalBinary(b); err != nil {
			return err
		}
		*p = PooledTransaction{tx: tx}
		return nil
	}
	var dec blobTxWithBlobs
	if err := rlp.DecodeBytes(b[1:], &dec); err != nil {
		return fmt.Errorf("invalid pooled blob transaction: %w", err)
	}
	tx := new(Transaction)
	tx.setDecoded(dec.BlobTx)
	pooled, err := NewPooledTransaction(tx, &BlobTxSidecar{
		Blobs:       dec.Blobs,
		Commitments: dec.Commitments,
		Proofs:      dec.Proofs,
	})
	if err != nil {
		return err
	}
	*p = *pooled
	return nil
}
