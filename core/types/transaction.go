// Copyright 2014 The go-ethereum Authors
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
	"io"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
)

var (
	ErrInvalidSig         = errors.New("invalid transaction v, r, s values")
	ErrTxTypeNotSupported = errors.New("transaction type not supported")
	errShortTypedTx       = errors.New("typed transaction too short")
	errEmptyTypedTx       = errors.New("empty typed transaction bytes")
)

// Transaction types.
const (
	LegacyTxType     = 0x00
	AccessListTxType = 0x01
	DynamicFeeTxType = 0x02
	BlobTxType       = 0x03
)

// AccessList is an EIP-2930 access list.
type AccessList = gethtypes.AccessList

// AccessTuple is the element type of an access list.
type AccessTuple = gethtypes.AccessTuple

// Transaction is an Ethereum transaction.
type Transaction struct {
	inner TxData // Consensus contents of a transaction

	// caches
	hash atomic.Pointer[common.Hash]
	from atomic.Pointer[common.Address]
}

// NewTx creates a new transaction.
func NewTx(inner TxData) *Transaction {
	tx := new(Transaction)
	tx.setDecoded(inner.copy())
	return tx
}

// NewRemoteTx creates a transaction as reported by a remote node. The reported
// hash and sender are used instead of being derived from the signature. A zero
// hash is ignored.
func NewRemoteTx(inner TxData, hash common.Hash, from common.Address) *Transaction {
	tx := NewTx(inner)
	if hash != (common.Hash{}) {
		tx.hash.Store(&hash)
	}
	tx.from.Store(&from)
	return tx
}

// TxData is the underlying data of a transaction.
//
// This is implemented by LegacyTx, EIP155Tx, AccessListTx, DynamicFeeTx and BlobTx.
type TxData interface {
	txType() byte // returns the type ID
	copy() TxData // creates a deep copy and initializes all fields

	protected() bool
	chainID() *big.Int
	accessList() AccessList
	data() []byte
	gas() uint64
	gasPrice() *big.Int
	gasTipCap() *big.Int
	gasFeeCap() *big.Int
	value() *big.Int
	nonce() uint64
	to() *common.Address
	blobHashes() []common.Hash
	blobGasFeeCap() *big.Int

	rawSignatureValues() (v, r, s *big.Int)
	setSignatureValues(chainID, v, r, s *big.Int)
	setGas(gas uint64)

	// sigHash returns the hash the sender signed.
	sigHash(chainID *big.Int) common.Hash
}

// EncodeRLP implements rlp.Encoder
func (tx *Transaction) EncodeRLP(w io.Writer) error {
	if tx.Type() == LegacyTxType {
		return rlp.Encode(w, tx.inner)
	}
	// It's an EIP-2718 typed TX envelope.
	buf := encodeBufferPool.Get().(*bytes.Buffer)
	defer encodeBufferPool.Put(buf)
	buf.Reset()
	if err := tx.encodeTyped(buf); err != nil {
		return err
	}
	return rlp.Encode(w, buf.Bytes())
}

// encodeTyped writes the canonical encoding of a typed transaction to w.
func (tx *Transaction) encodeTyped(w *bytes.Buffer) error {
	w.WriteByte(tx.Type())
	return rlp.Encode(w, tx.inner)
}

// MarshalBinary returns the canonical encoding of the transaction.
// For legacy transactions, it returns the RLP encoding. For EIP-2718 typed
// transactions, it returns the type and payload.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	if tx.Type() == LegacyTxType {
		return rlp.EncodeToBytes(tx.inner)
	}
	var buf bytes.Buffer
	err := tx.encodeTyped(&buf)
	return buf.Bytes(), err
}

// DecodeRLP implements rlp.Decoder
func (tx *Transaction) DecodeRLP(s *rlp.Stream) error {
	kind, size, err := s.Kind()
	switch {
	case err != nil:
		return err
	case kind == rlp.List:
		// It's a legacy transaction.
		var inner LegacyTx
		err := s.Decode(&inner)
		if err == nil {
			tx.setDecoded(classifyLegacy(&inner))
		}
		return err
	case kind == rlp.Byte:
		return errShortTypedTx
	default:
		// It's an EIP-2718 typed TX envelope.
		// First read the tx payload bytes into a buffer.
		if size == 0 {
			return errEmptyTypedTx
		}
		b, err := s.Bytes()
		if err != nil {
			return err
		}
		inner, err := tx.decodeTyped(b)
		if err == nil {
			tx.setDecoded(inner)
		}
		return err
	}
}

// UnmarshalBinary decodes the canonical encoding of transactions.
// It supports legacy RLP transactions and EIP-2718 typed transactions.
func (tx *Transaction) UnmarshalBinary(b []byte) error {
	if len(b) > 0 && b[0] > 0x7f {
		// It's a legacy transaction.
		var data LegacyTx
		err := rlp.DecodeBytes(b, &data)
		if err != nil {
			return err
		}
		tx.setDecoded(classifyLegacy(&data))
		return nil
	}
	// It's an EIP-2718 typed transaction envelope.
	inner, err := tx.decodeTyped(b)
	if err != nil {
		return err
	}
	tx.setDecoded(inner)
	return nil
}

// decodeTyped decodes a typed transaction from the canonical format. Type bytes
// this package does not know yield ErrTxTypeNotSupported so that chain specific
// decoders can handle them.
func (tx *Transaction) decodeTyped(b []byte) (TxData, error) {
	if len(b) <= 1 {
		return nil, errShortTypedTx
	}
	var inner TxData
	switch b[0] {
	case AccessListTxType:
		inner = new(AccessListTx)
	case DynamicFeeTxType:
		inner = new(DynamicFeeTx)
	case BlobTxType:
		inner = new(BlobTx)
	default:
		return nil, ErrTxTypeNotSupported
	}
	err := rlp.DecodeBytes(b[1:], inner)
	return inner, err
}

// classifyLegacy picks the legacy variant matching the signature's v value.
func classifyLegacy(tx *LegacyTx) TxData {
	if tx.V != nil && isProtectedV(tx.V) {
		return (*EIP155Tx)(tx)
	}
	return tx
}

// setDecoded sets the inner transaction after decoding.
func (tx *Transaction) setDecoded(inner TxData) {
	tx.inner = inner
	tx.hash.Store(nil)
	tx.from.Store(nil)
}

// Protected says whether the transaction is replay-protected.
func (tx *Transaction) Protected() bool {
	return tx.inner.protected()
}

// Type returns the transaction type.
func (tx *Transaction) Type() uint8 {
	return tx.inner.txType()
}

// ChainId returns the EIP155 chain ID of the transaction. The return value will
// be nil for transactions that are not replay protected.
func (tx *Transaction) ChainId() *big.Int {
	return tx.inner.chainID()
}

// Data returns the input data of the transaction.
func (tx *Transaction) Data() []byte { return common.CopyBytes(tx.inner.data()) }

// AccessList returns the access list of the transaction.
func (tx *Transaction) AccessList() AccessList { return tx.inner.accessList() }

// Gas returns the gas limit of the transaction.
func (tx *Transaction) Gas() uint64 { return tx.inner.gas() }

// GasPrice returns the gas price of the transaction. Fee market transactions
// report their fee cap.
func (tx *Transaction) GasPrice() *big.Int { return new(big.Int).Set(tx.inner.gasPrice()) }

// GasTipCap returns the gasTipCap per gas of the transaction, or nil for
// transactions that predate the fee market.
func (tx *Transaction) GasTipCap() *big.Int { return copyBig(tx.inner.gasTipCap()) }

// GasFeeCap returns the fee cap per gas of the transaction, or nil for
// transactions that predate the fee market.
func (tx *Transaction) GasFeeCap() *big.Int { return copyBig(tx.inner.gasFeeCap()) }

// BlobGasFeeCap returns the blob gas fee cap per blob gas of the transaction for
// blob transactions, nil otherwise.
func (tx *Transaction) BlobGasFeeCap() *big.Int { return copyBig(tx.inner.blobGasFeeCap()) }

// BlobHashes returns the hashes of the blob commitments for blob transactions,
// nil otherwise.
func (tx *Transaction) BlobHashes() []common.Hash { return tx.inner.blobHashes() }

// Value returns the ether amount of the transaction.
func (tx *Transaction) Value() *big.Int { return new(big.Int).Set(tx.inner.value()) }

// Nonce returns the sender account nonce of the transaction.
func (tx *Transaction) Nonce() uint64 { return tx.inner.nonce() }

// To returns the recipient address of the transaction.
// For contract-creation transactions, To returns nil.
func (tx *Transaction) To() *common.Address {
	return copyAddressPtr(tx.inner.to())
}

// RawSignatureValues returns the V, R, S signature values of the transaction.
// The return values should not be modified by the caller.
func (tx *Transaction) RawSignatureValues() (v, r, s *big.Int) {
	return tx.inner.rawSignatureValues()
}

// SetGas replaces the gas limit of the transaction and drops the cached hash.
// The cached sender is kept. It must not be called while other goroutines use
// the transaction.
func (tx *Transaction) SetGas(gas uint64) {
	tx.inner.setGas(gas)
	tx.hash.Store(nil)
}

// Hash returns the transaction hash.
func (tx *Transaction) Hash() common.Hash {
	if hash := tx.hash.Load(); hash != nil {
		return *hash
	}
	var h common.Hash
	if tx.Type() == LegacyTxType {
		h = rlpHash(tx.inner)
	} else {
		h = prefixedRlpHash(tx.Type(), tx.inner)
	}
	if tx.hash.CompareAndSwap(nil, &h) {
		return h
	}
	return *tx.hash.Load()
}

// Equal reports whether two transactions carry the same consensus fields. Cached
// values are not compared.
func (tx *Transaction) Equal(other *Transaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}
	if tx.Type() != other.Type() {
		return false
	}
	a, err := rlp.EncodeToBytes(tx.inner)
	if err != nil {
		return false
	}
	b, err := rlp.EncodeToBytes(other.inner)
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// Inner returns a copy of the transaction's underlying data.
func (tx *Transaction) Inner() TxData {
	return tx.inner.copy()
}

// Transactions implements DerivableList for transactions.
type Transactions []*Transaction

// Len returns the length of s.
func (s Transactions) Len() int { return len(s) }

// EncodeIndex encodes the i'th transaction to w. Note that this does not check for errors
// because we assume that *Transaction will only ever contain valid txs that were either
// constructed by decoding or via public API in this package.
func (s Transactions) EncodeIndex(i int, w *bytes.Buffer) {
	tx := s[i]
	if tx.Type() == LegacyTxType {
		rlp.Encode(w, tx.inner)
	} else {
		tx.encodeTyped(w)
	}
}

// copyAddressPtr copies an address.
func copyAddressPtr(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	cpy := *a
	return &cpy
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
