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
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/evmfork/chaincore/core/types"
)

var errShortDeposit = errors.New("deposit transaction too short")

// Transaction is a transaction of an OP Stack chain: either an L1 transaction
// or a deposit.
type Transaction struct {
	l1      *types.Transaction
	deposit *DepositTx

	// deposit hash cache, L1 transactions cache their own
	hash atomic.Pointer[common.Hash]
}

// NewL1Tx wraps an Ethereum transaction.
func NewL1Tx(tx *types.Transaction) *Transaction {
	return &Transaction{l1: tx}
}

// NewDepositTx creates a deposit transaction.
func NewDepositTx(inner *DepositTx) *Transaction {
	return &Transaction{deposit: inner.copy()}
}

// newRemoteDeposit creates a deposit with the hash reported by a node. A zero
// hash is ignored.
func newRemoteDeposit(inner *DepositTx, hash common.Hash) *Transaction {
	tx := NewDepositTx(inner)
	if hash != (common.Hash{}) {
		tx.hash.Store(&hash)
	}
	return tx
}

func (tx *Transaction) setL1(inner *types.Transaction) {
	tx.l1, tx.deposit = inner, nil
	tx.hash.Store(nil)
}

func (tx *Transaction) setDeposit(inner *DepositTx) {
	tx.l1, tx.deposit = nil, inner
	tx.hash.Store(nil)
}

// IsDeposit reports whether tx is a deposit transaction.
func (tx *Transaction) IsDeposit() bool { return tx.deposit != nil }

// L1 returns the wrapped Ethereum transaction, or nil for deposits.
func (tx *Transaction) L1() *types.Transaction { return tx.l1 }

// Deposit returns a copy of the deposit data, or nil for Ethereum transactions.
func (tx *Transaction) Deposit() *DepositTx {
	if tx.deposit == nil {
		return nil
	}
	return tx.deposit.copy()
}

// MarshalBinary returns the canonical encoding of the transaction.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	if tx.deposit == nil {
		return tx.l1.MarshalBinary()
	}
	var buf bytes.Buffer
	buf.WriteByte(DepositTxType)
	err := rlp.Encode(&buf, tx.deposit)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes the canonical encoding of a transaction. Anything the
// Ethereum decoder does not support is tried as a deposit.
func (tx *Transaction) UnmarshalBinary(b []byte) error {
	inner := new(types.Transaction)
	err := inner.UnmarshalBinary(b)
	if err == nil {
		tx.setL1(inner)
		return nil
	}
	if !errors.Is(err, types.ErrTxTypeNotSupported) || b[0] != DepositTxType {
		return err
	}
	deposit, err := decodeDeposit(b)
	if err != nil {
		return err
	}
	tx.setDeposit(deposit)
	return nil
}

func decodeDeposit(b []byte) (*DepositTx, error) {
	if len(b) <= 1 {
		return nil, errShortDeposit
	}
	var deposit DepositTx
	if err := rlp.DecodeBytes(b[1:], &deposit); err != nil {
		return nil, err
	}
	return &deposit, nil
}

// EncodeRLP implements rlp.Encoder. Typed transactions are wrapped in an RLP
// string.
func (tx *Transaction) EncodeRLP(w io.Writer) error {
	if tx.deposit == nil {
		return tx.l1.EncodeRLP(w)
	}
	enc, err := tx.MarshalBinary()
	if err != nil {
		return err
	}
	return rlp.Encode(w, enc)
}

// DecodeRLP implements rlp.Decoder.
func (tx *Transaction) DecodeRLP(s *rlp.Stream) error {
	raw, err := s.Raw()
	if err != nil {
		return err
	}
	inner := new(types.Transaction)
	err = rlp.DecodeBytes(raw, inner)
	if err == nil {
		tx.setL1(inner)
		return nil
	}
	if !errors.Is(err, types.ErrTxTypeNotSupported) {
		return err
	}
	var envelope []byte
	if err := rlp.DecodeBytes(raw, &envelope); err != nil {
		return err
	}
	if len(envelope) == 0 || envelope[0] != DepositTxType {
		return types.ErrTxTypeNotSupported
	}
	deposit, err := decodeDeposit(envelope)
	if err != nil {
		return err
	}
	tx.setDeposit(deposit)
	return nil
}

// Hash returns the transaction hash.
func (tx *Transaction) Hash() common.Hash {
	if tx.deposit == nil {
		return tx.l1.Hash()
	}
	if hash := tx.hash.Load(); hash != nil {
		return *hash
	}
	h := types.PrefixedRlpHash(DepositTxType, tx.deposit)
	if tx.hash.CompareAndSwap(nil, &h) {
		return h
	}
	return *tx.hash.Load()
}

// Equal reports whether two transactions carry the same consensus fields.
func (tx *Transaction) Equal(other *Transaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}
	if tx.IsDeposit() != other.IsDeposit() {
		return false
	}
	if !tx.IsDeposit() {
		return tx.l1.Equal(other.l1)
	}
	a, errA := tx.MarshalBinary()
	b, errB := other.MarshalBinary()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// Type returns the transaction type.
func (tx *Transaction) Type() uint8 {
	if tx.deposit != nil {
		return DepositTxType
	}
	return tx.l1.Type()
}

// Sender returns the sender of the transaction. For deposits this is the
// depositor and never fails.
func (tx *Transaction) Sender() (common.Address, error) {
	if tx.deposit != nil {
		return tx.deposit.From, nil
	}
	return tx.l1.Sender()
}

// Nonce returns the sender account nonce. Deposits have none and report zero.
func (tx *Transaction) Nonce() uint64 {
	if tx.deposit != nil {
		return 0
	}
	return tx.l1.Nonce()
}

// Gas returns the gas limit of the transaction.
func (tx *Transaction) Gas() uint64 {
	if tx.deposit != nil {
		return tx.deposit.Gas
	}
	return tx.l1.Gas()
}

// GasPrice returns the gas price. Deposits pay no L2 gas and report zero.
func (tx *Transaction) GasPrice() *big.Int {
	if tx.deposit != nil {
		return new(big.Int)
	}
	return tx.l1.GasPrice()
}

// GasTipCap returns the priority fee. Deposits report zero.
func (tx *Transaction) GasTipCap() *big.Int {
	if tx.deposit != nil {
		return new(big.Int)
	}
	return tx.l1.GasTipCap()
}

// GasFeeCap returns the fee cap. Deposits report zero.
func (tx *Transaction) GasFeeCap() *big.Int {
	if tx.deposit != nil {
		return new(big.Int)
	}
	return tx.l1.GasFeeCap()
}

// To returns the recipient, or nil for contract creations.
func (tx *Transaction) To() *common.Address {
	if tx.deposit != nil {
		if tx.deposit.To == nil {
			return nil
		}
		to := *tx.deposit.To
		return &to
	}
	return tx.l1.To()
}

// Value returns the amount transferred.
func (tx *Transaction) Value() *big.Int {
	if tx.deposit != nil {
		return bigOrZero(tx.deposit.Value)
	}
	return tx.l1.Value()
}

// Data returns the input data of the transaction.
func (tx *Transaction) Data() []byte {
	if tx.deposit != nil {
		return common.CopyBytes(tx.deposit.Data)
	}
	return tx.l1.Data()
}

// AccessList returns the access list. Deposits have none.
func (tx *Transaction) AccessList() types.AccessList {
	if tx.deposit != nil {
		return nil
	}
	return tx.l1.AccessList()
}

// ChainId returns the chain id the signature commits to. Deposits are unsigned
// and report nil.
func (tx *Transaction) ChainId() *big.Int {
	if tx.deposit != nil {
		return nil
	}
	return tx.l1.ChainId()
}

// BlobHashes returns the blob hashes of blob transactions, nil otherwise.
func (tx *Transaction) BlobHashes() []common.Hash {
	if tx.deposit != nil {
		return nil
	}
	return tx.l1.BlobHashes()
}

// BlobGasFeeCap returns the blob fee cap of blob transactions, nil otherwise.
func (tx *Transaction) BlobGasFeeCap() *big.Int {
	if tx.deposit != nil {
		return nil
	}
	return tx.l1.BlobGasFeeCap()
}

// Protected reports whether the signature is replay protected. Deposits carry
// no signature.
func (tx *Transaction) Protected() bool {
	if tx.deposit != nil {
		return false
	}
	return tx.l1.Protected()
}

// SetGas replaces the gas limit and drops the cached hash.
func (tx *Transaction) SetGas(gas uint64) {
	if tx.deposit != nil {
		tx.deposit.Gas = gas
		tx.hash.Store(nil)
		return
	}
	tx.l1.SetGas(gas)
}

// SourceHash returns the source hash of a deposit, or the zero hash.
func (tx *Transaction) SourceHash() common.Hash {
	if tx.deposit != nil {
		return tx.deposit.SourceHash
	}
	return common.Hash{}
}

// Mint returns the amount minted by a deposit, or nil.
func (tx *Transaction) Mint() *big.Int {
	if tx.deposit != nil {
		return bigOrZero(tx.deposit.Mint)
	}
	return nil
}

// IsSystemTx reports whether tx is a system deposit.
func (tx *Transaction) IsSystemTx() bool {
	return tx.deposit != nil && tx.deposit.IsSystemTransaction
}

// depositJSON is the JSON representation of deposits.
type depositJSON struct {
	Type       hexutil.Uint64  `json:"type"`
	SourceHash common.Hash     `json:"sourceHash"`
	From       common.Address  `json:"from"`
	To         *common.Address `json:"to"`
	Mint       *hexutil.Big    `json:"mint"`
	Value      *hexutil.Big    `json:"value"`
	Gas        hexutil.Uint64  `json:"gas"`
	IsSystemTx bool            `json:"isSystemTx"`
	Input      hexutil.Bytes   `json:"input"`
	Nonce      hexutil.Uint64  `json:"nonce"`
	Hash       common.Hash     `json:"hash"`
}

// MarshalJSON marshals as JSON with a hash.
func (tx *Transaction) MarshalJSON() ([]byte, error) {
	if tx.deposit == nil {
		return tx.l1.MarshalJSON()
	}
	return json.Marshal(&depositJSON{
		Type:       DepositTxType,
		SourceHash: tx.deposit.SourceHash,
		From:       tx.deposit.From,
		To:         tx.To(),
		Mint:       (*hexutil.Big)(tx.Mint()),
		Value:      (*hexutil.Big)(tx.Value()),
		Gas:        hexutil.Uint64(tx.deposit.Gas),
		IsSystemTx: tx.deposit.IsSystemTransaction,
		Input:      tx.deposit.Data,
		Hash:       tx.Hash(),
	})
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
