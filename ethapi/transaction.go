// Copyright 2015 The go-ethereum Authors
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

// Package ethapi holds the loosely typed records served by Ethereum JSON-RPC
// endpoints and their conversion into consensus types.
package ethapi

import (
	"fmt"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/evmfork/chaincore/core/types"
	"github.com/holiman/uint256"
)

var unsupportedTypeCounter = metrics.NewRegisteredCounter("chaincore/ethapi/txtype/unsupported", nil)

// L1TxTypes are the transaction types of Ethereum L1.
var L1TxTypes = []uint8{types.LegacyTxType, types.AccessListTxType, types.DynamicFeeTxType, types.BlobTxType}

// Transaction is a transaction as returned by eth_getTransactionByHash and by
// eth_getBlockByNumber with full transactions. Fields that only some types
// carry are optional.
type Transaction struct {
	BlockHash           *common.Hash      `json:"blockHash"`
	BlockNumber         *hexutil.Big      `json:"blockNumber"`
	From                common.Address    `json:"from"`
	Gas                 hexutil.Uint64    `json:"gas"`
	GasPrice            *hexutil.Big      `json:"gasPrice"`
	GasFeeCap           *hexutil.Big      `json:"maxFeePerGas,omitempty"`
	GasTipCap           *hexutil.Big      `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerBlobGas    *hexutil.Big      `json:"maxFeePerBlobGas,omitempty"`
	Hash                common.Hash       `json:"hash"`
	Input               hexutil.Bytes     `json:"input"`
	Nonce               hexutil.Uint64    `json:"nonce"`
	To                  *common.Address   `json:"to"`
	TransactionIndex    *hexutil.Uint64   `json:"transactionIndex"`
	Value               *hexutil.Big      `json:"value"`
	Type                *hexutil.Uint64   `json:"type,omitempty"`
	Accesses            *types.AccessList `json:"accessList,omitempty"`
	ChainID             *hexutil.Big      `json:"chainId,omitempty"`
	BlobVersionedHashes []common.Hash     `json:"blobVersionedHashes,omitempty"`
	V                   *hexutil.Big      `json:"v"`
	R                   *hexutil.Big      `json:"r"`
	S                   *hexutil.Big      `json:"s"`
	YParity             *hexutil.Uint64   `json:"yParity,omitempty"`
}

// TypeResolution is the outcome of mapping a declared transaction type onto the
// types a chain supports.
type TypeResolution struct {
	Type     uint8   // type the record is converted as
	Declared *uint64 // type reported by the node, nil if absent
	Fallback bool    // declared type is unsupported and Type is legacy
}

// ResolveType maps a declared transaction type onto the supported ones. An
// absent type is legacy. Unsupported types fall back to legacy.
func ResolveType(declared *hexutil.Uint64, supported []uint8) TypeResolution {
	if declared == nil {
		return TypeResolution{Type: types.LegacyTxType}
	}
	d := uint64(*declared)
	res := TypeResolution{Type: types.LegacyTxType, Declared: &d}
	if d <= 0xff && slices.Contains(supported, uint8(d)) {
		res.Type = uint8(d)
	} else {
		res.Fallback = true
	}
	return res
}

// ResolveType resolves the record's declared type. Falling back to legacy is
// logged and counted.
func (tx *Transaction) ResolveType(supported []uint8) TypeResolution {
	res := ResolveType(tx.Type, supported)
	if res.Fallback {
		log.Warn("Unsupported transaction type, treating as legacy", "hash", tx.Hash, "type", *res.Declared)
		unsupportedTypeCounter.Inc(1)
	}
	return res
}

// IsPreEIP155 reports whether a legacy record was signed without replay
// protection. That is the case only if no type other than legacy was declared
// and v is 27 or 28.
func (tx *Transaction) IsPreEIP155() bool {
	if tx.Type != nil && *tx.Type != types.LegacyTxType {
		return false
	}
	if tx.V == nil {
		return false
	}
	v := (*big.Int)(tx.V)
	return v.IsUint64() && (v.Uint64() == 27 || v.Uint64() == 28)
}

// ToTransaction converts the record into an L1 transaction. The hash and sender
// reported by the node are kept.
func (tx *Transaction) ToTransaction() (*types.Transaction, error) {
	return tx.ConvertAs(tx.ResolveType(L1TxTypes).Type)
}

// ConvertTransaction is ToTransaction in function form.
func ConvertTransaction(tx *Transaction) (*types.Transaction, error) {
	return tx.ToTransaction()
}

// ConvertAs converts the record into an L1 transaction of the given type,
// regardless of the type it declares.
func (tx *Transaction) ConvertAs(typ uint8) (*types.Transaction, error) {
	inner, err := tx.txData(typ)
	if err != nil {
		return nil, &ConversionError{Hash: tx.Hash, Err: err}
	}
	return types.NewRemoteTx(inner, tx.Hash, tx.From), nil
}

func (tx *Transaction) txData(typ uint8) (types.TxData, error) {
	if tx.V == nil || tx.R == nil || tx.S == nil {
		return nil, ErrMissingSignature
	}
	var (
		v, r, s    = bigOf(tx.V), bigOf(tx.R), bigOf(tx.S)
		value      = bigOf(tx.Value)
		data       = common.CopyBytes(tx.Input)
		accessList types.AccessList
	)
	if tx.Accesses != nil {
		accessList = *tx.Accesses
	}
	switch typ {
	case types.LegacyTxType:
		if tx.GasPrice == nil {
			return nil, ErrMissingGasPrice
		}
		legacy := types.LegacyTx{
			Nonce:    uint64(tx.Nonce),
			GasPrice: bigOf(tx.GasPrice),
			Gas:      uint64(tx.Gas),
			To:       tx.To,
			Value:    value,
			Data:     data,
			V:        v,
			R:        r,
			S:        s,
		}
		if tx.IsPreEIP155() {
			return &legacy, nil
		}
		eip155 := types.EIP155Tx(legacy)
		return &eip155, nil

	case types.AccessListTxType:
		if tx.ChainID == nil {
			return nil, ErrMissingChainID
		}
		if tx.GasPrice == nil {
			return nil, ErrMissingGasPrice
		}
		return &types.AccessListTx{
			ChainID:    bigOf(tx.ChainID),
			Nonce:      uint64(tx.Nonce),
			GasPrice:   bigOf(tx.GasPrice),
			Gas:        uint64(tx.Gas),
			To:         tx.To,
			Value:      value,
			Data:       data,
			AccessList: accessList,
			V:          v,
			R:          r,
			S:          s,
		}, nil

	case types.DynamicFeeTxType:
		if err := tx.checkFeeMarket(); err != nil {
			return nil, err
		}
		return &types.DynamicFeeTx{
			ChainID:    bigOf(tx.ChainID),
			Nonce:      uint64(tx.Nonce),
			GasTipCap:  bigOf(tx.GasTipCap),
			GasFeeCap:  bigOf(tx.GasFeeCap),
			Gas:        uint64(tx.Gas),
			To:         tx.To,
			Value:      value,
			Data:       data,
			AccessList: accessList,
			V:          v,
			R:          r,
			S:          s,
		}, nil

	case types.BlobTxType:
		if err := tx.checkFeeMarket(); err != nil {
			return nil, err
		}
		if tx.MaxFeePerBlobGas == nil {
			return nil, ErrMissingMaxFeePerBlobGas
		}
		if tx.BlobVersionedHashes == nil {
			return nil, ErrMissingBlobHashes
		}
		if tx.To == nil {
			return nil, ErrMissingReceiver
		}
		blob := &types.BlobTx{
			Nonce:      uint64(tx.Nonce),
			Gas:        uint64(tx.Gas),
			To:         *tx.To,
			Data:       data,
			AccessList: accessList,
			BlobHashes: slices.Clone(tx.BlobVersionedHashes),
		}
		fields := []struct {
			name string
			dst  **uint256.Int
			src  *big.Int
		}{
			{"chainId", &blob.ChainID, bigOf(tx.ChainID)},
			{"maxPriorityFeePerGas", &blob.GasTipCap, bigOf(tx.GasTipCap)},
			{"maxFeePerGas", &blob.GasFeeCap, bigOf(tx.GasFeeCap)},
			{"value", &blob.Value, value},
			{"maxFeePerBlobGas", &blob.BlobFeeCap, bigOf(tx.MaxFeePerBlobGas)},
			{"v", &blob.V, v},
			{"r", &blob.R, r},
			{"s", &blob.S, s},
		}
		for _, f := range fields {
			u, overflow := uint256.FromBig(f.src)
			if overflow {
				return nil, fmt.Errorf("%w: %s", ErrUint256Overflow, f.name)
			}
			*f.dst = u
		}
		return blob, nil
	}
	return nil, fmt.Errorf("%w: %d", types.ErrTxTypeNotSupported, typ)
}

func (tx *Transaction) checkFeeMarket() error {
	switch {
	case tx.ChainID == nil:
		return ErrMissingChainID
	case tx.GasFeeCap == nil:
		return ErrMissingMaxFeePerGas
	case tx.GasTipCap == nil:
		return ErrMissingMaxPriorityFeePerGas
	}
	return nil
}

// bigOf copies a hex big integer. A missing value is zero.
func bigOf(b *hexutil.Big) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(b))
}
