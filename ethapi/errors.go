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

package ethapi

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Errors returned when an RPC record lacks a field its transaction type needs.
var (
	ErrMissingChainID              = errors.New("missing chainId")
	ErrMissingGasPrice             = errors.New("missing gasPrice")
	ErrMissingMaxFeePerGas         = errors.New("missing maxFeePerGas")
	ErrMissingMaxPriorityFeePerGas = errors.New("missing maxPriorityFeePerGas")
	ErrMissingMaxFeePerBlobGas     = errors.New("missing maxFeePerBlobGas")
	ErrMissingBlobHashes           = errors.New("missing blobVersionedHashes")
	ErrMissingReceiver             = errors.New("missing receiver of blob transaction")
	ErrMissingSignature            = errors.New("missing signature values")
	ErrUint256Overflow             = errors.New("value exceeds 256 bits")
	ErrMissingReceiptStatus        = errors.New("receipt has neither status nor root")
	ErrReceiptTypeOverflow         = errors.New("receipt type exceeds one byte")
)

// ConversionError reports a transaction record that could not be turned into a
// transaction.
type ConversionError struct {
	Hash common.Hash
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("invalid transaction %s: %v", e.Hash.Hex(), e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
