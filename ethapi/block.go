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

package ethapi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/evmfork/chaincore/core/types"
)

// Block is a block as returned by eth_getBlockByNumber and eth_getBlockByHash
// with full transaction objects. T is the chain's RPC transaction record.
//
// Fields that a pending block or a pre-fork block may omit are pointers.
type Block[T any] struct {
	Hash             *common.Hash        `json:"hash"`
	ParentHash       common.Hash         `json:"parentHash"`
	UncleHash        common.Hash         `json:"sha3Uncles"`
	Miner            *common.Address     `json:"miner"`
	Root             common.Hash         `json:"stateRoot"`
	TxHash           common.Hash         `json:"transactionsRoot"`
	ReceiptHash      common.Hash         `json:"receiptsRoot"`
	Bloom            types.Bloom         `json:"logsBloom"`
	Difficulty       *hexutil.Big        `json:"difficulty"`
	Number           *hexutil.Big        `json:"number"`
	GasLimit         hexutil.Uint64      `json:"gasLimit"`
	GasUsed          hexutil.Uint64      `json:"gasUsed"`
	Timestamp        hexutil.Uint64      `json:"timestamp"`
	ExtraData        hexutil.Bytes       `json:"extraData"`
	MixHash          *common.Hash        `json:"mixHash"`
	Nonce            *types.BlockNonce   `json:"nonce"`
	BaseFee          *hexutil.Big        `json:"baseFeePerGas,omitempty"`
	WithdrawalsRoot  *common.Hash        `json:"withdrawalsRoot,omitempty"`
	BlobGasUsed      *hexutil.Uint64     `json:"blobGasUsed,omitempty"`
	ExcessBlobGas    *hexutil.Uint64     `json:"excessBlobGas,omitempty"`
	ParentBeaconRoot *common.Hash        `json:"parentBeaconBlockRoot,omitempty"`
	Size             *hexutil.Uint64     `json:"size,omitempty"`
	Transactions     []T                 `json:"transactions"`
	Uncles           []common.Hash       `json:"uncles"`
	Withdrawals      []*types.Withdrawal `json:"withdrawals,omitempty"`
}

// Receipt is a receipt as returned by eth_getTransactionReceipt and
// eth_getBlockReceipts.
type Receipt struct {
	Type              *hexutil.Uint64 `json:"type,omitempty"`
	Root              hexutil.Bytes   `json:"root,omitempty"`
	Status            *hexutil.Uint64 `json:"status,omitempty"`
	CumulativeGasUsed hexutil.Uint64  `json:"cumulativeGasUsed"`
	Bloom             types.Bloom     `json:"logsBloom"`
	Logs              []*types.Log    `json:"logs"`
	TxHash            common.Hash     `json:"transactionHash"`
	ContractAddress   *common.Address `json:"contractAddress"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big    `json:"effectiveGasPrice"`
	BlobGasUsed       *hexutil.Uint64 `json:"blobGasUsed,omitempty"`
	BlobGasPrice      *hexutil.Big    `json:"blobGasPrice,omitempty"`
	BlockHash         common.Hash     `json:"blockHash"`
	BlockNumber       *hexutil.Big    `json:"blockNumber"`
	TransactionIndex  hexutil.Uint    `json:"transactionIndex"`

	// Deposit receipts of OP Stack chains.
	DepositNonce          *hexutil.Uint64 `json:"depositNonce,omitempty"`
	DepositReceiptVersion *hexutil.Uint64 `json:"depositReceiptVersion,omitempty"`
}

// ToReceipt converts the record into a receipt.
func (r *Receipt) ToReceipt() (*types.Receipt, error) {
	receipt := &types.Receipt{
		CumulativeGasUsed: uint64(r.CumulativeGasUsed),
		Bloom:             r.Bloom,
		Logs:              r.Logs,
		TxHash:            r.TxHash,
		ContractAddress:   r.ContractAddress,
		GasUsed:           uint64(r.GasUsed),
		BlockHash:         r.BlockHash,
		TransactionIndex:  uint(r.TransactionIndex),
	}
	if r.Type != nil {
		if *r.Type > 0xff {
			return nil, &ConversionError{Hash: r.TxHash, Err: ErrReceiptTypeOverflow}
		}
		receipt.Type = uint8(*r.Type)
	}
	switch {
	case len(r.Root) > 0:
		receipt.PostState = common.CopyBytes(r.Root)
	case r.Status != nil:
		receipt.Status = uint64(*r.Status)
	default:
		return nil, &ConversionError{Hash: r.TxHash, Err: ErrMissingReceiptStatus}
	}
	if r.EffectiveGasPrice != nil {
		receipt.EffectiveGasPrice = new(big.Int).Set((*big.Int)(r.EffectiveGasPrice))
	}
	if r.BlobGasUsed != nil {
		receipt.BlobGasUsed = uint64(*r.BlobGasUsed)
	}
	if r.BlobGasPrice != nil {
		receipt.BlobGasPrice = new(big.Int).Set((*big.Int)(r.BlobGasPrice))
	}
	if r.BlockNumber != nil {
		receipt.BlockNumber = new(big.Int).Set((*big.Int)(r.BlockNumber))
	}
	if r.DepositNonce != nil {
		nonce := uint64(*r.DepositNonce)
		receipt.DepositNonce = &nonce
	}
	if r.DepositReceiptVersion != nil {
		version := uint64(*r.DepositReceiptVersion)
		receipt.DepositReceiptVersion = &version
	}
	return receipt, nil
}
