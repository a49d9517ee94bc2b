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

// Package types contains data types related to Ethereum consensus.
package types

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
)

// BlockNonce is a 64-bit hash which proves (combined with the mix-hash) that a
// sufficient amount of computation has been carried out on a block.
type BlockNonce = gethtypes.BlockNonce

// Bloom represents a 2048 bit bloom filter.
type Bloom = gethtypes.Bloom

// Withdrawal represents a validator withdrawal from the consensus layer.
type Withdrawal = gethtypes.Withdrawal

// EncodeNonce converts the given integer to a block nonce.
func EncodeNonce(i uint64) BlockNonce {
	return gethtypes.EncodeNonce(i)
}

// BlobGas is the EIP-4844 blob gas accounting of a block. Both values are
// present in a header or neither is.
type BlobGas struct {
	GasUsed   uint64 // total blob gas consumed by the block's transactions
	ExcessGas uint64 // running total of blob gas consumed in excess of the target
}

// Header represents a block header in the Ethereum blockchain.
type Header struct {
	ParentHash  common.Hash    `json:"parentHash"`
	UncleHash   common.Hash    `json:"sha3Uncles"`
	Coinbase    common.Address `json:"miner"`
	Root        common.Hash    `json:"stateRoot"`
	TxHash      common.Hash    `json:"transactionsRoot"`
	ReceiptHash common.Hash    `json:"receiptsRoot"`
	Bloom       Bloom          `json:"logsBloom"`
	Difficulty  *big.Int       `json:"difficulty"`
	Number      *big.Int       `json:"number"`
	GasLimit    uint64         `json:"gasLimit"`
	GasUsed     uint64         `json:"gasUsed"`
	Time        uint64         `json:"timestamp"`
	Extra       []byte         `json:"extraData"`
	MixDigest   common.Hash    `json:"mixHash"`
	Nonce       BlockNonce     `json:"nonce"`

	// BaseFee was added by EIP-1559 and is ignored in legacy headers.
	BaseFee *big.Int `json:"baseFeePerGas"`

	// WithdrawalsHash was added by EIP-4895 and is ignored in legacy headers.
	WithdrawalsHash *common.Hash `json:"withdrawalsRoot"`

	// BlobGas was added by EIP-4844 and is ignored in legacy headers.
	BlobGas *BlobGas `json:"blobGas"`

	// ParentBeaconRoot was added by EIP-4788 and is ignored in legacy headers.
	ParentBeaconRoot *common.Hash `json:"parentBeaconBlockRoot"`
}

// headerRLP is the consensus encoding of a header. Fields added by later forks
// are optional and only present when set.
type headerRLP struct {
	ParentHash  common.Hash
	UncleHash   common.Hash
	Coinbase    common.Address
	Root        common.Hash
	TxHash      common.Hash
	ReceiptHash common.Hash
	Bloom       Bloom
	Difficulty  *big.Int
	Number      *big.Int
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   common.Hash
	Nonce       BlockNonce

	BaseFee          *big.Int     `rlp:"optional"`
	WithdrawalsHash  *common.Hash `rlp:"optional"`
	BlobGasUsed      *uint64      `rlp:"optional"`
	ExcessBlobGas    *uint64      `rlp:"optional"`
	ParentBeaconRoot *common.Hash `rlp:"optional"`
}

// EncodeRLP implements rlp.Encoder.
func (h *Header) EncodeRLP(w io.Writer) error {
	enc := headerRLP{
		ParentHash:       h.ParentHash,
		UncleHash:        h.UncleHash,
		Coinbase:         h.Coinbase,
		Root:             h.Root,
		TxHash:           h.TxHash,
		ReceiptHash:      h.ReceiptHash,
		Bloom:            h.Bloom,
		Difficulty:       h.Difficulty,
		Number:           h.Number,
		GasLimit:         h.GasLimit,
		GasUsed:          h.GasUsed,
		Time:             h.Time,
		Extra:            h.Extra,
		MixDigest:        h.MixDigest,
		Nonce:            h.Nonce,
		BaseFee:          h.BaseFee,
		WithdrawalsHash:  h.WithdrawalsHash,
		ParentBeaconRoot: h.ParentBeaconRoot,
	}
	if h.BlobGas != nil {
		used, excess := h.BlobGas.GasUsed, h.BlobGas.ExcessGas
		enc.BlobGasUsed, enc.ExcessBlobGas = &used, &excess
	}
	return rlp.Encode(w, &enc)
}

// DecodeRLP implements rlp.Decoder.
func (h *Header) DecodeRLP(s *rlp.Stream) error {
	var dec headerRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	*h = Header{
		ParentHash:       dec.ParentHash,
		UncleHash:        dec.UncleHash,
		Coinbase:         dec.Coinbase,
		Root:             dec.Root,
		TxHash:           dec.TxHash,
		ReceiptHash:      dec.ReceiptHash,
		Bloom:            dec.Bloom,
		Difficulty:       dec.Difficulty,
		Number:           dec.Number,
		GasLimit:         dec.GasLimit,
		GasUsed:          dec.GasUsed,
		Time:             dec.Time,
		Extra:            dec.Extra,
		MixDigest:        dec.MixDigest,
		Nonce:            dec.Nonce,
		BaseFee:          dec.BaseFee,
		WithdrawalsHash:  dec.WithdrawalsHash,
		ParentBeaconRoot: dec.ParentBeaconRoot,
	}
	if dec.BlobGasUsed != nil && dec.ExcessBlobGas != nil {
		h.BlobGas = &BlobGas{GasUsed: *dec.BlobGasUsed, ExcessGas: *dec.ExcessBlobGas}
	}
	return nil
}

// Hash returns the block hash of the header, which is simply the keccak256 hash of its
// RLP encoding.
func (h *Header) Hash() common.Hash {
	return rlpHash(h)
}

// Copy creates a deep copy of the header.
func (h *Header) Copy() *Header {
	cpy := *h
	if cpy.Difficulty = new(big.Int); h.Difficulty != nil {
		cpy.Difficulty.Set(h.Difficulty)
	}
	if cpy.Number = new(big.Int); h.Number != nil {
		cpy.Number.Set(h.Number)
	}
	if h.BaseFee != nil {
		cpy.BaseFee = new(big.Int).Set(h.BaseFee)
	}
	if len(h.Extra) > 0 {
		cpy.Extra = make([]byte, len(h.Extra))
		copy(cpy.Extra, h.Extra)
	}
	if h.WithdrawalsHash != nil {
		cpy.WithdrawalsHash = new(common.Hash)
		*cpy.WithdrawalsHash = *h.WithdrawalsHash
	}
	if h.BlobGas != nil {
		blobGas := *h.BlobGas
		cpy.BlobGas = &blobGas
	}
	if h.ParentBeaconRoot != nil {
		cpy.ParentBeaconRoot = new(common.Hash)
		*cpy.ParentBeaconRoot = *h.ParentBeaconRoot
	}
	return &cpy
}
