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
	"encoding/json"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/evmfork/chaincore/core/types"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	// L1 attributes deposit of an OP Stack chain.
	l1InfoDeposit = "7ef9015aa044bae9d41b8380d781187b426c6fe43df5fb2fb57bd4466ef6a701e1f01e015694deaddeaddeaddeaddeaddeaddeaddeaddead000194420000000000000000000000000000000000001580808408f0d18001b90104015d8eb900000000000000000000000000000000000000000000000000000000008057650000000000000000000000000000000000000000000000000000000063d96d10000000000000000000000000000000000000000000000000000000000009f35273d89754a1e0387b89520d989d3be9c37c1f32495a88faf1ea05c61121ab0d1900000000000000000000000000000000000000000000000000000000000000010000000000000000000000002d679b567db6187c0c8323fa982cfb88b74dbcc7000000000000000000000000000000000000000000000000000000000000083400000000000000000000000000000000000000000000000000000000000f4240"
	l1InfoDepositHash = "0xef8cc21bdbab8d2b60b054460768b1db67c8906b6a2bdf9bc287b3654326fc76"

	// Contract creating deposit that mints one ether.
	creationDeposit     = "7ef849a0222222222222222222222222222222222222222222222222222222222222222294333333333333333333333333333333333333333380880de0b6b3a764000005830186a080826001"
	creationDepositHash = "0x5bc1397dd21eca1546e0d5da9ecd19f2426c15df49971f0fe20184cb89ce335d"

	dynamicFeeTx     = "02f8a40103843b9aca008506fc23ac008252089435353535353535353535353535353535353535350180f838f7941111111111111111111111111111111111111111e1a0000000000000000000000000000000000000000000000000000000000000000101a00101010101010101010101010101010101010101010101010101010101010101a00202020202020202020202020202020202020202020202020202020202020202"
	dynamicFeeTxHash = "0xcb8e25d472fa9306413cdeb406ddc27a6b91fdea82cca7e8226e146b88cd1f44"
)

func TestDecodeL1InfoDeposit(t *testing.T) {
	input := common.FromHex(l1InfoDeposit)
	tx, err := ChainSpec{}.DecodeTransaction(input)
	require.NoError(t, err)

	require.True(t, tx.IsDeposit())
	require.Equal(t, uint8(DepositTxType), tx.Type())
	require.Equal(t, common.HexToHash(l1InfoDepositHash), tx.Hash())
	require.Equal(t, common.HexToHash("0x44bae9d41b8380d781187b426c6fe43df5fb2fb57bd4466ef6a701e1f01e0156"), tx.SourceHash())

	from, err := tx.Sender()
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0xdeaddeaddeaddeaddeaddeaddeaddeaddead0001"), from)
	require.Equal(t, common.HexToAddress("0x4200000000000000000000000000000000000015"), *tx.To())
	require.Equal(t, uint64(150_000_000), tx.Gas())
	require.True(t, tx.IsSystemTx())
	require.Equal(t, big.NewInt(0), tx.Mint())
	require.Equal(t, big.NewInt(0), tx.Value())
	require.Len(t, tx.Data(), 260)
	require.Equal(t, common.FromHex("0x015d8eb9"), tx.Data()[:4])

	enc, err := tx.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, input, enc)
}

func TestDecodeCreationDeposit(t *testing.T) {
	input := common.FromHex(creationDeposit)
	var tx Transaction
	require.NoError(t, tx.UnmarshalBinary(input))

	require.Nil(t, tx.To())
	require.False(t, tx.IsSystemTx())
	require.Equal(t, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil), tx.Mint())
	require.Equal(t, big.NewInt(5), tx.Value())
	require.Equal(t, uint64(100_000), tx.Gas())
	require.Equal(t, common.FromHex("0x6001"), tx.Data())
	require.Equal(t, common.HexToHash(creationDepositHash), tx.Hash())

	enc, err := tx.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, input, enc)
}

func TestDepositAccessors(t *testing.T) {
	tx := NewDepositTx(&DepositTx{SourceHash: common.Hash{1}, From: common.Address{2}, Gas: 1000})

	require.Zero(t, tx.Nonce())
	require.Equal(t, big.NewInt(0), tx.GasPrice())
	require.NotNil(t, tx.GasTipCap())
	require.Equal(t, big.NewInt(0), tx.GasTipCap())
	require.Equal(t, big.NewInt(0), tx.GasFeeCap())
	require.Empty(t, tx.AccessList())
	require.Nil(t, tx.BlobHashes())
	require.Nil(t, tx.BlobGasFeeCap())
	require.Nil(t, tx.ChainId())
	require.False(t, tx.Protected())
	require.Nil(t, tx.L1())
	require.Equal(t, common.Address{2}, tx.Deposit().From)
}

func TestL1TransactionsPassThrough(t *testing.T) {
	input := common.FromHex(dynamicFeeTx)
	tx, err := ChainSpec{}.DecodeTransaction(input)
	require.NoError(t, err)
	require.False(t, tx.IsDeposit())
	require.Equal(t, common.HexToHash(dynamicFeeTxHash), tx.Hash())
	require.Equal(t, big.NewInt(1_000_000_000), tx.GasTipCap())
	require.Equal(t, common.Hash{}, tx.SourceHash())
	require.Nil(t, tx.Mint())
	require.False(t, tx.IsSystemTx())

	enc, err := tx.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, input, enc)
}

func TestDecodeErrors(t *testing.T) {
	var tx Transaction
	// Unknown types other than deposits keep the generic error.
	require.ErrorIs(t, tx.UnmarshalBinary([]byte{0x7d, 0xc0}), types.ErrTxTypeNotSupported)

	// Malformed deposits are decoding errors.
	err := tx.UnmarshalBinary([]byte{DepositTxType, 0xc1, 0x80})
	require.Error(t, err)
	require.NotErrorIs(t, err, types.ErrTxTypeNotSupported)

	// Malformed L1 transactions are not retried as deposits.
	err = tx.UnmarshalBinary([]byte{types.DynamicFeeTxType, 0xc0})
	require.Error(t, err)
	require.NotErrorIs(t, err, types.ErrTxTypeNotSupported)
}

func TestDepositRLPEmbedding(t *testing.T) {
	var deposit, l1 Transaction
	require.NoError(t, deposit.UnmarshalBinary(common.FromHex(creationDeposit)))
	require.NoError(t, l1.UnmarshalBinary(common.FromHex(dynamicFeeTx)))

	enc, err := rlp.EncodeToBytes([]*Transaction{&deposit, &l1})
	require.NoError(t, err)

	var dec []*Transaction
	require.NoError(t, rlp.DecodeBytes(enc, &dec))
	require.Len(t, dec, 2)
	require.True(t, dec[0].Equal(&deposit))
	require.True(t, dec[1].Equal(&l1))
	require.False(t, dec[0].Equal(dec[1]))
}

func TestDepositHashConcurrent(t *testing.T) {
	var tx Transaction
	require.NoError(t, tx.UnmarshalBinary(common.FromHex(l1InfoDeposit)))

	var (
		wg     sync.WaitGroup
		hashes = make([]common.Hash, 32)
	)
	for i := range hashes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hashes[i] = tx.Hash()
		}()
	}
	wg.Wait()
	for _, h := range hashes {
		require.Equal(t, common.HexToHash(l1InfoDepositHash), h)
	}
}

func TestDepositSetGas(t *testing.T) {
	var tx Transaction
	require.NoError(t, tx.UnmarshalBinary(common.FromHex(creationDeposit)))
	before := tx.Hash()

	tx.SetGas(7)
	enc, err := tx.MarshalBinary()
	require.NoError(t, err)
	require.NotEqual(t, before, tx.Hash())
	require.Equal(t, crypto.Keccak256Hash(enc), tx.Hash())
}

func TestDepositJSON(t *testing.T) {
	var tx Transaction
	require.NoError(t, tx.UnmarshalBinary(common.FromHex(creationDeposit)))

	enc, err := json.Marshal(&tx)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(enc, &fields))
	require.Equal(t, "0x7e", fields["type"])
	require.Equal(t, "0xde0b6b3a7640000", fields["mint"])
	require.Equal(t, creationDepositHash, fields["hash"])
	require.Nil(t, fields["to"])
	require.Equal(t, false, fields["isSystemTx"])
}

func TestDepositRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		deposit := &DepositTx{
			SourceHash:          common.BytesToHash(rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "source")),
			From:                common.BytesToAddress(rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(t, "from")),
			Mint:                new(big.Int).SetUint64(rapid.Uint64().Draw(t, "mint")),
			Value:               new(big.Int).SetUint64(rapid.Uint64().Draw(t, "value")),
			Gas:                 rapid.Uint64().Draw(t, "gas"),
			IsSystemTransaction: rapid.Bool().Draw(t, "system"),
			Data:                rapid.SliceOfN(rapid.Byte(), 0, 128).Draw(t, "data"),
		}
		if rapid.Bool().Draw(t, "call") {
			to := common.BytesToAddress(rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(t, "to"))
			deposit.To = &to
		}
		tx := NewDepositTx(deposit)
		enc, err := tx.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		if enc[0] != DepositTxType {
			t.Fatalf("wrong type byte %#x", enc[0])
		}
		dec, err := ChainSpec{}.DecodeTransaction(enc)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if !dec.Equal(tx) || dec.Hash() != crypto.Keccak256Hash(enc) {
			t.Fatal("round trip mismatch")
		}
	})
}
