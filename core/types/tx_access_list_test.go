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
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestAccessListTxCopyIsDeep(t *testing.T) {
	inner := &AccessListTx{
		ChainID:    big.NewInt(1),
		Nonce:      1,
		GasPrice:   big.NewInt(10),
		Gas:        30000,
		To:         &testTo,
		Value:      big.NewInt(0),
		AccessList: AccessList{{Address: common.Address{0x01}, StorageKeys: []common.Hash{{0x02}}}},
	}
	tx := NewTx(inner)
	before := tx.Hash()

	inner.AccessList[0].StorageKeys[0] = common.Hash{0xff}
	inner.GasPrice.SetUint64(99)

	require.Equal(t, common.Hash{0x02}, tx.AccessList()[0].StorageKeys[0])
	require.Equal(t, big.NewInt(10), tx.GasPrice())

	tx.hash.Store(nil)
	require.Equal(t, before, tx.Hash())
}

func TestAccessListTxCreation(t *testing.T) {
	key, _ := crypto.GenerateKey()
	tx := MustSignNewTx(key, nil, &AccessListTx{
		ChainID:  big.NewInt(5),
		Nonce:    0,
		GasPrice: big.NewInt(1),
		Gas:      100000,
		Data:     common.FromHex("0x6001"),
	})
	require.Nil(t, tx.To())
	require.Empty(t, tx.AccessList())
	require.Equal(t, big.NewInt(5), tx.ChainId())

	enc, err := tx.MarshalBinary()
	require.NoError(t, err)

	var dec Transaction
	require.NoError(t, dec.UnmarshalBinary(enc))
	require.Nil(t, dec.To())
	require.True(t, dec.Equal(tx))

	from, err := dec.Sender()
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), from)
}

// Typed signatures carry the y parity directly; anything else is rejected.
func TestAccessListTxRejectsLegacyV(t *testing.T) {
	var tx Transaction
	require.NoError(t, tx.UnmarshalBinary(common.FromHex(txVectors[2].encoded)))

	inner := tx.Inner().(*AccessListTx)
	inner.V = big.NewInt(27)
	_, err := NewTx(inner).Sender()
	require.ErrorIs(t, err, ErrInvalidSig)
}
