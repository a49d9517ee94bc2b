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
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var (
	testTo         = common.HexToAddress("0x3535353535353535353535353535353535353535")
	testAccessList = AccessList{{
		Address:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		StorageKeys: []common.Hash{common.HexToHash("0x01")},
	}}
	testR = new(big.Int).SetBytes(common.FromHex("0x0101010101010101010101010101010101010101010101010101010101010101"))
	testS = new(big.Int).SetBytes(common.FromHex("0x0202020202020202020202020202020202020202020202020202020202020202"))
)

// Canonical encodings and hashes of one transaction per type.
var txVectors = []struct {
	name      string
	encoded   string
	hash      common.Hash
	protected bool
}{
	{
		name:    "pre-eip155 legacy",
		encoded: "f86480850ba43b740082520894353535353535353535353535353535353535353501801ca00101010101010101010101010101010101010101010101010101010101010101a00202020202020202020202020202020202020202020202020202020202020202",
		hash:    common.HexToHash("0x79d22bc2ddc9bd8b154ba0feba30754087782080bac33be68f4215bd6dd5c30f"),
	},
	{
		// Example transaction of EIP-155.
		name:      "eip155 legacy",
		encoded:   "f86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83",
		hash:      common.HexToHash("0x33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788"),
		protected: true,
	},
	{
		name:      "access list",
		encoded:   "01f8a301078504a817c80082c3509435353535353535353535353535353535353535358084deadbeeff838f7941111111111111111111111111111111111111111e1a0000000000000000000000000000000000000000000000000000000000000000180a00101010101010101010101010101010101010101010101010101010101010101a00202020202020202020202020202020202020202020202020202020202020202",
		hash:      common.HexToHash("0x5ef34aaa5374205fb54bddc464d7493ee908fc6da6922028c487342085d72e99"),
		protected: true,
	},
	{
		name:      "dynamic fee",
		encoded:   "02f8a40103843b9aca008506fc23ac008252089435353535353535353535353535353535353535350180f838f7941111111111111111111111111111111111111111e1a0000000000000000000000000000000000000000000000000000000000000000101a00101010101010101010101010101010101010101010101010101010101010101a00202020202020202020202020202020202020202020202020202020202020202",
		hash:      common.HexToHash("0xcb8e25d472fa9306413cdeb406ddc27a6b91fdea82cca7e8226e146b88cd1f44"),
		protected: true,
	},
	{
		name:      "blob",
		encoded:   "03f893010984773594008509502f9000830186a09435353535353535353535353535353535353535358080c084b2d05e00e1a001aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa80a00101010101010101010101010101010101010101010101010101010101010101a00202020202020202020202020202020202020202020202020202020202020202",
		hash:      common.HexToHash("0xd000c83cd52ad5d2a4d57cf051c23a929511f0344ced34f90ac4c52f4d527d5e"),
		protected: true,
	},
}

func TestTransactionVectors(t *testing.T) {
	for _, vec := range txVectors {
		t.Run(vec.name, func(t *testing.T) {
			input := common.FromHex(vec.encoded)

			var tx Transaction
			require.NoError(t, tx.UnmarshalBinary(input))
			require.Equal(t, vec.hash, tx.Hash())
			require.Equal(t, vec.protected, tx.Protected())

			enc, err := tx.MarshalBinary()
			require.NoError(t, err)
			require.Equal(t, input, enc)
		})
	}
}

func TestTransactionVectorFields(t *testing.T) {
	decode := func(hex string) *Transaction {
		tx := new(Transaction)
		require.NoError(t, tx.UnmarshalBinary(common.FromHex(hex)))
		return tx
	}

	pre155 := decode(txVectors[0].encoded)
	require.Nil(t, pre155.ChainId())
	require.Nil(t, pre155.GasTipCap())
	require.Nil(t, pre155.AccessList())
	require.Equal(t, big.NewInt(50_000_000_000), pre155.GasPrice())
	require.Equal(t, &testTo, pre155.To())

	eip155 := decode(txVectors[1].encoded)
	require.Equal(t, big.NewInt(1), eip155.ChainId())
	require.Equal(t, uint64(9), eip155.Nonce())
	require.Equal(t, uint64(21000), eip155.Gas())
	require.Equal(t, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil), eip155.Value())

	accessList := decode(txVectors[2].encoded)
	require.Equal(t, uint8(AccessListTxType), accessList.Type())
	require.Equal(t, testAccessList, accessList.AccessList())
	require.Equal(t, common.FromHex("0xdeadbeef"), accessList.Data())
	require.Nil(t, accessList.GasTipCap())
	require.Nil(t, accessList.GasFeeCap())

	dynamic := decode(txVectors[3].encoded)
	require.Equal(t, big.NewInt(30_000_000_000), dynamic.GasPrice())
	require.Equal(t, big.NewInt(1_000_000_000), dynamic.GasTipCap())
	require.Equal(t, big.NewInt(30_000_000_000), dynamic.GasFeeCap())
	require.Nil(t, dynamic.BlobHashes())
	require.Nil(t, dynamic.BlobGasFeeCap())

	blob := decode(txVectors[4].encoded)
	require.Equal(t, big.NewInt(3_000_000_000), blob.BlobGasFeeCap())
	require.Equal(t, []common.Hash{common.HexToHash("0x01aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")}, blob.BlobHashes())
	require.Equal(t, big.NewInt(40_000_000_000), blob.GasPrice())
	require.Equal(t, &testTo, blob.To())
}

func TestEIP155VectorSender(t *testing.T) {
	key, _ := crypto.HexToECDSA("4646464646464646464646464646464646464646464646464646464646464646")

	tx := new(Transaction)
	require.NoError(t, tx.UnmarshalBinary(common.FromHex(txVectors[1].encoded)))

	from, err := tx.Sender()
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), from)
}

func TestSignAndRecover(t *testing.T) {
	key, _ := crypto.GenerateKey()
	addr := crypto.PubkeyToAddress(key.PublicKey)
	chainID := big.NewInt(10)

	inner := []TxData{
		&LegacyTx{Nonce: 1, GasPrice: big.NewInt(1), Gas: 21000, To: &testTo, Value: big.NewInt(1)},
		&EIP155Tx{Nonce: 2, GasPrice: big.NewInt(1), Gas: 21000, To: &testTo, Value: big.NewInt(1)},
		&AccessListTx{ChainID: chainID, Nonce: 3, GasPrice: big.NewInt(1), Gas: 30000, AccessList: testAccessList},
		&DynamicFeeTx{ChainID: chainID, Nonce: 4, GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(2), Gas: 21000, To: &testTo},
		&BlobTx{ChainID: uint256.NewInt(10), Nonce: 5, GasTipCap: uint256.NewInt(1), GasFeeCap: uint256.NewInt(2), Gas: 21000, To: testTo, BlobFeeCap: uint256.NewInt(3), BlobHashes: []common.Hash{{0x01}}},
	}
	for _, data := range inner {
		tx := MustSignNewTx(key, chainID, data)

		from, err := tx.Sender()
		require.NoError(t, err, spew.Sdump(data))
		require.Equal(t, addr, from)

		// The sender survives a round trip through the canonical encoding.
		enc, err := tx.MarshalBinary()
		require.NoError(t, err)
		var dec Transaction
		require.NoError(t, dec.UnmarshalBinary(enc))
		from, err = dec.Sender()
		require.NoError(t, err)
		require.Equal(t, addr, from)
		if tx.Type() == LegacyTxType {
			require.Equal(t, tx.Protected(), dec.Protected())
		}
	}
}

func TestRemoteTxPresets(t *testing.T) {
	reported := common.HexToHash("0xabcdef")
	from := common.HexToAddress("0x0102030405060708091011121314151617181920")

	tx := NewRemoteTx(&LegacyTx{GasPrice: big.NewInt(1), V: big.NewInt(27)}, reported, from)
	require.Equal(t, reported, tx.Hash())
	sender, err := tx.Sender()
	require.NoError(t, err)
	require.Equal(t, from, sender)

	// A zero reported hash is computed from the content.
	tx = NewRemoteTx(&LegacyTx{GasPrice: big.NewInt(1), V: big.NewInt(27)}, common.Hash{}, from)
	require.Equal(t, rlpHash(tx.inner), tx.Hash())
}

func TestSetGasKeepsPresetSender(t *testing.T) {
	reported := common.HexToHash("0xabcdef")
	from := common.HexToAddress("0x0102030405060708091011121314151617181920")
	tx := NewRemoteTx(&LegacyTx{GasPrice: big.NewInt(1), Gas: 21000, V: big.NewInt(27)}, reported, from)

	tx.SetGas(30_000)
	require.NotEqual(t, reported, tx.Hash())
	require.Equal(t, rlpHash(tx.inner), tx.Hash())

	sender, err := tx.Sender()
	require.NoError(t, err)
	require.Equal(t, from, sender)
}

func TestDecodeUnsupportedType(t *testing.T) {
	for _, typ := range []byte{0x04, 0x05, 0x7e, 0x7f} {
		var tx Transaction
		err := tx.UnmarshalBinary([]byte{typ, 0xc0})
		require.True(t, errors.Is(err, ErrTxTypeNotSupported), "type %#x: %v", typ, err)
	}
	var tx Transaction
	require.ErrorIs(t, tx.UnmarshalBinary(nil), errShortTypedTx)
	require.ErrorIs(t, tx.UnmarshalBinary([]byte{DynamicFeeTxType}), errShortTypedTx)

	// Malformed payloads of known types are not reported as unsupported.
	err := tx.UnmarshalBinary([]byte{DynamicFeeTxType, 0xc1, 0x80})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrTxTypeNotSupported))
}

func TestHashConcurrent(t *testing.T) {
	var tx Transaction
	require.NoError(t, tx.UnmarshalBinary(common.FromHex(txVectors[3].encoded)))

	const workers = 64
	var (
		wg     sync.WaitGroup
		start  = make(chan struct{})
		hashes = make([]common.Hash, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			hashes[i] = tx.Hash()
		}(i)
	}
	close(start)
	wg.Wait()

	for _, h := range hashes {
		require.Equal(t, txVectors[3].hash, h)
	}
	require.Equal(t, txVectors[3].hash, *tx.hash.Load())
}

func TestSetGasResetsHash(t *testing.T) {
	var tx Transaction
	require.NoError(t, tx.UnmarshalBinary(common.FromHex(txVectors[3].encoded)))
	before := tx.Hash()

	tx.SetGas(50_000)
	require.Equal(t, uint64(50_000), tx.Gas())
	require.NotEqual(t, before, tx.Hash())

	enc, _ := tx.MarshalBinary()
	require.Equal(t, crypto.Keccak256Hash(enc), tx.Hash())
}

func TestEqualIgnoresCaches(t *testing.T) {
	a, b := new(Transaction), new(Transaction)
	require.NoError(t, a.UnmarshalBinary(common.FromHex(txVectors[2].encoded)))
	require.NoError(t, b.UnmarshalBinary(common.FromHex(txVectors[2].encoded)))

	a.Hash()
	require.Nil(t, b.hash.Load())
	require.True(t, a.Equal(b))

	b.SetGas(1)
	require.False(t, a.Equal(b))
	require.False(t, a.Equal(nil))
}

func TestTransactionJSON(t *testing.T) {
	var tx Transaction
	require.NoError(t, tx.UnmarshalBinary(common.FromHex(txVectors[4].encoded)))

	enc, err := json.Marshal(&tx)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(enc, &fields))
	require.Equal(t, "0x3", fields["type"])
	require.Equal(t, "0x1", fields["chainId"])
	require.Equal(t, "0xb2d05e00", fields["maxFeePerBlobGas"])
	require.Equal(t, txVectors[4].hash.Hex(), fields["hash"])
	require.Equal(t, "0x0", fields["yParity"])
}

func drawBig(t *rapid.T, label string) *big.Int {
	return new(big.Int).SetBytes(rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(t, label))
}

func drawU256(t *rapid.T, label string) *uint256.Int {
	v, _ := uint256.FromBig(drawBig(t, label))
	return v
}

func drawAddress(t *rapid.T, label string) common.Address {
	return common.BytesToAddress(rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(t, label))
}

func drawHash(t *rapid.T, label string) common.Hash {
	return common.BytesToHash(rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, label))
}

func drawTo(t *rapid.T) *common.Address {
	if rapid.Bool().Draw(t, "create") {
		return nil
	}
	to := drawAddress(t, "to")
	return &to
}

func drawAccessList(t *rapid.T) AccessList {
	n := rapid.IntRange(0, 3).Draw(t, "tuples")
	al := make(AccessList, n)
	for i := range al {
		al[i].Address = drawAddress(t, "address")
		keys := rapid.IntRange(0, 3).Draw(t, "keys")
		for j := 0; j < keys; j++ {
			al[i].StorageKeys = append(al[i].StorageKeys, drawHash(t, "key"))
		}
	}
	return al
}

// drawTxData draws transaction data of any supported type with a structurally
// valid signature.
func drawTxData(t *rapid.T) TxData {
	var (
		nonce = rapid.Uint64().Draw(t, "nonce")
		gas   = rapid.Uint64().Draw(t, "gas")
		data  = rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "data")
		r, s  = drawBig(t, "r"), drawBig(t, "s")
		yPar  = big.NewInt(int64(rapid.IntRange(0, 1).Draw(t, "yParity")))
	)
	switch rapid.IntRange(0, 4).Draw(t, "type") {
	case 0:
		return &LegacyTx{Nonce: nonce, GasPrice: drawBig(t, "gasPrice"), Gas: gas, To: drawTo(t), Value: drawBig(t, "value"), Data: data,
			V: new(big.Int).Add(yPar, big.NewInt(27)), R: r, S: s}
	case 1:
		chainID := rapid.Uint64Range(1, 1<<40).Draw(t, "chainID")
		v := new(big.Int).SetUint64(chainID*2 + 35)
		return &EIP155Tx{Nonce: nonce, GasPrice: drawBig(t, "gasPrice"), Gas: gas, To: drawTo(t), Value: drawBig(t, "value"), Data: data,
			V: v.Add(v, yPar), R: r, S: s}
	case 2:
		return &AccessListTx{ChainID: drawBig(t, "chainID"), Nonce: nonce, GasPrice: drawBig(t, "gasPrice"), Gas: gas, To: drawTo(t),
			Value: drawBig(t, "value"), Data: data, AccessList: drawAccessList(t), V: yPar, R: r, S: s}
	case 3:
		return &DynamicFeeTx{ChainID: drawBig(t, "chainID"), Nonce: nonce, GasTipCap: drawBig(t, "tip"), GasFeeCap: drawBig(t, "feeCap"),
			Gas: gas, To: drawTo(t), Value: drawBig(t, "value"), Data: data, AccessList: drawAccessList(t), V: yPar, R: r, S: s}
	default:
		hashes := make([]common.Hash, rapid.IntRange(0, 6).Draw(t, "blobs"))
		for i := range hashes {
			hashes[i] = drawHash(t, "blobHash")
		}
		return &BlobTx{ChainID: drawU256(t, "chainID"), Nonce: nonce, GasTipCap: drawU256(t, "tip"), GasFeeCap: drawU256(t, "feeCap"),
			Gas: gas, To: drawAddress(t, "to"), Value: drawU256(t, "value"), Data: data, AccessList: drawAccessList(t),
			BlobFeeCap: drawU256(t, "blobFeeCap"), BlobHashes: hashes,
			V: uint256.MustFromBig(yPar), R: uint256.MustFromBig(r), S: uint256.MustFromBig(s)}
	}
}

func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tx := NewTx(drawTxData(t))

		enc, err := tx.MarshalBinary()
		if err != nil {
			t.Fatal(err)
		}
		if tx.Type() == LegacyTxType {
			if enc[0] < 0xc0 {
				t.Fatalf("legacy encoding starts with %#x", enc[0])
			}
		} else if enc[0] != tx.Type() {
			t.Fatalf("typed encoding starts with %#x, want %#x", enc[0], tx.Type())
		}

		var dec Transaction
		if err := dec.UnmarshalBinary(enc); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if !dec.Equal(tx) {
			t.Fatalf("binary round trip mismatch:\n%s\n%s", spew.Sdump(tx.inner), spew.Sdump(dec.inner))
		}
		if dec.Protected() != tx.Protected() {
			t.Fatalf("protection changed: %v -> %v", tx.Protected(), dec.Protected())
		}
		if dec.Hash() != tx.Hash() || tx.Hash() != crypto.Keccak256Hash(enc) {
			t.Fatal("hash mismatch")
		}

		// Embedded form: typed transactions are wrapped in an RLP string.
		embedded, err := rlp.EncodeToBytes(tx)
		if err != nil {
			t.Fatal(err)
		}
		var fromList Transaction
		if err := rlp.DecodeBytes(embedded, &fromList); err != nil {
			t.Fatalf("rlp decode failed: %v", err)
		}
		if !fromList.Equal(tx) {
			t.Fatal("rlp round trip mismatch")
		}
	})
}
