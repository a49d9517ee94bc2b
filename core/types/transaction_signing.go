// Copyright 2016 The go-ethereum Authors
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
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var big8 = big.NewInt(8)

// SignTx signs the transaction with the given private key. The chain id is only
// used by EIP-155 legacy transactions; typed transactions sign over their own.
func SignTx(tx *Transaction, chainID *big.Int, prv *ecdsa.PrivateKey) (*Transaction, error) {
	h := tx.SigningHash(chainID)
	sig, err := crypto.Sign(h[:], prv)
	if err != nil {
		return nil, err
	}
	return tx.WithSignature(chainID, sig)
}

// MustSignNewTx creates a transaction and signs it.
// This panics if the transaction cannot be signed.
func MustSignNewTx(prv *ecdsa.PrivateKey, chainID *big.Int, txdata TxData) *Transaction {
	tx, err := SignTx(NewTx(txdata), chainID, prv)
	if err != nil {
		panic(err)
	}
	return tx
}

// SigningHash returns the hash to be signed by the sender.
// It does not uniquely identify the transaction.
func (tx *Transaction) SigningHash(chainID *big.Int) common.Hash {
	switch tx.inner.(type) {
	case *LegacyTx:
		return tx.inner.sigHash(nil)
	case *EIP155Tx:
		return tx.inner.sigHash(chainID)
	default:
		return tx.inner.sigHash(tx.inner.chainID())
	}
}

// WithSignature returns a new transaction with the given signature.
// This signature needs to be in the [R || S || V] format where V is 0 or 1.
func (tx *Transaction) WithSignature(chainID *big.Int, sig []byte) (*Transaction, error) {
	if len(sig) != crypto.SignatureLength {
		return nil, fmt.Errorf("wrong size for signature: got %d, want %d", len(sig), crypto.SignatureLength)
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	v := new(big.Int).SetBytes([]byte{sig[64]})

	cpy := tx.inner.copy()
	switch cpy.(type) {
	case *LegacyTx:
		v.Add(v, big.NewInt(27))
	case *EIP155Tx:
		if chainID == nil || chainID.Sign() == 0 {
			return nil, errors.New("eip155 signature requires a chain id")
		}
		v.Add(v, big.NewInt(35))
		v.Add(v, new(big.Int).Mul(chainID, big.NewInt(2)))
	default:
		chainID = cpy.chainID()
	}
	cpy.setSignatureValues(chainID, v, r, s)
	return &Transaction{inner: cpy}, nil
}

// Sender returns the address that signed the transaction. Transactions reported
// by a remote node return the address it reported. The result is cached.
func (tx *Transaction) Sender() (common.Address, error) {
	if from := tx.from.Load(); from != nil {
		return *from, nil
	}
	addr, err := recoverSender(tx.inner)
	if err != nil {
		return common.Address{}, err
	}
	tx.from.Store(&addr)
	return addr, nil
}

func recoverSender(inner TxData) (common.Address, error) {
	v, r, s := inner.rawSignatureValues()
	if v == nil || r == nil || s == nil {
		return common.Address{}, ErrInvalidSig
	}
	switch inner.(type) {
	case *LegacyTx:
		return recoverPlain(inner.sigHash(nil), r, s, v, false)
	case *EIP155Tx:
		chainID := deriveChainId(v)
		V := new(big.Int).Sub(v, new(big.Int).Mul(chainID, big.NewInt(2)))
		V.Sub(V, big8)
		return recoverPlain(inner.sigHash(chainID), r, s, V, true)
	default:
		// Typed transactions carry the y parity in v.
		V := new(big.Int).Add(v, big.NewInt(27))
		return recoverPlain(inner.sigHash(inner.chainID()), r, s, V, true)
	}
}

func recoverPlain(sighash common.Hash, R, S, Vb *big.Int, homestead bool) (common.Address, error) {
	if Vb.BitLen() > 8 {
		return common.Address{}, ErrInvalidSig
	}
	V := byte(Vb.Uint64() - 27)
	if !crypto.ValidateSignatureValues(V, R, S, homestead) {
		return common.Address{}, ErrInvalidSig
	}
	// encode the signature in uncompressed format
	r, s := R.Bytes(), S.Bytes()
	sig := make([]byte, crypto.SignatureLength)
	copy(sig[32-len(r):32], r)
	copy(sig[64-len(s):64], s)
	sig[64] = V
	// recover the public key from the signature
	pub, err := crypto.Ecrecover(sighash[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	if len(pub) == 0 || pub[0] != 4 {
		return common.Address{}, errors.New("invalid public key")
	}
	var addr common.Address
	copy(addr[:], crypto.Keccak256(pub[1:])[12:])
	return addr, nil
}

// isProtectedV reports whether v commits to a chain id.
func isProtectedV(V *big.Int) bool {
	if V.BitLen() <= 8 {
		v := V.Uint64()
		return v != 27 && v != 28 && v != 1 && v != 0
	}
	// anything not 27 or 28 is considered protected
	return true
}

// deriveChainId derives the chain id from the given v parameter
func deriveChainId(v *big.Int) *big.Int {
	if v.BitLen() <= 64 {
		v := v.Uint64()
		if v == 27 || v == 28 {
			return new(big.Int)
		}
		if v < 35 {
			return new(big.Int)
		}
		return new(big.Int).SetUint64((v - 35) / 2)
	}
	vCopy := new(big.Int).Sub(v, big.NewInt(35))
	return vCopy.Rsh(vCopy, 1)
}
