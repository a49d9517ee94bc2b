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

package pebble

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPebbleBasics(t *testing.T) {
	db, err := New(t.TempDir(), 0, 0, "test/", false)
	require.NoError(t, err)

	_, err = db.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)

	ok, err := db.Has([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, db.Put([]byte("key"), []byte("value")))
	ok, err = db.Has([]byte("key"))
	require.NoError(t, err)
	require.True(t, ok)

	val, err := db.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), val)

	require.NoError(t, db.Delete([]byte("key")))
	_, err = db.Get([]byte("key"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err = db.Get([]byte("key"))
	require.ErrorIs(t, err, errClosed)
}

func TestPebblePersistence(t *testing.T) {
	dir := t.TempDir()

	db, err := New(dir, 16, 16, "", false)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = New(dir, 16, 16, "", true)
	require.NoError(t, err)
	defer db.Close()

	val, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)
	require.Equal(t, dir, db.Path())
}
