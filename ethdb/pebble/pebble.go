// Copyright 2020 The go-ethereum Authors
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

// Package pebble implements the on-disk key-value store backing the RPC
// response cache.
package pebble

import (
	"errors"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
)

const (
	// minCache is the minimum amount of memory in megabytes to allocate to the
	// block cache and write buffers.
	minCache = 16

	// minHandles is the minimum number of files handles to allocate to the open
	// database files.
	minHandles = 16

	// metricsGatheringInterval specifies the interval to retrieve the database
	// size and compaction stats.
	metricsGatheringInterval = 3 * time.Second
)

// ErrNotFound is returned by Get if the key is not present in the store.
var ErrNotFound = errors.New("not found")

var errClosed = errors.New("pebble: database closed")

// Database is a persistent key-value store based on the pebble storage engine.
type Database struct {
	fn string     // filename for reporting
	db *pebble.DB // Underlying pebble storage engine

	compTimeMeter  metrics.Meter // Meter for measuring the total time spent in database compaction
	compCountMeter metrics.Meter // Meter for measuring the number of finished compactions
	diskSizeGauge  metrics.Gauge // Gauge for tracking the size of all the levels in the database
	diskReadMeter  metrics.Meter // Meter for measuring the effective amount of data read
	diskWriteMeter metrics.Meter // Meter for measuring the effective amount of data written

	compLock      sync.Mutex // Mutex protecting the compaction bookkeeping below
	activeComp    int        // current number of active compactions
	compStartTime time.Time  // the start time of the earliest currently-active compaction

	quitLock sync.RWMutex    // Mutex protecting the quit channel and the closed flag
	quitChan chan chan error // Quit channel to stop the metrics collection before closing the database
	closed   bool

	log log.Logger // Contextual logger tracking the database path
}

// New returns a wrapped pebble DB object. The namespace is the prefix that the
// metrics reporting should use for surfacing internal stats.
func New(file string, cache int, handles int, namespace string, readonly bool) (*Database, error) {
	// Ensure we have some minimal caching and file guarantees
	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	logger := log.New("database", file)
	logger.Info("Allocated cache and file handles", "cache", cache, "handles", handles, "readonly", readonly)

	db := &Database{
		fn:       file,
		log:      logger,
		quitChan: make(chan chan error),
	}
	db.compTimeMeter = metrics.NewRegisteredMeter(namespace+"compact/time", nil)
	db.compCountMeter = metrics.NewRegisteredMeter(namespace+"compact/count", nil)
	db.diskSizeGauge = metrics.NewRegisteredGauge(namespace+"disk/size", nil)
	db.diskReadMeter = metrics.NewRegisteredMeter(namespace+"disk/read", nil)
	db.diskWriteMeter = metrics.NewRegisteredMeter(namespace+"disk/write", nil)

	eventListener := &pebble.EventListener{
		CompactionBegin: func(pebble.CompactionInfo) { db.onCompactionBegin() },
		CompactionEnd:   func(pebble.CompactionInfo) { db.onCompactionEnd() },
	}
	inner, err := pebble.Open(file, &pebble.Options{
		// Pebble has a single combined cache area and the write
		// buffers are taken from this too.
		Cache:        pebble.NewCache(int64(cache * 1024 * 1024)),
		MaxOpenFiles: handles,
		MemTableSize: uint64(cache * 1024 * 1024 / 4),
		// Cached responses are looked up by exact key, so every level
		// carries a bloom filter.
		Levels: []pebble.LevelOptions{
			{TargetFileSize: 2 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 2 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 2 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
		},
		ReadOnly:      readonly,
		EventListener: eventListener,
	})
	if err != nil {
		return nil, err
	}
	db.db = inner

	go db.meter(metricsGatheringInterval)
	return db, nil
}

// Path returns the directory the database was opened from.
func (db *Database) Path() string {
	return db.fn
}

// Close stops the metrics collection, flushes any pending data to disk and closes
// all io accesses to the underlying key-value store.
func (db *Database) Close() error {
	db.quitLock.Lock()
	defer db.quitLock.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true
	if db.quitChan != nil {
		errc := make(chan error)
		db.quitChan <- errc
		if err := <-errc; err != nil {
			db.log.Error("Metrics collection failed", "err", err)
		}
		db.quitChan = nil
	}
	return db.db.Close()
}

// Has retrieves if a key is present in the key-value store.
func (db *Database) Has(key []byte) (bool, error) {
	db.quitLock.RLock()
	defer db.quitLock.RUnlock()
	if db.closed {
		return false, errClosed
	}
	_, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	closer.Close()
	return true, nil
}

// Get retrieves the given key if it's present in the key-value store.
func (db *Database) Get(key []byte) ([]byte, error) {
	db.quitLock.RLock()
	defer db.quitLock.RUnlock()
	if db.closed {
		return nil, errClosed
	}
	dat, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	ret := make([]byte, len(dat))
	copy(ret, dat)
	closer.Close()
	db.diskReadMeter.Mark(int64(len(ret)))
	return ret, nil
}

// Put inserts the given value into the key-value store.
func (db *Database) Put(key []byte, value []byte) error {
	db.quitLock.RLock()
	defer db.quitLock.RUnlock()
	if db.closed {
		return errClosed
	}
	db.diskWriteMeter.Mark(int64(len(key) + len(value)))
	return db.db.Set(key, value, pebble.NoSync)
}

// Delete removes the key from the key-value store.
func (db *Database) Delete(key []byte) error {
	db.quitLock.RLock()
	defer db.quitLock.RUnlock()
	if db.closed {
		return errClosed
	}
	return db.db.Delete(key, nil)
}

func (db *Database) onCompactionBegin() {
	db.compLock.Lock()
	defer db.compLock.Unlock()

	if db.activeComp == 0 {
		db.compStartTime = time.Now()
	}
	db.activeComp++
}

func (db *Database) onCompactionEnd() {
	db.compLock.Lock()
	defer db.compLock.Unlock()

	if db.activeComp == 0 {
		return
	}
	db.activeComp--
	db.compCountMeter.Mark(1)
	if db.activeComp == 0 {
		db.compTimeMeter.Mark(int64(time.Since(db.compStartTime)))
	}
}

// meter periodically retrieves internal pebble counters and reports them to
// the metrics subsystem.
func (db *Database) meter(refresh time.Duration) {
	timer := time.NewTimer(refresh)
	defer timer.Stop()

	for {
		db.diskSizeGauge.Update(int64(db.db.Metrics().DiskSpaceUsage()))

		select {
		case errc := <-db.quitChan:
			errc <- nil
			return
		case <-timer.C:
			timer.Reset(refresh)
		}
	}
}
