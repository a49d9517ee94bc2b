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

package ethclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/evmfork/chaincore/ethdb/pebble"
	"github.com/golang/snappy"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of responses kept in memory when the memory
// cache is enabled without an explicit size.
const DefaultCacheSize = 1024

var (
	cacheMemHitCounter  = metrics.NewRegisteredCounter("chaincore/ethclient/cache/memory/hit", nil)
	cacheDiskHitCounter = metrics.NewRegisteredCounter("chaincore/ethclient/cache/disk/hit", nil)
	cacheMissCounter    = metrics.NewRegisteredCounter("chaincore/ethclient/cache/miss", nil)
)

// Option configures a Client.
type Option func(*options)

type options struct {
	memorySize int
	disk       *pebble.Database
}

// WithMemoryCache keeps up to size responses of hash-addressed calls in
// memory. A non-positive size selects DefaultCacheSize.
func WithMemoryCache(size int) Option {
	return func(o *options) {
		if size <= 0 {
			size = DefaultCacheSize
		}
		o.memorySize = size
	}
}

// WithDiskCache persists responses of hash-addressed calls to db. The client
// does not take ownership of db.
func WithDiskCache(db *pebble.Database) Option {
	return func(o *options) { o.disk = db }
}

// rawResponse is an undecoded JSON-RPC result.
type rawResponse json.RawMessage

// UnmarshalJSON keeps a copy of the raw result.
func (r *rawResponse) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

func (r rawResponse) isNull() bool {
	return len(r) == 0 || bytes.Equal(r, []byte("null"))
}

func (r rawResponse) decode(result interface{}) error {
	if r.isNull() {
		return nil
	}
	return json.Unmarshal(r, result)
}

// responseCache is a two level cache of raw RPC responses: an LRU in memory
// backed by an optional on-disk store holding snappy compressed JSON.
type responseCache struct {
	mem  *lru.Cache
	disk *pebble.Database
}

// newResponseCache returns nil if neither level is configured.
func newResponseCache(size int, disk *pebble.Database) (*responseCache, error) {
	if size == 0 && disk == nil {
		return nil, nil
	}
	c := &responseCache{disk: disk}
	if size > 0 {
		mem, err := lru.New(size)
		if err != nil {
			return nil, err
		}
		c.mem = mem
	}
	return c, nil
}

// cacheKey derives the cache key of a call from its method and parameters.
func cacheKey(method string, args []interface{}) (common.Hash, error) {
	params, err := json.Marshal(args)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s: cannot encode params: %w", method, err)
	}
	return crypto.Keccak256Hash([]byte(method), params), nil
}

// get decodes a cached response into result, reporting whether one was found.
func (c *responseCache) get(key common.Hash, result interface{}) (bool, error) {
	if c.mem != nil {
		if v, ok := c.mem.Get(key); ok {
			cacheMemHitCounter.Inc(1)
			return true, v.(rawResponse).decode(result)
		}
	}
	if c.disk != nil {
		enc, err := c.disk.Get(key[:])
		switch {
		case errors.Is(err, pebble.ErrNotFound):
		case err != nil:
			log.Warn("Failed to read cached response", "key", key, "err", err)
		default:
			raw, err := snappy.Decode(nil, enc)
			if err != nil {
				log.Warn("Dropping corrupt cached response", "key", key, "err", err)
				c.disk.Delete(key[:])
				break
			}
			cacheDiskHitCounter.Inc(1)
			if c.mem != nil {
				c.mem.Add(key, rawResponse(raw))
			}
			return true, rawResponse(raw).decode(result)
		}
	}
	cacheMissCounter.Inc(1)
	return false, nil
}

// add stores a response on every configured level. Disk failures are logged
// and otherwise ignored.
func (c *responseCache) add(key common.Hash, raw rawResponse) {
	if c.mem != nil {
		c.mem.Add(key, raw)
	}
	if c.disk != nil {
		if err := c.disk.Put(key[:], snappy.Encode(nil, raw)); err != nil {
			log.Warn("Failed to cache response", "key", key, "err", err)
		}
	}
}
