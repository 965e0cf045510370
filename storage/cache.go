// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/provenanced/record"
)

const (
	defaultExpiration = 2 * time.Minute
	cleanupInterval   = 1 * time.Minute
)

// write-through cache of packed records
//
// holds packed bytes, never decoded records, so a hit is decoded into
// a fresh value each time
type recordCache struct {
	cache *cache.Cache
}

func newRecordCache() *recordCache {
	return &recordCache{
		cache: cache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *recordCache) get(id uint64) (record.Packed, bool) {
	obj, found := c.cache.Get(strconv.FormatUint(id, 10))
	if !found {
		return nil, false
	}
	return obj.(record.Packed), true
}

func (c *recordCache) set(id uint64, packed record.Packed) {
	c.cache.Set(strconv.FormatUint(id, 10), packed, cache.DefaultExpiration)
}

func (c *recordCache) clear() {
	c.cache.Flush()
}
