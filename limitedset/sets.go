// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package limitedset - a set of strings that only remembers the most
// recently used items
package limitedset

import (
	"container/ring"
	"sync"
)

// LimitedSet - holds up to a fixed number of items, the least
// recently added or refreshed item is forgotten first
type LimitedSet struct {
	sync.Mutex
	ring *ring.Ring
	hash map[string]*ring.Ring
}

// New - create a new limited set that holds up to 'n' items
func New(n int) *LimitedSet {
	if n <= 0 {
		return nil
	}
	return &LimitedSet{
		ring: ring.New(n),
		hash: make(map[string]*ring.Ring, n),
	}
}

// Add - add an item to the set, refreshing it if already present
func (ls *LimitedSet) Add(item string) {
	ls.Lock()
	defer ls.Unlock()
	ls.add(item)
}

// AddIfAbsent - add an item only if it is not in the set
//
// returns true if the item was added
func (ls *LimitedSet) AddIfAbsent(item string) bool {
	ls.Lock()
	defer ls.Unlock()
	if _, ok := ls.hash[item]; ok {
		return false
	}
	ls.add(item)
	return true
}

// Exists - check to see if item is in the set
func (ls *LimitedSet) Exists(item string) bool {
	ls.Lock()
	defer ls.Unlock()
	_, ok := ls.hash[item]
	return ok
}

// must hold lock
func (ls *LimitedSet) add(item string) {
	if r, ok := ls.hash[item]; ok {
		// move to the newest position
		if r == ls.ring {
			ls.ring = ls.ring.Next()
			return
		}
		r = r.Prev().Unlink(1)
		ls.ring.Prev().Link(r)
		return
	}
	if oldItem, ok := ls.ring.Value.(string); ok {
		delete(ls.hash, oldItem)
	}
	ls.ring.Value = item
	ls.hash[item] = ls.ring
	ls.ring = ls.ring.Next()
}
