// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// poolHandle - a key range within the database
type poolHandle struct {
	prefix   byte
	limit    []byte
	database *leveldb.DB
}

// element - a binary data item with the prefix removed from its key
type element struct {
	Key   []byte
	Value []byte
}

func newPool(database *leveldb.DB, prefix byte) *poolHandle {
	limit := []byte(nil)
	if prefix < 255 {
		limit = []byte{prefix + 1}
	}
	return &poolHandle{
		prefix:   prefix,
		limit:    limit,
		database: database,
	}
}

// prepend the prefix onto the key
func (p *poolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// read a value for a given key, nil if absent
func (p *poolHandle) get(key []byte) ([]byte, error) {
	value, err := p.database.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	return value, err
}

// add a put to a batch
func (p *poolHandle) put(batch *leveldb.Batch, key []byte, value []byte) {
	batch.Put(p.prefixKey(key), value)
}

// add a delete to a batch
func (p *poolHandle) remove(batch *leveldb.Batch, key []byte) {
	batch.Delete(p.prefixKey(key))
}

// all elements whose key begins with the given bytes, in key order
func (p *poolHandle) scan(keyPrefix []byte) ([]element, error) {
	r := ldb_util.Range{
		Start: []byte{p.prefix},
		Limit: p.limit,
	}
	if 0 != len(keyPrefix) {
		r = *ldb_util.BytesPrefix(p.prefixKey(keyPrefix))
	}

	iter := p.database.NewIterator(&r, nil)
	defer iter.Release()

	results := make([]element, 0)
	for iter.Next() {

		// contents of the returned slices are only valid until the
		// next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-1)
		copy(dataKey, key[1:])

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		results = append(results, element{
			Key:   dataKey,
			Value: dataValue,
		})
	}
	return results, iter.Error()
}

// the key of the last element in the pool, nil if the pool is empty
func (p *poolHandle) lastKey() ([]byte, error) {
	iter := p.database.NewIterator(&ldb_util.Range{
		Start: []byte{p.prefix},
		Limit: p.limit,
	}, nil)
	defer iter.Release()

	if !iter.Last() {
		return nil, iter.Error()
	}
	key := iter.Key()
	dataKey := make([]byte, len(key)-1)
	copy(dataKey, key[1:])
	return dataKey, nil
}
