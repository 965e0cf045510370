// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/record"
)

// Submit - store a new record under the next id
func (l *Ledger) Submit(r *record.Record) (uint64, error) {
	l.Lock()
	defer l.Unlock()

	if nil == l.database {
		return 0, fault.NotInitialised
	}

	id := l.count
	c := r.Clone()
	c.ID = id
	packed := c.Pack()

	batch := new(leveldb.Batch)
	l.records.put(batch, idKey(id), packed)
	l.owners.put(batch, ownerKey(c.CurrentOwner, id), []byte{})

	err := l.database.Write(batch, nil)
	if nil != err {
		l.log.Errorf("submit: %d  error: %s", id, err)
		return 0, err
	}

	l.cache.set(id, packed)
	l.count += 1

	l.log.Debugf("submit: %d  owner: %s", id, c.CurrentOwner)
	return id, nil
}

// Read - fetch and decode a record
func (l *Ledger) Read(id uint64) (*record.Record, error) {
	l.RLock()
	defer l.RUnlock()

	packed, err := l.readPacked(id)
	if nil != err {
		return nil, err
	}
	return unpack(id, packed), nil
}

// Update - rewrite a record, moving its owner index entry if the owner
// changed
func (l *Ledger) Update(r *record.Record) error {
	l.Lock()
	defer l.Unlock()

	old, err := l.readPacked(r.ID)
	if nil != err {
		return err
	}
	previous := unpack(r.ID, old)

	packed := r.Pack()

	batch := new(leveldb.Batch)
	l.records.put(batch, idKey(r.ID), packed)
	if !previous.CurrentOwner.Equal(r.CurrentOwner) {
		l.owners.remove(batch, ownerKey(previous.CurrentOwner, r.ID))
		l.owners.put(batch, ownerKey(r.CurrentOwner, r.ID), []byte{})
	}

	err = l.database.Write(batch, nil)
	if nil != err {
		l.log.Errorf("update: %d  error: %s", r.ID, err)
		return err
	}
	l.cache.set(r.ID, packed)

	l.log.Debugf("update: %d  status: %s  owner: %s", r.ID, r.Status, r.CurrentOwner)
	return nil
}

// Owned - ids of records currently held by owner, ascending
func (l *Ledger) Owned(owner *account.Account) ([]uint64, error) {
	l.RLock()
	defer l.RUnlock()

	if nil == l.database {
		return nil, fault.NotInitialised
	}
	if nil == owner || nil == owner.AccountInterface {
		return []uint64{}, nil
	}

	ownerBytes := owner.Bytes()
	elements, err := l.owners.scan(ownerBytes)
	if nil != err {
		return nil, err
	}

	ids := make([]uint64, 0, len(elements))
	for _, e := range elements {
		if len(e.Key) != len(ownerBytes)+8 {
			continue
		}
		ids = append(ids, binary.BigEndian.Uint64(e.Key[len(ownerBytes):]))
	}
	return ids, nil
}

// Count - number of records
func (l *Ledger) Count() (uint64, error) {
	l.RLock()
	defer l.RUnlock()

	if nil == l.database {
		return 0, fault.NotInitialised
	}
	return l.count, nil
}

// caller must hold the lock
func (l *Ledger) readPacked(id uint64) (record.Packed, error) {
	if nil == l.database {
		return nil, fault.NotInitialised
	}
	if id >= l.count {
		return nil, fault.RecordNotFound
	}
	if packed, ok := l.cache.get(id); ok {
		return packed, nil
	}

	value, err := l.records.get(idKey(id))
	if nil != err {
		return nil, err
	}
	if nil == value {
		return nil, fault.RecordNotFound
	}
	l.cache.set(id, value)
	return value, nil
}

// stored data that cannot be decoded means the database is corrupt
func unpack(id uint64, packed record.Packed) *record.Record {
	r, err := packed.Unpack()
	if nil != err {
		logger.Criticalf("record: %d  corrupt: %x  error: %s", id, packed, err)
		logger.Panicf("record: %d  corrupt: %s", id, err)
	}
	if id != r.ID {
		logger.Panicf("record: %d  stored under id: %d", r.ID, id)
	}
	return r
}

func idKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

func ownerKey(owner *account.Account, id uint64) []byte {
	return append(owner.Bytes(), idKey(id)...)
}
