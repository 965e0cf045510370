// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"sync"

	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/record"
)

// Memory - a ledger held in process memory
type Memory struct {
	sync.RWMutex
	records []*record.Record
}

// NewMemory - an empty in-memory ledger
func NewMemory() *Memory {
	return &Memory{
		records: make([]*record.Record, 0, 64),
	}
}

// Submit - append a record; its id is its position
func (m *Memory) Submit(r *record.Record) (uint64, error) {
	m.Lock()
	defer m.Unlock()

	id := uint64(len(m.records))
	c := r.Clone()
	c.ID = id
	m.records = append(m.records, c)
	return id, nil
}

// Read - copy of the record with the given id
func (m *Memory) Read(id uint64) (*record.Record, error) {
	m.RLock()
	defer m.RUnlock()

	if id >= uint64(len(m.records)) {
		return nil, fault.RecordNotFound
	}
	return m.records[id].Clone(), nil
}

// Update - replace an existing record
func (m *Memory) Update(r *record.Record) error {
	m.Lock()
	defer m.Unlock()

	if r.ID >= uint64(len(m.records)) {
		return fault.RecordNotFound
	}
	m.records[r.ID] = r.Clone()
	return nil
}

// Owned - ids currently held by owner
func (m *Memory) Owned(owner *account.Account) ([]uint64, error) {
	m.RLock()
	defer m.RUnlock()

	ids := make([]uint64, 0)
	for _, r := range m.records {
		if r.CurrentOwner.Equal(owner) {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

// Count - number of records
func (m *Memory) Count() (uint64, error) {
	m.RLock()
	defer m.RUnlock()
	return uint64(len(m.records)), nil
}
