// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store - creation and retrieval of provenance records
//
// ids are allocated densely from zero under a single lock; every later
// mutation of a record runs inside Modify, which serialises changes to
// that record only
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/counter"
	"github.com/bitmark-inc/provenanced/event"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/fingerprint"
	"github.com/bitmark-inc/provenanced/ledger"
	"github.com/bitmark-inc/provenanced/metrics"
	"github.com/bitmark-inc/provenanced/record"
	"github.com/bitmark-inc/provenanced/verifier"
)

// MaximumListCount - largest page returned by List
const MaximumListCount = 100

// Store - the record store
type Store struct {
	log      *logger.L
	ledger   ledger.Ledger
	verifier verifier.Verifier
	notifier event.Notifier
	metrics  *metrics.Metrics

	allocate sync.Mutex      // held while an id is being committed
	count    counter.Counter // ids below this are committed
	locks    sync.Map        // id → *sync.Mutex

	now func() time.Time
}

// New - create a store over a ledger
//
// the notifier may be nil, as may the metrics
func New(log *logger.L, l ledger.Ledger, v verifier.Verifier, notifier event.Notifier, m *metrics.Metrics) (*Store, error) {
	if nil == log || nil == l || nil == v {
		return nil, fault.MissingParameters
	}
	if nil == notifier {
		notifier = event.Discard
	}

	count, err := l.Count()
	if nil != err {
		log.Errorf("ledger count error: %s", err)
		return nil, err
	}

	s := &Store{
		log:      log,
		ledger:   l,
		verifier: v,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
	s.count.Set(count)

	log.Infof("records: %d", count)
	return s, nil
}

// Create - register a new claim and return its id
func (s *Store) Create(digest []byte, signature account.Signature, claimedOwner *account.Account) (uint64, error) {
	defer s.metrics.ObserveLatency("create", time.Now())

	if 0 == len(digest) {
		s.metrics.IncrementRefused("create", fault.EmptyDigest)
		return 0, fault.EmptyDigest
	}

	// no id is consumed by a failed verification
	if !s.verifier.Verify(digest, signature, claimedOwner) {
		s.log.Warnf("create: digest: %x  claimed: %s  signature rejected", digest, claimedOwner)
		s.metrics.IncrementRefused("create", fault.InvalidSignature)
		return 0, fault.InvalidSignature
	}

	// the verifier only accepts full length digests
	var d fingerprint.Digest
	if err := fingerprint.DigestFromBytes(&d, digest); nil != err {
		return 0, err
	}

	s.allocate.Lock()
	defer s.allocate.Unlock()

	id := s.count.Uint64()
	r := record.New(id, d, signature, claimedOwner, s.now())

	committed, err := s.ledger.Submit(r)
	if nil != err {
		s.log.Errorf("create: %d  ledger error: %s", id, err)
		return 0, err
	}
	if committed != id {
		s.log.Criticalf("create: expected id: %d  ledger committed: %d", id, committed)
		return 0, fault.IdentifierMismatch
	}
	s.count.Increment()

	s.log.Infof("created: %d  digest: %x  owner: %s", id, digest, claimedOwner)
	s.metrics.IncrementCreated()
	s.notifier.Notify(event.RecordCreated, id, r.Pack())

	return id, nil
}

// Get - a copy of the record with the given id
func (s *Store) Get(id uint64) (*record.Record, error) {
	if id >= s.count.Uint64() {
		return nil, fault.RecordNotFound
	}
	return s.ledger.Read(id)
}

// Count - number of records created so far
func (s *Store) Count() uint64 {
	return s.count.Uint64()
}

// ListByOwner - records currently owned by the identity, ascending by id
func (s *Store) ListByOwner(owner *account.Account) ([]*record.Record, error) {
	results := make([]*record.Record, 0)
	if nil == owner || nil == owner.AccountInterface {
		return results, nil
	}

	ids, err := s.ledger.Owned(owner)
	if nil != err {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		r, err := s.ledger.Read(id)
		if nil != err {
			return nil, err
		}

		// the index may lag a concurrent transfer
		if r.CurrentOwner.Equal(owner) {
			results = append(results, r)
		}
	}
	return results, nil
}

// List - up to count records starting at id start
//
// also returns the start value for the following page
func (s *Store) List(start uint64, count int) ([]*record.Record, uint64, error) {
	if count <= 0 || count > MaximumListCount {
		return nil, start, fault.InvalidCount
	}

	total := s.count.Uint64()
	results := make([]*record.Record, 0, count)
	id := start
	for ; id < total && len(results) < count; id += 1 {
		r, err := s.ledger.Read(id)
		if nil != err {
			return nil, start, err
		}
		results = append(results, r)
	}
	return results, id, nil
}

// Modify - apply a change to one record atomically with respect to
// every other Modify of the same record
//
// f receives a private copy; if it returns an error nothing is written
// and that error is returned; otherwise the copy must be a permitted
// successor of the stored record and replaces it in the ledger
func (s *Store) Modify(id uint64, f func(r *record.Record) error) (*record.Record, error) {
	if id >= s.count.Uint64() {
		return nil, fault.RecordNotFound
	}

	lock := s.lock(id)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.ledger.Read(id)
	if nil != err {
		return nil, err
	}

	next := current.Clone()
	err = f(next)
	if nil != err {
		return nil, err
	}

	err = record.CheckSuccessor(current, next)
	if nil != err {
		s.log.Errorf("modify: %d  invalid change: %s", id, err)
		return nil, err
	}

	err = s.ledger.Update(next)
	if nil != err {
		s.log.Errorf("modify: %d  ledger error: %s", id, err)
		return nil, err
	}
	return next.Clone(), nil
}

// Now - the store's clock
func (s *Store) Now() time.Time {
	return s.now().UTC()
}

// one mutex per record, created on first use
func (s *Store) lock(id uint64) *sync.Mutex {
	if l, ok := s.locks.Load(id); ok {
		return l.(*sync.Mutex)
	}
	l, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return l.(*sync.Mutex)
}
