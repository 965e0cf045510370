// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ownership_test

import (
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/event"
	"github.com/bitmark-inc/provenanced/event/mocks"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/fixtures"
	"github.com/bitmark-inc/provenanced/ledger"
	"github.com/bitmark-inc/provenanced/ownership"
	"github.com/bitmark-inc/provenanced/record"
	"github.com/bitmark-inc/provenanced/store"
	"github.com/bitmark-inc/provenanced/verifier"
	"github.com/bitmark-inc/provenanced/workflow"
)

type engine struct {
	store    *store.Store
	workflow *workflow.Workflow
	manager  *ownership.Manager
}

func setup(t *testing.T, notifier event.Notifier) *engine {
	log := logger.New(fixtures.LogCategory)
	v := verifier.New(log)
	s, err := store.New(log, ledger.NewMemory(), v, nil, nil)
	if nil != err {
		t.Fatalf("new store error: %s", err)
	}
	return &engine{
		store:    s,
		workflow: workflow.New(log, s, v, nil, nil),
		manager:  ownership.New(log, s, notifier, nil),
	}
}

// create a record owned by p and optionally verify it
func (e *engine) claim(t *testing.T, n int, p *fixtures.Party, verify bool) uint64 {
	d := fixtures.Document(n)
	signature := p.Sign(d)
	id, err := e.store.Create(d[:], signature, p.Account)
	if nil != err {
		t.Fatalf("create error: %s", err)
	}
	if verify {
		err = e.workflow.Accept(id, d[:], signature, nil)
		if nil != err {
			t.Fatalf("accept error: %s", err)
		}
	}
	return id
}

func TestScenario(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	e := setup(t, nil)

	d1 := fixtures.Document(1)
	signature := fixtures.Alice.Sign(d1)
	id, err := e.store.Create(d1[:], signature, fixtures.Alice.Account)
	assert.Nil(t, err, "create error")
	assert.Equal(t, uint64(0), id, "wrong id")

	r, _ := e.store.Get(id)
	assert.Equal(t, record.Pending, r.Status, "not pending")

	assert.Nil(t, e.workflow.Accept(id, d1[:], signature, nil), "accept error")
	r, _ = e.store.Get(id)
	assert.Equal(t, record.Verified, r.Status, "not verified")

	assert.Nil(t, e.manager.Transfer(id, fixtures.Alice.Account, fixtures.Bob.Account), "transfer error")
	r, _ = e.store.Get(id)
	assert.True(t, r.CurrentOwner.Equal(fixtures.Bob.Account), "bob is not the owner")
	assert.Equal(t, 1, len(r.History), "wrong history length")
	assert.True(t, r.History[0].PreviousOwner.Equal(fixtures.Alice.Account), "wrong previous owner")
	assert.True(t, r.History[0].NewOwner.Equal(fixtures.Bob.Account), "wrong new owner")
	assert.False(t, r.History[0].Timestamp.IsZero(), "no timestamp")

	err = e.manager.Transfer(id, fixtures.Alice.Account, fixtures.Carol.Account)
	assert.Equal(t, fault.NotOwner, err, "former owner transferred")

	// forged claim
	d2 := fixtures.Document(2)
	_, err = e.store.Create(d2[:], fixtures.Mallory.Sign(d2), fixtures.Alice.Account)
	assert.Equal(t, fault.InvalidSignature, err, "forged claim accepted")
	assert.Equal(t, uint64(1), e.store.Count(), "count changed by forged claim")
}

func TestTransferRefusals(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	e := setup(t, nil)

	pending := e.claim(t, 1, fixtures.Alice, false)
	verified := e.claim(t, 2, fixtures.Alice, true)

	err := e.manager.Transfer(pending, fixtures.Alice.Account, fixtures.Bob.Account)
	assert.Equal(t, fault.NotVerified, err, "pending record transferred")

	// status is checked before ownership
	err = e.manager.Transfer(pending, fixtures.Mallory.Account, fixtures.Bob.Account)
	assert.Equal(t, fault.NotVerified, err, "wrong check order")

	err = e.manager.Transfer(verified, fixtures.Mallory.Account, fixtures.Mallory.Account)
	assert.Equal(t, fault.NotOwner, err, "non-owner transferred")

	err = e.manager.Transfer(verified, nil, fixtures.Bob.Account)
	assert.Equal(t, fault.NotOwner, err, "nil requester transferred")

	err = e.manager.Transfer(verified, fixtures.Alice.Account, fixtures.Alice.Account)
	assert.Equal(t, fault.SameOwner, err, "no-op transfer accepted")

	err = e.manager.Transfer(verified, fixtures.Alice.Account, nil)
	assert.Equal(t, fault.MissingOwner, err, "nil new owner accepted")

	err = e.manager.Transfer(42, fixtures.Alice.Account, fixtures.Bob.Account)
	assert.Equal(t, fault.RecordNotFound, err, "missing record transferred")

	r, _ := e.store.Get(verified)
	assert.Equal(t, 0, len(r.History), "refusal changed history")
	assert.True(t, r.CurrentOwner.Equal(fixtures.Alice.Account), "refusal changed owner")

	rejected := e.claim(t, 3, fixtures.Alice, false)
	d := fixtures.Document(3)
	assert.Nil(t, e.workflow.Reject(rejected, d[:], nil, nil), "reject error")
	err = e.manager.Transfer(rejected, fixtures.Alice.Account, fixtures.Bob.Account)
	assert.Equal(t, fault.NotVerified, err, "rejected record transferred")
}

func TestChainOfCustody(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	n := mocks.NewMockNotifier(ctl)
	n.EXPECT().Notify(event.OwnershipTransferred, uint64(0), gomock.Any()).Times(3)

	e := setup(t, n)
	id := e.claim(t, 1, fixtures.Alice, true)

	chain := []*fixtures.Party{fixtures.Alice, fixtures.Bob, fixtures.Carol, fixtures.Alice}
	for i := 1; i < len(chain); i += 1 {
		err := e.manager.Transfer(id, chain[i-1].Account, chain[i].Account)
		assert.Nil(t, err, "transfer %d error", i)
	}

	r, _ := e.store.Get(id)
	assert.Equal(t, len(chain)-1, len(r.History), "history length differs from transfers")
	assert.True(t, r.History[0].PreviousOwner.Equal(r.ClaimedOwner), "first previous owner is not the claimant")
	for i := 1; i < len(r.History); i += 1 {
		assert.True(t, r.History[i].PreviousOwner.Equal(r.History[i-1].NewOwner), "chain broken at %d", i)
		assert.False(t, r.History[i].Timestamp.Before(r.History[i-1].Timestamp), "time reversed at %d", i)
	}

	entries, err := e.manager.Provenance(id)
	assert.Nil(t, err, "provenance error")
	assert.Equal(t, len(chain), len(entries), "wrong provenance length")
	for i, entry := range entries {
		assert.True(t, entry.Owner.Equal(chain[i].Account), "wrong owner at %d", i)
	}
	assert.Equal(t, ownership.EventClaimed, entries[0].Event, "wrong first event")
	assert.Equal(t, ownership.EventTransferred, entries[1].Event, "wrong later event")

	_, err = e.manager.Provenance(9)
	assert.Equal(t, fault.RecordNotFound, err, "missing record has provenance")

	alice, _ := e.store.ListByOwner(fixtures.Alice.Account)
	assert.Equal(t, 1, len(alice), "alice does not hold the record again")
	bob, _ := e.store.ListByOwner(fixtures.Bob.Account)
	assert.Equal(t, 0, len(bob), "bob still holds the record")
}

func TestAuthorizedTransfer(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	e := setup(t, nil)
	id := e.claim(t, 1, fixtures.Alice, true)

	message := ownership.TransferMessage(id, 0, fixtures.Bob.Account)

	err := e.manager.AuthorizedTransfer(id, fixtures.Alice.Account, fixtures.Bob.Account, fixtures.Mallory.SignBytes(message))
	assert.Equal(t, fault.InvalidSignature, err, "forged authorisation accepted")

	wrong := ownership.TransferMessage(id, 0, fixtures.Carol.Account)
	err = e.manager.AuthorizedTransfer(id, fixtures.Alice.Account, fixtures.Bob.Account, fixtures.Alice.SignBytes(wrong))
	assert.Equal(t, fault.InvalidSignature, err, "authorisation for another owner accepted")

	signature := fixtures.Alice.SignBytes(message)
	err = e.manager.AuthorizedTransfer(id, fixtures.Alice.Account, fixtures.Bob.Account, signature)
	assert.Nil(t, err, "authorised transfer error")

	// ownership returns to alice, then the old signature is replayed
	back := ownership.TransferMessage(id, 1, fixtures.Alice.Account)
	err = e.manager.AuthorizedTransfer(id, fixtures.Bob.Account, fixtures.Alice.Account, fixtures.Bob.SignBytes(back))
	assert.Nil(t, err, "return transfer error")

	err = e.manager.AuthorizedTransfer(id, fixtures.Alice.Account, fixtures.Bob.Account, signature)
	assert.Equal(t, fault.InvalidSignature, err, "replayed authorisation accepted")
}

func TestConcurrentTransfers(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	e := setup(t, nil)
	id := e.claim(t, 1, fixtures.Alice, true)
	other := e.claim(t, 2, fixtures.Carol, true)

	targets := []*fixtures.Party{fixtures.Bob, fixtures.Carol, fixtures.Mallory}

	const workers = 12
	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := 0; i < workers; i += 1 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = e.manager.Transfer(id, fixtures.Alice.Account, targets[n%len(targets)].Account)
		}(i)
	}

	// a different record is not blocked
	assert.Nil(t, e.manager.Transfer(other, fixtures.Carol.Account, fixtures.Bob.Account), "other record transfer error")
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if nil == err {
			succeeded += 1
		} else {
			assert.Equal(t, fault.NotOwner, err, "unexpected error")
		}
	}
	assert.Equal(t, 1, succeeded, "more than one transfer applied")

	r, _ := e.store.Get(id)
	assert.Equal(t, 1, len(r.History), "lost or extra history entry")
	assert.True(t, r.History[0].NewOwner.Equal(r.CurrentOwner), "history and owner disagree")
}
