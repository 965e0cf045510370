// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package record - the provenance record: a document fingerprint bound
// to an owner by a signature, with its verification state and the
// chain of custody
package record

import (
	"time"

	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/fingerprint"
)

// Transfer - one change of owner
type Transfer struct {
	PreviousOwner *account.Account `json:"previousOwner"`
	NewOwner      *account.Account `json:"newOwner"`
	Timestamp     time.Time        `json:"timestamp"`
}

// Record - a registered claim
//
// ID, Digest, Signature, ClaimedOwner and CreatedAt never change after
// creation. History only grows and its last entry (if any) names the
// CurrentOwner.
type Record struct {
	ID           uint64             `json:"id,string"`
	Digest       fingerprint.Digest `json:"digest"`
	Signature    account.Signature  `json:"signature"`
	ClaimedOwner *account.Account   `json:"claimedOwner"`
	CurrentOwner *account.Account   `json:"currentOwner"`
	Status       Status             `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
	FinalizedAt  time.Time          `json:"finalizedAt"`
	Verifier     *account.Account   `json:"verifier,omitempty"`
	History      []Transfer         `json:"history"`
}

// New - a pending record owned by its claimant
func New(id uint64, digest fingerprint.Digest, signature account.Signature, claimedOwner *account.Account, now time.Time) *Record {
	return &Record{
		ID:           id,
		Digest:       digest,
		Signature:    signature.Clone(),
		ClaimedOwner: claimedOwner.Clone(),
		CurrentOwner: claimedOwner.Clone(),
		Status:       Pending,
		CreatedAt:    now.UTC(),
		History:      []Transfer{},
	}
}

// Clone - a deep copy sharing no storage with the original
func (r *Record) Clone() *Record {
	if nil == r {
		return nil
	}
	c := *r
	c.Signature = r.Signature.Clone()
	c.ClaimedOwner = r.ClaimedOwner.Clone()
	c.CurrentOwner = r.CurrentOwner.Clone()
	c.Verifier = r.Verifier.Clone()
	c.History = make([]Transfer, len(r.History))
	for i, t := range r.History {
		c.History[i] = Transfer{
			PreviousOwner: t.PreviousOwner.Clone(),
			NewOwner:      t.NewOwner.Clone(),
			Timestamp:     t.Timestamp,
		}
	}
	return &c
}

// CheckSuccessor - confirm that next is a permitted replacement for prev
//
// used by every mutation before it reaches the ledger
func CheckSuccessor(prev *Record, next *Record) error {
	if prev.ID != next.ID ||
		prev.Digest != next.Digest ||
		string(prev.Signature) != string(next.Signature) ||
		!prev.ClaimedOwner.Equal(next.ClaimedOwner) ||
		!prev.CreatedAt.Equal(next.CreatedAt) {
		return fault.ImmutableField
	}

	if prev.Status != next.Status {
		if prev.Status.IsFinal() {
			return fault.AlreadyFinalized
		}
		if !next.Status.IsFinal() {
			return fault.InvalidStatusTransition
		}
	}

	if prev.Status.IsFinal() &&
		(!prev.FinalizedAt.Equal(next.FinalizedAt) || !equalOptional(prev.Verifier, next.Verifier)) {
		return fault.ImmutableField
	}

	if len(next.History) < len(prev.History) {
		return fault.InvalidHistory
	}
	for i, t := range prev.History {
		n := next.History[i]
		if !t.PreviousOwner.Equal(n.PreviousOwner) ||
			!t.NewOwner.Equal(n.NewOwner) ||
			!t.Timestamp.Equal(n.Timestamp) {
			return fault.InvalidHistory
		}
	}

	owner := next.ClaimedOwner
	if l := len(next.History); l > 0 {
		owner = next.History[l-1].NewOwner
	}
	if !owner.Equal(next.CurrentOwner) {
		return fault.InvalidHistory
	}
	return nil
}

func equalOptional(a *account.Account, b *account.Account) bool {
	if nil == a || nil == b {
		return nil == a && nil == b
	}
	return a.Equal(b)
}
