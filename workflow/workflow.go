// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package workflow - move a record from pending to a final verification
// status
package workflow

import (
	"bytes"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/event"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/metrics"
	"github.com/bitmark-inc/provenanced/record"
	"github.com/bitmark-inc/provenanced/store"
	"github.com/bitmark-inc/provenanced/util"
	"github.com/bitmark-inc/provenanced/verifier"
)

// Workflow - accept, reject and re-verify records
type Workflow struct {
	log      *logger.L
	store    *store.Store
	verifier verifier.Verifier
	notifier event.Notifier
	metrics  *metrics.Metrics
}

// New - create a workflow over a store
func New(log *logger.L, s *store.Store, v verifier.Verifier, notifier event.Notifier, m *metrics.Metrics) *Workflow {
	if nil == notifier {
		notifier = event.Discard
	}
	return &Workflow{
		log:      log,
		store:    s,
		verifier: v,
		notifier: notifier,
		metrics:  m,
	}
}

// names of the decisions, as bound into DecisionMessage
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
	DecisionVerify = "verify"
)

// Accept - mark a pending record verified
//
// the supplied digest must equal the stored one and the supplied
// signature must verify against the stored digest and claimed owner
func (w *Workflow) Accept(id uint64, digest []byte, signature account.Signature, by *account.Account) error {
	return w.accept(id, digest, signature, by, nil)
}

// AuthorizedAccept - Accept where the verifier proves its identity
// with a signature over DecisionMessage
func (w *Workflow) AuthorizedAccept(id uint64, digest []byte, signature account.Signature, by *account.Account, authorization account.Signature) error {
	return w.accept(id, digest, signature, by, authorizedBy(DecisionAccept, id, digest, by, authorization))
}

func (w *Workflow) accept(id uint64, digest []byte, signature account.Signature, by *account.Account, authorize func() error) error {
	defer w.metrics.ObserveLatency(DecisionAccept, time.Now())

	r, err := w.store.Modify(id, func(r *record.Record) error {
		if record.Pending != r.Status {
			return fault.AlreadyFinalized
		}
		if nil != authorize {
			if err := authorize(); nil != err {
				return err
			}
		}
		if !bytes.Equal(r.Digest[:], digest) {
			return fault.DigestMismatch
		}
		if !w.verifier.Verify(r.Digest[:], signature, r.ClaimedOwner) {
			return fault.InvalidSignature
		}
		r.Status = record.Verified
		r.FinalizedAt = w.store.Now()
		r.Verifier = by.Clone()
		return nil
	})
	if nil != err {
		w.log.Warnf("accept: %d  error: %s", id, err)
		w.metrics.IncrementRefused(DecisionAccept, err)
		return err
	}

	w.finalized(r, event.RecordVerified)
	return nil
}

// Reject - mark a pending record rejected
//
// the supplied digest must equal the stored one; the signature is
// recorded only in the log
func (w *Workflow) Reject(id uint64, digest []byte, signature account.Signature, by *account.Account) error {
	return w.reject(id, digest, signature, by, nil)
}

// AuthorizedReject - Reject where the verifier proves its identity
// with a signature over DecisionMessage
func (w *Workflow) AuthorizedReject(id uint64, digest []byte, signature account.Signature, by *account.Account, authorization account.Signature) error {
	return w.reject(id, digest, signature, by, authorizedBy(DecisionReject, id, digest, by, authorization))
}

func (w *Workflow) reject(id uint64, digest []byte, signature account.Signature, by *account.Account, authorize func() error) error {
	defer w.metrics.ObserveLatency(DecisionReject, time.Now())

	r, err := w.store.Modify(id, func(r *record.Record) error {
		if record.Pending != r.Status {
			return fault.AlreadyFinalized
		}
		if 0 == len(digest) {
			return fault.EmptyDigest
		}
		if nil != authorize {
			if err := authorize(); nil != err {
				return err
			}
		}
		if !bytes.Equal(r.Digest[:], digest) {
			return fault.DigestMismatch
		}
		r.Status = record.Rejected
		r.FinalizedAt = w.store.Now()
		r.Verifier = by.Clone()
		return nil
	})
	if nil != err {
		w.log.Warnf("reject: %d  error: %s", id, err)
		w.metrics.IncrementRefused(DecisionReject, err)
		return err
	}

	w.log.Debugf("reject: %d  digest: %x  signature: %x", id, digest, signature)
	w.finalized(r, event.RecordRejected)
	return nil
}

// Verify - run the verifier and finalize the record accordingly
//
// a failed verification is an outcome, not an error: the record
// becomes rejected
func (w *Workflow) Verify(id uint64, digest []byte, signature account.Signature, by *account.Account) (record.Status, error) {
	return w.verify(id, digest, signature, by, nil)
}

// AuthorizedVerify - Verify where the verifier proves its identity
// with a signature over DecisionMessage
func (w *Workflow) AuthorizedVerify(id uint64, digest []byte, signature account.Signature, by *account.Account, authorization account.Signature) (record.Status, error) {
	return w.verify(id, digest, signature, by, authorizedBy(DecisionVerify, id, digest, by, authorization))
}

func (w *Workflow) verify(id uint64, digest []byte, signature account.Signature, by *account.Account, authorize func() error) (record.Status, error) {
	defer w.metrics.ObserveLatency(DecisionVerify, time.Now())

	if 0 == len(digest) {
		w.metrics.IncrementRefused(DecisionVerify, fault.EmptyDigest)
		return record.Pending, fault.EmptyDigest
	}

	kind := event.RecordRejected
	r, err := w.store.Modify(id, func(r *record.Record) error {
		if record.Pending != r.Status {
			return fault.AlreadyFinalized
		}
		if nil != authorize {
			if err := authorize(); nil != err {
				return err
			}
		}
		r.Status = record.Rejected
		if bytes.Equal(r.Digest[:], digest) && w.verifier.Verify(r.Digest[:], signature, r.ClaimedOwner) {
			r.Status = record.Verified
			kind = event.RecordVerified
		}
		r.FinalizedAt = w.store.Now()
		r.Verifier = by.Clone()
		return nil
	})
	if nil != err {
		w.log.Warnf("verify: %d  error: %s", id, err)
		w.metrics.IncrementRefused(DecisionVerify, err)
		return record.Pending, err
	}

	w.finalized(r, kind)
	return r.Status, nil
}

// the verifier must sign the decision it is making
func authorizedBy(decision string, id uint64, digest []byte, by *account.Account, authorization account.Signature) func() error {
	return func() error {
		if nil == by || nil == by.AccountInterface {
			return fault.MissingVerifier
		}
		return by.CheckSignature(DecisionMessage(decision, id, digest), authorization)
	}
}

// DecisionMessage - the bytes a verifier signs to authorise a
// decision on a record
//
// SHA3-256 over the decision name, id and digest; a record is
// finalized only once so the signature cannot be replayed
func DecisionMessage(decision string, id uint64, digest []byte) []byte {
	buffer := util.AppendVarBytes(nil, []byte(decision))
	buffer = append(buffer, util.ToVarint64(id)...)
	buffer = util.AppendVarBytes(buffer, digest)
	d := sha3.Sum256(buffer)
	return d[:]
}

// Check - re-verify a record without changing it
//
// true if the digest matches the stored one and the signature
// verifies against the stored claimed owner
func (w *Workflow) Check(id uint64, digest []byte, signature account.Signature) (bool, error) {
	r, err := w.store.Get(id)
	if nil != err {
		return false, err
	}
	if !bytes.Equal(r.Digest[:], digest) {
		return false, nil
	}
	return w.verifier.Verify(r.Digest[:], signature, r.ClaimedOwner), nil
}

func (w *Workflow) finalized(r *record.Record, kind event.Kind) {
	w.log.Infof("%s: %d  by: %s", kind, r.ID, r.Verifier)
	w.metrics.IncrementOutcome(r.Status.String())
	w.notifier.Notify(kind, r.ID, r.Pack())
}
