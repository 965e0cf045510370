// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ownership - transfer of verified records between owners and
// the resulting chain of custody
package ownership

import (
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
)

// Manager - performs ownership transfers
type Manager struct {
	log      *logger.L
	store    *store.Store
	notifier event.Notifier
	metrics  *metrics.Metrics
}

// New - create a transfer manager over a store
func New(log *logger.L, s *store.Store, notifier event.Notifier, m *metrics.Metrics) *Manager {
	if nil == notifier {
		notifier = event.Discard
	}
	return &Manager{
		log:      log,
		store:    s,
		notifier: notifier,
		metrics:  m,
	}
}

// Transfer - move a verified record from its current owner to newOwner
//
// the requester must be the current owner; the caller is responsible
// for having authenticated the requester
func (m *Manager) Transfer(id uint64, requester *account.Account, newOwner *account.Account) error {
	return m.transfer("transfer", id, requester, newOwner, nil)
}

// AuthorizedTransfer - Transfer where the requester proves ownership
// with a signature over TransferMessage
//
// the message includes the current history length, so a signature
// cannot be replayed once the transfer has happened
func (m *Manager) AuthorizedTransfer(id uint64, requester *account.Account, newOwner *account.Account, signature account.Signature) error {
	return m.transfer("authorized-transfer", id, requester, newOwner, func(r *record.Record) error {
		message := TransferMessage(id, uint64(len(r.History)), newOwner)
		return requester.CheckSignature(message, signature)
	})
}

func (m *Manager) transfer(operation string, id uint64, requester *account.Account, newOwner *account.Account, authorize func(*record.Record) error) error {
	defer m.metrics.ObserveLatency(operation, time.Now())

	r, err := m.store.Modify(id, func(r *record.Record) error {
		if record.Verified != r.Status {
			return fault.NotVerified
		}
		if !requester.Equal(r.CurrentOwner) {
			return fault.NotOwner
		}
		if nil == newOwner || nil == newOwner.AccountInterface {
			return fault.MissingOwner
		}
		if newOwner.Equal(r.CurrentOwner) {
			return fault.SameOwner
		}
		if nil != authorize {
			if err := authorize(r); nil != err {
				return err
			}
		}

		r.History = append(r.History, record.Transfer{
			PreviousOwner: r.CurrentOwner,
			NewOwner:      newOwner.Clone(),
			Timestamp:     m.store.Now(),
		})
		r.CurrentOwner = newOwner.Clone()
		return nil
	})
	if nil != err {
		m.log.Warnf("%s: %d  requester: %s  error: %s", operation, id, requester, err)
		m.metrics.IncrementRefused(operation, err)
		return err
	}

	m.log.Infof("%s: %d  from: %s  to: %s", operation, id, requester, newOwner)
	m.metrics.IncrementTransfers()
	m.notifier.Notify(event.OwnershipTransferred, id, r.Pack())
	return nil
}

// TransferMessage - the bytes a current owner signs to authorise a
// transfer
//
// SHA3-256 over "transfer", id, history length and the new owner
func TransferMessage(id uint64, historyLength uint64, newOwner *account.Account) []byte {
	buffer := []byte("transfer")
	buffer = append(buffer, util.ToVarint64(id)...)
	buffer = append(buffer, util.ToVarint64(historyLength)...)
	if nil != newOwner && nil != newOwner.AccountInterface {
		buffer = util.AppendVarBytes(buffer, newOwner.Bytes())
	}
	digest := sha3.Sum256(buffer)
	return digest[:]
}
