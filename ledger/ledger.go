// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the durable home of records
//
// the engine only ever talks to the Ledger interface; this package also
// provides an in-memory implementation
package ledger

import (
	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/record"
)

// Ledger - persistence collaborator
//
// all methods must be safe for concurrent use and must never hand out
// storage that the ledger itself still references
type Ledger interface {
	// store a new record and return the id it was committed under
	Submit(r *record.Record) (uint64, error)

	// fetch a copy of a record; fault.RecordNotFound if absent
	Read(id uint64) (*record.Record, error)

	// replace an existing record
	Update(r *record.Record) error

	// ids of records whose current owner is the identity, ascending
	Owned(owner *account.Account) ([]uint64, error)

	// number of committed records
	Count() (uint64, error)
}
