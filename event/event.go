// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package event - the notifications emitted after each successful
// record mutation
//
// delivery is fire-and-forget and may repeat; observers that need
// exactly-once must deduplicate on Key()
//
// the payload is the packed record after the change
package event

import (
	"strconv"

	"github.com/bitmark-inc/provenanced/record"
)

// Kind - the type of change that occurred
type Kind string

// the event kinds
const (
	RecordCreated        Kind = "created"
	RecordVerified       Kind = "verified"
	RecordRejected       Kind = "rejected"
	OwnershipTransferred Kind = "transferred"
)

// Notifier - receiver of engine events
//
// Notify must not block the caller for any significant time
type Notifier interface {
	Notify(kind Kind, id uint64, payload []byte)
}

// Event - a single notification
type Event struct {
	Kind    Kind
	ID      uint64
	Payload []byte
}

// Key - identity of the event for de-duplication
//
// a record can be transferred many times, so a transfer is also keyed
// by the history length of the packed record in its payload
func (e Event) Key() string {
	key := string(e.Kind) + ":" + strconv.FormatUint(e.ID, 10)
	if OwnershipTransferred == e.Kind {
		if r, err := record.Packed(e.Payload).Unpack(); nil == err {
			key += ":" + strconv.Itoa(len(r.History))
		}
	}
	return key
}

// Valid - true for one of the defined kinds
func (k Kind) Valid() bool {
	switch k {
	case RecordCreated, RecordVerified, RecordRejected, OwnershipTransferred:
		return true
	default:
		return false
	}
}

type discard struct{}

// Discard - a notifier that drops everything
var Discard Notifier = discard{}

func (discard) Notify(Kind, uint64, []byte) {}
