// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ownership

import (
	"time"

	"github.com/bitmark-inc/provenanced/account"
)

// Entry - one link in the chain of custody
type Entry struct {
	Owner *account.Account `json:"owner"`
	Since time.Time        `json:"since"`
	Event string           `json:"event"`
}

// event names in a provenance chain
const (
	EventClaimed     = "claimed"
	EventTransferred = "transferred"
)

// Provenance - owners of a record oldest first, starting with the
// claimant
func (m *Manager) Provenance(id uint64) ([]Entry, error) {
	r, err := m.store.Get(id)
	if nil != err {
		return nil, err
	}

	entries := make([]Entry, 0, len(r.History)+1)
	entries = append(entries, Entry{
		Owner: r.ClaimedOwner,
		Since: r.CreatedAt,
		Event: EventClaimed,
	})
	for _, t := range r.History {
		entries = append(entries, Entry{
			Owner: t.NewOwner,
			Since: t.Timestamp,
			Event: EventTransferred,
		})
	}
	return entries, nil
}
