// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"encoding/binary"

	"github.com/bitmark-inc/provenanced/event"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/limitedset"
)

// DefaultHistory - number of recent events remembered by an Observer
const DefaultHistory = 10000

// Handler - called once for each distinct event
type Handler func(e event.Event)

// Observer - forwards each event key to its handler once, however
// many times it is delivered, as long as repeats arrive within the
// remembered history
type Observer struct {
	seen    *limitedset.LimitedSet
	handler Handler
}

// NewObserver - create an observer remembering size recent events
func NewObserver(size int, handler Handler) *Observer {
	if size <= 0 {
		size = DefaultHistory
	}
	return &Observer{
		seen:    limitedset.New(size),
		handler: handler,
	}
}

// Observe - pass an event to the handler unless already seen
//
// returns false for a duplicate
func (o *Observer) Observe(e event.Event) bool {
	fresh := o.seen.AddIfAbsent(e.Key())

	if fresh && nil != o.handler {
		o.handler(e)
	}
	return fresh
}

// Notify - lets an Observer sit directly behind the engine
func (o *Observer) Notify(kind event.Kind, id uint64, payload []byte) {
	o.Observe(event.Event{
		Kind:    kind,
		ID:      id,
		Payload: payload,
	})
}

// Decode - convert the parts of a received ZeroMQ message to an event
func Decode(parts [][]byte) (event.Event, error) {
	if 3 != len(parts) || 8 != len(parts[1]) {
		return event.Event{}, fault.MissingParameters
	}
	kind := event.Kind(parts[0])
	if !kind.Valid() {
		return event.Event{}, fault.MissingParameters
	}
	return event.Event{
		Kind:    kind,
		ID:      binary.BigEndian.Uint64(parts[1]),
		Payload: parts[2],
	}, nil
}
