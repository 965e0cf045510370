// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"encoding/binary"

	"github.com/bitmark-inc/provenanced/counter"
	"github.com/bitmark-inc/provenanced/event"
)

// DefaultQueueSize - capacity used when none is given
const DefaultQueueSize = 1000

// Message - a command and its parameters
type Message struct {
	Command    string   // type of packed data
	Parameters [][]byte // array of parameters
}

// Queue - a single bounded queue
type Queue struct {
	c       chan Message
	dropped counter.Counter
}

// New - create a queue holding up to size messages
func New(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		c: make(chan Message, size),
	}
}

// Send - queue a message, dropping it if the queue is full
//
// returns false if the message was dropped
func (queue *Queue) Send(command string, parameters ...[]byte) bool {
	// copy the parameters as the caller may reuse them
	p := make([][]byte, len(parameters))
	for i, item := range parameters {
		p[i] = make([]byte, len(item))
		copy(p[i], item)
	}

	select {
	case queue.c <- Message{Command: command, Parameters: p}:
		return true
	default:
		queue.dropped.Increment()
		return false
	}
}

// Chan - channel to read from
func (queue *Queue) Chan() <-chan Message {
	return queue.c
}

// Dropped - number of messages discarded because the queue was full
func (queue *Queue) Dropped() uint64 {
	return queue.dropped.Uint64()
}

// Notify - queue an engine event as [id(8 byte BE), payload]
func (queue *Queue) Notify(kind event.Kind, id uint64, payload []byte) {
	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, id)
	queue.Send(string(kind), idBytes, payload)
}

// ToEvent - convert a message produced by Notify back to an event
func ToEvent(item Message) (event.Event, bool) {
	kind := event.Kind(item.Command)
	if !kind.Valid() || 2 != len(item.Parameters) || 8 != len(item.Parameters[0]) {
		return event.Event{}, false
	}
	return event.Event{
		Kind:    kind,
		ID:      binary.BigEndian.Uint64(item.Parameters[0]),
		Payload: item.Parameters[1],
	}, true
}
