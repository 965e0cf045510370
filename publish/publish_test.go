// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish_test

import (
	"testing"
	"time"

	zmq "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/background"
	"github.com/bitmark-inc/provenanced/event"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/fixtures"
	"github.com/bitmark-inc/provenanced/messagebus"
	"github.com/bitmark-inc/provenanced/publish"
	"github.com/bitmark-inc/provenanced/record"
)

func TestObserverDeduplicates(t *testing.T) {
	received := make([]event.Event, 0)
	o := publish.NewObserver(10, func(e event.Event) {
		received = append(received, e)
	})

	assert.True(t, o.Observe(event.Event{Kind: event.RecordCreated, ID: 1}), "first delivery")
	assert.False(t, o.Observe(event.Event{Kind: event.RecordCreated, ID: 1}), "repeat delivery")
	assert.True(t, o.Observe(event.Event{Kind: event.RecordVerified, ID: 1}), "different kind")
	assert.True(t, o.Observe(event.Event{Kind: event.RecordCreated, ID: 2}), "different id")

	o.Notify(event.RecordVerified, 1, nil)

	assert.Equal(t, 3, len(received), "wrong handler calls")
	assert.Equal(t, event.RecordVerified, received[1].Kind, "wrong order")
}

func TestObserverSeesEachTransfer(t *testing.T) {
	d := fixtures.Document(1)
	r := record.New(0, d, fixtures.Alice.Sign(d), fixtures.Alice.Account, time.Now())
	r.Status = record.Verified

	count := 0
	o := publish.NewObserver(10, func(e event.Event) {
		count += 1
	})

	for _, to := range []*fixtures.Party{fixtures.Bob, fixtures.Carol} {
		r.History = append(r.History, record.Transfer{
			PreviousOwner: r.CurrentOwner,
			NewOwner:      to.Account,
			Timestamp:     time.Now(),
		})
		r.CurrentOwner = to.Account
		payload := r.Pack()

		assert.True(t, o.Observe(event.Event{Kind: event.OwnershipTransferred, ID: 0, Payload: payload}), "transfer to %s dropped", to.Name)
		assert.False(t, o.Observe(event.Event{Kind: event.OwnershipTransferred, ID: 0, Payload: payload}), "repeat of transfer to %s passed", to.Name)
	}
	assert.Equal(t, 2, count, "wrong handler calls")
}

func TestDecode(t *testing.T) {
	e, err := publish.Decode([][]byte{
		[]byte("rejected"),
		{0, 0, 0, 0, 0, 0, 0, 7},
		{0xaa},
	})
	assert.Nil(t, err, "decode error")
	assert.Equal(t, event.RecordRejected, e.Kind, "wrong kind")
	assert.Equal(t, uint64(7), e.ID, "wrong id")
	assert.Equal(t, []byte{0xaa}, e.Payload, "wrong payload")

	_, err = publish.Decode([][]byte{[]byte("rejected"), {7}, nil})
	assert.Equal(t, fault.MissingParameters, err, "short id accepted")

	_, err = publish.Decode([][]byte{[]byte("erased"), make([]byte, 8), nil})
	assert.Equal(t, fault.MissingParameters, err, "unknown kind accepted")
}

func TestBroadcaster(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	const endpoint = "inproc://publish-test"

	queue := messagebus.New(10)
	brdc, err := publish.NewBroadcaster(logger.New(fixtures.LogCategory), queue, []string{endpoint})
	if nil != err {
		t.Fatalf("broadcaster error: %s", err)
	}

	bg := background.Start(background.Processes{brdc}, nil)
	defer bg.Stop()

	sub, err := zmq.NewSocket(zmq.SUB)
	if nil != err {
		t.Fatalf("socket error: %s", err)
	}
	defer sub.Close()
	_ = sub.SetRcvtimeo(5 * time.Second)
	_ = sub.SetSubscribe("")
	err = sub.Connect(endpoint)
	assert.Nil(t, err, "connect error")

	// allow the subscription to reach the publisher
	time.Sleep(100 * time.Millisecond)

	queue.Notify(event.RecordCreated, 5, []byte("packed"))

	parts, err := sub.RecvMessageBytes(0)
	assert.Nil(t, err, "receive error")

	o := publish.NewObserver(0, nil)
	e, err := publish.Decode(parts)
	assert.Nil(t, err, "decode error")
	assert.Equal(t, event.RecordCreated, e.Kind, "wrong kind")
	assert.Equal(t, uint64(5), e.ID, "wrong id")
	assert.Equal(t, []byte("packed"), e.Payload, "wrong payload")
	assert.True(t, o.Observe(e), "fresh event ignored")
}
