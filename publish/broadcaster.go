// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/messagebus"
)

// Configuration - a block of configuration data read from the Lua
// configuration file
type Configuration struct {
	Broadcast []string `gluamapper:"broadcast" json:"broadcast"`
}

// Broadcaster - background process copying the queue to a PUB socket
type Broadcaster struct {
	log    *logger.L
	queue  *messagebus.Queue
	socket *zmq.Socket
}

// NewBroadcaster - bind a PUB socket to each endpoint
//
// endpoints are ZeroMQ addresses, e.g. "tcp://127.0.0.1:2140"
func NewBroadcaster(log *logger.L, queue *messagebus.Queue, endpoints []string) (*Broadcaster, error) {

	log.Info("initialising…")

	socket, err := zmq.NewSocket(zmq.PUB)
	if nil != err {
		log.Errorf("socket error: %s", err)
		return nil, err
	}
	_ = socket.SetLinger(0)

	for _, endpoint := range endpoints {
		err = socket.Bind(endpoint)
		if nil != err {
			log.Errorf("bind: %q  error: %s", endpoint, err)
			socket.Close()
			return nil, err
		}
		log.Infof("bind: %q", endpoint)
	}

	return &Broadcaster{
		log:    log,
		queue:  queue,
		socket: socket,
	}, nil
}

// Run - send queued events until shutdown
func (brdc *Broadcaster) Run(args interface{}, shutdown <-chan struct{}) {

	log := brdc.log

	log.Info("starting…")

	queue := brdc.queue.Chan()

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop
		case item := <-queue:
			log.Debugf("sending: %s  data: %x", item.Command, item.Parameters)
			brdc.process(&item)
		}
	}

	brdc.socket.Close()
	log.Info("stopped")
}

// a failed send loses only this event; subscribers re-read the ledger
func (brdc *Broadcaster) process(item *messagebus.Message) {
	_, err := brdc.socket.Send(item.Command, zmq.SNDMORE|zmq.DONTWAIT)
	if nil != err {
		brdc.log.Warnf("send: %s  error: %s", item.Command, err)
		return
	}
	last := len(item.Parameters) - 1
	for i, p := range item.Parameters {
		if i == last {
			_, err = brdc.socket.SendBytes(p, 0|zmq.DONTWAIT)
		} else {
			_, err = brdc.socket.SendBytes(p, zmq.SNDMORE|zmq.DONTWAIT)
		}
		if nil != err {
			brdc.log.Warnf("send: %s  part: %d  error: %s", item.Command, i, err)
			return
		}
	}
}
