// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	zmq "github.com/pebbe/zmq4"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/provenanced/event"
	"github.com/bitmark-inc/provenanced/publish"
	"github.com/bitmark-inc/provenanced/record"
)

type watchedEvent struct {
	Kind   event.Kind     `json:"kind"`
	ID     uint64         `json:"id,string"`
	Record *record.Record `json:"record,omitempty"`
}

func runWatch(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	endpoint := strings.TrimSpace(c.String("publisher"))
	if "" == endpoint {
		return ErrRequiredPublisher
	}
	limit := c.Uint64("count")

	socket, err := zmq.NewSocket(zmq.SUB)
	if nil != err {
		return err
	}
	defer socket.Close()

	_ = socket.SetLinger(0)
	if timeout := c.Duration("timeout"); timeout > 0 {
		if err := socket.SetRcvtimeo(timeout); nil != err {
			return err
		}
	}
	if err := socket.SetSubscribe(""); nil != err {
		return err
	}
	if err := socket.Connect(endpoint); nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "watching: %s\n", endpoint)
	}

	received := uint64(0)
	var printErr error
	observer := publish.NewObserver(publish.DefaultHistory, func(e event.Event) {
		received += 1
		out := watchedEvent{
			Kind: e.Kind,
			ID:   e.ID,
		}
		if r, err := record.Packed(e.Payload).Unpack(); nil == err {
			out.Record = r
		}
		printErr = printJson(m.w, out)
	})

	for 0 == limit || received < limit {
		parts, err := socket.RecvMessageBytes(0)
		if nil != err {
			return err
		}

		e, err := publish.Decode(parts)
		if nil != err {
			if m.verbose {
				fmt.Fprintf(m.e, "ignored message: %s\n", err)
			}
			continue
		}

		if !observer.Observe(e) && m.verbose {
			fmt.Fprintf(m.e, "duplicate: %s\n", e.Key())
		}
		if nil != printErr {
			return printErr
		}
	}
	return nil
}
