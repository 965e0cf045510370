// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/counter"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/rpc/ratelimit"
)

const (
	rateLimitNode = 200
	rateBurstNode = 100
)

// RecordCounter - source of the number of records held
type RecordCounter interface {
	Count() uint64
}

// Node - type for RPC calls
type Node struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Start   time.Time
	Version string
	records RecordCounter
	counter *counter.Counter
}

// New - create the node RPC handler
func New(log *logger.L, records RecordCounter, start time.Time, version string, counter *counter.Counter) *Node {
	return &Node{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitNode, rateBurstNode),
		Start:   start,
		Version: version,
		records: records,
		counter: counter,
	}
}

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - results from info request
type InfoReply struct {
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Records     uint64 `json:"records,string"`
	Connections uint64 `json:"connections"`
}

// Info - return some information about this node
func (node *Node) Info(_ *InfoArguments, reply *InfoReply) error {

	if err := ratelimit.Limit(node.Limiter); nil != err {
		return err
	}

	if nil == node.records {
		return fault.NotInitialised
	}

	reply.Version = node.Version
	reply.Uptime = time.Since(node.Start).String()
	reply.Records = node.records.Count()
	if nil != node.counter {
		reply.Connections = node.counter.Uint64()
	}
	return nil
}
