// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/counter"
	"github.com/bitmark-inc/provenanced/ownership"
	"github.com/bitmark-inc/provenanced/rpc/node"
	"github.com/bitmark-inc/provenanced/rpc/records"
	"github.com/bitmark-inc/provenanced/store"
	"github.com/bitmark-inc/provenanced/workflow"
)

// Create - an RPC server with every client service registered
func Create(
	log *logger.L,
	version string,
	rpcCount *counter.Counter,
	s *store.Store,
	w *workflow.Workflow,
	o *ownership.Manager,
) *rpc.Server {

	start := time.Now().UTC()

	server := rpc.NewServer()

	_ = server.Register(records.New(log, s, w, o))
	_ = server.Register(node.New(log, s, start, version, rpcCount))

	return server
}
