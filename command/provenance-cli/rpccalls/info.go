// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/bitmark-inc/provenanced/rpc/node"
)

// GetInfo - status of the daemon
func (c *Client) GetInfo() (*node.InfoReply, error) {
	reply := &node.InfoReply{}
	if err := c.call("Node.Info", &node.InfoArguments{}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}
