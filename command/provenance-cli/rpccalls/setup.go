// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"crypto/tls"
	"io"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
)

// Client - to hold RPC connections streams
type Client struct {
	conn    net.Conn
	client  *rpc.Client
	verbose bool
	handle  io.Writer // if verbose is set output items here
}

// NewClient - create a RPC connection to a provenanced
//
// the daemon uses a self-signed certificate so it is not verified
func NewClient(connect string, verbose bool, handle io.Writer) (*Client, error) {

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
	}

	conn, err := tls.Dial("tcp", connect, tlsConfig)
	if nil != err {
		return nil, err
	}

	return newClient(conn, verbose, handle), nil
}

func newClient(conn net.Conn, verbose bool, handle io.Writer) *Client {
	return &Client{
		conn:    conn,
		client:  jsonrpc.NewClient(conn),
		verbose: verbose,
		handle:  handle,
	}
}

// Close - shutdown the provenanced connection
func (c *Client) Close() {
	c.client.Close()
	c.conn.Close()
}

// call with optional tracing of request and reply
func (c *Client) call(method string, arguments interface{}, reply interface{}) error {
	c.printJson(method+" Request", arguments)

	err := c.client.Call(method, arguments, reply)
	if nil != err {
		return err
	}

	c.printJson(method+" Reply", reply)
	return nil
}
