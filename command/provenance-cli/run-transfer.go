// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/command/provenance-cli/rpccalls"
	"github.com/bitmark-inc/provenanced/ownership"
)

func runTransfer(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	receiver := strings.TrimSpace(c.String("receiver"))
	if "" == receiver {
		return ErrRequiredReceiver
	}
	newOwner, err := account.AccountFromBase58(receiver)
	if nil != err {
		return err
	}

	privateKey, owner, err := checkSeed(c.String("seed"), m.testnet)
	if nil != err {
		return err
	}

	id := c.Uint64("id")
	if m.verbose {
		fmt.Fprintf(m.e, "transfer: %d\n", id)
		fmt.Fprintf(m.e, "from: %s\n", owner)
		fmt.Fprintf(m.e, "to: %s\n", newOwner)
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	// the signed message binds the current history length
	r, err := client.Get(id)
	if nil != err {
		return err
	}
	message := ownership.TransferMessage(id, uint64(len(r.History)), newOwner)

	response, err := client.Transfer(&rpccalls.TransferData{
		ID:        id,
		Owner:     owner,
		NewOwner:  newOwner,
		Signature: ed25519.Sign(privateKey, message),
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}
