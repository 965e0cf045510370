// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/provenanced/command/provenance-cli/rpccalls"
)

func connect(m *metadata) (*rpccalls.Client, error) {
	if m.verbose {
		fmt.Fprintf(m.e, "connect: %s\n", m.connect)
	}
	return rpccalls.NewClient(m.connect, m.verbose, m.e)
}

func runCreate(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	digest, err := checkDigest(c.String("file"), c.String("digest"))
	if nil != err {
		return err
	}

	privateKey, owner, err := checkSeed(c.String("seed"), m.testnet)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "digest: %s\n", digest)
		fmt.Fprintf(m.e, "owner: %s\n", owner)
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Create(&rpccalls.CreateData{
		Digest:    digest,
		Signature: ed25519.Sign(privateKey, digest[:]),
		Owner:     owner,
	})
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runGet(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Get(c.Uint64("id"))
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runCount(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Count()
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runList(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	count := c.Int("count")
	if count <= 0 {
		return fmt.Errorf("invalid count: %d", count)
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.List(c.Uint64("start"), count)
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runOwned(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	owner, err := checkAccountOrSeed(c.String("owner"), c.String("seed"), m.testnet, ErrRequiredOwner)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "owner: %s\n", owner)
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Owned(owner)
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runProvenance(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Provenance(c.Uint64("id"))
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runInfo(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.GetInfo()
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}
