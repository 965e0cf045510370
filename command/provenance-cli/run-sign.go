// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/fingerprint"
)

func runAccount(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	_, a, err := checkSeed(c.String("seed"), m.testnet)
	if nil != err {
		return err
	}

	out := struct {
		Account   *account.Account `json:"account"`
		PublicKey string           `json:"public_key"`
		Testnet   bool             `json:"testnet"`
	}{
		Account:   a,
		PublicKey: fmt.Sprintf("%x", a.PublicKeyBytes()),
		Testnet:   a.IsTesting(),
	}
	return printJson(m.w, out)
}

func runSign(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	digest, err := checkDigest(c.String("file"), c.String("digest"))
	if nil != err {
		return err
	}

	privateKey, a, err := checkSeed(c.String("seed"), m.testnet)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "digest: %s\n", digest)
		fmt.Fprintf(m.e, "signer: %s\n", a)
	}

	out := struct {
		Account   *account.Account   `json:"account"`
		Digest    fingerprint.Digest `json:"digest"`
		Signature account.Signature  `json:"signature"`
	}{
		Account:   a,
		Digest:    digest,
		Signature: ed25519.Sign(privateKey, digest[:]),
	}
	return printJson(m.w, out)
}
