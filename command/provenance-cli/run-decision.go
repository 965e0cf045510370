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

	"github.com/bitmark-inc/provenanced/command/provenance-cli/rpccalls"
	"github.com/bitmark-inc/provenanced/workflow"
)

// accept, reject and verify share their arguments
func decide(operation string) cli.ActionFunc {
	return func(c *cli.Context) error {

		m := c.App.Metadata["config"].(*metadata)

		digest, err := checkDigest(c.String("file"), c.String("digest"))
		if nil != err {
			return err
		}

		signature, err := checkSignature(c.String("signature"))
		if nil != err {
			return err
		}

		privateKey, verifier, err := checkSeed(c.String("seed"), m.testnet)
		if nil != err {
			return err
		}

		id := c.Uint64("id")
		if m.verbose {
			fmt.Fprintf(m.e, "%s: %d\n", operation, id)
			fmt.Fprintf(m.e, "digest: %s\n", digest)
			fmt.Fprintf(m.e, "verifier: %s\n", verifier)
		}

		client, err := connect(m)
		if nil != err {
			return err
		}
		defer client.Close()

		// the verifier signs the decision it is making
		message := workflow.DecisionMessage(strings.ToLower(operation), id, digest[:])

		response, err := client.Decide(operation, &rpccalls.DecisionData{
			ID:            id,
			Digest:        digest,
			Signature:     signature,
			Verifier:      verifier,
			Authorization: ed25519.Sign(privateKey, message),
		})
		if nil != err {
			return err
		}

		return printJson(m.w, response)
	}
}

func runCheck(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	digest, err := checkDigest(c.String("file"), c.String("digest"))
	if nil != err {
		return err
	}

	signature, err := checkSignature(c.String("signature"))
	if nil != err {
		return err
	}

	client, err := connect(m)
	if nil != err {
		return err
	}
	defer client.Close()

	response, err := client.Check(c.Uint64("id"), digest, signature)
	if nil != err {
		return err
	}

	return printJson(m.w, response)
}
