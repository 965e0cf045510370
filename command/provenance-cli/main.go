// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

type metadata struct {
	connect string
	testnet bool
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "provenance-cli"
	app.Usage = "client for the provenanced document provenance service"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	seedFlag := cli.StringFlag{
		Name:   "seed, s",
		Value:  "",
		Usage:  "*hex ed25519 private key seed `SEED`",
		EnvVar: "PROVENANCE_SEED",
	}
	idFlag := cli.Uint64Flag{
		Name:  "id, i",
		Value: 0,
		Usage: "*record identifier `ID`",
	}
	fileFlag := cli.StringFlag{
		Name:  "file, f",
		Value: "",
		Usage: "+`FILE` of data to fingerprint",
	}
	digestFlag := cli.StringFlag{
		Name:  "digest, d",
		Value: "",
		Usage: "+hex SHA3-256 `DIGEST`",
	}
	signatureFlag := cli.StringFlag{
		Name:  "signature, S",
		Value: "",
		Usage: "*claimant's hex `SIGNATURE` over the digest",
	}
	decisionFlags := []cli.Flag{
		idFlag,
		fileFlag,
		digestFlag,
		signatureFlag,
		seedFlag,
	}

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.BoolFlag{
			Name:  "testnet, t",
			Usage: " use test network account encoding",
		},
		cli.StringFlag{
			Name:   "connect, c",
			Value:  "127.0.0.1:2130",
			Usage:  " provenanced `HOST:PORT`",
			EnvVar: "PROVENANCE_CONNECT",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "fingerprint",
			Usage:     "SHA3-256 digest of a file",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: "*`FILE` of data to fingerprint",
				},
			},
			Action: runFingerprint,
		},
		{
			Name:      "account",
			Usage:     "display the account for a seed",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{seedFlag},
			Action:    runAccount,
		},
		{
			Name:      "sign",
			Usage:     "sign the digest of a file or a given digest",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags:     []cli.Flag{fileFlag, digestFlag, seedFlag},
			Action:    runSign,
		},
		{
			Name:      "create",
			Usage:     "claim a document, owner is the seed's account",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags:     []cli.Flag{fileFlag, digestFlag, seedFlag},
			Action:    runCreate,
		},
		{
			Name:      "get",
			Usage:     "display one record",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{idFlag},
			Action:    runGet,
		},
		{
			Name:   "count",
			Usage:  "number of records",
			Action: runCount,
		},
		{
			Name:      "list",
			Usage:     "list records in identifier order",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "start, s",
					Value: 0,
					Usage: " start point `ID`",
				},
				cli.IntFlag{
					Name:  "count, c",
					Value: 20,
					Usage: " maximum records to output `COUNT`",
				},
			},
			Action: runList,
		},
		{
			Name:      "owned",
			Usage:     "list records currently owned",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "owner, o",
					Value: "",
					Usage: "+owner base58 `ACCOUNT`",
				},
				seedFlag,
			},
			Action: runOwned,
		},
		{
			Name:      "accept",
			Usage:     "mark a pending record verified",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags:     decisionFlags,
			Action:    decide("Accept"),
		},
		{
			Name:      "reject",
			Usage:     "mark a pending record rejected",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags:     decisionFlags,
			Action:    decide("Reject"),
		},
		{
			Name:      "verify",
			Usage:     "verify and finalize a pending record",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags:     decisionFlags,
			Action:    decide("Verify"),
		},
		{
			Name:      "check",
			Usage:     "check a digest and signature against a record",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags:     []cli.Flag{idFlag, fileFlag, digestFlag, signatureFlag},
			Action:    runCheck,
		},
		{
			Name:      "transfer",
			Usage:     "transfer a verified record, signed by the current owner's seed",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				idFlag,
				cli.StringFlag{
					Name:  "receiver, r",
					Value: "",
					Usage: "*new owner base58 `ACCOUNT`",
				},
				seedFlag,
			},
			Action: runTransfer,
		},
		{
			Name:      "provenance",
			Usage:     "chain of custody of a record",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{idFlag},
			Action:    runProvenance,
		},
		{
			Name:   "info",
			Usage:  "display provenanced status",
			Action: runInfo,
		},
		{
			Name:      "watch",
			Usage:     "print events broadcast by provenanced, once each",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "publisher, p",
					Value:  "tcp://127.0.0.1:2140",
					Usage:  "*ZeroMQ broadcast `ENDPOINT`",
					EnvVar: "PROVENANCE_PUBLISHER",
				},
				cli.Uint64Flag{
					Name:  "count, n",
					Value: 0,
					Usage: " stop after `COUNT` events (0 = never)",
				},
				cli.DurationFlag{
					Name:  "timeout, T",
					Value: 0,
					Usage: " give up when no message arrives within `DURATION` (0 = wait forever)",
				},
			},
			Action: runWatch,
		},
		{
			Name:  "version",
			Usage: "display provenance-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {
		c.App.Metadata["config"] = &metadata{
			connect: c.GlobalString("connect"),
			testnet: c.GlobalBool("testnet"),
			verbose: c.GlobalBool("verbose"),
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}

	return app
}
