// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test setup: a throw-away logger and a set
// of deterministic identities
package fixtures

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/fingerprint"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// Party - an identity together with its signing key
type Party struct {
	Name       string
	Account    *account.Account
	PrivateKey ed25519.PrivateKey
}

// the test identities
var (
	Alice   = newParty("alice", 0xa1)
	Bob     = newParty("bob", 0xb0)
	Carol   = newParty("carol", 0xca)
	Mallory = newParty("mallory", 0x66)
)

func newParty(name string, fill byte) *Party {
	privateKey := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{fill}, ed25519.SeedSize))
	a, err := account.New(privateKey.Public().(ed25519.PublicKey), true)
	if nil != err {
		panic(err)
	}
	return &Party{
		Name:       name,
		Account:    a,
		PrivateKey: privateKey,
	}
}

// Sign - sign a digest with the party's key
func (p *Party) Sign(digest fingerprint.Digest) account.Signature {
	return ed25519.Sign(p.PrivateKey, digest[:])
}

// SignBytes - sign an arbitrary message
func (p *Party) SignBytes(message []byte) account.Signature {
	return ed25519.Sign(p.PrivateKey, message)
}

// Document - a digest that is distinct for each n
func Document(n int) fingerprint.Digest {
	return fingerprint.Fingerprint([]byte(fmt.Sprintf("document %d", n)))
}

// SetupTestLogger - start a critical-only logger in a temporary directory
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop logging and remove its files
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	err := os.RemoveAll(dir)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}
