// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/rpc"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/background"
	"github.com/bitmark-inc/provenanced/counter"
	"github.com/bitmark-inc/provenanced/event"
	"github.com/bitmark-inc/provenanced/fingerprint"
	"github.com/bitmark-inc/provenanced/fixtures"
	"github.com/bitmark-inc/provenanced/ledger"
	"github.com/bitmark-inc/provenanced/messagebus"
	"github.com/bitmark-inc/provenanced/ownership"
	"github.com/bitmark-inc/provenanced/publish"
	"github.com/bitmark-inc/provenanced/record"
	"github.com/bitmark-inc/provenanced/rpc/certificate"
	"github.com/bitmark-inc/provenanced/rpc/listeners"
	"github.com/bitmark-inc/provenanced/rpc/server"
	"github.com/bitmark-inc/provenanced/store"
	"github.com/bitmark-inc/provenanced/verifier"
	"github.com/bitmark-inc/provenanced/workflow"
)

var (
	aliceSeed = strings.Repeat("a1", 32)
	bobSeed   = strings.Repeat("b0", 32)
	carolSeed = strings.Repeat("ca", 32)
)

func run(t *testing.T, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	app := newApp(&out, &errOut)
	err := app.Run(append([]string{"provenance-cli"}, args...))
	return out.String(), err
}

func writeDocument(t *testing.T, dir string, text string) string {
	fileName := filepath.Join(dir, "document.txt")
	if err := ioutil.WriteFile(fileName, []byte(text), 0600); nil != err {
		t.Fatalf("write document error: %s", err)
	}
	return fileName
}

func TestFingerprint(t *testing.T) {
	dir, err := ioutil.TempDir("", "provenance-cli")
	assert.Nil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	fileName := writeDocument(t, dir, "document 1")

	out, err := run(t, "fingerprint", "--file", fileName)
	assert.Nil(t, err, "wrong fingerprint")

	var result struct {
		FileName    string             `json:"file_name"`
		Fingerprint fingerprint.Digest `json:"fingerprint"`
	}
	assert.Nil(t, json.Unmarshal([]byte(out), &result), "decode output")
	assert.Equal(t, fixtures.Document(1), result.Fingerprint, "wrong digest")

	_, err = run(t, "fingerprint")
	assert.Equal(t, ErrRequiredFileName, err, "missing file")
}

func TestAccountAndSign(t *testing.T) {
	out, err := run(t, "--testnet", "account", "--seed", aliceSeed)
	assert.Nil(t, err, "wrong account")
	assert.True(t, strings.Contains(out, fixtures.Alice.Account.String()), "wrong account: %s", out)

	d := fixtures.Document(1)
	out, err = run(t, "--testnet", "sign", "--digest", d.String(), "--seed", aliceSeed)
	assert.Nil(t, err, "wrong sign")
	assert.True(t, strings.Contains(out, fixtures.Alice.Sign(d).String()), "wrong signature: %s", out)

	_, err = run(t, "sign", "--digest", d.String())
	assert.Equal(t, ErrRequiredSeed, err, "missing seed")

	_, err = run(t, "sign", "--digest", d.String(), "--seed", "abcd")
	assert.Equal(t, ErrInvalidSeed, err, "short seed")

	_, err = run(t, "sign", "--seed", aliceSeed)
	assert.Equal(t, ErrRequiredFileOrDigest, err, "missing digest")

	_, err = run(t, "sign", "--file", "x", "--digest", d.String(), "--seed", aliceSeed)
	assert.Equal(t, ErrFileAndDigestConflict, err, "file and digest")
}

// run a TLS RPC server for the client commands
func startServer(t *testing.T) (string, func()) {
	dir, err := ioutil.TempDir("", "provenance-cli-server")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	cer := filepath.Join(dir, "rpc.crt")
	key := filepath.Join(dir, "rpc.key")
	if err := certificate.MakeSelfSigned("test", cer, key, []string{"127.0.0.1"}); nil != err {
		t.Fatalf("make certificate error: %s", err)
	}

	log := logger.New(fixtures.LogCategory)
	tlsConfig, fin, err := certificate.Load(log, "test", cer, key)
	if nil != err {
		t.Fatalf("load certificate error: %s", err)
	}

	v := verifier.New(log)
	s, err := store.New(log, ledger.NewMemory(), v, nil, nil)
	if nil != err {
		t.Fatalf("new store error: %s", err)
	}
	count := counter.Counter(0)
	var rpcServer *rpc.Server = server.Create(log, "test", &count, s, workflow.New(log, s, v, nil, nil), ownership.New(log, s, nil, nil))

	l, err := listeners.NewRPC(&listeners.RPCConfiguration{
		MaximumConnections: 10,
		Listen:             []string{"127.0.0.1:0"},
	}, log, &count, rpcServer, tlsConfig, fin)
	if nil != err {
		t.Fatalf("new listener error: %s", err)
	}
	if err := l.Serve(); nil != err {
		t.Fatalf("serve error: %s", err)
	}

	return l.Addresses()[0], func() {
		_ = l.Close()
		_ = os.RemoveAll(dir)
	}
}

func TestClaimVerifyTransfer(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	address, stop := startServer(t)
	defer stop()

	d := fixtures.Document(3)

	out, err := run(t, "--testnet", "--connect", address, "create", "--digest", d.String(), "--seed", aliceSeed)
	assert.Nil(t, err, "wrong create")
	assert.True(t, strings.Contains(out, `"id": "0"`), "wrong create output: %s", out)

	// a decision must be signed by the verifier
	_, err = run(t, "--testnet", "--connect", address, "reject",
		"--id", "0",
		"--digest", d.String(),
		"--signature", fixtures.Alice.Sign(d).String(),
	)
	assert.Equal(t, ErrRequiredSeed, err, "unsigned reject")

	out, err = run(t, "--testnet", "--connect", address, "verify",
		"--id", "0",
		"--digest", d.String(),
		"--signature", fixtures.Alice.Sign(d).String(),
		"--seed", carolSeed,
	)
	assert.Nil(t, err, "wrong verify")
	assert.True(t, strings.Contains(out, record.Verified.String()), "wrong verify output: %s", out)

	out, err = run(t, "--testnet", "--connect", address, "transfer",
		"--id", "0",
		"--receiver", fixtures.Bob.Account.String(),
		"--seed", aliceSeed,
	)
	assert.Nil(t, err, "wrong transfer")

	// a second transfer by the old owner is refused
	_, err = run(t, "--testnet", "--connect", address, "transfer",
		"--id", "0",
		"--receiver", fixtures.Carol.Account.String(),
		"--seed", aliceSeed,
	)
	assert.NotNil(t, err, "transfer by previous owner")

	out, err = run(t, "--testnet", "--connect", address, "owned", "--seed", bobSeed)
	assert.Nil(t, err, "wrong owned")
	assert.True(t, strings.Contains(out, fixtures.Bob.Account.String()), "wrong owned output: %s", out)

	out, err = run(t, "--connect", address, "provenance", "--id", "0")
	assert.Nil(t, err, "wrong provenance")
	assert.True(t, strings.Contains(out, ownership.EventTransferred), "wrong provenance output: %s", out)

	out, err = run(t, "--connect", address, "count")
	assert.Nil(t, err, "wrong count")
	assert.True(t, strings.Contains(out, `"count": "1"`), "wrong count output: %s", out)
}

func TestWatch(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	const endpoint = "inproc://provenance-cli-watch"

	queue := messagebus.New(100)
	brdc, err := publish.NewBroadcaster(logger.New(fixtures.LogCategory), queue, []string{endpoint})
	if nil != err {
		t.Fatalf("broadcaster error: %s", err)
	}
	bg := background.Start(background.Processes{brdc}, nil)
	defer bg.Stop()

	d := fixtures.Document(1)
	r := record.New(0, d, fixtures.Alice.Sign(d), fixtures.Alice.Account, time.Now())
	created := r.Pack()

	r.Status = record.Verified
	r.History = append(r.History, record.Transfer{
		PreviousOwner: fixtures.Alice.Account,
		NewOwner:      fixtures.Bob.Account,
		Timestamp:     time.Now(),
	})
	r.CurrentOwner = fixtures.Bob.Account
	transferred := r.Pack()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := run(t, "watch", "--publisher", endpoint, "--count", "2", "--timeout", "10s")
		done <- result{out: out, err: err}
	}()

	// repeat until the subscriber has seen both; repeats must be dropped
	var res result
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case res = <-done:
			break loop
		case <-tick.C:
			queue.Notify(event.RecordCreated, 0, created)
			queue.Notify(event.OwnershipTransferred, 0, transferred)
		}
	}

	assert.Nil(t, res.err, "wrong watch")
	assert.Equal(t, 1, strings.Count(res.out, `"kind": "created"`), "created events: %s", res.out)
	assert.Equal(t, 1, strings.Count(res.out, `"kind": "transferred"`), "transferred events: %s", res.out)
	assert.True(t, strings.Contains(res.out, fixtures.Bob.Account.String()), "record not decoded: %s", res.out)

	_, err = run(t, "watch", "--publisher", " ")
	assert.Equal(t, ErrRequiredPublisher, err, "missing publisher")
}
