// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/fingerprint"
)

func checkFileName(fileName string) (string, error) {
	if "" == fileName {
		return "", ErrRequiredFileName
	}

	return fileName, nil
}

// exactly one of a file to fingerprint or a hex digest
func checkDigest(fileName string, digest string) (fingerprint.Digest, error) {
	fileName = strings.TrimSpace(fileName)
	digest = strings.TrimSpace(digest)

	switch {
	case "" != fileName && "" != digest:
		return fingerprint.Digest{}, ErrFileAndDigestConflict
	case "" != fileName:
		return fingerprint.FromFile(fileName)
	case "" != digest:
		var d fingerprint.Digest
		err := d.UnmarshalText([]byte(digest))
		return d, err
	default:
		return fingerprint.Digest{}, ErrRequiredFileOrDigest
	}
}

// seed is the 32 byte ed25519 private key seed in hex
func checkSeed(seed string, testnet bool) (ed25519.PrivateKey, *account.Account, error) {
	seed = strings.TrimSpace(seed)
	if "" == seed {
		return nil, nil, ErrRequiredSeed
	}

	b, err := hex.DecodeString(seed)
	if nil != err || ed25519.SeedSize != len(b) {
		return nil, nil, ErrInvalidSeed
	}

	privateKey := ed25519.NewKeyFromSeed(b)
	a, err := account.New(privateKey.Public().(ed25519.PublicKey), testnet)
	if nil != err {
		return nil, nil, err
	}
	return privateKey, a, nil
}

// base58 account, or the account of the seed if no account given
func checkAccountOrSeed(base58 string, seed string, testnet bool, missing error) (*account.Account, error) {
	base58 = strings.TrimSpace(base58)
	if "" != base58 {
		return account.AccountFromBase58(base58)
	}
	if "" == strings.TrimSpace(seed) {
		return nil, missing
	}
	_, a, err := checkSeed(seed, testnet)
	return a, err
}

func checkSignature(signature string) (account.Signature, error) {
	signature = strings.TrimSpace(signature)
	if "" == signature {
		return nil, ErrRequiredSignature
	}

	var s account.Signature
	if err := s.UnmarshalText([]byte(signature)); nil != err {
		return nil, err
	}
	return s, nil
}
