// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package verifier - decide whether a signature over a digest was
// produced by the key behind a claimed identity
//
// identities are ed25519 public keys, so recovering the signer is the
// same as checking the signature against the claimed key: no other
// key can produce a signature that passes
package verifier

import (
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/fingerprint"
	"github.com/bitmark-inc/provenanced/util"
)

const (
	resultExpiry  = 10 * time.Minute
	cleanupPeriod = 15 * time.Minute
)

// Verifier - the signature check used by the engine
//
// must not panic for any input and must give the same answer for the
// same input
type Verifier interface {
	Verify(digest []byte, signature account.Signature, claimed *account.Account) bool
}

// Checker - ed25519 verifier with a memo of recent results
type Checker struct {
	log     *logger.L
	results *cache.Cache
}

// New - create a verifier
func New(log *logger.L) *Checker {
	return &Checker{
		log:     log,
		results: cache.New(resultExpiry, cleanupPeriod),
	}
}

// Verify - true only if signature is a valid signature over digest by
// the key of the claimed identity
func (c *Checker) Verify(digest []byte, signature account.Signature, claimed *account.Account) bool {
	if nil == claimed || nil == claimed.AccountInterface {
		c.log.Debug("verify: no identity")
		return false
	}
	if fingerprint.DigestLength != len(digest) {
		c.log.Debugf("verify: digest length: %d", len(digest))
		return false
	}

	key := cacheKey(digest, signature, claimed)
	if ok, found := c.results.Get(key); found {
		return ok.(bool)
	}

	ok := nil == claimed.CheckSignature(digest, signature)
	c.results.Set(key, ok, cache.DefaultExpiration)

	c.log.Debugf("verify: digest: %x  identity: %s  valid: %t", digest, claimed, ok)
	return ok
}

// every input is length prefixed so that field boundaries cannot shift
func cacheKey(digest []byte, signature account.Signature, claimed *account.Account) string {
	buffer := util.AppendVarBytes(nil, digest)
	buffer = util.AppendVarBytes(buffer, signature)
	buffer = util.AppendVarBytes(buffer, claimed.Bytes())
	key := sha3.Sum256(buffer)
	return string(key[:])
}
