// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fingerprint - content digests of documents
//
// A fingerprint is the SHA3-256 of the complete document bytes. The
// document itself is never stored, only its fingerprint.
package fingerprint

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/provenanced/fault"
)

// DigestLength - number of bytes in the digest
const DigestLength = 32

// Digest - type for a document fingerprint
// to convert to bytes just use d[:]
type Digest [DigestLength]byte

// Fingerprint - digest a complete document held in memory
func Fingerprint(document []byte) Digest {
	return sha3.Sum256(document)
}

// FromReader - digest everything that can be read from r
//
// the only possible error is the one returned by the reader
func FromReader(r io.Reader) (Digest, error) {
	h := sha3.New256()
	if _, err := io.Copy(h, r); nil != err {
		return Digest{}, err
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// FromFile - digest the contents of a file
func FromFile(fileName string) (Digest, error) {
	f, err := os.Open(fileName)
	if nil != err {
		return Digest{}, err
	}
	defer f.Close()

	return FromReader(bufio.NewReader(f))
}

// DigestFromBytes - convert and validate a byte slice to a digest
func DigestFromBytes(digest *Digest, buffer []byte) error {
	if DigestLength != len(buffer) {
		return fault.InvalidDigestLength
	}
	copy(digest[:], buffer)
	return nil
}

// String - hex form for the fmt package (for %s)
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString - for the fmt package (for %#v)
func (digest Digest) GoString() string {
	return "<SHA3-256:" + hex.EncodeToString(digest[:]) + ">"
}

// MarshalText - convert digest to hex text
func (digest Digest) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(DigestLength))
	hex.Encode(buffer, digest[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a digest
func (digest *Digest) UnmarshalText(s []byte) error {
	if DigestLength != hex.DecodedLen(len(s)) {
		return fault.InvalidDigestLength
	}
	buffer := make([]byte, DigestLength)
	if _, err := hex.Decode(buffer, s); nil != err {
		return err
	}
	copy(digest[:], buffer)
	return nil
}
