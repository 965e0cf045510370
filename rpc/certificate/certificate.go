// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"crypto/tls"
	"io/ioutil"
	"os"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/fingerprint"
	"github.com/bitmark-inc/provenanced/util"
)

const validity = 10 * 365 * 24 * time.Hour

// Get - build a TLS configuration from PEM certificate and key data
// and return it with the certificate fingerprint
func Get(log *logger.L, name string, certificate []byte, key []byte) (*tls.Config, fingerprint.Digest, error) {
	var fin fingerprint.Digest

	keyPair, err := tls.X509KeyPair(certificate, key)
	if nil != err {
		log.Errorf("%s failed to load keypair: %s", name, err)
		return nil, fin, err
	}

	tlsConfiguration := &tls.Config{
		Certificates: []tls.Certificate{
			keyPair,
		},
	}

	fin = Fingerprint(keyPair.Certificate[0])

	return tlsConfiguration, fin, nil
}

// Load - read a certificate and key pair from files
func Load(log *logger.L, name string, certificateFileName string, keyFileName string) (*tls.Config, fingerprint.Digest, error) {
	if !util.EnsureFileExists(certificateFileName) {
		log.Errorf("%s certificate: %q does not exist", name, certificateFileName)
		return nil, fingerprint.Digest{}, fault.CertificateFileDoesNotExist
	}
	if !util.EnsureFileExists(keyFileName) {
		log.Errorf("%s private key: %q does not exist", name, keyFileName)
		return nil, fingerprint.Digest{}, fault.KeyFileDoesNotExist
	}

	certificate, err := ioutil.ReadFile(certificateFileName)
	if nil != err {
		return nil, fingerprint.Digest{}, err
	}
	key, err := ioutil.ReadFile(keyFileName)
	if nil != err {
		return nil, fingerprint.Digest{}, err
	}
	return Get(log, name, certificate, key)
}

// MakeSelfSigned - create a self-signed certificate and key pair
//
// neither file may already exist
func MakeSelfSigned(name string, certificateFileName string, keyFileName string, extraHosts []string) error {
	if util.EnsureFileExists(certificateFileName) {
		return fault.CertificateFileAlreadyExists
	}
	if util.EnsureFileExists(keyFileName) {
		return fault.KeyFileAlreadyExists
	}

	org := "provenanced self signed cert for: " + name
	validUntil := time.Now().Add(validity)
	cert, key, err := certgen.NewTLSCertPair(org, validUntil, 0 != len(extraHosts), extraHosts)
	if nil != err {
		return err
	}

	if err = ioutil.WriteFile(certificateFileName, cert, 0666); nil != err {
		return err
	}

	if err = ioutil.WriteFile(keyFileName, key, 0600); nil != err {
		_ = os.Remove(certificateFileName)
		return err
	}

	return nil
}

// Fingerprint - SHA3-256 of a DER certificate
//
// FreeBSD: openssl x509 -outform DER -in rpc.crt | sha3sum -a 256
func Fingerprint(certificate []byte) fingerprint.Digest {
	return fingerprint.Digest(sha3.Sum256(certificate))
}
