// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError

// common errors - keep in alphabetic order
var (
	AlreadyFinalized             = RecordError("record already finalized")
	AlreadyInitialised           = ExistsError("already initialised")
	CannotDecodeAccount          = InvalidError("cannot decode account")
	CertificateFileAlreadyExists = ExistsError("certificate file already exists")
	CertificateFileDoesNotExist  = NotFoundError("certificate file does not exist")
	ChecksumMismatch             = ProcessError("checksum mismatch")
	DatabaseIsNewer              = ProcessError("database version is newer than this program")
	DatabaseIsOlder              = ProcessError("database version is older than this program")
	DigestMismatch               = RecordError("digest does not match record")
	EmptyDigest                  = LengthError("digest is empty")
	IdentifierMismatch           = ProcessError("ledger committed an unexpected identifier")
	ImmutableField               = RecordError("immutable record field modified")
	InvalidConfiguration         = InvalidError("invalid configuration")
	InvalidCount                 = InvalidError("invalid count")
	InvalidDatabaseType          = InvalidError("invalid database type")
	InvalidDigestLength          = LengthError("invalid digest length")
	InvalidHistory               = RecordError("invalid ownership history")
	InvalidIpAddress             = InvalidError("invalid IP address")
	InvalidKeyLength             = LengthError("invalid key length")
	InvalidKeyType               = InvalidError("invalid key type")
	InvalidSignature             = InvalidError("invalid signature")
	InvalidStatus                = InvalidError("invalid status")
	InvalidStatusTransition      = RecordError("invalid status transition")
	KeyFileAlreadyExists         = ExistsError("key file already exists")
	KeyFileDoesNotExist          = NotFoundError("key file does not exist")
	MissingOwner                 = InvalidError("owner is required")
	MissingParameters            = InvalidError("missing parameters")
	MissingVerifier              = InvalidError("verifier is required")
	NotAbsolutePath              = InvalidError("not an absolute path")
	NotADirectory                = InvalidError("not a directory")
	NotPlainFileName             = InvalidError("not a plain file name")
	NotInitialised               = NotFoundError("not initialised")
	NotOwner                     = RecordError("requester is not the current owner")
	NotPublicKey                 = InvalidError("not public key")
	NotRecord                    = RecordError("not a record")
	NotVerified                  = RecordError("record is not verified")
	RateLimiting                 = InvalidError("rate limiting")
	RecordNotFound               = NotFoundError("record not found")
	SameOwner                    = RecordError("new owner is already the current owner")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e RecordError) Error() string   { return string(e) }

// IsErrExists - determine the class of an error
func IsErrExists(e error) bool { _, ok := e.(ExistsError); return ok }

// IsErrInvalid - determine the class of an error
func IsErrInvalid(e error) bool { _, ok := e.(InvalidError); return ok }

// IsErrLength - determine the class of an error
func IsErrLength(e error) bool { _, ok := e.(LengthError); return ok }

// IsErrNotFound - determine the class of an error
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }

// IsErrProcess - determine the class of an error
func IsErrProcess(e error) bool { _, ok := e.(ProcessError); return ok }

// IsErrRecord - determine the class of an error
func IsErrRecord(e error) bool { _, ok := e.(RecordError); return ok }
