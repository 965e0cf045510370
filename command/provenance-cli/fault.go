// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/provenanced/fault"
)

// cli specific errors
var (
	ErrFileAndDigestConflict = fault.InvalidError("only one of file or digest may be given")
	ErrInvalidSeed           = fault.InvalidError("seed must be 32 bytes of hex")
	ErrRequiredFileName      = fault.InvalidError("file name is required")
	ErrRequiredFileOrDigest  = fault.InvalidError("one of file or digest is required")
	ErrRequiredOwner         = fault.InvalidError("owner or seed is required")
	ErrRequiredPublisher     = fault.InvalidError("publisher endpoint is required")
	ErrRequiredReceiver      = fault.InvalidError("receiver is required")
	ErrRequiredSeed          = fault.InvalidError("seed is required")
	ErrRequiredSignature     = fault.InvalidError("signature is required")
)
