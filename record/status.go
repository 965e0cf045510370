// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"github.com/bitmark-inc/provenanced/fault"
)

// Status - verification state of a record
type Status uint8

// the states; Verified and Rejected are terminal
const (
	Pending  Status = iota
	Verified Status = iota
	Rejected Status = iota
)

// String - name of the status
func (status Status) String() string {
	switch status {
	case Pending:
		return "pending"
	case Verified:
		return "verified"
	case Rejected:
		return "rejected"
	default:
		return "*unknown*"
	}
}

// IsFinal - true once no further verification decision is possible
func (status Status) IsFinal() bool {
	return Verified == status || Rejected == status
}

// MarshalText - status as text
func (status Status) MarshalText() ([]byte, error) {
	switch status {
	case Pending, Verified, Rejected:
		return []byte(status.String()), nil
	default:
		return nil, fault.InvalidStatus
	}
}

// UnmarshalText - status from text
func (status *Status) UnmarshalText(s []byte) error {
	switch string(s) {
	case "pending":
		*status = Pending
	case "verified":
		*status = Verified
	case "rejected":
		*status = Rejected
	default:
		return fault.InvalidStatus
	}
	return nil
}
