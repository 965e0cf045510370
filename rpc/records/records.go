// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

import (
	"encoding/hex"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/ownership"
	"github.com/bitmark-inc/provenanced/record"
	"github.com/bitmark-inc/provenanced/rpc/ratelimit"
	"github.com/bitmark-inc/provenanced/store"
	"github.com/bitmark-inc/provenanced/workflow"
)

const (
	rateLimitRecords = 200
	rateBurstRecords = 100
)

// Records - type for RPC calls
type Records struct {
	Log       *logger.L
	Limiter   *rate.Limiter
	store     *store.Store
	workflow  *workflow.Workflow
	ownership *ownership.Manager
}

// HexBytes - binary data carried as hex text
type HexBytes []byte

// MarshalText - convert to hex text
func (b HexBytes) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(buffer, b)
	return buffer, nil
}

// UnmarshalText - convert from hex text
func (b *HexBytes) UnmarshalText(s []byte) error {
	buffer := make([]byte, hex.DecodedLen(len(s)))
	n, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	*b = buffer[:n]
	return nil
}

// New - create the records RPC handler
func New(log *logger.L, s *store.Store, w *workflow.Workflow, o *ownership.Manager) *Records {
	return &Records{
		Log:       log,
		Limiter:   rate.NewLimiter(rateLimitRecords, rateBurstRecords),
		store:     s,
		workflow:  w,
		ownership: o,
	}
}

// ---

// CreateArguments - register a digest with its claimant signature
type CreateArguments struct {
	Digest    HexBytes          `json:"digest"`
	Signature account.Signature `json:"signature"`
	Owner     *account.Account  `json:"owner"`
}

// CreateReply - identifier of the new record
type CreateReply struct {
	ID uint64 `json:"id,string"`
}

// Create - add a pending record
func (records *Records) Create(arguments *CreateArguments, reply *CreateReply) error {
	if err := ratelimit.Limit(records.Limiter); nil != err {
		return err
	}

	if nil == arguments {
		return fault.MissingParameters
	}

	records.Log.Debugf("Records.Create: digest: %x  owner: %s", arguments.Digest, arguments.Owner)

	id, err := records.store.Create(arguments.Digest, arguments.Signature, arguments.Owner)
	if nil != err {
		return err
	}
	reply.ID = id
	return nil
}

// ---

// IDArguments - a single record identifier
type IDArguments struct {
	ID uint64 `json:"id,string"`
}

// GetReply - one record
type GetReply struct {
	Record *record.Record `json:"record"`
}

// Get - fetch a record by identifier
func (records *Records) Get(arguments *IDArguments, reply *GetReply) error {
	if err := ratelimit.Limit(records.Limiter); nil != err {
		return err
	}

	if nil == arguments {
		return fault.MissingParameters
	}

	r, err := records.store.Get(arguments.ID)
	if nil != err {
		return err
	}
	reply.Record = r
	return nil
}

// ---

// CountArguments - empty arguments for count request
type CountArguments struct{}

// CountReply - number of records
type CountReply struct {
	Count uint64 `json:"count,string"`
}

// Count - number of records in the store
func (records *Records) Count(_ *CountArguments, reply *CountReply) error {
	if err := ratelimit.Limit(records.Limiter); nil != err {
		return err
	}

	reply.Count = records.store.Count()
	return nil
}

// ---

// ListArguments - a page of records
type ListArguments struct {
	Start uint64 `json:"start,string"`
	Count int    `json:"count"`
}

// ListReply - a page of records and the start of the next page
type ListReply struct {
	Records   []*record.Record `json:"records"`
	NextStart uint64           `json:"nextStart,string"`
}

// List - records in identifier order
func (records *Records) List(arguments *ListArguments, reply *ListReply) error {
	if nil == arguments {
		return fault.MissingParameters
	}

	if err := ratelimit.LimitN(records.Limiter, arguments.Count, store.MaximumListCount); nil != err {
		return err
	}

	list, next, err := records.store.List(arguments.Start, arguments.Count)
	if nil != err {
		return err
	}
	reply.Records = list
	reply.NextStart = next
	return nil
}

// ---

// OwnedArguments - an owner identity
type OwnedArguments struct {
	Owner *account.Account `json:"owner"`
}

// OwnedReply - records currently held by the owner
type OwnedReply struct {
	Records []*record.Record `json:"records"`
}

// Owned - records whose current owner is the argument
func (records *Records) Owned(arguments *OwnedArguments, reply *OwnedReply) error {
	if err := ratelimit.Limit(records.Limiter); nil != err {
		return err
	}

	if nil == arguments || nil == arguments.Owner {
		return fault.MissingOwner
	}

	list, err := records.store.ListByOwner(arguments.Owner)
	if nil != err {
		return err
	}
	reply.Records = list
	return nil
}

// ---

// DecisionArguments - verifier input for accept, reject and verify
//
// Authorization is the verifier's signature over
// workflow.DecisionMessage
type DecisionArguments struct {
	ID            uint64            `json:"id,string"`
	Digest        HexBytes          `json:"digest"`
	Signature     account.Signature `json:"signature"`
	Verifier      *account.Account  `json:"verifier"`
	Authorization account.Signature `json:"authorization"`
}

// DecisionReply - status after the decision
type DecisionReply struct {
	Status record.Status `json:"status"`
}

// Accept - mark a pending record verified
func (records *Records) Accept(arguments *DecisionArguments, reply *DecisionReply) error {
	if err := ratelimit.Limit(records.Limiter); nil != err {
		return err
	}

	if nil == arguments {
		return fault.MissingParameters
	}

	err := records.workflow.AuthorizedAccept(arguments.ID, arguments.Digest, arguments.Signature, arguments.Verifier, arguments.Authorization)
	if nil != err {
		return err
	}
	reply.Status = record.Verified
	return nil
}

// Reject - mark a pending record rejected
func (records *Records) Reject(arguments *DecisionArguments, reply *DecisionReply) error {
	if err := ratelimit.Limit(records.Limiter); nil != err {
		return err
	}

	if nil == arguments {
		return fault.MissingParameters
	}

	err := records.workflow.AuthorizedReject(arguments.ID, arguments.Digest, arguments.Signature, arguments.Verifier, arguments.Authorization)
	if nil != err {
		return err
	}
	reply.Status = record.Rejected
	return nil
}

// Verify - verify and finalize in one step
func (records *Records) Verify(arguments *DecisionArguments, reply *DecisionReply) error {
	if err := ratelimit.Limit(records.Limiter); nil != err {
		return err
	}

	if nil == arguments {
		return fault.MissingParameters
	}

	status, err := records.workflow.AuthorizedVerify(arguments.ID, arguments.Digest, arguments.Signature, arguments.Verifier, arguments.Authorization)
	if nil != err {
		return err
	}
	reply.Status = status
	return nil
}

// ---

// CheckArguments - a digest and signature to test against a record
type CheckArguments struct {
	ID        uint64            `json:"id,string"`
	Digest    HexBytes          `json:"digest"`
	Signature account.Signature `json:"signature"`
}

// CheckReply - result of a check
type CheckReply struct {
	Valid bool `json:"valid"`
}

// Check - re-verify without modifying the record
func (records *Records) Check(arguments *CheckArguments, reply *CheckReply) error {
	if err := ratelimit.Limit(records.Limiter); nil != err {
		return err
	}

	if nil == arguments {
		return fault.MissingParameters
	}

	valid, err := records.workflow.Check(arguments.ID, arguments.Digest, arguments.Signature)
	if nil != err {
		return err
	}
	reply.Valid = valid
	return nil
}

// ---

// TransferArguments - a signed change of owner
//
// the signature is by the current owner over ownership.TransferMessage
type TransferArguments struct {
	ID        uint64            `json:"id,string"`
	Owner     *account.Account  `json:"owner"`
	NewOwner  *account.Account  `json:"newOwner"`
	Signature account.Signature `json:"signature"`
}

// TransferReply - the owner after the transfer
type TransferReply struct {
	Owner *account.Account `json:"owner"`
}

// Transfer - move a verified record to a new owner
func (records *Records) Transfer(arguments *TransferArguments, reply *TransferReply) error {
	if err := ratelimit.Limit(records.Limiter); nil != err {
		return err
	}

	if nil == arguments {
		return fault.MissingParameters
	}

	err := records.ownership.AuthorizedTransfer(arguments.ID, arguments.Owner, arguments.NewOwner, arguments.Signature)
	if nil != err {
		return err
	}
	reply.Owner = arguments.NewOwner
	return nil
}

// ---

// ProvenanceReply - chain of custody
type ProvenanceReply struct {
	Entries []ownership.Entry `json:"entries"`
}

// Provenance - owners of a record oldest first
func (records *Records) Provenance(arguments *IDArguments, reply *ProvenanceReply) error {
	if err := ratelimit.Limit(records.Limiter); nil != err {
		return err
	}

	if nil == arguments {
		return fault.MissingParameters
	}

	entries, err := records.ownership.Provenance(arguments.ID)
	if nil != err {
		return err
	}
	reply.Entries = entries
	return nil
}
