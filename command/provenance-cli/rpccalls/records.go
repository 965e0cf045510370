// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/fingerprint"
	"github.com/bitmark-inc/provenanced/record"
	"github.com/bitmark-inc/provenanced/rpc/records"
)

// CreateData - a digest claimed by its signer
type CreateData struct {
	Digest    fingerprint.Digest
	Signature account.Signature
	Owner     *account.Account
}

// Create - register a new pending record
func (c *Client) Create(createConfig *CreateData) (*records.CreateReply, error) {
	arguments := records.CreateArguments{
		Digest:    createConfig.Digest[:],
		Signature: createConfig.Signature,
		Owner:     createConfig.Owner,
	}
	reply := &records.CreateReply{}
	if err := c.call("Records.Create", &arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Get - fetch one record
func (c *Client) Get(id uint64) (*record.Record, error) {
	reply := &records.GetReply{}
	if err := c.call("Records.Get", &records.IDArguments{ID: id}, reply); nil != err {
		return nil, err
	}
	return reply.Record, nil
}

// Count - number of records held by the daemon
func (c *Client) Count() (*records.CountReply, error) {
	reply := &records.CountReply{}
	if err := c.call("Records.Count", &records.CountArguments{}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// List - a page of records
func (c *Client) List(start uint64, count int) (*records.ListReply, error) {
	reply := &records.ListReply{}
	if err := c.call("Records.List", &records.ListArguments{Start: start, Count: count}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Owned - records currently held by owner
func (c *Client) Owned(owner *account.Account) (*records.OwnedReply, error) {
	reply := &records.OwnedReply{}
	if err := c.call("Records.Owned", &records.OwnedArguments{Owner: owner}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// DecisionData - input to accept, reject and verify
type DecisionData struct {
	ID            uint64
	Digest        fingerprint.Digest
	Signature     account.Signature
	Verifier      *account.Account
	Authorization account.Signature
}

// Decide - run one of "Accept", "Reject" or "Verify"
func (c *Client) Decide(operation string, decisionConfig *DecisionData) (*records.DecisionReply, error) {
	arguments := records.DecisionArguments{
		ID:            decisionConfig.ID,
		Digest:        decisionConfig.Digest[:],
		Signature:     decisionConfig.Signature,
		Verifier:      decisionConfig.Verifier,
		Authorization: decisionConfig.Authorization,
	}
	reply := &records.DecisionReply{}
	if err := c.call("Records."+operation, &arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Check - test a digest and signature against a record
func (c *Client) Check(id uint64, digest fingerprint.Digest, signature account.Signature) (*records.CheckReply, error) {
	arguments := records.CheckArguments{
		ID:        id,
		Digest:    digest[:],
		Signature: signature,
	}
	reply := &records.CheckReply{}
	if err := c.call("Records.Check", &arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// TransferData - a signed change of owner
type TransferData struct {
	ID        uint64
	Owner     *account.Account
	NewOwner  *account.Account
	Signature account.Signature
}

// Transfer - move a verified record to a new owner
func (c *Client) Transfer(transferConfig *TransferData) (*records.TransferReply, error) {
	arguments := records.TransferArguments{
		ID:        transferConfig.ID,
		Owner:     transferConfig.Owner,
		NewOwner:  transferConfig.NewOwner,
		Signature: transferConfig.Signature,
	}
	reply := &records.TransferReply{}
	if err := c.call("Records.Transfer", &arguments, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

// Provenance - chain of custody of a record
func (c *Client) Provenance(id uint64) (*records.ProvenanceReply, error) {
	reply := &records.ProvenanceReply{}
	if err := c.call("Records.Provenance", &records.IDArguments{ID: id}, reply); nil != err {
		return nil, err
	}
	return reply, nil
}
