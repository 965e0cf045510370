// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"time"

	"github.com/bitmark-inc/provenanced/account"
	"github.com/bitmark-inc/provenanced/fault"
	"github.com/bitmark-inc/provenanced/fingerprint"
	"github.com/bitmark-inc/provenanced/util"
)

// Packed - binary form of a record as held by a persistent ledger
type Packed []byte

// leading tag of every packed record
const recordTag = 0x50

// Pack - binary encoding of a record
//
// layout: tag, id, digest, signature, claimed owner, current owner,
// status, created, finalized, verifier, history count then
// (previous owner, new owner, timestamp) per transfer; lengths and
// integers as varints; a time is 0 for the zero time, otherwise 1
// followed by zigzag seconds and nanoseconds since the Unix epoch
func (r *Record) Pack() Packed {
	buffer := util.ToVarint64(recordTag)
	buffer = append(buffer, util.ToVarint64(r.ID)...)
	buffer = util.AppendVarBytes(buffer, r.Digest[:])
	buffer = util.AppendVarBytes(buffer, r.Signature)
	buffer = appendAccount(buffer, r.ClaimedOwner)
	buffer = appendAccount(buffer, r.CurrentOwner)
	buffer = append(buffer, util.ToVarint64(uint64(r.Status))...)
	buffer = appendTime(buffer, r.CreatedAt)
	buffer = appendTime(buffer, r.FinalizedAt)
	buffer = appendAccount(buffer, r.Verifier)

	buffer = append(buffer, util.ToVarint64(uint64(len(r.History)))...)
	for _, t := range r.History {
		buffer = appendAccount(buffer, t.PreviousOwner)
		buffer = appendAccount(buffer, t.NewOwner)
		buffer = appendTime(buffer, t.Timestamp)
	}
	return buffer
}

// Unpack - decode a packed record
//
// the whole buffer must be consumed
func (packed Packed) Unpack() (*Record, error) {
	u := unpacker{buffer: packed}

	if recordTag != u.varint() {
		return nil, fault.NotRecord
	}

	r := &Record{}
	r.ID = u.varint()

	digest := u.bytes()
	if nil == u.err {
		if err := fingerprint.DigestFromBytes(&r.Digest, digest); nil != err {
			return nil, fault.NotRecord
		}
	}
	r.Signature = u.bytes()
	r.ClaimedOwner = u.account()
	r.CurrentOwner = u.account()

	status := u.varint()
	if status > uint64(Rejected) {
		return nil, fault.NotRecord
	}
	r.Status = Status(status)

	r.CreatedAt = u.time()
	r.FinalizedAt = u.time()
	r.Verifier = u.account()

	count := u.varint()
	if count > uint64(len(packed)) {
		return nil, fault.NotRecord
	}
	r.History = make([]Transfer, 0, count)
	for i := uint64(0); i < count && nil == u.err; i += 1 {
		t := Transfer{
			PreviousOwner: u.account(),
			NewOwner:      u.account(),
			Timestamp:     u.time(),
		}
		r.History = append(r.History, t)
	}

	if nil != u.err {
		return nil, u.err
	}
	if u.n != len(packed) {
		return nil, fault.NotRecord
	}
	if 0 == len(r.Signature) {
		r.Signature = nil
	}
	return r, nil
}

func appendAccount(buffer []byte, a *account.Account) []byte {
	if nil == a || nil == a.AccountInterface {
		return util.AppendVarBytes(buffer, nil)
	}
	return util.AppendVarBytes(buffer, a.Bytes())
}

const (
	timeAbsent  = 0
	timePresent = 1
)

func appendTime(buffer []byte, t time.Time) []byte {
	if t.IsZero() {
		return append(buffer, util.ToVarint64(timeAbsent)...)
	}
	seconds := t.Unix()
	buffer = append(buffer, util.ToVarint64(timePresent)...)
	buffer = append(buffer, util.ToVarint64(uint64(seconds<<1)^uint64(seconds>>63))...)
	return append(buffer, util.ToVarint64(uint64(t.Nanosecond()))...)
}

// sequential reader; the first failure sticks and all later reads
// return zero values
type unpacker struct {
	buffer []byte
	n      int
	err    error
}

func (u *unpacker) varint() uint64 {
	if nil != u.err {
		return 0
	}
	value, n := util.FromVarint64(u.buffer[u.n:])
	if 0 == n {
		u.err = fault.NotRecord
		return 0
	}
	u.n += n
	return value
}

func (u *unpacker) bytes() []byte {
	if nil != u.err {
		return nil
	}
	data, n := util.ReadVarBytes(u.buffer[u.n:])
	if 0 == n {
		u.err = fault.NotRecord
		return nil
	}
	u.n += n
	return data
}

// an empty item is a nil account
func (u *unpacker) account() *account.Account {
	data := u.bytes()
	if nil != u.err || 0 == len(data) {
		return nil
	}
	a, err := account.AccountFromBytes(data)
	if nil != err {
		u.err = err
		return nil
	}
	return a
}

func (u *unpacker) time() time.Time {
	switch u.varint() {
	case timeAbsent:
		return time.Time{}
	case timePresent:
	default:
		u.err = fault.NotRecord
		return time.Time{}
	}
	zigzag := u.varint()
	seconds := int64(zigzag>>1) ^ -int64(zigzag&1)
	nanoseconds := u.varint()
	if nil != u.err {
		return time.Time{}
	}
	if nanoseconds >= uint64(time.Second) {
		u.err = fault.NotRecord
		return time.Time{}
	}
	return time.Unix(seconds, int64(nanoseconds)).UTC()
}
