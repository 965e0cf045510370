// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - LevelDB backed ledger
//
// keys are split into pools by a one byte prefix:
//
//   R + id(8 byte BE)                      packed record
//   O + owner account bytes + id(8 byte BE)  empty; index of current owner
//   0x00 VERSION                           database version (4 byte BE)
//
// a new record or a change of owner is written as one batch so the
// owner index never disagrees with the records
package storage
